package cmd

import (
	"github.com/spf13/cobra"
	"github.com/terminus-io/hccdu/pkg/render"
)

func newQuotaCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Print every raw quota record the backends return",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.loadConfig(cmd.Flag("config").Value.String())
			if err != nil {
				return err
			}
			id, err := e.identity()
			if err != nil {
				return err
			}
			rpt, err := newReporter(cfg, id, true)
			if err != nil {
				return err
			}
			data, err := rpt.Collect(cmd.Context(), id)
			if err != nil {
				return err
			}
			render.Dump(cmd.OutOrStdout(), data)
			return nil
		},
	}
}
