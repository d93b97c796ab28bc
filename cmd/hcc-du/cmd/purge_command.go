package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/terminus-io/hccdu/pkg/purge"
	"github.com/terminus-io/hccdu/pkg/render"
)

func newPurgeCommand(e *env) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Show which of your files are eligible for the scratch purge",
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

			reports := purge.NewReports(cfg.PurgeDir, nil)
			switch {
			case list && cmd.OutOrStdout() == os.Stdout && render.IsTerminal(os.Stdout):
				err = reports.ShowList(cmd.Context(), id.UserName)
			case list:
				err = reports.PrintList(cmd.OutOrStdout(), id.UserName)
			default:
				err = reports.PrintStatus(cmd.OutOrStdout(), id.UserName)
			}
			if errors.Is(err, purge.ErrNoPurgeData) {
				return &exitError{code: 1}
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "show the listing of files eligible for purge, paged on a terminal")
	return cmd
}
