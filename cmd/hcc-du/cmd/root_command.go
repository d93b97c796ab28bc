package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/terminus-io/hccdu/pkg/config"
	"github.com/terminus-io/hccdu/pkg/exporter"
	"github.com/terminus-io/hccdu/pkg/identity"
	"github.com/terminus-io/hccdu/pkg/quota/lustre"
	"github.com/terminus-io/hccdu/pkg/render"
	"github.com/terminus-io/hccdu/pkg/threshold"
	"github.com/terminus-io/hccdu/pkg/utils"
	"k8s.io/klog/v2"
)

const groupUnavailable = "Group quota not available, please try again later."

type rootOptions struct {
	configPath string
	color      string
	fill       bool
	group      string
	login      bool
	reverse    bool
	sup        bool
	output     string
}

// env carries what commands need from the process, replaceable in tests.
type env struct {
	v        *viper.Viper
	identity func() (identity.Identity, error)
	columns  func() int
	runner   utils.Runner
}

func defaultEnv() *env {
	return &env{
		v:        viper.New(),
		identity: identity.Current,
		columns: func() int {
			_, cols := render.WindowSize(os.Stdout)
			return cols
		},
		runner: utils.StdoutRunner,
	}
}

func (e *env) loadConfig(path string) (*config.Config, error) {
	return config.LoadWith(e.v, path)
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultEnv())
}

func newRootCommand(e *env) *cobra.Command {
	o := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "hcc-du",
		Short:         "Report disk usage and quota across cluster filesystems",
		Long:          `hcc-du reconciles user, group and filesystem quotas from every configured mount and draws one usage bar per mount.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsage(cmd, e, o)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.AddGoFlagSet(flag.CommandLine)
	pf.StringVar(&o.configPath, "config", "", "path to the configuration file (default "+config.DefaultConfigPath+")")
	pf.String("metrics-file", "", "also write metrics in the Prometheus textfile format to this path")
	_ = e.v.BindPFlag("metrics_file", pf.Lookup("metrics-file"))

	f := rootCmd.Flags()
	f.StringVarP(&o.color, "color", "c", "a", "utilized bar graph has colored background 'a'/always or 'n'/never")
	f.BoolVarP(&o.fill, "fill", "f", false, "bar graph is filled with '='/utilized and '-'/available")
	f.StringVarP(&o.group, "group", "g", "", "display all member user quotas from your group(s) sorted by 'b'/blocks used or 'i'/files used")
	f.BoolVarP(&o.login, "login", "l", false, "use with system login profile")
	f.BoolVarP(&o.reverse, "reverse", "r", false, "utilized bar graph is reverse video")
	f.BoolVarP(&o.sup, "sup", "s", false, "display supplementary group usage")
	f.StringVarP(&o.output, "output", "o", "text", "output format: text, json or yaml")

	rootCmd.AddCommand(newPurgeCommand(e))
	rootCmd.AddCommand(newQuotaCommand(e))
	rootCmd.AddCommand(newConfigCommand(e))
	return rootCmd
}

func (o *rootOptions) validate() error {
	if o.color != "a" && o.color != "n" {
		return fmt.Errorf("invalid --color %q (valid: a, n)", o.color)
	}
	if o.group != "" && o.group != render.SortByBlocks && o.group != render.SortByInodes {
		return fmt.Errorf("invalid --group %q (valid: b, i)", o.group)
	}
	return nil
}

func runUsage(cmd *cobra.Command, e *env, o *rootOptions) error {
	if err := o.validate(); err != nil {
		return err
	}
	format, err := render.ParseFormat(o.output)
	if err != nil {
		return err
	}
	cfg, err := e.loadConfig(o.configPath)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	out := cmd.OutOrStdout()

	if o.group != "" {
		return runGroup(ctx, out, e, cfg, o.group)
	}

	id, err := e.identity()
	if err != nil {
		return err
	}
	rpt, err := newReporter(cfg, id, o.sup)
	if err != nil {
		return err
	}
	rep, err := rpt.Run(ctx, id, o.sup)
	if err != nil {
		return err
	}
	klog.V(2).InfoS("Report ready", "sections", len(rep.Sections), "warnings", rep.Mask().String())

	if cfg.MetricsFile != "" {
		if err := exporter.WriteTextfile(rep, cfg.MetricsFile); err != nil {
			klog.ErrorS(err, "Failed to write metrics", "path", cfg.MetricsFile)
		}
	}

	if format != render.FormatText {
		return render.PrintStructured(out, format, rep)
	}

	p := render.NewPrinter(out, render.BarOptions{Color: o.color == "a", Reverse: o.reverse, Fill: o.fill}, e.columns())
	p.Report(rep)

	if o.login {
		p.Login(rep, cfg.Login.RemediationMount, cfg.Login.Message)
		if code := rep.Remediation(cfg.Login.RemediationMount); code != threshold.NoAction {
			klog.V(1).InfoS("Remediation needed", "mount", cfg.Login.RemediationMount, "code", code)
			return &exitError{code: int(code)}
		}
	}
	return nil
}

func runGroup(ctx context.Context, out io.Writer, e *env, cfg *config.Config, sortBy string) error {
	members, err := lustre.Members(ctx, e.runner, cfg.GroupHelper)
	if err != nil {
		klog.V(1).InfoS("Group helper failed", "helper", cfg.GroupHelper, "err", err)
		fmt.Fprintln(out, groupUnavailable)
		return &exitError{code: commandStatus(err)}
	}
	render.Members(out, members, sortBy, nil)
	return nil
}

// Execute is called by main.go.
func Execute() error {
	return NewRootCommand().Execute()
}

func init() {
	klog.InitFlags(nil)
	_ = flag.Set("logtostderr", "true")
}
