package main

import (
	"fmt"
	"os"

	"stackup/cmd/stackup/bootstrapcmd"
	"stackup/cmd/stackup/cmdutil"
	"stackup/cmd/stackup/downcmd"
	"stackup/cmd/stackup/healthcmd"
	"stackup/cmd/stackup/historycmd"
	"stackup/cmd/stackup/statuscmd"
	"stackup/cmd/stackup/ui"
	"stackup/internal/logging"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var (
		debug     bool
		logFormat string
		manifest  string
		noColor   bool
	)
	if err := logging.Configure(logging.LevelWarn, logging.FormatText); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(cmdutil.ExitFailure)
	}

	root := &cobra.Command{
		Use:           "stackup",
		Short:         "Bootstrap a compose stack: resources, startup, health",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelWarn
			if debug {
				level = logging.LevelDebug
			}
			if err := logging.Configure(level, logFormat); err != nil {
				return err
			}
			ui.ConfigureColor(noColor)
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "Log format: text or json")
	root.PersistentFlags().StringVar(&manifest, "manifest", "", "Manifest path (default stackup.yaml)")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(bootstrapcmd.Cmd(&manifest))
	root.AddCommand(healthcmd.Cmd(&manifest))
	root.AddCommand(statuscmd.Cmd(&manifest))
	root.AddCommand(downcmd.Cmd(&manifest))
	root.AddCommand(historycmd.Cmd(&manifest))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cmdutil.ExitCode(err))
	}
}
