package downcmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stackup/cmd/stackup/cmdutil"
	"stackup/cmd/stackup/ui"
	"stackup/internal/env"
	"stackup/internal/stack"

	"github.com/spf13/cobra"
)

// Cmd returns the "stackup down" command.
func Cmd(manifestFlag *string) *cobra.Command {
	var removeVolumes bool

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop the stack and remove its containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := cmdutil.LoadManifest(*manifestFlag)
			if err != nil {
				return err
			}
			project, err := cmdutil.ProjectName(cfg)
			if err != nil {
				return err
			}

			envMap, _, err := env.Load(cfg.EnvFile, cfg.Defaults)
			if err != nil {
				return err
			}

			cli := stack.NewComposeCLI(cfg.ComposeFile, project, envMap.Values())
			if err := cli.Down(ctx, removeVolumes); err != nil {
				return err
			}
			fmt.Println(ui.SuccessMsg("Stack %s is down.", ui.Bold(project)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&removeVolumes, "volumes", false, "Also remove named volumes declared by the stack")
	return cmd
}
