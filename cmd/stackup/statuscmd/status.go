package statuscmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"stackup/cmd/stackup/cmdutil"
	"stackup/cmd/stackup/ui"
	"stackup/internal/adapter/host"
	"stackup/internal/env"
	"stackup/internal/stack"

	"github.com/spf13/cobra"
)

// Cmd returns the "stackup status" command, a per-service view of the
// running stack.
func Cmd(manifestFlag *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of each service in the stack",
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
			proj, err := stack.LoadProject(ctx, cfg.ComposeFile, project, envMap.Values())
			if err != nil {
				return err
			}

			backend, err := host.New()
			if err != nil {
				return err
			}
			statuses, err := stack.Status(ctx, backend.Client(), project, stack.ServiceNames(proj))
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := s.State
				if s.Running() {
					state = ui.Accent(state)
				}
				rows = append(rows, []string{s.Service, s.Container, state, strings.Join(s.Ports, ", ")})
			}
			fmt.Println(ui.Table([]string{"SERVICE", "CONTAINER", "STATE", "PORTS"}, rows))
			return nil
		},
	}
	return cmd
}
