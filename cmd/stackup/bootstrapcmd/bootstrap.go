package bootstrapcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stackup"
	"stackup/cmd/stackup/cmdutil"
	"stackup/cmd/stackup/ui"
	"stackup/internal/adapter/host"
	"stackup/internal/bootstrap"
	"stackup/internal/health"
	"stackup/internal/journal"
	"stackup/internal/preflight"
	"stackup/internal/stack"

	"github.com/spf13/cobra"
)

// composeStarter adapts the compose CLI runner to the sequencer's
// Starter interface, deferring construction until the environment map
// exists.
type composeStarter struct {
	composeFile string
	project     string
}

func (c composeStarter) StartStack(ctx context.Context, envVars map[string]string) error {
	return stack.NewComposeCLI(c.composeFile, c.project, envVars).Up(ctx)
}

// Cmd returns the "stackup bootstrap" command. manifestFlag points at
// the root persistent flag value.
func Cmd(manifestFlag *string) *cobra.Command {
	var (
		envFile  string
		url      string
		timeout  int
		interval int
	)

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Ensure resources, start the stack, wait until it is healthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := cmdutil.LoadManifest(*manifestFlag)
			if err != nil {
				return err
			}
			if envFile != "" {
				cfg.EnvFile = envFile
			}
			if timeout > 0 {
				cfg.Health.TimeoutSeconds = timeout
			}
			if interval > 0 {
				cfg.Health.IntervalSeconds = interval
			}

			project, err := cmdutil.ProjectName(cfg)
			if err != nil {
				return err
			}
			backend, err := host.New()
			if err != nil {
				return err
			}

			seq := &bootstrap.Sequencer{
				Manifest:  cfg,
				Project:   project,
				Backend:   backend,
				Starter:   composeStarter{composeFile: cfg.ComposeFile, project: project},
				Poller:    health.New(),
				Preflight: preflight.New(backend.Client()).Run,
				HealthURL: url,
			}
			if jnl, err := journal.Open(cfg.JournalPath()); err != nil {
				slog.Warn("run journal unavailable", "err", err)
			} else {
				defer jnl.Close()
				seq.Recorder = jnl
			}

			report, runErr := seq.Run(ctx)
			printReport(cmd.OutOrStdout(), report)
			if runErr != nil {
				return runErr
			}
			if report.Outcome == stackup.OutcomeDegraded {
				return cmdutil.ErrHealthTimedOut
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Env file path (overrides manifest)")
	cmd.Flags().StringVar(&url, "url", "", "Health endpoint URL (overrides manifest)")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "Health check timeout in seconds")
	cmd.Flags().IntVar(&interval, "interval", 0, "Health poll interval in seconds")
	return cmd
}

func printReport(w io.Writer, report stackup.Report) {
	if report.EnvFileFound {
		fmt.Fprintln(w, ui.InfoMsg("Environment: %d entries loaded", report.EnvParsed))
	}
	for _, r := range report.Resources {
		good := r.Status != "failed"
		detail := r.Status
		if r.Reason != "" {
			detail += ": " + r.Reason
		}
		fmt.Fprintln(w, ui.StepMsg(good, r.Label, detail))
	}
	for _, warning := range report.Warnings {
		fmt.Fprintln(w, ui.WarnMsg("%s", warning))
	}

	switch report.Outcome {
	case stackup.OutcomeHealthy:
		if report.HealthElapsed > 0 {
			fmt.Fprintln(w, ui.SuccessMsg("Stack %s is up and healthy after %s.", ui.Bold(report.Project), report.HealthElapsed.Round(time.Millisecond)))
		} else {
			fmt.Fprintln(w, ui.SuccessMsg("Stack %s is up.", ui.Bold(report.Project)))
		}
	case stackup.OutcomeDegraded:
		fmt.Fprintln(w, ui.WarnMsg("Stack %s started but is not answering its health endpoint yet.", ui.Bold(report.Project)))
	case stackup.OutcomeAborted:
		fmt.Fprintln(w, ui.ErrorMsg("Bootstrap of %s aborted; the stack was not started.", ui.Bold(report.Project)))
	case stackup.OutcomeCancelled:
		fmt.Fprintln(w, ui.WarnMsg("Bootstrap of %s cancelled.", ui.Bold(report.Project)))
	}
}
