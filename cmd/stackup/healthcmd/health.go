package healthcmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stackup/cmd/stackup/cmdutil"
	"stackup/cmd/stackup/ui"
	"stackup/internal/health"

	"github.com/spf13/cobra"
)

// Cmd returns the "stackup health" command, a standalone poll of the
// stack's health endpoint without touching resources or compose.
func Cmd(manifestFlag *string) *cobra.Command {
	var (
		url      string
		timeout  int
		interval int
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Poll the stack's health endpoint until it answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := cmdutil.LoadManifest(*manifestFlag)
			if err != nil {
				return err
			}
			if timeout > 0 {
				cfg.Health.TimeoutSeconds = timeout
			}
			if interval > 0 {
				cfg.Health.IntervalSeconds = interval
			}

			hc := cfg.HealthConfig(url)
			if hc.URL == "" {
				return fmt.Errorf("no health URL: set health.url in the manifest or pass --url")
			}

			res, err := health.New().Poll(ctx, hc)
			if err != nil {
				return err
			}
			if !res.Healthy {
				fmt.Println(ui.ErrorMsg("%s did not answer within %s.", hc.URL, hc.Timeout))
				return cmdutil.ErrHealthTimedOut
			}
			fmt.Println(ui.SuccessMsg("%s answered after %s.", hc.URL, res.Elapsed.Round(time.Millisecond)))
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Health endpoint URL (overrides manifest)")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "Timeout in seconds")
	cmd.Flags().IntVar(&interval, "interval", 0, "Poll interval in seconds")
	return cmd
}
