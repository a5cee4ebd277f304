package historycmd

import (
	"fmt"
	"strconv"
	"time"

	"stackup/cmd/stackup/cmdutil"
	"stackup/cmd/stackup/ui"
	"stackup/internal/journal"

	"github.com/spf13/cobra"
)

// Cmd returns the "stackup history" command, a listing of past
// bootstrap runs from the local journal.
func Cmd(manifestFlag *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent bootstrap runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadManifest(*manifestFlag)
			if err != nil {
				return err
			}

			jnl, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return err
			}
			defer jnl.Close()

			entries, err := jnl.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println(ui.InfoMsg("No runs recorded yet."))
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.StartedAt.Local().Format(time.DateTime),
					e.Project,
					e.Outcome.String(),
					e.Elapsed.Round(time.Millisecond).String(),
					strconv.Itoa(len(e.Warnings)),
				})
			}
			fmt.Println(ui.Table([]string{"STARTED", "PROJECT", "OUTCOME", "ELAPSED", "WARNINGS"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to show")
	return cmd
}
