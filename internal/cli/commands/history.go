package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/leapcheck/internal/cli/config"
	"github.com/leapstack-labs/leapcheck/internal/state"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent validation runs",
		Long: `Show recent validation runs recorded in the state database.

Every 'leapcheck validate' run is recorded unless history is disabled
(--no-history or 'history: false' in leapcheck.yaml). Pass a run ID to
show a single run.`,
		Example: `  # Show the last 20 runs
  leapcheck history

  # Show the last 5 runs as JSON
  leapcheck history --limit 5 -o json

  # Show one run
  leapcheck history 2f1c9a4e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			store, err := cc.OpenStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if len(args) == 1 {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return renderRuns(cc, []*state.Run{run})
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return renderRuns(cc, runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", config.DefaultHistoryLimit, "Number of runs to show")
	return cmd
}

func renderRuns(cc *CommandContext, runs []*state.Run) error {
	r := cc.Renderer
	if runs == nil {
		runs = []*state.Run{}
	}
	if ok, err := r.Encode(runs); ok {
		return err
	}
	if len(runs) == 0 {
		r.Muted("No runs recorded yet")
		return nil
	}

	r.Header(1, fmt.Sprintf("Validation runs (%d)", len(runs)))
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			string(run.Status),
			run.RulesFile,
			run.DataFile,
			strconv.Itoa(run.Rows),
			strconv.Itoa(run.Errors),
			strconv.Itoa(run.Warnings),
			duration,
		})
	}
	r.Table([]string{"ID", "Started", "Status", "Rules", "Data", "Rows", "Errors", "Warnings", "Duration"}, rows)

	for _, run := range runs {
		if run.Error != "" {
			r.Println(r.Styles().Error.Render(shortID(run.ID)+": "+run.Error))
		}
	}
	return nil
}

// shortID returns the first block of a UUID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
