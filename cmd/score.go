package cmd

import (
	"github.com/huangsam/rubric/core"
	"github.com/huangsam/rubric/internal/contract"
	"github.com/spf13/cobra"
)

// scoreCmd scores answer files against a rubric.
var scoreCmd = &cobra.Command{
	Use:   "score <form.yaml> <answers.yaml>...",
	Short: "Score answer files against a rubric",
	Long: `Score each answer file as its own run. Every run takes a fresh snapshot of the
rubric, and runs are scored concurrently.

Skipped and unanswered criteria do not count. Under the weighted policy the
remaining siblings of a group share its weight, so a partially answered rubric
still yields a total on the 0-10 scale. Use --explain to see how.

When a history backend is configured, each run is recorded for later export.

Examples:
  # Score three candidates
  rubric score interview.yaml alice.yaml bob.yaml carol.yaml

  # Rank them and show the breakdown
  rubric score interview.yaml answers/*.yaml --sort --explain

  # Record runs in SQLite
  rubric score interview.yaml alice.yaml --history-backend sqlite`,
	Args:    cobra.MinimumNArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScore(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Scoring failed", err)
		}
	},
}
