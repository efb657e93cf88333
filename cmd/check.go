package cmd

import (
	"github.com/huangsam/rubric/core"
	"github.com/huangsam/rubric/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD gating.
var checkCmd = &cobra.Command{
	Use:   "check <form.yaml> <answers.yaml>...",
	Short: "Fail when any run scores below a minimum total",
	Long: `Score answer files and exit with a non-zero code when any run total is below
--min-total. Runs with pending criteria are reported but only fail on their total.

Examples:
  # Gate a review on a minimum of 6
  rubric check review.yaml submissions/*.yaml --min-total 6

  # Machine-readable report
  rubric check review.yaml a.yaml b.yaml --min-total 5 --output json`,
	Args:    cobra.MinimumNArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Rubric check failed", err)
		}
	},
}
