package cmd

import (
	"github.com/huangsam/rubric/core"
	"github.com/huangsam/rubric/internal/contract"
	"github.com/spf13/cobra"
)

// verifyCmd checks a rubric against its weight scheme.
var verifyCmd = &cobra.Command{
	Use:   "verify <form.yaml>",
	Short: "Check that a rubric and its weight scheme have the same shape",
	Long: `Verify that every level of the rubric has as many weights as it has criteria and
groups, and that sibling weights add up to exactly 100%.

Arithmetic-mean rubrics always verify.

Examples:
  # Verify inline weights
  rubric verify interview.yaml

  # Verify a separately authored weight scheme
  rubric verify interview.yaml --weights interview_weights.yaml`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteVerify(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Verification failed", err)
		}
	},
}

// snapshotCmd freezes a rubric and prints the snapshot tree.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot <form.yaml>",
	Short: "Freeze a rubric into a snapshot with fresh keys",
	Long: `Take a snapshot of a rubric as a scoring run would. Every group and criterion gets
a fresh key, so two snapshots of the same rubric never share keys.

Examples:
  rubric snapshot interview.yaml
  rubric snapshot interview.yaml --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSnapshot(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Snapshot failed", err)
		}
	},
}

// weightsCmd prints declared and effective weights.
var weightsCmd = &cobra.Command{
	Use:   "weights <form.yaml>",
	Short: "Show declared weights and each node's share of the total",
	Long: `Print the weight scheme of a weighted rubric next to its tree. The effective share
is the product of the weights on the path from the root, which is how much a fully
answered node contributes to the total.

Examples:
  rubric weights interview.yaml
  rubric weights interview.yaml --weights interview_weights.yaml --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWeights(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Weights failed", err)
		}
	},
}
