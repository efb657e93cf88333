// Package core has core logic for verifying, snapshotting and scoring rubrics.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/rubric/core/algo"
	"github.com/huangsam/rubric/internal/contract"
	"github.com/huangsam/rubric/internal/formfile"
	"github.com/huangsam/rubric/internal/outwriter"
	"github.com/huangsam/rubric/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error

// Rubric is a loaded rubric together with the policy definition it is scored with.
type Rubric struct {
	Form       *schema.Form
	Definition PolicyDefinition
}

// LoadRubric reads the rubric at formPath. A non-empty weightsPath replaces
// the rubric's inline weights.
func LoadRubric(formPath, weightsPath string) (*Rubric, error) {
	if formPath == "" {
		return nil, errors.New("a rubric file is required")
	}
	doc, err := formfile.LoadForm(formPath)
	if err != nil {
		return nil, err
	}
	weights := doc.Weights
	if weightsPath != "" {
		if weights, err = formfile.LoadWeights(weightsPath); err != nil {
			return nil, err
		}
	}
	def, err := NewPolicyDefinition(doc.Policy, weights)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", formPath, err)
	}
	return &Rubric{Form: doc.Form, Definition: def}, nil
}

// LoadAnswerSets reads every answer file in order.
func LoadAnswerSets(paths []string) ([]*formfile.Answers, error) {
	if len(paths) == 0 {
		return nil, errors.New("at least one answer file is required")
	}
	out := make([]*formfile.Answers, 0, len(paths))
	for _, p := range paths {
		a, err := formfile.LoadAnswers(p)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// GetScoreResults loads the rubric and answers from cfg, scores every run and
// records the runs in history when mgr has a store.
func GetScoreResults(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) ([]schema.RunResult, error) {
	results, err := scoreResults(ctx, cfg)
	if err != nil {
		return nil, err
	}
	recordRuns(mgr, results)
	return results, nil
}

func scoreResults(ctx context.Context, cfg *contract.Config) ([]schema.RunResult, error) {
	rubric, err := LoadRubric(cfg.FormPath, cfg.WeightsPath)
	if err != nil {
		return nil, err
	}
	answers, err := LoadAnswerSets(cfg.AnswerPaths)
	if err != nil {
		return nil, err
	}
	logHeader(ctx, "Scoring %d run(s) of %q with the %s policy", len(answers), rubric.Form.Title, rubric.Definition.Kind())
	return ScoreBatch(ctx, rubric.Form, rubric.Definition, answers, cfg.Workers, cfg.Explain)
}

// GetCheckResult scores every answer file from cfg and compares the totals with cfg.MinTotal.
func GetCheckResult(ctx context.Context, cfg *contract.Config) (schema.CheckResult, error) {
	results, err := scoreResults(ctx, cfg)
	if err != nil {
		return schema.CheckResult{}, err
	}
	return buildCheckResult(results, cfg.MinTotal), nil
}

// ExecuteVerify checks a rubric against its policy definition and prints the outcome.
func ExecuteVerify(_ context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	rubric, err := LoadRubric(cfg.FormPath, cfg.WeightsPath)
	if err != nil {
		return err
	}
	if err := rubric.Definition.Verify(rubric.Form); err != nil {
		return err
	}
	return outwriter.PrintVerifyResult(rubric.Form, rubric.Definition.Kind(), cfg)
}

// ExecuteSnapshot takes a snapshot of a rubric and prints its keyed tree.
func ExecuteSnapshot(_ context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	rubric, err := LoadRubric(cfg.FormPath, cfg.WeightsPath)
	if err != nil {
		return err
	}
	snap, err := Snapshot(rubric.Form, rubric.Definition)
	if err != nil {
		return err
	}
	return outwriter.PrintSnapshot(snap, cfg)
}

// ExecuteWeights verifies a weighted rubric and prints every node's declared
// weight together with its effective share of the total.
func ExecuteWeights(_ context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	rubric, err := LoadRubric(cfg.FormPath, cfg.WeightsPath)
	if err != nil {
		return err
	}
	if rubric.Definition.Kind() != schema.WeightedPolicy {
		return fmt.Errorf("rubric %q uses the %s policy and has no weights", rubric.Form.Title, rubric.Definition.Kind())
	}
	if err := rubric.Definition.Verify(rubric.Form); err != nil {
		return err
	}
	return outwriter.PrintWeights(rubric.Form, rubric.Definition.Weights(), cfg)
}

// ExecuteScore scores every answer file, records the runs in history and prints them.
func ExecuteScore(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	start := time.Now()
	results, err := GetScoreResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if cfg.Sort || cfg.Limit > 0 {
		results = algo.RankRuns(results, cfg.Limit)
	}
	return outwriter.PrintRunResults(results, cfg, time.Since(start))
}

// ExecuteCheck scores every answer file and fails when any total is below cfg.MinTotal.
// It is meant for CI gates, so the returned error carries the failure count.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	start := time.Now()
	check, err := GetCheckResult(ctx, cfg)
	if err != nil {
		return err
	}
	if err := outwriter.PrintCheckResult(check, cfg, time.Since(start)); err != nil {
		return err
	}
	if !check.Passed {
		return fmt.Errorf("%d of %d run(s) scored below %.*f", len(check.FailedRuns), check.TotalRuns, cfg.Precision, cfg.MinTotal)
	}
	return nil
}

// logHeader writes a progress line to stderr unless ctx suppresses headers.
func logHeader(ctx context.Context, format string, args ...any) {
	if shouldSuppressHeader(ctx) {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}
