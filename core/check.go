package core

import (
	"github.com/huangsam/rubric/core/algo"
	"github.com/huangsam/rubric/schema"
)

// buildCheckResult compares every run total with minTotal.
// Incomplete runs are counted but do not fail the check on their own.
func buildCheckResult(results []schema.RunResult, minTotal float64) schema.CheckResult {
	check := schema.CheckResult{
		Passed:     true,
		MinTotal:   minTotal,
		TotalRuns:  len(results),
		FailedRuns: []schema.CheckFailedRun{},
	}
	if len(results) == 0 {
		return check
	}

	var sum float64
	check.MinSeen = results[0].Total
	for _, r := range results {
		sum += r.Total
		if r.Total < check.MinSeen {
			check.MinSeen = r.Total
		}
		if !r.Progress.Complete() {
			check.Incomplete++
		}
		if r.Total < minTotal {
			check.FailedRuns = append(check.FailedRuns, schema.CheckFailedRun{
				Source:   r.Source,
				Total:    r.Total,
				Progress: r.Progress,
			})
		}
	}
	check.AvgTotal = sum / float64(len(results))
	check.FailedRuns = algo.RankFailedRuns(check.FailedRuns)
	check.Passed = len(check.FailedRuns) == 0
	return check
}
