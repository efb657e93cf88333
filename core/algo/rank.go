package algo

import (
	"sort"

	"github.com/huangsam/rubric/schema"
)

// RankRuns sorts runs by their total in descending order and returns the
// top 'limit' runs. A limit of zero or less keeps every run. Runs with
// equal totals keep their input order.
func RankRuns(runs []schema.RunResult, limit int) []schema.RunResult {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Total > runs[j].Total
	})
	if limit > 0 && len(runs) > limit {
		return runs[:limit]
	}
	return runs
}

// RankFailedRuns sorts failed runs so the lowest total comes first.
func RankFailedRuns(failed []schema.CheckFailedRun) []schema.CheckFailedRun {
	sort.SliceStable(failed, func(i, j int) bool {
		return failed[i].Total < failed[j].Total
	})
	return failed
}
