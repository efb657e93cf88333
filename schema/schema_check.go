package schema

// CheckResult holds the results of a minimum-total check over several runs.
type CheckResult struct {
	Passed     bool             `json:"passed"`
	MinTotal   float64          `json:"min_total"`
	TotalRuns  int              `json:"total_runs"`
	FailedRuns []CheckFailedRun `json:"failed_runs"`
	MinSeen    float64          `json:"min_seen"`
	AvgTotal   float64          `json:"avg_total"`
	Incomplete int              `json:"incomplete"` // Runs with pending criteria
}

// CheckFailedRun represents a run whose total is below the threshold.
type CheckFailedRun struct {
	Source   string   `json:"source"`
	Total    float64  `json:"total"`
	Progress Progress `json:"progress"`
}
