package schema

// EnrichedRunResult adds presentation data to a RunResult.
type EnrichedRunResult struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	RunResult
}

// GetPlainLabel returns a plain text label describing a run total on a 0-10 scale.
func GetPlainLabel(total float64) string {
	switch {
	case total >= 8:
		return "Excellent"
	case total >= 6:
		return "Good"
	case total >= 4:
		return "Fair"
	default:
		return "Poor"
	}
}

// EnrichRuns adds rank and label to a list of run results. Ranks follow input order.
func EnrichRuns(runs []RunResult) []EnrichedRunResult {
	output := make([]EnrichedRunResult, len(runs))
	for i, r := range runs {
		output[i] = EnrichedRunResult{
			Rank:      i + 1,
			Label:     GetPlainLabel(r.Total),
			RunResult: r,
		}
	}
	return output
}
