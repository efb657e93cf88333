package core

import (
	"testing"

	"github.com/huangsam/rubric/schema"
	"github.com/stretchr/testify/assert"
)

func TestBuildCheckResult(t *testing.T) {
	complete := schema.Progress{Total: 2, Answered: 2}
	partial := schema.Progress{Total: 2, Answered: 1, Pending: 1}

	tests := []struct {
		name       string
		results    []schema.RunResult
		minTotal   float64
		passed     bool
		failed     []string
		minSeen    float64
		avg        float64
		incomplete int
	}{
		{
			name:     "no runs",
			minTotal: 5,
			passed:   true,
			failed:   []string{},
		},
		{
			name: "all above threshold",
			results: []schema.RunResult{
				{Source: "a", Total: 6, Progress: complete},
				{Source: "b", Total: 8, Progress: partial},
			},
			minTotal:   5,
			passed:     true,
			failed:     []string{},
			minSeen:    6,
			avg:        7,
			incomplete: 1,
		},
		{
			name: "failures ranked lowest first",
			results: []schema.RunResult{
				{Source: "a", Total: 4, Progress: complete},
				{Source: "b", Total: 9, Progress: complete},
				{Source: "c", Total: 1, Progress: partial},
			},
			minTotal:   5,
			failed:     []string{"c", "a"},
			minSeen:    1,
			avg:        14.0 / 3,
			incomplete: 1,
		},
		{
			name:     "threshold is inclusive",
			results:  []schema.RunResult{{Source: "a", Total: 5, Progress: complete}},
			minTotal: 5,
			passed:   true,
			failed:   []string{},
			minSeen:  5,
			avg:      5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := buildCheckResult(tt.results, tt.minTotal)
			assert.Equal(t, tt.passed, check.Passed)
			assert.Equal(t, tt.minTotal, check.MinTotal)
			assert.Equal(t, len(tt.results), check.TotalRuns)
			assert.InDelta(t, tt.minSeen, check.MinSeen, 1e-9)
			assert.InDelta(t, tt.avg, check.AvgTotal, 1e-9)
			assert.Equal(t, tt.incomplete, check.Incomplete)

			sources := []string{}
			for _, f := range check.FailedRuns {
				sources = append(sources, f.Source)
			}
			assert.Equal(t, tt.failed, sources)
		})
	}
}
