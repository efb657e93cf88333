package schema

import "github.com/google/uuid"

// Assessment is the evaluator's selection for a criterion.
type Assessment struct {
	Score   float64
	Comment string
}

// RunCriterionScore is the current state of one criterion within a run.
// Skipped scores and scores without an assessment are not counted.
type RunCriterionScore struct {
	CriterionKey uuid.UUID
	Skipped      bool
	Assessment   *Assessment
}

// Eligible reports whether the score takes part in aggregation.
func (s RunCriterionScore) Eligible() bool {
	return !s.Skipped && s.Assessment != nil
}

// Progress summarizes how much of a snapshot has been answered.
type Progress struct {
	Total    int `json:"total"`    // Criteria in the snapshot
	Answered int `json:"answered"` // Eligible scores
	Skipped  int `json:"skipped"`  // Explicitly skipped criteria
	Pending  int `json:"pending"`  // Neither answered nor skipped
}

// ComputeProgress counts answered, skipped and pending criteria of snap.
// Scores whose key is not part of the snapshot are ignored.
func ComputeProgress(snap *RunFormSnapshot, scores []RunCriterionScore) Progress {
	known := make(map[uuid.UUID]struct{})
	snap.Walk(nil, func(c *RunFormCriterion, _ []string) { known[c.Key] = struct{}{} })

	p := Progress{Total: len(known)}
	seen := make(map[uuid.UUID]struct{}, len(scores))
	for _, s := range scores {
		if _, ok := known[s.CriterionKey]; !ok {
			continue
		}
		if _, dup := seen[s.CriterionKey]; dup {
			continue
		}
		seen[s.CriterionKey] = struct{}{}
		switch {
		case s.Eligible():
			p.Answered++
		case s.Skipped:
			p.Skipped++
		}
	}
	p.Pending = p.Total - p.Answered - p.Skipped
	return p
}

// Complete reports whether every criterion is answered or skipped.
func (p Progress) Complete() bool { return p.Pending == 0 }
