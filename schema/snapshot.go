package schema

import (
	"time"

	"github.com/google/uuid"
)

// Policy is a runtime aggregation policy bound to one snapshot.
// Implementations are immutable and safe for concurrent use.
type Policy interface {
	// Kind reports which policy definition produced this runtime policy.
	Kind() PolicyKind

	// Total reduces the score set to a single value. An empty eligible set yields 0.
	Total(snap *RunFormSnapshot, scores []RunCriterionScore) (float64, error)

	// Explain returns the per-node contributions behind Total, in tree order.
	Explain(snap *RunFormSnapshot, scores []RunCriterionScore) ([]NodeResult, error)
}

// RunFormCriterion is the snapshot-local copy of a criterion.
type RunFormCriterion struct {
	Key         uuid.UUID     `json:"key"`                 // Freshly generated at snapshot time
	SourceID    string        `json:"source_id,omitempty"` // Design-time ID it was copied from, informational only
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Order       OrderIndex    `json:"order"`
	Options     []ScoreOption `json:"options,omitempty"`
}

// RunFormGroup is the snapshot-local copy of a group.
type RunFormGroup struct {
	Key      uuid.UUID          `json:"key"`
	SourceID string             `json:"source_id,omitempty"`
	Title    string             `json:"title"`
	Order    OrderIndex         `json:"order"`
	Criteria []RunFormCriterion `json:"criteria,omitempty"`
	Groups   []RunFormGroup     `json:"groups,omitempty"`
}

// RunFormSnapshot freezes a rubric for one run. It is never mutated after construction.
type RunFormSnapshot struct {
	FormID      string             `json:"form_id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	TakenAt     time.Time          `json:"taken_at"`
	Policy      Policy             `json:"-"`
	Groups      []RunFormGroup     `json:"groups,omitempty"`
	Criteria    []RunFormCriterion `json:"criteria,omitempty"`
}

// Total computes the run total with the bound policy.
func (s *RunFormSnapshot) Total(scores []RunCriterionScore) (float64, error) {
	return s.Policy.Total(s, scores)
}

// Explain returns the per-node contributions with the bound policy.
func (s *RunFormSnapshot) Explain(scores []RunCriterionScore) ([]NodeResult, error) {
	return s.Policy.Explain(s, scores)
}

// Walk visits every node depth-first in declared order: a group's criteria
// before its subgroups. path holds the titles of the enclosing groups.
func (s *RunFormSnapshot) Walk(visitGroup func(g *RunFormGroup, path []string), visitCriterion func(c *RunFormCriterion, path []string)) {
	for i := range s.Criteria {
		if visitCriterion != nil {
			visitCriterion(&s.Criteria[i], nil)
		}
	}
	for i := range s.Groups {
		walkGroup(&s.Groups[i], nil, visitGroup, visitCriterion)
	}
}

func walkGroup(g *RunFormGroup, path []string, visitGroup func(*RunFormGroup, []string), visitCriterion func(*RunFormCriterion, []string)) {
	if visitGroup != nil {
		visitGroup(g, path)
	}
	inner := append(append([]string(nil), path...), g.Title)
	for i := range g.Criteria {
		if visitCriterion != nil {
			visitCriterion(&g.Criteria[i], inner)
		}
	}
	for i := range g.Groups {
		walkGroup(&g.Groups[i], inner, visitGroup, visitCriterion)
	}
}

// CriterionCount returns the number of criteria reachable in the snapshot.
func (s *RunFormSnapshot) CriterionCount() int {
	n := 0
	s.Walk(nil, func(*RunFormCriterion, []string) { n++ })
	return n
}

// CriterionBySource maps design-time criterion IDs to snapshot criteria.
// Criteria without an ID are left out.
func (s *RunFormSnapshot) CriterionBySource() map[string]*RunFormCriterion {
	out := make(map[string]*RunFormCriterion)
	s.Walk(nil, func(c *RunFormCriterion, _ []string) {
		if c.SourceID != "" {
			out[c.SourceID] = c
		}
	})
	return out
}

// NodeResult explains how one node contributed to a total.
type NodeResult struct {
	Key       uuid.UUID `json:"key"`
	Kind      NodeKind  `json:"kind"`
	Path      []string  `json:"path"`      // Titles of the enclosing groups
	Title     string    `json:"title"`
	Available bool      `json:"available"` // False when the node produced no value
	Value     float64   `json:"value"`
	Weight    float64   `json:"weight"` // Declared weight in percent (0 for the mean policy)
	Share     float64   `json:"share"`  // Effective fraction of the parent after renormalization
}
