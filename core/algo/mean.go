package algo

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/huangsam/rubric/schema"
)

// MeanPolicy averages every eligible score, ignoring the tree entirely.
type MeanPolicy struct{}

// NewMeanPolicy returns the arithmetic-mean runtime policy.
func NewMeanPolicy() *MeanPolicy { return &MeanPolicy{} }

// Kind implements schema.Policy.
func (*MeanPolicy) Kind() schema.PolicyKind { return schema.MeanPolicy }

// Total returns the mean of eligible scores for criteria in the snapshot, or 0
// when none are eligible.
func (*MeanPolicy) Total(snap *schema.RunFormSnapshot, scores []schema.RunCriterionScore) (float64, error) {
	lookup, err := eligibleScores(snap, scores)
	if err != nil {
		return 0, err
	}
	if len(lookup) == 0 {
		return 0, nil
	}
	// Sum in tree order so the result does not depend on map iteration.
	var sum float64
	snap.Walk(nil, func(c *schema.RunFormCriterion, _ []string) { sum += lookup[c.Key] })
	return sum / float64(len(lookup)), nil
}

// Explain lists every snapshot criterion. Counted criteria share the total equally.
func (*MeanPolicy) Explain(snap *schema.RunFormSnapshot, scores []schema.RunCriterionScore) ([]schema.NodeResult, error) {
	lookup, err := eligibleScores(snap, scores)
	if err != nil {
		return nil, err
	}

	var nodes []schema.NodeResult
	snap.Walk(
		func(g *schema.RunFormGroup, path []string) {
			nodes = append(nodes, schema.NodeResult{Key: g.Key, Kind: schema.GroupNode, Path: path, Title: g.Title})
		},
		func(c *schema.RunFormCriterion, path []string) {
			node := schema.NodeResult{Key: c.Key, Kind: schema.CriterionNode, Path: path, Title: c.Title}
			if v, ok := lookup[c.Key]; ok {
				node.Available = true
				node.Value = v
				node.Share = 1 / float64(len(lookup))
			}
			nodes = append(nodes, node)
		},
	)
	return nodes, nil
}

// eligibleScores maps snapshot criterion keys to the selected score of eligible
// entries. Keys outside the snapshot are ignored. A key may appear at most once.
func eligibleScores(snap *schema.RunFormSnapshot, scores []schema.RunCriterionScore) (map[uuid.UUID]float64, error) {
	known := make(map[uuid.UUID]struct{})
	snap.Walk(nil, func(c *schema.RunFormCriterion, _ []string) { known[c.Key] = struct{}{} })

	seen := make(map[uuid.UUID]struct{}, len(scores))
	lookup := make(map[uuid.UUID]float64, len(scores))
	for _, s := range scores {
		if _, dup := seen[s.CriterionKey]; dup {
			return nil, fmt.Errorf("%w: criterion %s", schema.ErrDuplicateScore, s.CriterionKey)
		}
		seen[s.CriterionKey] = struct{}{}
		if _, ok := known[s.CriterionKey]; !ok || !s.Eligible() {
			continue
		}
		lookup[s.CriterionKey] = s.Assessment.Score
	}
	return lookup, nil
}
