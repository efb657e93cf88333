package algo

import (
	"fmt"
	"maps"
	"strings"

	"github.com/google/uuid"
	"github.com/huangsam/rubric/schema"
)

// WeightedPolicy reduces the snapshot tree bottom-up. Each level is the
// weighted mean of its available children, renormalized over the weights of
// those children only. Groups with nothing available drop out of their parent.
type WeightedPolicy struct {
	weights map[uuid.UUID]schema.Weight
}

// NewWeightedPolicy returns a weighted runtime policy over a key to weight binding.
// The map is copied so later changes by the caller have no effect.
func NewWeightedPolicy(weights map[uuid.UUID]schema.Weight) *WeightedPolicy {
	return &WeightedPolicy{weights: maps.Clone(weights)}
}

// Kind implements schema.Policy.
func (*WeightedPolicy) Kind() schema.PolicyKind { return schema.WeightedPolicy }

// WeightOf returns the weight bound to a snapshot key.
func (p *WeightedPolicy) WeightOf(key uuid.UUID) (schema.Weight, bool) {
	w, ok := p.weights[key]
	return w, ok
}

// Total returns the root value of the reduction, or 0 when nothing was available.
func (p *WeightedPolicy) Total(snap *schema.RunFormSnapshot, scores []schema.RunCriterionScore) (float64, error) {
	lookup, err := eligibleScores(snap, scores)
	if err != nil {
		return 0, err
	}
	r := &reducer{weights: p.weights, lookup: lookup}
	_, value, err := r.combine(snap.Criteria, snap.Groups, nil)
	if err != nil {
		return 0, err
	}
	return value, nil
}

// Explain returns every node in tree order with its value and effective share.
func (p *WeightedPolicy) Explain(snap *schema.RunFormSnapshot, scores []schema.RunCriterionScore) ([]schema.NodeResult, error) {
	lookup, err := eligibleScores(snap, scores)
	if err != nil {
		return nil, err
	}
	r := &reducer{weights: p.weights, lookup: lookup, explain: true}
	if _, _, err := r.combine(snap.Criteria, snap.Groups, nil); err != nil {
		return nil, err
	}
	return r.nodes, nil
}

type reducer struct {
	weights map[uuid.UUID]schema.Weight
	lookup  map[uuid.UUID]float64
	explain bool
	nodes   []schema.NodeResult
}

type entry struct {
	node   int // index into reducer.nodes, -1 when not explaining
	value  float64
	weight float64
}

// combine reduces one level. The root is a level without a weight of its own.
func (r *reducer) combine(criteria []schema.RunFormCriterion, groups []schema.RunFormGroup, path []string) (bool, float64, error) {
	var entries []entry

	for i := range criteria {
		c := &criteria[i]
		w, err := r.weightOf(c.Key, c.Title, path)
		if err != nil {
			return false, 0, err
		}
		score, scored := r.lookup[c.Key]
		idx := r.record(schema.NodeResult{
			Key: c.Key, Kind: schema.CriterionNode, Path: path, Title: c.Title,
			Available: scored, Value: score, Weight: w.Percent(),
		})
		if scored {
			entries = append(entries, entry{node: idx, value: score, weight: float64(w.BPS())})
		}
	}

	for i := range groups {
		g := &groups[i]
		w, err := r.weightOf(g.Key, g.Title, path)
		if err != nil {
			return false, 0, err
		}
		idx := r.record(schema.NodeResult{
			Key: g.Key, Kind: schema.GroupNode, Path: path, Title: g.Title, Weight: w.Percent(),
		})
		inner := append(append([]string(nil), path...), g.Title)
		available, value, err := r.combine(g.Criteria, g.Groups, inner)
		if err != nil {
			return false, 0, err
		}
		if idx >= 0 {
			r.nodes[idx].Available = available
			r.nodes[idx].Value = value
		}
		if available {
			entries = append(entries, entry{node: idx, value: value, weight: float64(w.BPS())})
		}
	}

	if len(entries) == 0 {
		return false, 0, nil
	}

	var total float64
	for _, e := range entries {
		total += e.weight
	}
	if total <= 0 {
		return false, 0, fmt.Errorf("%w: available children of %s carry no weight", schema.ErrZeroWeightDenominator, describePath(path))
	}

	var value float64
	for _, e := range entries {
		value += e.value * e.weight / total
		if e.node >= 0 {
			r.nodes[e.node].Share = e.weight / total
		}
	}
	return true, value, nil
}

func (r *reducer) weightOf(key uuid.UUID, title string, path []string) (schema.Weight, error) {
	w, ok := r.weights[key]
	if !ok {
		return schema.Weight{}, fmt.Errorf("%w: %q under %s (key %s)", schema.ErrMissingWeightBinding, title, describePath(path), key)
	}
	return w, nil
}

func (r *reducer) record(node schema.NodeResult) int {
	if !r.explain {
		return -1
	}
	r.nodes = append(r.nodes, node)
	return len(r.nodes) - 1
}

func describePath(path []string) string {
	if len(path) == 0 {
		return "root"
	}
	return strings.Join(path, " > ")
}
