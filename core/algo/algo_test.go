package algo

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/huangsam/rubric/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioTree is the tree used by the weighted scenarios: one root criterion
// and one group holding two criteria.
type scenarioTree struct {
	snap    *schema.RunFormSnapshot
	weights map[uuid.UUID]schema.Weight
	root    uuid.UUID // root criterion, 40%
	group   uuid.UUID // group, 60%
	first   uuid.UUID // group criterion, 30%
	second  uuid.UUID // group criterion, 30%
}

func newScenarioTree() scenarioTree {
	t := scenarioTree{root: uuid.New(), group: uuid.New(), first: uuid.New(), second: uuid.New()}
	t.snap = &schema.RunFormSnapshot{
		Title:    "Scenario",
		Criteria: []schema.RunFormCriterion{{Key: t.root, Title: "Communication"}},
		Groups: []schema.RunFormGroup{{
			Key:   t.group,
			Title: "Technical",
			Criteria: []schema.RunFormCriterion{
				{Key: t.first, Title: "Design"},
				{Key: t.second, Title: "Testing"},
			},
		}},
	}
	t.weights = map[uuid.UUID]schema.Weight{
		t.root:   schema.MustWeight(4000),
		t.group:  schema.MustWeight(6000),
		t.first:  schema.MustWeight(3000),
		t.second: schema.MustWeight(3000),
	}
	return t
}

func scored(key uuid.UUID, score float64) schema.RunCriterionScore {
	return schema.RunCriterionScore{CriterionKey: key, Assessment: &schema.Assessment{Score: score}}
}

func skipped(key uuid.UUID) schema.RunCriterionScore {
	return schema.RunCriterionScore{CriterionKey: key, Skipped: true}
}

// flatSnapshot holds one root criterion per key.
func flatSnapshot(keys ...uuid.UUID) *schema.RunFormSnapshot {
	snap := &schema.RunFormSnapshot{Title: "Flat"}
	for _, k := range keys {
		snap.Criteria = append(snap.Criteria, schema.RunFormCriterion{Key: k, Title: k.String()})
	}
	return snap
}

func TestMeanPolicyTotal(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	snap := flatSnapshot(a, b, c)
	skippedWithScore := schema.RunCriterionScore{CriterionKey: c, Skipped: true, Assessment: &schema.Assessment{Score: 6}}

	tests := []struct {
		name     string
		scores   []schema.RunCriterionScore
		expected float64
	}{
		{"one skipped", []schema.RunCriterionScore{scored(a, 4), scored(b, 8), skippedWithScore}, 6},
		{"all counted", []schema.RunCriterionScore{scored(a, 4), scored(b, 8), scored(c, 6)}, 6},
		{"no assessment", []schema.RunCriterionScore{scored(a, 3), {CriterionKey: b}}, 3},
		{"empty", nil, 0},
		{"nothing eligible", []schema.RunCriterionScore{skipped(a), {CriterionKey: b}}, 0},
		{"unknown key ignored", []schema.RunCriterionScore{scored(a, 8), scored(uuid.New(), 2)}, 8},
	}

	p := NewMeanPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := p.Total(snap, tt.scores)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, total, 1e-9)
		})
	}
}

func TestMeanPolicyIgnoresHierarchy(t *testing.T) {
	tree := newScenarioTree()
	scores := []schema.RunCriterionScore{scored(tree.root, 8), scored(tree.first, 4), scored(tree.second, 10)}

	total, err := NewMeanPolicy().Total(tree.snap, scores)
	require.NoError(t, err)
	assert.InDelta(t, 22.0/3.0, total, 1e-9)
	assert.Equal(t, schema.MeanPolicy, NewMeanPolicy().Kind())
}

func TestMeanPolicyExplain(t *testing.T) {
	tree := newScenarioTree()
	scores := []schema.RunCriterionScore{scored(tree.root, 8), skipped(tree.first), scored(tree.second, 10)}

	nodes, err := NewMeanPolicy().Explain(tree.snap, scores)
	require.NoError(t, err)
	require.Len(t, nodes, 4)

	assert.Equal(t, tree.root, nodes[0].Key)
	assert.True(t, nodes[0].Available)
	assert.InDelta(t, 0.5, nodes[0].Share, 1e-9)
	assert.Equal(t, schema.GroupNode, nodes[1].Kind)
	assert.False(t, nodes[2].Available)
	assert.Equal(t, []string{"Technical"}, nodes[3].Path)
	assert.InDelta(t, 0.5, nodes[3].Share, 1e-9)
}

func TestMeanPolicyExplainIgnoresUnknownKeys(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	snap := flatSnapshot(a, b)

	nodes, err := NewMeanPolicy().Explain(snap, []schema.RunCriterionScore{scored(a, 8), scored(uuid.New(), 2)})
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.True(t, nodes[0].Available)
	assert.InDelta(t, 1.0, nodes[0].Share, 1e-9)
	assert.False(t, nodes[1].Available)
}

func TestPoliciesRejectDuplicateScores(t *testing.T) {
	tree := newScenarioTree()
	policies := map[string]schema.Policy{
		"mean":     NewMeanPolicy(),
		"weighted": NewWeightedPolicy(tree.weights),
	}
	orders := map[string][]schema.RunCriterionScore{
		"high first":       {scored(tree.root, 8), scored(tree.first, 4), scored(tree.root, 2)},
		"low first":        {scored(tree.root, 2), scored(tree.first, 4), scored(tree.root, 8)},
		"skipped then set": {skipped(tree.root), scored(tree.root, 8)},
		"unknown repeated": {scored(tree.root, 8), scored(tree.group, 1), scored(tree.group, 1)},
	}

	for pname, p := range policies {
		for oname, scores := range orders {
			t.Run(pname+"/"+oname, func(t *testing.T) {
				_, err := p.Total(tree.snap, scores)
				assert.ErrorIs(t, err, schema.ErrDuplicateScore)

				_, err = p.Explain(tree.snap, scores)
				assert.ErrorIs(t, err, schema.ErrDuplicateScore)
			})
		}
	}
}

func TestWeightedPolicyScenarios(t *testing.T) {
	tree := newScenarioTree()

	tests := []struct {
		name     string
		scores   []schema.RunCriterionScore
		expected float64
	}{
		{"fully answered", []schema.RunCriterionScore{scored(tree.root, 8), scored(tree.first, 4), scored(tree.second, 10)}, 7.4},
		{"partial group renormalizes", []schema.RunCriterionScore{scored(tree.root, 8), scored(tree.first, 4), skipped(tree.second)}, 5.6},
		{"nothing scored", nil, 0},
		{"everything skipped", []schema.RunCriterionScore{skipped(tree.root), skipped(tree.first), skipped(tree.second)}, 0},
		{"only root criterion", []schema.RunCriterionScore{scored(tree.root, 8)}, 8},
		{"only group", []schema.RunCriterionScore{scored(tree.first, 4), scored(tree.second, 10)}, 7},
		{"unknown key ignored", []schema.RunCriterionScore{scored(tree.root, 8), scored(uuid.New(), 1)}, 8},
	}

	p := NewWeightedPolicy(tree.weights)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := p.Total(tree.snap, tt.scores)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, total, 1e-9)
		})
	}
}

func TestWeightedPolicyOrderIndependent(t *testing.T) {
	tree := newScenarioTree()
	scores := []schema.RunCriterionScore{scored(tree.root, 8), scored(tree.first, 4), scored(tree.second, 10)}
	p := NewWeightedPolicy(tree.weights)

	want, err := p.Total(tree.snap, scores)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 2))
	for range 20 {
		shuffled := append([]schema.RunCriterionScore(nil), scores...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := p.Total(tree.snap, shuffled)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-9)

		mean, err := NewMeanPolicy().Total(tree.snap, shuffled)
		require.NoError(t, err)
		assert.InDelta(t, 22.0/3.0, mean, 1e-9)
	}
}

func TestWeightedPolicyNestedGroups(t *testing.T) {
	leafA, leafB, inner, outer, solo := uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()
	snap := &schema.RunFormSnapshot{
		Criteria: []schema.RunFormCriterion{{Key: solo, Title: "Solo"}},
		Groups: []schema.RunFormGroup{{
			Key:   outer,
			Title: "Outer",
			Groups: []schema.RunFormGroup{{
				Key:      inner,
				Title:    "Inner",
				Criteria: []schema.RunFormCriterion{{Key: leafA, Title: "A"}, {Key: leafB, Title: "B"}},
			}},
		}},
	}
	weights := map[uuid.UUID]schema.Weight{
		solo:  schema.MustWeight(5000),
		outer: schema.MustWeight(5000),
		inner: schema.MustWeight(10000),
		leafA: schema.MustWeight(2500),
		leafB: schema.MustWeight(7500),
	}
	p := NewWeightedPolicy(weights)

	total, err := p.Total(snap, []schema.RunCriterionScore{scored(solo, 2), scored(leafA, 4), scored(leafB, 8)})
	require.NoError(t, err)
	assert.InDelta(t, 0.5*2+0.5*(0.25*4+0.75*8), total, 1e-9)

	// One deep leaf represents its whole subtree.
	total, err = p.Total(snap, []schema.RunCriterionScore{scored(solo, 2), scored(leafA, 4)})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, total, 1e-9)
}

func TestWeightedPolicyErrors(t *testing.T) {
	t.Run("missing binding", func(t *testing.T) {
		tree := newScenarioTree()
		delete(tree.weights, tree.second)
		_, err := NewWeightedPolicy(tree.weights).Total(tree.snap, []schema.RunCriterionScore{scored(tree.root, 8)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, schema.ErrMissingWeightBinding))
		assert.Contains(t, err.Error(), "Technical")
	})

	t.Run("zero denominator", func(t *testing.T) {
		tree := newScenarioTree()
		tree.weights[tree.first] = schema.MustWeight(0)
		tree.weights[tree.second] = schema.MustWeight(0)
		_, err := NewWeightedPolicy(tree.weights).Total(tree.snap, []schema.RunCriterionScore{scored(tree.first, 4)})
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrZeroWeightDenominator)
	})

	t.Run("zero weight with nothing scored is fine", func(t *testing.T) {
		tree := newScenarioTree()
		tree.weights[tree.first] = schema.MustWeight(0)
		total, err := NewWeightedPolicy(tree.weights).Total(tree.snap, []schema.RunCriterionScore{scored(tree.root, 5)})
		require.NoError(t, err)
		assert.InDelta(t, 5.0, total, 1e-9)
	})
}

func TestWeightedPolicyCopiesBinding(t *testing.T) {
	tree := newScenarioTree()
	p := NewWeightedPolicy(tree.weights)
	delete(tree.weights, tree.root)

	w, ok := p.WeightOf(tree.root)
	assert.True(t, ok)
	assert.Equal(t, 4000, w.BPS())
	assert.Equal(t, schema.WeightedPolicy, p.Kind())
}

func TestWeightedPolicyExplain(t *testing.T) {
	tree := newScenarioTree()
	scores := []schema.RunCriterionScore{scored(tree.root, 8), scored(tree.first, 4), skipped(tree.second)}

	nodes, err := NewWeightedPolicy(tree.weights).Explain(tree.snap, scores)
	require.NoError(t, err)
	require.Len(t, nodes, 4)

	byKey := make(map[uuid.UUID]schema.NodeResult)
	for _, n := range nodes {
		byKey[n.Key] = n
	}

	assert.Equal(t, []uuid.UUID{tree.root, tree.group, tree.first, tree.second},
		[]uuid.UUID{nodes[0].Key, nodes[1].Key, nodes[2].Key, nodes[3].Key})
	assert.InDelta(t, 0.4, byKey[tree.root].Share, 1e-9)
	assert.InDelta(t, 0.6, byKey[tree.group].Share, 1e-9)
	assert.InDelta(t, 4.0, byKey[tree.group].Value, 1e-9)
	assert.True(t, byKey[tree.group].Available)
	assert.InDelta(t, 1.0, byKey[tree.first].Share, 1e-9)
	assert.False(t, byKey[tree.second].Available)
	assert.Zero(t, byKey[tree.second].Share)
	assert.InDelta(t, 30.0, byKey[tree.second].Weight, 1e-9)
}

func TestRankRuns(t *testing.T) {
	runs := []schema.RunResult{{Source: "a", Total: 3}, {Source: "b", Total: 9}, {Source: "c", Total: 3}, {Source: "d", Total: 5}}

	ranked := RankRuns(runs, 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, "b", ranked[0].Source)
	assert.Equal(t, "d", ranked[1].Source)
	assert.Equal(t, "a", ranked[2].Source)

	assert.Len(t, RankRuns(runs, 0), 4)

	failed := RankFailedRuns([]schema.CheckFailedRun{{Source: "x", Total: 4}, {Source: "y", Total: 1}})
	assert.Equal(t, "y", failed[0].Source)
}
