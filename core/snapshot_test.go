package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/huangsam/rubric/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var snapshotCmpOpts = []cmp.Option{
	cmpopts.IgnoreFields(schema.RunFormSnapshot{}, "TakenAt", "Policy"),
	cmpopts.IgnoreFields(schema.RunFormGroup{}, "Key"),
	cmpopts.IgnoreFields(schema.RunFormCriterion{}, "Key"),
	cmp.Comparer(func(a, b schema.OrderIndex) bool { return a.Int() == b.Int() }),
}

func TestSnapshotCopiesStructure(t *testing.T) {
	form := interviewForm(t)
	snap, err := Snapshot(form, WeightedMean(interviewScheme()))
	require.NoError(t, err)
	require.NotNil(t, snap.Policy)

	assert.Equal(t, form.ID, snap.FormID)
	assert.Equal(t, form.Title, snap.Title)
	assert.False(t, snap.TakenAt.IsZero())
	require.Len(t, snap.Criteria, 1)
	require.Len(t, snap.Groups, 1)
	assert.Equal(t, "communication", snap.Criteria[0].SourceID)
	assert.Equal(t, "technical", snap.Groups[0].SourceID)
	assert.Equal(t, []string{"design", "testing"}, []string{
		snap.Groups[0].Criteria[0].SourceID,
		snap.Groups[0].Criteria[1].SourceID,
	})
	assert.Equal(t, form.CriterionCount(), snap.CriterionCount())
	for _, k := range nodeKeys(snap) {
		assert.NotEqual(t, uuid.Nil, k)
	}
}

func TestSnapshotDoesNotAliasForm(t *testing.T) {
	form := interviewForm(t)
	snap, err := Snapshot(form, ArithmeticMean())
	require.NoError(t, err)

	form.Criteria[0].Title = "Renamed"
	form.Criteria[0].Options[0].Score = 99
	form.Groups[0].Criteria = nil

	assert.Equal(t, "Communication", snap.Criteria[0].Title)
	assert.Equal(t, 0.0, snap.Criteria[0].Options[0].Score)
	assert.Len(t, snap.Groups[0].Criteria, 2)
}

func TestSnapshotsHaveDisjointKeys(t *testing.T) {
	form := interviewForm(t)
	def := WeightedMean(interviewScheme())

	first, err := Snapshot(form, def)
	require.NoError(t, err)
	second, err := Snapshot(form, def)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, snapshotCmpOpts...); diff != "" {
		t.Errorf("snapshots differ in structure (-first +second):\n%s", diff)
	}

	seen := make(map[uuid.UUID]struct{})
	for _, k := range nodeKeys(first) {
		seen[k] = struct{}{}
	}
	assert.Len(t, seen, len(nodeKeys(first)), "keys repeat within a snapshot")
	for _, k := range nodeKeys(second) {
		_, dup := seen[k]
		assert.False(t, dup, "key %s shared by two snapshots", k)
	}
}

func TestSnapshotRejectsMismatchedScheme(t *testing.T) {
	form := interviewForm(t)
	form.Groups = append(form.Groups, schema.Group{
		Title:    "Culture",
		Order:    order(t, 2),
		Criteria: []schema.Criterion{{Title: "Ownership"}},
	})

	// Two groups in the rubric, three in the scheme.
	scheme := schema.WeightScheme{
		Criteria: []schema.WeightedCriterion{{Weight: schema.MustWeight(4000)}},
		Groups: []schema.WeightedGroup{
			{Weight: schema.MustWeight(2000), Criteria: []schema.WeightedCriterion{{Weight: schema.MustWeight(5000)}, {Weight: schema.MustWeight(5000)}}},
			{Weight: schema.MustWeight(2000), Criteria: []schema.WeightedCriterion{{Weight: schema.MustWeight(10000)}}},
			{Weight: schema.MustWeight(2000)},
		},
	}

	snap, err := Snapshot(form, WeightedMean(scheme))
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, schema.ErrStructuralMismatch)
}

func TestSnapshotRejectsInvalidSum(t *testing.T) {
	scheme := interviewScheme()
	scheme.Groups[0].Weight = schema.MustWeight(5999)

	snap, err := Snapshot(interviewForm(t), WeightedMean(scheme))
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, schema.ErrWeightSumInvalid)
}

func TestSnapshotNilForm(t *testing.T) {
	snap, err := Snapshot(nil, ArithmeticMean())
	assert.Nil(t, snap)
	assert.Error(t, err)
}

func TestSnapshotEmptyForm(t *testing.T) {
	snap, err := Snapshot(&schema.Form{Title: "Empty"}, WeightedMean(schema.WeightScheme{}))
	require.NoError(t, err)
	assert.Zero(t, snap.CriterionCount())

	total, err := snap.Total(nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}
