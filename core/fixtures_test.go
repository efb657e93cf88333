package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/huangsam/rubric/internal/formfile"
	"github.com/huangsam/rubric/schema"
	"github.com/stretchr/testify/require"
)

func order(t *testing.T, v int) schema.OrderIndex {
	t.Helper()
	o, err := schema.NewOrderIndex(v)
	require.NoError(t, err)
	return o
}

// interviewForm has one root criterion and one group with two criteria.
func interviewForm(t *testing.T) *schema.Form {
	t.Helper()
	options := []schema.ScoreOption{{Score: 0}, {Score: 4}, {Score: 8}, {Score: 10}}
	return &schema.Form{
		ID:    "interview",
		Title: "Interview",
		Criteria: []schema.Criterion{
			{ID: "communication", Title: "Communication", Order: order(t, 0), Options: options},
		},
		Groups: []schema.Group{{
			ID:    "technical",
			Title: "Technical",
			Order: order(t, 1),
			Criteria: []schema.Criterion{
				{ID: "design", Title: "Design", Order: order(t, 0), Options: options},
				{ID: "testing", Title: "Testing", Order: order(t, 1), Options: options},
			},
		}},
	}
}

// interviewScheme weighs the root criterion 40%, the group 60% and its criteria 50/50.
func interviewScheme() schema.WeightScheme {
	return schema.WeightScheme{
		Criteria: []schema.WeightedCriterion{{Weight: schema.MustWeight(4000)}},
		Groups: []schema.WeightedGroup{{
			Weight: schema.MustWeight(6000),
			Criteria: []schema.WeightedCriterion{
				{Weight: schema.MustWeight(5000)},
				{Weight: schema.MustWeight(5000)},
			},
		}},
	}
}

func score(v float64) *float64 { return &v }

func answersOf(source string, entries ...formfile.Answer) *formfile.Answers {
	return &formfile.Answers{Source: source, Entries: entries}
}

// nodeKeys lists every group and criterion key of a snapshot in tree order.
func nodeKeys(snap *schema.RunFormSnapshot) []uuid.UUID {
	var keys []uuid.UUID
	snap.Walk(
		func(g *schema.RunFormGroup, _ []string) { keys = append(keys, g.Key) },
		func(c *schema.RunFormCriterion, _ []string) { keys = append(keys, c.Key) },
	)
	return keys
}
