package core

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/rubric/schema"
)

// Snapshot verifies form against def, copies it with fresh keys and binds
// the runtime policy. Nothing is returned unless every step succeeds.
func Snapshot(form *schema.Form, def PolicyDefinition) (*schema.RunFormSnapshot, error) {
	if form == nil {
		return nil, errors.New("rubric is nil")
	}
	if err := def.Verify(form); err != nil {
		return nil, err
	}

	snap := &schema.RunFormSnapshot{
		FormID:      form.ID,
		Title:       form.Title,
		Description: form.Description,
		TakenAt:     time.Now().UTC(),
		Criteria:    copyCriteria(form.Criteria),
		Groups:      copyGroups(form.Groups),
	}

	policy, err := def.Bind(snap)
	if err != nil {
		return nil, err
	}
	snap.Policy = policy
	return snap, nil
}

func copyCriteria(criteria []schema.Criterion) []schema.RunFormCriterion {
	if len(criteria) == 0 {
		return nil
	}
	out := make([]schema.RunFormCriterion, len(criteria))
	for i, c := range criteria {
		out[i] = schema.RunFormCriterion{
			Key:         uuid.New(),
			SourceID:    c.ID,
			Title:       c.Title,
			Description: c.Description,
			Order:       c.Order,
			Options:     slices.Clone(c.Options),
		}
	}
	return out
}

func copyGroups(groups []schema.Group) []schema.RunFormGroup {
	if len(groups) == 0 {
		return nil
	}
	out := make([]schema.RunFormGroup, len(groups))
	for i, g := range groups {
		out[i] = schema.RunFormGroup{
			Key:      uuid.New(),
			SourceID: g.ID,
			Title:    g.Title,
			Order:    g.Order,
			Criteria: copyCriteria(g.Criteria),
			Groups:   copyGroups(g.Groups),
		}
	}
	return out
}
