package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/huangsam/rubric/core/algo"
	"github.com/huangsam/rubric/schema"
)

// PolicyDefinition is the design-time choice of aggregation policy.
// It is either ArithmeticMean or WeightedMean; the zero value is invalid.
type PolicyDefinition struct {
	kind    schema.PolicyKind
	weights *schema.WeightScheme
}

// ArithmeticMean returns the parameterless mean policy definition.
func ArithmeticMean() PolicyDefinition {
	return PolicyDefinition{kind: schema.MeanPolicy}
}

// WeightedMean returns a weighted policy definition holding scheme.
func WeightedMean(scheme schema.WeightScheme) PolicyDefinition {
	return PolicyDefinition{kind: schema.WeightedPolicy, weights: &scheme}
}

// NewPolicyDefinition builds a definition from a policy kind and an optional scheme.
// The weighted policy requires a scheme; the mean policy ignores it.
func NewPolicyDefinition(kind schema.PolicyKind, scheme *schema.WeightScheme) (PolicyDefinition, error) {
	switch kind {
	case schema.MeanPolicy:
		return ArithmeticMean(), nil
	case schema.WeightedPolicy:
		if scheme == nil {
			return PolicyDefinition{}, errors.New("weighted policy requires a weight scheme")
		}
		return WeightedMean(*scheme), nil
	default:
		return PolicyDefinition{}, fmt.Errorf("unknown policy kind %q", kind)
	}
}

// Kind reports which variant this definition is.
func (d PolicyDefinition) Kind() schema.PolicyKind { return d.kind }

// Weights returns the weight scheme of a weighted definition, or nil.
func (d PolicyDefinition) Weights() *schema.WeightScheme { return d.weights }

// Verify checks that the definition can be used with form.
// The mean policy accepts any rubric.
func (d PolicyDefinition) Verify(form *schema.Form) error {
	if form == nil {
		return errors.New("rubric is nil")
	}
	switch d.kind {
	case schema.MeanPolicy:
		return nil
	case schema.WeightedPolicy:
		return verifyLevel(form.Criteria, form.Groups, d.weights.Criteria, d.weights.Groups, nil)
	default:
		return fmt.Errorf("unknown policy kind %q", d.kind)
	}
}

// verifyLevel compares one level of the rubric with the same level of the
// weight scheme, then descends into the groups. The first failure wins.
func verifyLevel(criteria []schema.Criterion, groups []schema.Group, wc []schema.WeightedCriterion, wg []schema.WeightedGroup, path []string) error {
	if len(criteria) != len(wc) {
		return fmt.Errorf("%w: %s has %d criteria but the weight scheme declares %d",
			schema.ErrStructuralMismatch, describeLevel(path), len(criteria), len(wc))
	}
	if len(groups) != len(wg) {
		return fmt.Errorf("%w: %s has %d groups but the weight scheme declares %d",
			schema.ErrStructuralMismatch, describeLevel(path), len(groups), len(wg))
	}

	// A level without children has nothing to weigh.
	if len(wc)+len(wg) > 0 {
		sum := 0
		for _, c := range wc {
			sum += c.Weight.BPS()
		}
		for _, g := range wg {
			sum += g.Weight.BPS()
		}
		if sum != schema.FullWeightBPS {
			return fmt.Errorf("%w: weights under %s sum to %.2f%%, expected 100.00%%",
				schema.ErrWeightSumInvalid, describeLevel(path), float64(sum)/100)
		}
	}

	for i := range groups {
		inner := append(append([]string(nil), path...), groups[i].Title)
		if err := verifyLevel(groups[i].Criteria, groups[i].Groups, wg[i].Criteria, wg[i].Groups, inner); err != nil {
			return err
		}
	}
	return nil
}

// Bind produces the runtime policy for snap. The weighted definition walks
// the snapshot and its scheme together by position and records one weight per key.
func (d PolicyDefinition) Bind(snap *schema.RunFormSnapshot) (schema.Policy, error) {
	if snap == nil {
		return nil, errors.New("snapshot is nil")
	}
	switch d.kind {
	case schema.MeanPolicy:
		return algo.NewMeanPolicy(), nil
	case schema.WeightedPolicy:
		weights := make(map[uuid.UUID]schema.Weight)
		if err := bindLevel(snap.Criteria, snap.Groups, d.weights.Criteria, d.weights.Groups, nil, weights); err != nil {
			return nil, err
		}
		return algo.NewWeightedPolicy(weights), nil
	default:
		return nil, fmt.Errorf("unknown policy kind %q", d.kind)
	}
}

func bindLevel(criteria []schema.RunFormCriterion, groups []schema.RunFormGroup, wc []schema.WeightedCriterion, wg []schema.WeightedGroup, path []string, out map[uuid.UUID]schema.Weight) error {
	if len(criteria) != len(wc) || len(groups) != len(wg) {
		return fmt.Errorf("%w: cannot bind %s (%d criteria, %d groups) to a scheme with %d criteria, %d groups",
			schema.ErrStructuralMismatch, describeLevel(path), len(criteria), len(groups), len(wc), len(wg))
	}
	for i := range criteria {
		out[criteria[i].Key] = wc[i].Weight
	}
	for i := range groups {
		out[groups[i].Key] = wg[i].Weight
		inner := append(append([]string(nil), path...), groups[i].Title)
		if err := bindLevel(groups[i].Criteria, groups[i].Groups, wg[i].Criteria, wg[i].Groups, inner, out); err != nil {
			return err
		}
	}
	return nil
}

func describeLevel(path []string) string {
	if len(path) == 0 {
		return "the rubric root"
	}
	return fmt.Sprintf("group %q", strings.Join(path, " > "))
}
