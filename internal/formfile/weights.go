package formfile

import (
	"fmt"
	"os"

	"github.com/huangsam/rubric/schema"
)

type weightedCriterionDTO struct {
	Weight *float64 `yaml:"weight" validate:"required,gte=0,lte=100"`
}

type weightedGroupDTO struct {
	Weight   *float64               `yaml:"weight" validate:"required,gte=0,lte=100"`
	Criteria []weightedCriterionDTO `yaml:"criteria" validate:"dive"`
	Groups   []weightedGroupDTO     `yaml:"groups" validate:"dive"`
}

type weightSchemeDTO struct {
	Criteria []weightedCriterionDTO `yaml:"criteria" validate:"dive"`
	Groups   []weightedGroupDTO     `yaml:"groups" validate:"dive"`
}

// LoadWeights reads a standalone weight scheme. Nodes are matched to the
// rubric by position, so the file mirrors the rubric's shape without titles.
func LoadWeights(path string) (*schema.WeightScheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading weights: %w", err)
	}
	scheme, err := ParseWeights(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scheme, nil
}

// ParseWeights decodes a weight scheme document. Percentages are rounded to basis points.
func ParseWeights(data []byte) (*schema.WeightScheme, error) {
	var dto weightSchemeDTO
	if err := decodeStrict(data, &dto); err != nil {
		return nil, err
	}
	if err := validate.Struct(&dto); err != nil {
		return nil, fmt.Errorf("invalid weight scheme: %w", err)
	}
	wc, wg, err := weightLevel(dto.Criteria, dto.Groups)
	if err != nil {
		return nil, err
	}
	return &schema.WeightScheme{Criteria: wc, Groups: wg}, nil
}

func weightLevel(criteria []weightedCriterionDTO, groups []weightedGroupDTO) ([]schema.WeightedCriterion, []schema.WeightedGroup, error) {
	wc := make([]schema.WeightedCriterion, 0, len(criteria))
	for i, c := range criteria {
		w, err := schema.WeightFromPercent(*c.Weight)
		if err != nil {
			return nil, nil, fmt.Errorf("criterion #%d: %w", i+1, err)
		}
		wc = append(wc, schema.WeightedCriterion{Weight: w})
	}
	wg := make([]schema.WeightedGroup, 0, len(groups))
	for i, g := range groups {
		w, err := schema.WeightFromPercent(*g.Weight)
		if err != nil {
			return nil, nil, fmt.Errorf("group #%d: %w", i+1, err)
		}
		childC, childG, err := weightLevel(g.Criteria, g.Groups)
		if err != nil {
			return nil, nil, err
		}
		wg = append(wg, schema.WeightedGroup{Weight: w, Criteria: childC, Groups: childG})
	}
	return wc, wg, nil
}
