// Package formfile loads rubrics, weight schemes and answer sets from YAML files.
package formfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/rubric/schema"
	"gopkg.in/yaml.v3"
)

// validate checks struct tags on every decoded document.
var validate = validator.New()

// Document is a rubric file after decoding.
type Document struct {
	Form    *schema.Form
	Policy  schema.PolicyKind
	Weights *schema.WeightScheme // Inline weights, nil when the file declares none
}

type optionDTO struct {
	Score      *float64 `yaml:"score" validate:"required"`
	Caption    string   `yaml:"caption"`
	Annotation string   `yaml:"annotation"`
}

type criterionDTO struct {
	ID          string      `yaml:"id" validate:"required"`
	Title       string      `yaml:"title" validate:"required"`
	Description string      `yaml:"description"`
	Order       *int        `yaml:"order" validate:"omitempty,gte=0"`
	Weight      *float64    `yaml:"weight" validate:"omitempty,gte=0,lte=100"`
	Options     []optionDTO `yaml:"options" validate:"dive"`
}

type groupDTO struct {
	ID       string         `yaml:"id"`
	Title    string         `yaml:"title" validate:"required"`
	Order    *int           `yaml:"order" validate:"omitempty,gte=0"`
	Weight   *float64       `yaml:"weight" validate:"omitempty,gte=0,lte=100"`
	Criteria []criterionDTO `yaml:"criteria" validate:"dive"`
	Groups   []groupDTO     `yaml:"groups" validate:"dive"`
}

type formDTO struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title" validate:"required"`
	Description string         `yaml:"description"`
	Policy      string         `yaml:"policy" validate:"omitempty,oneof=mean weighted"`
	Criteria    []criterionDTO `yaml:"criteria" validate:"dive"`
	Groups      []groupDTO     `yaml:"groups" validate:"dive"`
}

// LoadForm reads and decodes a rubric file.
func LoadForm(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rubric: %w", err)
	}
	doc, err := ParseForm(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ParseForm decodes a rubric document. Weights are only required when the
// policy is weighted, and then every node must carry one.
func ParseForm(data []byte) (*Document, error) {
	var dto formDTO
	if err := decodeStrict(data, &dto); err != nil {
		return nil, err
	}
	if err := validate.Struct(&dto); err != nil {
		return nil, fmt.Errorf("invalid rubric: %w", err)
	}

	ids := make(map[string]string)
	form := &schema.Form{ID: dto.ID, Title: dto.Title, Description: dto.Description}
	var err error
	if form.Criteria, err = buildCriteria(dto.Criteria, ids); err != nil {
		return nil, err
	}
	if form.Groups, err = buildGroups(dto.Groups, ids); err != nil {
		return nil, err
	}

	doc := &Document{Form: form, Policy: schema.MeanPolicy}
	if dto.Policy != "" {
		doc.Policy = schema.PolicyKind(dto.Policy)
	}

	present, missing := countWeights(dto.Criteria, dto.Groups)
	switch {
	case present == 0:
		// No inline scheme; a weighted rubric must get one from a weights file.
	case missing > 0:
		return nil, fmt.Errorf("invalid rubric: %d nodes declare a weight but %d do not", present, missing)
	default:
		scheme, err := inlineScheme(dto.Criteria, dto.Groups)
		if err != nil {
			return nil, err
		}
		doc.Weights = scheme
	}
	return doc, nil
}

func buildCriteria(dtos []criterionDTO, ids map[string]string) ([]schema.Criterion, error) {
	out := make([]schema.Criterion, 0, len(dtos))
	for i, d := range dtos {
		if err := claimID(ids, d.ID, d.Title); err != nil {
			return nil, err
		}
		order, err := orderOf(d.Order, i)
		if err != nil {
			return nil, err
		}
		c := schema.Criterion{ID: d.ID, Title: d.Title, Description: d.Description, Order: order}
		for _, o := range d.Options {
			c.Options = append(c.Options, schema.ScoreOption{Score: *o.Score, Caption: o.Caption, Annotation: o.Annotation})
		}
		out = append(out, c)
	}
	return out, nil
}

func buildGroups(dtos []groupDTO, ids map[string]string) ([]schema.Group, error) {
	out := make([]schema.Group, 0, len(dtos))
	for i, d := range dtos {
		if err := claimID(ids, d.ID, d.Title); err != nil {
			return nil, err
		}
		order, err := orderOf(d.Order, i)
		if err != nil {
			return nil, err
		}
		g := schema.Group{ID: d.ID, Title: d.Title, Order: order}
		if g.Criteria, err = buildCriteria(d.Criteria, ids); err != nil {
			return nil, err
		}
		if g.Groups, err = buildGroups(d.Groups, ids); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// claimID records a design-time ID. Criteria always carry one, groups may omit it.
// IDs must be unique across the rubric.
func claimID(ids map[string]string, id, title string) error {
	if id == "" {
		return nil
	}
	if prev, ok := ids[id]; ok {
		return fmt.Errorf("invalid rubric: id %q is used by both %q and %q", id, prev, title)
	}
	ids[id] = title
	return nil
}

func orderOf(explicit *int, position int) (schema.OrderIndex, error) {
	if explicit != nil {
		return schema.NewOrderIndex(*explicit)
	}
	return schema.NewOrderIndex(position)
}

func countWeights(criteria []criterionDTO, groups []groupDTO) (present, missing int) {
	for _, c := range criteria {
		if c.Weight != nil {
			present++
		} else {
			missing++
		}
	}
	for _, g := range groups {
		if g.Weight != nil {
			present++
		} else {
			missing++
		}
		p, m := countWeights(g.Criteria, g.Groups)
		present += p
		missing += m
	}
	return present, missing
}

func inlineScheme(criteria []criterionDTO, groups []groupDTO) (*schema.WeightScheme, error) {
	wc, wg, err := inlineLevel(criteria, groups)
	if err != nil {
		return nil, err
	}
	return &schema.WeightScheme{Criteria: wc, Groups: wg}, nil
}

func inlineLevel(criteria []criterionDTO, groups []groupDTO) ([]schema.WeightedCriterion, []schema.WeightedGroup, error) {
	wc := make([]schema.WeightedCriterion, 0, len(criteria))
	for _, c := range criteria {
		w, err := schema.WeightFromPercent(*c.Weight)
		if err != nil {
			return nil, nil, fmt.Errorf("criterion %q: %w", c.Title, err)
		}
		wc = append(wc, schema.WeightedCriterion{Weight: w})
	}
	wg := make([]schema.WeightedGroup, 0, len(groups))
	for _, g := range groups {
		w, err := schema.WeightFromPercent(*g.Weight)
		if err != nil {
			return nil, nil, fmt.Errorf("group %q: %w", g.Title, err)
		}
		childC, childG, err := inlineLevel(g.Criteria, g.Groups)
		if err != nil {
			return nil, nil, err
		}
		wg = append(wg, schema.WeightedGroup{Weight: w, Criteria: childC, Groups: childG})
	}
	return wc, wg, nil
}

// decodeStrict decodes a single YAML document and rejects unknown keys.
func decodeStrict(data []byte, out any) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return errors.New("document is empty")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("document is empty")
		}
		return fmt.Errorf("decoding yaml: %w", err)
	}
	return nil
}
