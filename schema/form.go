package schema

// ScoreOption is one selectable answer of a criterion.
type ScoreOption struct {
	Score      float64 `json:"score"`                // Numeric value contributed when selected
	Caption    string  `json:"caption,omitempty"`    // Short label shown to the evaluator
	Annotation string  `json:"annotation,omitempty"` // Optional longer guidance
}

// Criterion is a design-time leaf of a rubric.
type Criterion struct {
	ID          string // Design-time identifier assigned by the authoring side (may be empty)
	Title       string
	Description string
	Order       OrderIndex
	Options     []ScoreOption
}

// Group is a design-time container of criteria and nested groups.
type Group struct {
	ID       string
	Title    string
	Order    OrderIndex
	Criteria []Criterion
	Groups   []Group
}

// Form is the root of a rubric. The root holds top-level criteria and groups
// but carries no title of its own in the tree.
type Form struct {
	ID          string
	Title       string
	Description string
	Criteria    []Criterion
	Groups      []Group
}

// HasOption reports whether score matches one of the declared options.
// A criterion without options accepts any score.
func (c Criterion) HasOption(score float64) bool {
	if len(c.Options) == 0 {
		return true
	}
	for _, o := range c.Options {
		if o.Score == score {
			return true
		}
	}
	return false
}

// CriterionCount returns the number of criteria in the whole form.
func (f *Form) CriterionCount() int {
	n := len(f.Criteria)
	for i := range f.Groups {
		n += f.Groups[i].criterionCount()
	}
	return n
}

func (g *Group) criterionCount() int {
	n := len(g.Criteria)
	for i := range g.Groups {
		n += g.Groups[i].criterionCount()
	}
	return n
}

// WeightedCriterion carries the weight of the criterion at the same position.
type WeightedCriterion struct {
	Weight Weight
}

// WeightedGroup mirrors a Group: its own weight plus the weights of its children.
type WeightedGroup struct {
	Weight   Weight
	Criteria []WeightedCriterion
	Groups   []WeightedGroup
}

// WeightScheme is the root of a weight tree. Like the form root, it has no weight itself.
type WeightScheme struct {
	Criteria []WeightedCriterion
	Groups   []WeightedGroup
}
