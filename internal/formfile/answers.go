package formfile

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/huangsam/rubric/internal/contract"
	"github.com/huangsam/rubric/schema"
)

// Answer is one evaluator entry, addressed by the criterion's design-time ID.
type Answer struct {
	CriterionID string
	Score       *float64
	Comment     string
	Skipped     bool
}

// Answers is an answer set for one run.
type Answers struct {
	Source  string // File the answers came from
	Entries []Answer
}

type answerDTO struct {
	Criterion string   `yaml:"criterion" validate:"required"`
	Score     *float64 `yaml:"score"`
	Comment   string   `yaml:"comment"`
	Skipped   bool     `yaml:"skipped"`
}

type answersDTO struct {
	Answers []answerDTO `yaml:"answers" validate:"dive"`
}

// LoadAnswers reads an answer file.
func LoadAnswers(path string) (*Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading answers: %w", err)
	}
	answers, err := ParseAnswers(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	answers.Source = path
	return answers, nil
}

// ParseAnswers decodes an answer document. An entry may be skipped, scored,
// or neither (not yet answered), but not both skipped and scored. Comments
// belong to a score.
func ParseAnswers(data []byte) (*Answers, error) {
	var dto answersDTO
	if err := decodeStrict(data, &dto); err != nil {
		return nil, err
	}
	if err := validate.Struct(&dto); err != nil {
		return nil, fmt.Errorf("invalid answers: %w", err)
	}
	out := &Answers{Entries: make([]Answer, 0, len(dto.Answers))}
	for _, a := range dto.Answers {
		entry := Answer{CriterionID: a.Criterion, Score: a.Score, Comment: a.Comment, Skipped: a.Skipped}
		if err := entry.check(); err != nil {
			return nil, fmt.Errorf("invalid answers: %w", err)
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

func (e Answer) check() error {
	if e.Skipped && e.Score != nil {
		return fmt.Errorf("criterion %q is both skipped and scored", e.CriterionID)
	}
	if e.Comment != "" && e.Score == nil {
		return fmt.Errorf("criterion %q has a comment but no score", e.CriterionID)
	}
	return nil
}

// Resolve maps the answers onto a snapshot's criterion keys.
// Unknown and repeated criteria are errors, and so is a score that matches
// none of the declared options of its criterion. Every snapshot criterion
// must carry a design-time ID, otherwise it could never be answered.
func (a *Answers) Resolve(snap *schema.RunFormSnapshot) ([]schema.RunCriterionScore, error) {
	var unaddressable []string
	snap.Walk(nil, func(c *schema.RunFormCriterion, path []string) {
		if c.SourceID == "" {
			unaddressable = append(unaddressable, contract.JoinPath(append(slices.Clone(path), c.Title)))
		}
	})
	if len(unaddressable) > 0 {
		return nil, fmt.Errorf("criteria without an id cannot be answered: %s", strings.Join(unaddressable, ", "))
	}

	bySource := snap.CriterionBySource()
	seen := make(map[string]struct{}, len(a.Entries))
	scores := make([]schema.RunCriterionScore, 0, len(a.Entries))

	for _, e := range a.Entries {
		c, ok := bySource[e.CriterionID]
		if !ok {
			return nil, fmt.Errorf("unknown criterion %q", e.CriterionID)
		}
		if _, dup := seen[e.CriterionID]; dup {
			return nil, fmt.Errorf("criterion %q is answered more than once", e.CriterionID)
		}
		seen[e.CriterionID] = struct{}{}
		if err := e.check(); err != nil {
			return nil, err
		}

		score := schema.RunCriterionScore{CriterionKey: c.Key, Skipped: e.Skipped}
		if e.Score != nil {
			if !criterionAccepts(c, *e.Score) {
				return nil, fmt.Errorf("criterion %q has no option with score %v", e.CriterionID, *e.Score)
			}
			score.Assessment = &schema.Assessment{Score: *e.Score, Comment: e.Comment}
		}
		scores = append(scores, score)
	}
	return scores, nil
}

func criterionAccepts(c *schema.RunFormCriterion, score float64) bool {
	return schema.Criterion{Options: c.Options}.HasOption(score)
}
