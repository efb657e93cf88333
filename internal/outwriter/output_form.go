package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/huangsam/rubric/internal/contract"
	"github.com/huangsam/rubric/schema"
)

// verifySummary is the report of a successful verification.
type verifySummary struct {
	FormID   string            `json:"form_id"`
	Title    string            `json:"title"`
	Policy   schema.PolicyKind `json:"policy"`
	Valid    bool              `json:"valid"`
	Criteria int               `json:"criteria"`
	Groups   int               `json:"groups"`
}

// PrintVerifyResult reports that form passed verification under the given policy.
func PrintVerifyResult(form *schema.Form, kind schema.PolicyKind, cfg *contract.Config) error {
	summary := verifySummary{
		FormID:   form.ID,
		Title:    form.Title,
		Policy:   kind,
		Valid:    true,
		Criteria: form.CriterionCount(),
		Groups:   groupCount(form.Groups),
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"form_id", "title", "policy", "valid", "criteria", "groups"}, func(cw *csv.Writer) error {
				return cw.Write([]string{
					summary.FormID, summary.Title, string(summary.Policy),
					strconv.FormatBool(summary.Valid), strconv.Itoa(summary.Criteria), strconv.Itoa(summary.Groups),
				})
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "✅ Rubric %q is valid for the %s policy (%d criteria in %d groups)\n",
				summary.Title, summary.Policy, summary.Criteria, summary.Groups)
			return err
		}, "Wrote text")
	}
}

func groupCount(groups []schema.Group) int {
	n := len(groups)
	for i := range groups {
		n += groupCount(groups[i].Groups)
	}
	return n
}

// weightLookup is implemented by runtime policies that carry bound weights.
type weightLookup interface {
	WeightOf(key uuid.UUID) (schema.Weight, bool)
}

// snapshotNode is one row of a printed snapshot.
type snapshotNode struct {
	Key      uuid.UUID       `json:"key"`
	Kind     schema.NodeKind `json:"kind"`
	SourceID string          `json:"source_id,omitempty"`
	Path     []string        `json:"path"`
	Title    string          `json:"title"`
	Order    int             `json:"order"`
	Weight   *float64        `json:"weight,omitempty"` // Percent, weighted policy only
	Options  int             `json:"options"`
}

type snapshotReport struct {
	Policy schema.PolicyKind `json:"policy"`
	Nodes  []snapshotNode    `json:"nodes"`
	*schema.RunFormSnapshot
}

func snapshotNodes(snap *schema.RunFormSnapshot) []snapshotNode {
	lookup, _ := snap.Policy.(weightLookup)
	weightOf := func(key uuid.UUID) *float64 {
		if lookup == nil {
			return nil
		}
		w, ok := lookup.WeightOf(key)
		if !ok {
			return nil
		}
		p := w.Percent()
		return &p
	}

	var nodes []snapshotNode
	snap.Walk(
		func(g *schema.RunFormGroup, path []string) {
			nodes = append(nodes, snapshotNode{
				Key: g.Key, Kind: schema.GroupNode, SourceID: g.SourceID, Path: path,
				Title: g.Title, Order: g.Order.Int(), Weight: weightOf(g.Key),
			})
		},
		func(c *schema.RunFormCriterion, path []string) {
			nodes = append(nodes, snapshotNode{
				Key: c.Key, Kind: schema.CriterionNode, SourceID: c.SourceID, Path: path,
				Title: c.Title, Order: c.Order.Int(), Weight: weightOf(c.Key), Options: len(c.Options),
			})
		},
	)
	return nodes
}

// PrintSnapshot writes the keyed tree of a snapshot together with its bound weights.
func PrintSnapshot(snap *schema.RunFormSnapshot, cfg *contract.Config) error {
	if snap == nil || snap.Policy == nil {
		return errors.New("snapshot has no bound policy")
	}
	fmtFloat, _ := createFormatters(cfg.Precision)
	nodes := snapshotNodes(snap)
	weightCell := func(n snapshotNode) string {
		if n.Weight == nil {
			return ""
		}
		return fmtFloat(*n.Weight)
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, snapshotReport{Policy: snap.Policy.Kind(), Nodes: nodes, RunFormSnapshot: snap})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"key", "kind", "source_id", "path", "title", "order", "weight", "options"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, n := range nodes {
					if err := cw.Write([]string{
						n.Key.String(), string(n.Kind), n.SourceID, contract.JoinPath(n.Path), n.Title,
						strconv.Itoa(n.Order), weightCell(n), strconv.Itoa(n.Options),
					}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if _, err := fmt.Fprintf(w, "📸 Snapshot of %q taken %s (%s policy)\n",
				snap.Title, snap.TakenAt.Format("2006-01-02 15:04:05"), snap.Policy.Kind()); err != nil {
				return err
			}
			titleWidth := getMaxTitleWidth(cfg, 65)
			rows := make([][]string, 0, len(nodes))
			for _, n := range nodes {
				rows = append(rows, []string{
					contract.TruncateText(indentTitle(n.Title, len(n.Path)), titleWidth),
					string(n.Kind),
					strconv.Itoa(n.Order),
					weightCell(n),
					n.Key.String(),
				})
			}
			return writeTable(w, []string{"Node", "Kind", "Order", "Weight", "Key"}, rows)
		}, "Wrote table")
	}
}

// weightRow is one node of a weight scheme with its share of the total.
type weightRow struct {
	Kind      schema.NodeKind `json:"kind"`
	ID        string          `json:"id,omitempty"`
	Path      []string        `json:"path"`
	Title     string          `json:"title"`
	Weight    float64         `json:"weight"`    // Declared percent among siblings
	Effective float64         `json:"effective"` // Fraction of the run total when everything is answered
}

// weightRows pairs form and scheme by position, in the same order as a snapshot walk.
func weightRows(form *schema.Form, scheme *schema.WeightScheme) ([]weightRow, error) {
	if scheme == nil {
		return nil, errors.New("rubric has no weight scheme")
	}
	var rows []weightRow
	var walk func(criteria []schema.Criterion, groups []schema.Group, wc []schema.WeightedCriterion, wg []schema.WeightedGroup, path []string, share float64) error
	walk = func(criteria []schema.Criterion, groups []schema.Group, wc []schema.WeightedCriterion, wg []schema.WeightedGroup, path []string, share float64) error {
		if len(criteria) != len(wc) || len(groups) != len(wg) {
			return fmt.Errorf("%w: weights do not match the rubric under %q", schema.ErrStructuralMismatch, contract.JoinPath(path))
		}
		for i, c := range criteria {
			rows = append(rows, weightRow{
				Kind: schema.CriterionNode, ID: c.ID, Path: path, Title: c.Title,
				Weight: wc[i].Weight.Percent(), Effective: share * wc[i].Weight.Percent() / 100,
			})
		}
		for i, g := range groups {
			effective := share * wg[i].Weight.Percent() / 100
			rows = append(rows, weightRow{
				Kind: schema.GroupNode, ID: g.ID, Path: path, Title: g.Title,
				Weight: wg[i].Weight.Percent(), Effective: effective,
			})
			inner := append(append([]string(nil), path...), g.Title)
			if err := walk(g.Criteria, g.Groups, wg[i].Criteria, wg[i].Groups, inner, effective); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(form.Criteria, form.Groups, scheme.Criteria, scheme.Groups, nil, 1); err != nil {
		return nil, err
	}
	return rows, nil
}

// PrintWeights writes the declared weight of every node and its effective share of the total.
func PrintWeights(form *schema.Form, scheme *schema.WeightScheme, cfg *contract.Config) error {
	rows, err := weightRows(form, scheme)
	if err != nil {
		return err
	}
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"kind", "id", "path", "title", "weight", "effective"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, r := range rows {
					if err := cw.Write([]string{
						string(r.Kind), r.ID, contract.JoinPath(r.Path), r.Title,
						fmtFloat(r.Weight), strconv.FormatFloat(r.Effective, 'f', 4, 64),
					}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if _, err := fmt.Fprintf(w, "⚖️  Weights of %q\n", form.Title); err != nil {
				return err
			}
			titleWidth := getMaxTitleWidth(cfg, 40)
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				table = append(table, []string{
					contract.TruncateText(indentTitle(r.Title, len(r.Path)), titleWidth),
					string(r.Kind),
					fmtFloat(r.Weight) + "%",
					formatPercent(r.Effective, cfg.Precision),
				})
			}
			return writeTable(w, []string{"Node", "Kind", "Weight", "Effective"}, table)
		}, "Wrote table")
	}
}
