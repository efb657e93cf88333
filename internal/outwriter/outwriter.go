// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/rubric/internal/contract"
	"github.com/huangsam/rubric/schema"
)

// PrintRunResults writes scored runs in the configured output format.
// With cfg.Explain, every run is followed by its node breakdown; in CSV
// mode the breakdown replaces the run rows.
func PrintRunResults(results []schema.RunResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.EnrichRuns(results))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if cfg.Explain {
				return writeNodeCSV(w, results, fmtFloat)
			}
			return writeRunCSV(w, results, fmtFloat, intFmt)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunTable(w, results, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

func labelFor(total float64, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(total)
	}
	return schema.GetPlainLabel(total)
}

func writeRunTable(w io.Writer, results []schema.RunResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	sourceWidth := getMaxTitleWidth(cfg, 55)
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(r.Source, sourceWidth),
			fmtFloat(r.Total),
			labelFor(r.Total, cfg),
			fmt.Sprintf("%d/%d", r.Progress.Answered, r.Progress.Total),
			strconv.Itoa(r.Progress.Skipped),
			strconv.Itoa(r.Progress.Pending),
		})
	}
	if err := writeTable(w, []string{"Rank", "Source", "Total", "Label", "Answered", "Skipped", "Pending"}, rows); err != nil {
		return err
	}

	if cfg.Explain {
		for _, r := range results {
			if _, err := fmt.Fprintf(w, "\nBreakdown for %s (%s policy)\n", r.Source, r.Policy); err != nil {
				return err
			}
			if err := writeNodeTable(w, r.Nodes, cfg, fmtFloat); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintf(w, "Scored %d run(s) in %v with %d workers. History backend: %s\n", len(results), duration, cfg.Workers, cfg.HistoryBackend); err != nil {
		return err
	}
	return nil
}

func writeNodeTable(w io.Writer, nodes []schema.NodeResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	titleWidth := getMaxTitleWidth(cfg, 45)
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		value := "-"
		if n.Available {
			value = fmtFloat(n.Value)
		}
		rows = append(rows, []string{
			contract.TruncateText(indentTitle(n.Title, len(n.Path)), titleWidth),
			string(n.Kind),
			fmtFloat(n.Weight) + "%",
			value,
			formatPercent(n.Share, cfg.Precision),
		})
	}
	return writeTable(w, []string{"Node", "Kind", "Weight", "Value", "Share"}, rows)
}

func indentTitle(title string, depth int) string {
	return strings.Repeat("  ", depth) + title
}

func writeRunCSV(w io.Writer, results []schema.RunResult, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"rank", "source", "form_id", "policy", "total", "label", "answered", "skipped", "pending", "criteria", "run_id"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range results {
			rec := []string{
				strconv.Itoa(i + 1),
				r.Source,
				r.FormID,
				string(r.Policy),
				fmtFloat(r.Total),
				schema.GetPlainLabel(r.Total),
				fmt.Sprintf(intFmt, r.Progress.Answered),
				fmt.Sprintf(intFmt, r.Progress.Skipped),
				fmt.Sprintf(intFmt, r.Progress.Pending),
				fmt.Sprintf(intFmt, r.Progress.Total),
				r.RunID.String(),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeNodeCSV(w io.Writer, results []schema.RunResult, fmtFloat func(float64) string) error {
	header := []string{"source", "run_id", "path", "title", "kind", "available", "value", "weight", "share"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			for _, n := range r.Nodes {
				rec := []string{
					r.Source,
					r.RunID.String(),
					contract.JoinPath(n.Path),
					n.Title,
					string(n.Kind),
					strconv.FormatBool(n.Available),
					fmtFloat(n.Value),
					fmtFloat(n.Weight),
					strconv.FormatFloat(n.Share, 'f', 4, 64),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
