package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/rubric/internal/contract"
	"github.com/huangsam/rubric/schema"
)

// PrintCheckResult writes the outcome of a minimum-total check.
func PrintCheckResult(check schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, check)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"source", "total", "min_total", "answered", "skipped", "pending"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, f := range check.FailedRuns {
					if err := cw.Write([]string{
						f.Source,
						fmtFloat(f.Total),
						fmtFloat(check.MinTotal),
						fmt.Sprintf(intFmt, f.Progress.Answered),
						fmt.Sprintf(intFmt, f.Progress.Skipped),
						fmt.Sprintf(intFmt, f.Progress.Pending),
					}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckText(w, check, cfg, fmtFloat, duration)
		}, "Wrote text")
	}
}

func writeCheckText(w io.Writer, check schema.CheckResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if check.Passed {
		if _, err := fmt.Fprintf(w, "✅ All %d run(s) scored at least %s\n", check.TotalRuns, fmtFloat(check.MinTotal)); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "❌ %d of %d run(s) scored below %s\n", len(check.FailedRuns), check.TotalRuns, fmtFloat(check.MinTotal)); err != nil {
			return err
		}
		sourceWidth := getMaxTitleWidth(cfg, 35)
		rows := make([][]string, 0, len(check.FailedRuns))
		for i, f := range check.FailedRuns {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				contract.TruncateText(f.Source, sourceWidth),
				fmtFloat(f.Total),
				strconv.Itoa(f.Progress.Pending),
			})
		}
		if err := writeTable(w, []string{"Rank", "Source", "Total", "Pending"}, rows); err != nil {
			return err
		}
	}

	if check.TotalRuns > 0 {
		if _, err := fmt.Fprintf(w, "Lowest total: %s, average: %s\n", fmtFloat(check.MinSeen), fmtFloat(check.AvgTotal)); err != nil {
			return err
		}
	}
	if check.Incomplete > 0 {
		if _, err := fmt.Fprintf(w, "⚠️  %d run(s) still have pending criteria\n", check.Incomplete); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Checked in %v\n", duration)
	return err
}
