// Package parquet provides data structures and functions for exporting rubric
// score history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/rubric/schema"
	"github.com/parquet-go/parquet-go"
)

// Run is one scored run. It maps to the rubric_runs table.
type Run struct {
	RunID         string     `parquet:"run_id,snappy"`
	FormID        string     `parquet:"form_id,snappy,dict"`
	FormTitle     string     `parquet:"form_title,snappy,dict"`
	Policy        string     `parquet:"policy,snappy,dict"`
	Source        string     `parquet:"source,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`

	// Total is nil while the run has not been ended
	Total         *float64 `parquet:"total,optional,snappy"`
	CriteriaCount int32    `parquet:"criteria_count,snappy"`
	AnsweredCount int32    `parquet:"answered_count,snappy"`
	SkippedCount  int32    `parquet:"skipped_count,snappy"`
}

// CriterionScore is the state of one criterion within a run.
// It maps to the rubric_criterion_scores table.
type CriterionScore struct {
	RunID        string `parquet:"run_id,snappy,dict"`
	CriterionKey string `parquet:"criterion_key,snappy"`
	SourceID     string `parquet:"source_id,snappy,dict"`
	Title        string `parquet:"title,snappy,dict"`

	// Path is the breadcrumb of enclosing group titles, empty at the root
	Path       string    `parquet:"path,snappy,dict"`
	Skipped    bool      `parquet:"skipped,snappy"`
	Score      *float64  `parquet:"score,optional,snappy"`
	Comment    *string   `parquet:"comment,optional,snappy"`
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
}

// WriteRunsParquet writes runs to a Parquet file at outputPath.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteCriterionScoresParquet writes criterion scores to a Parquet file at outputPath.
func WriteCriterionScoresParquet(data []CriterionScore, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet infers the schema from T's struct tags and writes every row.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts stored run records to Parquet rows.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, r := range records {
		result[i] = Run{
			RunID:         r.RunID,
			FormID:        r.FormID,
			FormTitle:     r.FormTitle,
			Policy:        r.Policy,
			Source:        r.Source,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			Total:         r.Total,
			CriteriaCount: r.CriteriaCount,
			AnsweredCount: r.AnsweredCount,
			SkippedCount:  r.SkippedCount,
		}
	}
	return result
}

// ConvertCriterionScoreRecords converts stored criterion score records to Parquet rows.
func ConvertCriterionScoreRecords(records []schema.CriterionScoreRecord) []CriterionScore {
	result := make([]CriterionScore, len(records))
	for i, r := range records {
		result[i] = CriterionScore{
			RunID:        r.RunID,
			CriterionKey: r.CriterionKey,
			SourceID:     r.SourceID,
			Title:        r.Title,
			Path:         r.Path,
			Skipped:      r.Skipped,
			Score:        r.Score,
			Comment:      r.Comment,
			RecordedAt:   r.RecordedAt,
		}
	}
	return result
}
