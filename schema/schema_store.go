package schema

import "time"

// RunRecord represents a row from the rubric_runs table.
type RunRecord struct {
	RunID         string
	FormID        string
	FormTitle     string
	Policy        string
	Source        string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	Total         *float64
	CriteriaCount int32
	AnsweredCount int32
	SkippedCount  int32
}

// CriterionScoreRecord represents a row from the rubric_criterion_scores table.
type CriterionScoreRecord struct {
	RunID        string
	CriterionKey string
	SourceID     string
	Title        string
	Path         string
	Skipped      bool
	Score        *float64
	Comment      *string
	RecordedAt   time.Time
}
