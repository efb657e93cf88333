// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/rubric/schema"
)

// HistoryManager defines the interface for reaching the score history store.
// This allows the persistence layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for recording scored runs.
// Snapshots are never stored; only run totals and per-criterion scores.
type HistoryStore interface {
	// BeginRun records the start of a scored run.
	BeginRun(run schema.RunRecord) error

	// RecordCriterionScores stores the criterion scores of a run.
	RecordCriterionScores(runID string, scores []schema.CriterionScoreRecord) error

	// EndRun stores the total and progress of a run and marks it complete.
	EndRun(runID string, endTime time.Time, total float64, progress schema.Progress) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run ordered by start time
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllCriterionScores returns every recorded criterion score
	GetAllCriterionScores() ([]schema.CriterionScoreRecord, error)

	// Close closes the underlying connection
	Close() error
}
