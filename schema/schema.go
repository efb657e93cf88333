// Package schema has models and constants for all parts of rubric.
package schema

import (
	"time"

	"github.com/google/uuid"
)

// RunResult is the outcome of scoring one answer set against a snapshot.
type RunResult struct {
	RunID     uuid.UUID           `json:"run_id"`
	FormID    string              `json:"form_id"`
	FormTitle string              `json:"form_title"`
	Source    string              `json:"source"` // Where the answers came from, usually a file path
	Policy    PolicyKind          `json:"policy"`
	Total     float64             `json:"total"`
	Progress  Progress            `json:"progress"`
	Nodes     []NodeResult        `json:"nodes,omitempty"` // Only filled when an explanation is requested
	ScoredAt  time.Time           `json:"scored_at"`
	Snapshot  *RunFormSnapshot    `json:"-"`
	Scores    []RunCriterionScore `json:"-"`
}
