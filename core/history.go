package core

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/huangsam/rubric/internal/contract"
	"github.com/huangsam/rubric/schema"
)

// recordRuns writes scored runs to the history store. History is best effort:
// failures are logged and never fail the scoring command.
func recordRuns(mgr contract.HistoryManager, results []schema.RunResult) {
	if mgr == nil {
		return
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return
	}
	for _, r := range results {
		if err := recordRun(store, r); err != nil {
			contract.LogWarn(fmt.Sprintf("Cannot record run %s", r.Source), err)
		}
	}
}

func recordRun(store contract.HistoryStore, r schema.RunResult) error {
	runID := r.RunID.String()
	start := r.ScoredAt
	if r.Snapshot != nil && !r.Snapshot.TakenAt.IsZero() {
		start = r.Snapshot.TakenAt
	}
	if err := store.BeginRun(schema.RunRecord{
		RunID:         runID,
		FormID:        r.FormID,
		FormTitle:     r.FormTitle,
		Policy:        string(r.Policy),
		Source:        r.Source,
		StartTime:     start,
		CriteriaCount: int32(r.Progress.Total),
	}); err != nil {
		return err
	}
	if err := store.RecordCriterionScores(runID, criterionRecords(r)); err != nil {
		return err
	}
	return store.EndRun(runID, r.ScoredAt, r.Total, r.Progress)
}

// criterionRecords flattens the scores of a run into history rows, one per
// scored or skipped criterion, in tree order.
func criterionRecords(r schema.RunResult) []schema.CriterionScoreRecord {
	byKey := make(map[uuid.UUID]schema.RunCriterionScore, len(r.Scores))
	for _, s := range r.Scores {
		byKey[s.CriterionKey] = s
	}
	if r.Snapshot == nil {
		return nil
	}

	var records []schema.CriterionScoreRecord
	r.Snapshot.Walk(nil, func(c *schema.RunFormCriterion, path []string) {
		s, ok := byKey[c.Key]
		if !ok {
			return
		}
		rec := schema.CriterionScoreRecord{
			RunID:        r.RunID.String(),
			CriterionKey: c.Key.String(),
			SourceID:     c.SourceID,
			Title:        c.Title,
			Path:         contract.JoinPath(path),
			Skipped:      s.Skipped,
			RecordedAt:   r.ScoredAt,
		}
		if s.Assessment != nil {
			score := s.Assessment.Score
			rec.Score = &score
			if s.Assessment.Comment != "" {
				comment := s.Assessment.Comment
				rec.Comment = &comment
			}
		}
		records = append(records, rec)
	})
	return records
}
