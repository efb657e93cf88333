package iocache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/rubric/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *HistoryStoreImpl {
	t.Helper()
	store, err := NewHistoryStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*HistoryStoreImpl)
}

func sampleRun(id string, start time.Time) schema.RunRecord {
	return schema.RunRecord{
		RunID:         id,
		FormID:        "interview",
		FormTitle:     "Interview",
		Policy:        string(schema.WeightedPolicy),
		Source:        "answers/" + id + ".yaml",
		StartTime:     start,
		CriteriaCount: 3,
	}
}

func TestHistoryStore_NoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	assert.NoError(t, store.BeginRun(sampleRun("r1", time.Now())))
	assert.NoError(t, store.RecordCriterionScores("r1", []schema.CriterionScoreRecord{{CriterionKey: "k"}}))
	assert.NoError(t, store.EndRun("r1", time.Now(), 5, schema.Progress{}))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	assert.NoError(t, store.Close())
}

func TestHistoryStore_BeginRunRequiresID(t *testing.T) {
	store := newSQLiteStore(t)
	err := store.BeginRun(sampleRun("", time.Now()))
	assert.Error(t, err)
}

func TestHistoryStore_SQLiteRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	require.NoError(t, store.BeginRun(sampleRun("r1", start)))

	score := 8.0
	comment := "clear structure"
	records := []schema.CriterionScoreRecord{
		{CriterionKey: "k1", SourceID: "communication", Title: "Communication", Score: &score, Comment: &comment, RecordedAt: end},
		{CriterionKey: "k2", SourceID: "design", Title: "Design", Path: "Technical", Skipped: true, RecordedAt: end},
	}
	require.NoError(t, store.RecordCriterionScores("r1", records))
	require.NoError(t, store.EndRun("r1", end, 7.4, schema.Progress{Total: 3, Answered: 1, Skipped: 1, Pending: 1}))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, "r1", run.RunID)
	assert.Equal(t, "Interview", run.FormTitle)
	assert.True(t, run.StartTime.Equal(start))
	require.NotNil(t, run.EndTime)
	assert.True(t, run.EndTime.Equal(end))
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	require.NotNil(t, run.Total)
	assert.InDelta(t, 7.4, *run.Total, 1e-9)
	assert.Equal(t, int32(3), run.CriteriaCount)
	assert.Equal(t, int32(1), run.AnsweredCount)
	assert.Equal(t, int32(1), run.SkippedCount)

	scores, err := store.GetAllCriterionScores()
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "k1", scores[0].CriterionKey)
	require.NotNil(t, scores[0].Score)
	assert.Equal(t, 8.0, *scores[0].Score)
	require.NotNil(t, scores[0].Comment)
	assert.Equal(t, comment, *scores[0].Comment)
	assert.False(t, scores[0].Skipped)
	assert.Equal(t, "Technical", scores[1].Path)
	assert.True(t, scores[1].Skipped)
	assert.Nil(t, scores[1].Score)
	assert.Nil(t, scores[1].Comment)
}

func TestHistoryStore_UnendedRun(t *testing.T) {
	store := newSQLiteStore(t)
	require.NoError(t, store.BeginRun(sampleRun("r1", time.Now())))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].Total)
	assert.Nil(t, runs[0].RunDurationMs)
}

func TestHistoryStore_EndRunUnknown(t *testing.T) {
	store := newSQLiteStore(t)
	err := store.EndRun("missing", time.Now(), 1, schema.Progress{})
	assert.Error(t, err)
}

func TestHistoryStore_GetStatus(t *testing.T) {
	store := newSQLiteStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[runsTable])

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, store.BeginRun(sampleRun(id, base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, store.RecordCriterionScores("r3", []schema.CriterionScoreRecord{
		{CriterionKey: "k1", Title: "A", RecordedAt: base},
		{CriterionKey: "k2", Title: "B", RecordedAt: base},
	}))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, "r3", status.LastRunID)
	assert.True(t, status.LastRunTime.Equal(base.Add(2*time.Hour)))
	assert.True(t, status.OldestRunTime.Equal(base))
	assert.Equal(t, 2, status.TotalScoreRows)
	assert.Equal(t, int64(3), status.TableSizes[runsTable])
	assert.Equal(t, int64(2), status.TableSizes[criterionScoresTable])
}

func TestHistoryStore_RunsOrderedByStart(t *testing.T) {
	store := newSQLiteStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Sub-second offsets exercise the fixed-width timestamp format
	require.NoError(t, store.BeginRun(sampleRun("late", base.Add(900*time.Millisecond))))
	require.NoError(t, store.BeginRun(sampleRun("early", base.Add(5*time.Millisecond))))
	require.NoError(t, store.BeginRun(sampleRun("whole", base)))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.RunID
	}
	assert.Equal(t, []string{"whole", "early", "late"}, ids)
}

func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		expected string
	}{
		{schema.SQLiteBackend, `"rubric_runs"`},
		{schema.PostgreSQLBackend, `"rubric_runs"`},
		{schema.MySQLBackend, "`rubric_runs`"},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			assert.Equal(t, tt.expected, quoteTableName(runsTable, tt.backend))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholders(schema.SQLiteBackend, 1, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 4, 2))
	assert.Equal(t, "$1, $2, $3", placeholders(schema.PostgreSQLBackend, 1, 3))
	assert.Equal(t, "$6", placeholders(schema.PostgreSQLBackend, 6, 1))
}

func TestCreateQueries(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		t.Run(string(backend), func(t *testing.T) {
			runs := getCreateRunsQuery(backend)
			assert.Contains(t, runs, quoteTableName(runsTable, backend))
			assert.Contains(t, runs, "run_id")

			scores := getCreateCriterionScoresQuery(backend)
			assert.Contains(t, scores, quoteTableName(criterionScoresTable, backend))
			assert.Contains(t, scores, "PRIMARY KEY (run_id, criterion_key)")
		})
	}
}

func TestNewHistoryStoreErrors(t *testing.T) {
	_, err := NewHistoryStore("bogus", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backend")
}
