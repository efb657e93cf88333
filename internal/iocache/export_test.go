package iocache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/rubric/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteHistoryExport_RequiresOutput(t *testing.T) {
	err := ExecuteHistoryExport("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--output-file")
}

func TestExecuteHistoryExport_NoData(t *testing.T) {
	store := &MockHistoryStore{}
	store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true}, nil)
	withManagerStore(t, store)

	err := ExecuteHistoryExport(filepath.Join(t.TempDir(), "out"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no score history")
	store.AssertNotCalled(t, "GetAllRuns")
}

func TestExecuteHistoryExport_WritesParquet(t *testing.T) {
	store := newSQLiteStore(t)
	now := time.Now()
	require.NoError(t, store.BeginRun(sampleRun("r1", now)))
	score := 6.0
	require.NoError(t, store.RecordCriterionScores("r1", []schema.CriterionScoreRecord{
		{CriterionKey: "k1", SourceID: "communication", Title: "Communication", Score: &score, RecordedAt: now},
	}))
	require.NoError(t, store.EndRun("r1", now.Add(time.Second), 6, schema.Progress{Total: 3, Answered: 1, Pending: 2}))
	withManagerStore(t, store)

	out := filepath.Join(t.TempDir(), "history")
	require.NoError(t, ExecuteHistoryExport(out))

	for _, suffix := range []string{".runs.parquet", ".criterion_scores.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestExecuteHistoryExport_StoreError(t *testing.T) {
	store := &MockHistoryStore{}
	store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true, TotalRuns: 1}, nil)
	store.On("GetAllRuns").Return(nil, assert.AnError)
	withManagerStore(t, store)

	err := ExecuteHistoryExport(filepath.Join(t.TempDir(), "out"))
	assert.ErrorIs(t, err, assert.AnError)
	store.AssertCalled(t, "GetAllRuns")
	store.AssertNotCalled(t, "GetAllCriterionScores")
}
