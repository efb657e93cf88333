package iocache

import (
	"time"

	"github.com/huangsam/rubric/internal/contract"
	"github.com/huangsam/rubric/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(run schema.RunRecord) error {
	args := m.Called(run)
	return args.Error(0)
}

// RecordCriterionScores implements the HistoryStore interface.
func (m *MockHistoryStore) RecordCriterionScores(runID string, records []schema.CriterionScoreRecord) error {
	args := m.Called(runID, records)
	return args.Error(0)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID string, endTime time.Time, total float64, progress schema.Progress) error {
	args := m.Called(runID, endTime, total, progress)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllCriterionScores implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllCriterionScores() ([]schema.CriterionScoreRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.CriterionScoreRecord)
	return records, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
