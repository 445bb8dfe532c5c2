package tallystore

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/schema"
)

// MockTallyStore is a mock implementation of TallyStore for testing.
type MockTallyStore struct {
	mock.Mock
}

var _ contract.TallyStore = &MockTallyStore{} // Compile-time check

// ReplaceExternalTallies implements the TallyStore interface.
func (m *MockTallyStore) ReplaceExternalTallies(payload string) error {
	args := m.Called(payload)
	return args.Error(0)
}

// GetExternalTallies implements the TallyStore interface.
func (m *MockTallyStore) GetExternalTallies() (string, bool, error) {
	args := m.Called()
	return args.String(0), args.Bool(1), args.Error(2)
}

// ClearExternalTallies implements the TallyStore interface.
func (m *MockTallyStore) ClearExternalTallies() error {
	args := m.Called()
	return args.Error(0)
}

// BeginTabulation implements the TallyStore interface.
func (m *MockTallyStore) BeginTabulation(startedAt time.Time, electionHash string, configParams map[string]any) (int64, error) {
	args := m.Called(startedAt, electionHash, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndTabulation implements the TallyStore interface.
func (m *MockTallyStore) EndTabulation(runID int64, finishedAt time.Time, ballotsCounted int) error {
	args := m.Called(runID, finishedAt, ballotsCounted)
	return args.Error(0)
}

// ListTabulationRuns implements the TallyStore interface.
func (m *MockTallyStore) ListTabulationRuns() ([]schema.TabulationRun, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.TabulationRun)
	return runs, args.Error(1)
}

// GetStatus implements the TallyStore interface.
func (m *MockTallyStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the TallyStore interface.
func (m *MockTallyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
