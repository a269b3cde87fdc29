package contract

import (
	"context"

	"github.com/huangsam/repopulse/schema"
	"github.com/stretchr/testify/mock"
)

// MockRecordSource is a mock implementation of RecordSource for testing.
type MockRecordSource struct {
	mock.Mock
}

var _ RecordSource = &MockRecordSource{} // Compile-time check

// Fingerprint implements the RecordSource interface.
func (m *MockRecordSource) Fingerprint(ctx context.Context) (string, error) {
	ret := m.Called(ctx)
	return ret.String(0), ret.Error(1)
}

// Load implements the RecordSource interface.
func (m *MockRecordSource) Load(ctx context.Context) (*schema.RecordSet, error) {
	ret := m.Called(ctx)
	set, _ := ret.Get(0).(*schema.RecordSet)
	return set, ret.Error(1)
}
