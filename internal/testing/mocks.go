package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/aristath/seriesplot/internal/domain"
)

// MockSource is an in-memory measurement source for tests
type MockSource struct {
	mu       sync.Mutex
	metadata map[string]domain.TimeseriesMetadata
	data     map[string]*domain.TimeseriesData
	err      error
	calls    int
}

// NewMockSource creates an empty mock source
func NewMockSource() *MockSource {
	return &MockSource{
		metadata: make(map[string]domain.TimeseriesMetadata),
		data:     make(map[string]*domain.TimeseriesData),
	}
}

// Add registers a series
func (m *MockSource) Add(meta domain.TimeseriesMetadata, data *domain.TimeseriesData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[meta.ID] = meta
	m.data[meta.ID] = data
}

// SetError makes every call fail with err
func (m *MockSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the number of Data calls
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockSource) Metadata(ctx context.Context, id string) (domain.TimeseriesMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.TimeseriesMetadata{}, m.err
	}
	meta, ok := m.metadata[id]
	if !ok {
		return domain.TimeseriesMetadata{}, fmt.Errorf("%w: %s", domain.ErrTimeseriesNotFound, id)
	}
	return meta, nil
}

func (m *MockSource) Data(ctx context.Context, id string, span *domain.Timespan) (*domain.TimeseriesData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTimeseriesNotFound, id)
	}
	return data, nil
}
