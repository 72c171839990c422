package timeseries

import (
	"context"
	"fmt"
	"sync"

	"github.com/aristath/seriesplot/internal/domain"
)

// MemorySource keeps timeseries in memory. It backs the CLI, where data
// comes inline with the request.
type MemorySource struct {
	mu       sync.RWMutex
	metadata map[string]domain.TimeseriesMetadata
	values   map[string][]domain.ValuePoint
}

// NewMemorySource creates an empty in-memory source
func NewMemorySource() *MemorySource {
	return &MemorySource{
		metadata: make(map[string]domain.TimeseriesMetadata),
		values:   make(map[string][]domain.ValuePoint),
	}
}

func (m *MemorySource) UpsertMetadata(ctx context.Context, meta domain.TimeseriesMetadata) error {
	if meta.ID == "" {
		return fmt.Errorf("timeseries id must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[meta.ID] = meta
	return nil
}

func (m *MemorySource) InsertValues(ctx context.Context, seriesID string, values []domain.ValuePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[seriesID] = append(m.values[seriesID], values...)
	return nil
}

func (m *MemorySource) Metadata(ctx context.Context, id string) (domain.TimeseriesMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta, ok := m.metadata[id]
	if !ok {
		return domain.TimeseriesMetadata{}, fmt.Errorf("%w: %s", domain.ErrTimeseriesNotFound, id)
	}
	return meta, nil
}

func (m *MemorySource) Data(ctx context.Context, id string, span *domain.Timespan) (*domain.TimeseriesData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	meta, ok := m.metadata[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTimeseriesNotFound, id)
	}

	data := &domain.TimeseriesData{Values: m.within(id, span)}
	if len(meta.ReferenceValues) > 0 {
		refs := domain.NewReferenceValues()
		for _, ref := range meta.ReferenceValues {
			refs.Put(ref.ReferenceValueID, &domain.TimeseriesData{Values: m.within(ref.ReferenceValueID, span)})
		}
		data.Metadata.ReferenceValues = refs
	}
	return data, nil
}

func (m *MemorySource) within(id string, span *domain.Timespan) []domain.ValuePoint {
	out := []domain.ValuePoint{}
	for _, v := range m.values[id] {
		if span == nil || span.Contains(v.Timestamp) {
			out = append(out, v)
		}
	}
	return out
}
