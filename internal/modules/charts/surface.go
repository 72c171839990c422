package charts

import (
	"slices"
	"sync"
)

// Surface is an in-memory Plot. Registration calls may come from several
// goroutines; the index decides placement, not call order.
type Surface struct {
	mu        sync.RWMutex
	datasets  map[int]*Dataset
	renderers map[int]SeriesRenderer
	axes      map[int]*RangeAxis
	mapping   map[int]int
}

// NewSurface creates an empty plot surface
func NewSurface() *Surface {
	return &Surface{
		datasets:  make(map[int]*Dataset),
		renderers: make(map[int]SeriesRenderer),
		axes:      make(map[int]*RangeAxis),
		mapping:   make(map[int]int),
	}
}

func (s *Surface) SetDataset(index int, dataset *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[index] = dataset
}

func (s *Surface) SetRenderer(index int, renderer SeriesRenderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderers[index] = renderer
}

func (s *Surface) SetRangeAxis(index int, axis *RangeAxis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.axes[index] = axis
}

func (s *Surface) MapDatasetToRangeAxis(datasetIndex, axisIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapping[datasetIndex] = axisIndex
}

// DatasetCount returns the number of registered datasets
func (s *Surface) DatasetCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}

// DatasetIndices returns registered dataset indices in ascending order
func (s *Surface) DatasetIndices() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.datasets)
}

// AxisIndices returns registered range axis indices in ascending order
func (s *Surface) AxisIndices() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.axes)
}

// Dataset returns the dataset at index
func (s *Surface) Dataset(index int) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[index]
	return ds, ok
}

// Renderer returns the renderer at index
func (s *Surface) Renderer(index int) (SeriesRenderer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.renderers[index]
	return r, ok
}

// RangeAxis returns the range axis at index
func (s *Surface) RangeAxis(index int) (*RangeAxis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.axes[index]
	return a, ok
}

// AxisForDataset returns the axis a dataset is drawn against.
// Unmapped datasets use axis 0.
func (s *Surface) AxisForDataset(datasetIndex int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if axis, ok := s.mapping[datasetIndex]; ok {
		return axis
	}
	return 0
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
