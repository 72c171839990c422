package charts

import (
	"fmt"
	"strings"
)

// ChartSlot is the position of one dataset on the shared plot.
// Primary slots occupy [0, primaryCount); reference slots follow.
type ChartSlot struct {
	Index       int    `json:"index" msgpack:"index"`
	ChartID     string `json:"chartId" msgpack:"chartId"`
	SeriesID    string `json:"seriesId" msgpack:"seriesId"`
	ReferenceID string `json:"referenceId,omitempty" msgpack:"referenceId,omitempty"`
	AxisIndex   int    `json:"axis" msgpack:"axis"`
	ColorIndex  int    `json:"colorIndex" msgpack:"colorIndex"`
}

// IsReference reports whether the slot holds a reference series
func (s ChartSlot) IsReference() bool {
	return s.ReferenceID != ""
}

// SlotRequest asks for a primary slot
type SlotRequest struct {
	SeriesID string
	ChartID  string
}

// IndexAllocator hands out plot indices for one render pass
type IndexAllocator struct {
	primaryCount  int
	nextReference int
	primaries     map[string]ChartSlot
}

// NewIndexAllocator creates an allocator for one render pass
func NewIndexAllocator() *IndexAllocator {
	return &IndexAllocator{}
}

// Allocate assigns consecutive indices from 0 to the primary series in order.
// Each primary slot gets its own range axis and color keyed by its index.
func (a *IndexAllocator) Allocate(primaries []SlotRequest) (map[string]ChartSlot, error) {
	if a.primaries != nil {
		return nil, fmt.Errorf("primary slots already allocated")
	}

	slots := make(map[string]ChartSlot, len(primaries))
	for i, req := range primaries {
		if strings.TrimSpace(req.ChartID) == "" {
			return nil, &ConfigurationError{SeriesID: req.SeriesID, Index: i, Err: ErrEmptyChartID}
		}
		if _, dup := slots[req.SeriesID]; dup {
			return nil, &ConfigurationError{SeriesID: req.SeriesID, Index: i, Err: ErrDuplicateSeries}
		}
		slots[req.SeriesID] = ChartSlot{
			Index:      i,
			ChartID:    req.ChartID,
			SeriesID:   req.SeriesID,
			AxisIndex:  i,
			ColorIndex: i,
		}
	}

	a.primaries = slots
	a.primaryCount = len(primaries)
	a.nextReference = len(primaries)
	return copySlots(slots), nil
}

// AllocateReference appends a reference slot after all primary slots.
// The counter is shared by all parents of the pass. The reference keeps its
// parent's range axis and gets its own color.
func (a *IndexAllocator) AllocateReference(parent ChartSlot, referenceID, chartID string) (ChartSlot, error) {
	if a.primaries == nil {
		return ChartSlot{}, fmt.Errorf("reference %q allocated before primary slots", referenceID)
	}
	known, ok := a.primaries[parent.SeriesID]
	if !ok || parent.IsReference() || known.Index != parent.Index {
		return ChartSlot{}, fmt.Errorf("reference %q has unknown parent slot %d (%s)", referenceID, parent.Index, parent.SeriesID)
	}

	index := a.nextReference
	if strings.TrimSpace(chartID) == "" {
		return ChartSlot{}, &ConfigurationError{SeriesID: parent.SeriesID, ReferenceID: referenceID, Index: index, Err: ErrEmptyChartID}
	}

	a.nextReference++
	return ChartSlot{
		Index:       index,
		ChartID:     chartID,
		SeriesID:    parent.SeriesID,
		ReferenceID: referenceID,
		AxisIndex:   known.AxisIndex,
		ColorIndex:  index,
	}, nil
}

// PrimaryCount returns the number of primary slots
func (a *IndexAllocator) PrimaryCount() int {
	return a.primaryCount
}

// Count returns the number of slots handed out so far
func (a *IndexAllocator) Count() int {
	return a.nextReference
}

func copySlots(in map[string]ChartSlot) map[string]ChartSlot {
	out := make(map[string]ChartSlot, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
