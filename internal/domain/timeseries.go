package domain

import (
	"encoding/json"
	"fmt"
	"iter"
	"time"
)

// ValuePoint is one timestamped measurement
type ValuePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Feature is the observed feature (station, sensor location) a series belongs to
type Feature struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Phenomenon is the observed property (temperature, discharge, ...)
type Phenomenon struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ReferenceValueOutput describes a reference series attached to a timeseries
type ReferenceValueOutput struct {
	ReferenceValueID string `json:"referenceValueId"`
	Label            string `json:"label"`
}

// TimeseriesMetadata describes a primary timeseries
type TimeseriesMetadata struct {
	ID              string                 `json:"id"`
	Feature         Feature                `json:"feature"`
	Phenomenon      Phenomenon             `json:"phenomenon"`
	UOM             string                 `json:"uom,omitempty"`
	FirstValue      *time.Time             `json:"firstValue,omitempty"`
	LastValue       *time.Time             `json:"lastValue,omitempty"`
	ReferenceValues []ReferenceValueOutput `json:"referenceValues,omitempty"`
}

// ReferenceValue returns the reference output registered under id
func (m TimeseriesMetadata) ReferenceValue(id string) (ReferenceValueOutput, bool) {
	for _, ref := range m.ReferenceValues {
		if ref.ReferenceValueID == id {
			return ref, true
		}
	}
	return ReferenceValueOutput{}, false
}

// Span returns the metadata time span, if both ends are known
func (m TimeseriesMetadata) Span() (Timespan, bool) {
	if m.FirstValue == nil || m.LastValue == nil {
		return Timespan{}, false
	}
	return Timespan{Start: *m.FirstValue, End: *m.LastValue}, true
}

// TimeseriesData holds the values of one series plus its reference series
type TimeseriesData struct {
	Values   []ValuePoint `json:"values"`
	Metadata DataMetadata `json:"metadata"`
}

// DataMetadata carries data attached to a value collection
type DataMetadata struct {
	ReferenceValues *ReferenceValues `json:"referenceValues,omitempty"`
}

// HasReferenceValues reports whether any reference series is attached
func (d *TimeseriesData) HasReferenceValues() bool {
	return d != nil && d.Metadata.ReferenceValues.Len() > 0
}

// HasValues reports whether the collection contains at least one value
func (d *TimeseriesData) HasValues() bool {
	return d != nil && len(d.Values) > 0
}

// ReferenceValues is an insertion-ordered map from reference id to data.
// Iteration order decides reference slot indices, so it must stay stable.
type ReferenceValues struct {
	keys   []string
	values map[string]*TimeseriesData
}

// NewReferenceValues creates an empty ordered reference map
func NewReferenceValues() *ReferenceValues {
	return &ReferenceValues{values: make(map[string]*TimeseriesData)}
}

// Put adds or replaces a reference series. Replacing keeps the original position.
func (r *ReferenceValues) Put(id string, data *TimeseriesData) {
	if r.values == nil {
		r.values = make(map[string]*TimeseriesData)
	}
	if _, ok := r.values[id]; !ok {
		r.keys = append(r.keys, id)
	}
	r.values[id] = data
}

// Get returns the reference series stored under id
func (r *ReferenceValues) Get(id string) (*TimeseriesData, bool) {
	if r == nil {
		return nil, false
	}
	data, ok := r.values[id]
	return data, ok
}

// Len returns the number of reference series
func (r *ReferenceValues) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns reference ids in insertion order
func (r *ReferenceValues) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// All iterates reference series in insertion order
func (r *ReferenceValues) All() iter.Seq2[string, *TimeseriesData] {
	return func(yield func(string, *TimeseriesData) bool) {
		if r == nil {
			return
		}
		for _, k := range r.keys {
			if !yield(k, r.values[k]) {
				return
			}
		}
	}
}

type referenceEntry struct {
	ID   string          `json:"id"`
	Data *TimeseriesData `json:"data"`
}

// MarshalJSON encodes the map as an array to keep its order on the wire
func (r *ReferenceValues) MarshalJSON() ([]byte, error) {
	entries := make([]referenceEntry, 0, r.Len())
	for id, data := range r.All() {
		entries = append(entries, referenceEntry{ID: id, Data: data})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes the array form written by MarshalJSON
func (r *ReferenceValues) UnmarshalJSON(b []byte) error {
	var entries []referenceEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return fmt.Errorf("failed to decode reference values: %w", err)
	}
	r.keys = nil
	r.values = make(map[string]*TimeseriesData, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("reference value without id")
		}
		if e.Data == nil {
			e.Data = &TimeseriesData{}
		}
		r.Put(e.ID, e.Data)
	}
	return nil
}
