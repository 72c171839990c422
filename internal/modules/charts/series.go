package charts

import (
	"slices"

	"github.com/aristath/seriesplot/internal/domain"
)

// NamedSeries is an ordered point series identified by its chart id.
// An empty series is valid and means "no data".
type NamedSeries struct {
	ID     string            `json:"id" msgpack:"id"`
	Kind   Kind              `json:"-" msgpack:"-"`
	Points []AggregatedPoint `json:"points" msgpack:"points"`
}

// Len returns the number of points
func (s NamedSeries) Len() int {
	return len(s.Points)
}

// IsEmpty reports whether the series carries no points
func (s NamedSeries) IsEmpty() bool {
	return len(s.Points) == 0
}

// Values returns the point values in order
func (s NamedSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// SeriesBuilder wraps bucketed values into named series
type SeriesBuilder struct {
	bucketer *Bucketer
}

// NewSeriesBuilder creates a builder on top of a bucketer
func NewSeriesBuilder(bucketer *Bucketer) *SeriesBuilder {
	if bucketer == nil {
		bucketer = NewBucketer()
	}
	return &SeriesBuilder{bucketer: bucketer}
}

// Build converts values into a named series according to style
func (b *SeriesBuilder) Build(id string, values []domain.ValuePoint, style Style) NamedSeries {
	series := NamedSeries{ID: id, Kind: style.Kind(), Points: []AggregatedPoint{}}
	for p := range b.bucketer.Bucketize(ordered(values), style) {
		series.Points = append(series.Points, p)
	}
	return series
}

// ordered returns values sorted by timestamp, copying only when needed
func ordered(values []domain.ValuePoint) []domain.ValuePoint {
	byTime := func(a, b domain.ValuePoint) int {
		return a.Timestamp.Compare(b.Timestamp)
	}
	if slices.IsSortedFunc(values, byTime) {
		return values
	}
	sorted := slices.Clone(values)
	slices.SortStableFunc(sorted, byTime)
	return sorted
}
