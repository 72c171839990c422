package charts

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Plot is the multi-axis plot surface datasets are registered on
type Plot interface {
	SetDataset(index int, dataset *Dataset)
	SetRenderer(index int, renderer SeriesRenderer)
	SetRangeAxis(index int, axis *RangeAxis)
	MapDatasetToRangeAxis(datasetIndex, axisIndex int)
}

// SeriesRenderer is an opaque renderer handle produced for a style
type SeriesRenderer interface {
	Kind() Kind
	SetColorForSeriesAt(index int)
}

// RendererFactory creates renderer handles for resolved styles
type RendererFactory interface {
	CreateRenderer(style Style) SeriesRenderer
}

// ColorSource is implemented by renderers that can report their color
type ColorSource interface {
	CSSColor() string
}

// Summary holds simple statistics of a dataset
type Summary struct {
	Count int     `json:"count" msgpack:"count"`
	Min   float64 `json:"min" msgpack:"min"`
	Max   float64 `json:"max" msgpack:"max"`
	Sum   float64 `json:"sum" msgpack:"sum"`
	Mean  float64 `json:"mean" msgpack:"mean"`
}

// Summarize computes statistics over values. Empty input yields a zero summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	return Summary{
		Count: len(values),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
		Sum:   floats.Sum(values),
		Mean:  stat.Mean(values, nil),
	}
}

// Dataset is one registered series grouped under its chart id
type Dataset struct {
	Group   string
	Series  NamedSeries
	Summary Summary
}

// NewDataset wraps a series into a dataset
func NewDataset(group string, series NamedSeries) *Dataset {
	return &Dataset{
		Group:   group,
		Series:  series,
		Summary: Summarize(series.Values()),
	}
}

// RangeAxis is a value axis. AutoRange is set when the datasets give no
// usable bounds: no values at all, or a single distinct value.
type RangeAxis struct {
	Index     int
	Label     string
	Min       float64
	Max       float64
	AutoRange bool
}

// NewRangeAxis creates an axis spanning the values of every dataset drawn on it
func NewRangeAxis(index int, label string, datasets ...*Dataset) *RangeAxis {
	axis := &RangeAxis{Index: index, Label: label, AutoRange: true}
	seen := false
	for _, ds := range datasets {
		if ds == nil || ds.Summary.Count == 0 {
			continue
		}
		if !seen {
			axis.Min, axis.Max = ds.Summary.Min, ds.Summary.Max
			seen = true
			continue
		}
		axis.Min = min(axis.Min, ds.Summary.Min)
		axis.Max = max(axis.Max, ds.Summary.Max)
	}
	if seen && axis.Max > axis.Min {
		axis.AutoRange = false
	}
	return axis
}
