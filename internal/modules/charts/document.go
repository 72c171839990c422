package charts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Document is the chart-ready form of a populated plot
type Document struct {
	RenderID string            `json:"renderId" msgpack:"renderId"`
	Datasets []DatasetDocument `json:"datasets" msgpack:"datasets"`
	Axes     []AxisDocument    `json:"axes" msgpack:"axes"`
}

// DatasetDocument is one dataset of a Document
type DatasetDocument struct {
	Index       int             `json:"index" msgpack:"index"`
	ChartID     string          `json:"chartId" msgpack:"chartId"`
	SeriesID    string          `json:"seriesId,omitempty" msgpack:"seriesId,omitempty"`
	ReferenceID string          `json:"referenceId,omitempty" msgpack:"referenceId,omitempty"`
	Kind        string          `json:"kind" msgpack:"kind"`
	Axis        int             `json:"axis" msgpack:"axis"`
	Color       string          `json:"color,omitempty" msgpack:"color,omitempty"`
	Points      []PointDocument `json:"points" msgpack:"points"`
	Summary     Summary         `json:"summary" msgpack:"summary"`
}

// PointDocument is one plotted position
type PointDocument struct {
	Start time.Time `json:"start" msgpack:"start"`
	End   time.Time `json:"end" msgpack:"end"`
	Value float64   `json:"value" msgpack:"value"`
}

// AxisDocument is one range axis
type AxisDocument struct {
	Index     int     `json:"index" msgpack:"index"`
	Label     string  `json:"label" msgpack:"label"`
	Min       float64 `json:"min" msgpack:"min"`
	Max       float64 `json:"max" msgpack:"max"`
	AutoRange bool    `json:"autoRange" msgpack:"autoRange"`
}

// NewDocument reads a populated surface in index order
func NewDocument(result *RenderResult, surface *Surface) Document {
	doc := Document{Datasets: []DatasetDocument{}, Axes: []AxisDocument{}}
	slots := map[int]ChartSlot{}
	if result != nil {
		doc.RenderID = result.RenderID
		for _, s := range result.Slots {
			slots[s.Index] = s
		}
	}

	for _, index := range surface.DatasetIndices() {
		ds, _ := surface.Dataset(index)
		dd := DatasetDocument{
			Index:   index,
			ChartID: ds.Group,
			Kind:    ds.Series.Kind.String(),
			Axis:    surface.AxisForDataset(index),
			Points:  make([]PointDocument, 0, ds.Series.Len()),
			Summary: ds.Summary,
		}
		if slot, ok := slots[index]; ok {
			dd.SeriesID = slot.SeriesID
			dd.ReferenceID = slot.ReferenceID
		}
		if r, ok := surface.Renderer(index); ok {
			dd.Kind = r.Kind().String()
			if c, ok := r.(ColorSource); ok {
				dd.Color = c.CSSColor()
			}
		}
		for _, p := range ds.Series.Points {
			dd.Points = append(dd.Points, PointDocument{Start: p.Period.Start, End: p.Period.End, Value: p.Value})
		}
		doc.Datasets = append(doc.Datasets, dd)
	}

	for _, index := range surface.AxisIndices() {
		axis, _ := surface.RangeAxis(index)
		doc.Axes = append(doc.Axes, AxisDocument{
			Index:     index,
			Label:     axis.Label,
			Min:       axis.Min,
			Max:       axis.Max,
			AutoRange: axis.AutoRange,
		})
	}

	return doc
}

// WriteCSV writes one row per plotted position: chartId,start,end,value
func WriteCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"chartId", "start", "end", "value"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, ds := range doc.Datasets {
		for _, p := range ds.Points {
			row := []string{
				ds.ChartID,
				p.Start.Format(time.RFC3339),
				p.End.Format(time.RFC3339),
				strconv.FormatFloat(p.Value, 'f', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
