package gochart

import (
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/aristath/seriesplot/internal/modules/charts"
)

// Chart builds the go-chart model of a populated surface. Datasets on axis 0
// use the primary y axis; every other axis is folded onto the secondary one
// since go-chart draws at most two. A zero width or height keeps go-chart's
// default size.
func Chart(surface *charts.Surface, title string, width, height int) chart.Chart {
	c := chart.Chart{
		Title: title,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeMinuteValueFormatter,
		},
	}
	if width > 0 {
		c.Width = width
	}
	if height > 0 {
		c.Height = height
	}

	if axis, ok := surface.RangeAxis(0); ok {
		c.YAxis = yAxis(axis)
	}
	for _, index := range surface.AxisIndices() {
		if index == 0 {
			continue
		}
		axis, _ := surface.RangeAxis(index)
		c.YAxisSecondary = yAxis(axis)
		break
	}

	for _, index := range surface.DatasetIndices() {
		ds, _ := surface.Dataset(index)
		c.Series = append(c.Series, TimeSeries(ds, surface, index))
	}
	return c
}

// TimeSeries converts one registered dataset. Each point is placed at the
// start of its period.
func TimeSeries(ds *charts.Dataset, surface *charts.Surface, index int) chart.TimeSeries {
	ts := chart.TimeSeries{
		Name:    ds.Group,
		XValues: make([]time.Time, 0, ds.Series.Len()),
		YValues: make([]float64, 0, ds.Series.Len()),
	}
	for _, p := range ds.Series.Points {
		ts.XValues = append(ts.XValues, p.Period.Start)
		ts.YValues = append(ts.YValues, p.Value)
	}
	if r, ok := surface.Renderer(index); ok {
		if gr, ok := r.(*Renderer); ok {
			ts.Style = gr.Style()
		}
	}
	if surface.AxisForDataset(index) != 0 {
		ts.YAxis = chart.YAxisSecondary
	}
	return ts
}

func yAxis(axis *charts.RangeAxis) chart.YAxis {
	y := chart.YAxis{Name: axis.Label}
	if !axis.AutoRange && axis.Max > axis.Min {
		y.Range = &chart.ContinuousRange{Min: axis.Min, Max: axis.Max}
	}
	return y
}
