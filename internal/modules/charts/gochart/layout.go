package gochart

import (
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Layout is a serializable description of a go-chart model: the size the
// chart would be drawn at, its y axes, and how each series is stroked.
type Layout struct {
	Title          string         `json:"title"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	YAxis          AxisLayout     `json:"yAxis"`
	YAxisSecondary *AxisLayout    `json:"yAxisSecondary,omitempty"`
	Series         []SeriesLayout `json:"series"`
}

// AxisLayout describes one go-chart y axis. Range is nil when go-chart
// picks the bounds itself.
type AxisLayout struct {
	Name  string      `json:"name"`
	Range *[2]float64 `json:"range,omitempty"`
}

// SeriesLayout describes one time series of the model
type SeriesLayout struct {
	Name        string    `json:"name"`
	Axis        string    `json:"axis"`
	Points      int       `json:"points"`
	StrokeColor string    `json:"strokeColor,omitempty"`
	StrokeWidth float64   `json:"strokeWidth"`
	DashArray   []float64 `json:"dashArray,omitempty"`
}

// Describe summarizes c without drawing it
func Describe(c chart.Chart) Layout {
	l := Layout{
		Title:  c.Title,
		Width:  c.GetWidth(),
		Height: c.GetHeight(),
		YAxis:  axisLayout(c.YAxis),
		Series: make([]SeriesLayout, 0, len(c.Series)),
	}

	secondary := false
	for _, s := range c.Series {
		ts, ok := s.(chart.TimeSeries)
		if !ok {
			continue
		}
		axis := "primary"
		if ts.YAxis == chart.YAxisSecondary {
			axis = "secondary"
			secondary = true
		}
		l.Series = append(l.Series, SeriesLayout{
			Name:        ts.Name,
			Axis:        axis,
			Points:      ts.Len(),
			StrokeColor: hexColor(ts.Style.StrokeColor),
			StrokeWidth: ts.Style.StrokeWidth,
			DashArray:   ts.Style.StrokeDashArray,
		})
	}
	if secondary {
		y := axisLayout(c.YAxisSecondary)
		l.YAxisSecondary = &y
	}
	return l
}

func axisLayout(y chart.YAxis) AxisLayout {
	a := AxisLayout{Name: y.Name}
	if r, ok := y.Range.(*chart.ContinuousRange); ok && r != nil {
		a.Range = &[2]float64{r.Min, r.Max}
	}
	return a
}

func hexColor(c drawing.Color) string {
	if c.IsZero() {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
