// Package echarts exports a populated plot as an ECharts option document.
package echarts

import (
	"encoding/json"
	"fmt"
	"time"

	gecharts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/aristath/seriesplot/internal/modules/charts"
)

// Build creates the ECharts line chart of a surface. Each range axis becomes a
// y axis; bar datasets are overlapped onto the same grid.
func Build(surface *charts.Surface, title string) *gecharts.Line {
	line := gecharts.NewLine()
	line.SetGlobalOptions(
		gecharts.WithTitleOpts(opts.Title{Title: title}),
		gecharts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		gecharts.WithLegendOpts(opts.Legend{Show: true}),
		gecharts.WithXAxisOpts(opts.XAxis{Type: "time"}),
	)

	axisPositions := make(map[int]int)
	for pos, index := range surface.AxisIndices() {
		axis, _ := surface.RangeAxis(index)
		y := yAxis(axis, pos)
		if pos == 0 {
			line.SetGlobalOptions(gecharts.WithYAxisOpts(y))
		} else {
			line.ExtendYAxis(y)
		}
		axisPositions[index] = pos
	}

	var bar *gecharts.Bar
	for _, index := range surface.DatasetIndices() {
		ds, _ := surface.Dataset(index)
		yIndex := axisPositions[surface.AxisForDataset(index)]
		color := colorOf(surface, index)

		if ds.Series.Kind == charts.KindBar {
			if bar == nil {
				bar = gecharts.NewBar()
			}
			bar.AddSeries(ds.Group, barData(ds),
				gecharts.WithBarChartOpts(opts.BarChart{YAxisIndex: yIndex}),
				gecharts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			)
			continue
		}

		line.AddSeries(ds.Group, lineData(ds),
			gecharts.WithLineChartOpts(opts.LineChart{YAxisIndex: yIndex}),
			gecharts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			gecharts.WithLineStyleOpts(opts.LineStyle{Color: color}),
		)
	}
	if bar != nil {
		line.Overlap(bar)
	}
	return line
}

// Marshal returns the ECharts option JSON of a surface
func Marshal(surface *charts.Surface, title string) ([]byte, error) {
	line := Build(surface, title)
	line.Validate()
	b, err := json.Marshal(line.JSON())
	if err != nil {
		return nil, fmt.Errorf("failed to encode echarts option: %w", err)
	}
	return b, nil
}

func yAxis(axis *charts.RangeAxis, pos int) opts.YAxis {
	y := opts.YAxis{Name: axis.Label, Type: "value", Show: true}
	if pos > 0 {
		// Secondary axes sit on the right; only the first draws split lines.
		y.SplitLine = &opts.SplitLine{Show: false}
	}
	if !axis.AutoRange {
		y.Min = axis.Min
		y.Max = axis.Max
	}
	return y
}

func lineData(ds *charts.Dataset) []opts.LineData {
	out := make([]opts.LineData, 0, ds.Series.Len())
	for _, p := range ds.Series.Points {
		out = append(out, opts.LineData{Value: []interface{}{p.Period.Start.Format(time.RFC3339), p.Value}})
	}
	return out
}

func barData(ds *charts.Dataset) []opts.BarData {
	out := make([]opts.BarData, 0, ds.Series.Len())
	for _, p := range ds.Series.Points {
		out = append(out, opts.BarData{Value: []interface{}{p.Period.Start.Format(time.RFC3339), p.Value}})
	}
	return out
}

func colorOf(surface *charts.Surface, index int) string {
	r, ok := surface.Renderer(index)
	if !ok {
		return ""
	}
	if c, ok := r.(charts.ColorSource); ok {
		return c.CSSColor()
	}
	return ""
}
