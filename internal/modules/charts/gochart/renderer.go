// Package gochart draws chart slots with the go-chart palette and series model.
package gochart

import (
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/aristath/seriesplot/internal/modules/charts"
)

// Style properties read by the renderer
const (
	ColorProperty     = "color"
	LineTypeProperty  = "lineType"
	LineWidthProperty = "width"
)

const defaultStrokeWidth = 2.0

// Renderer is the go-chart backed renderer of one slot
type Renderer struct {
	kind       charts.Kind
	style      chart.Style
	fixedColor bool
}

// NewRenderer creates a renderer for a resolved style.
// An explicit color property overrides the palette.
func NewRenderer(style charts.Style) *Renderer {
	r := &Renderer{
		kind:  style.Kind(),
		style: chart.Style{StrokeWidth: defaultStrokeWidth},
	}

	props := style.Properties()
	if hex, ok := props.Property(ColorProperty); ok && strings.TrimSpace(hex) != "" {
		r.setColor(drawing.ColorFromHex(strings.TrimPrefix(strings.TrimSpace(hex), "#")))
		r.fixedColor = true
	}
	if w, ok := props.Property(LineWidthProperty); ok {
		if width, err := strconv.ParseFloat(w, 64); err == nil && width > 0 {
			r.style.StrokeWidth = width
		}
	}
	if lt, ok := props.Property(LineTypeProperty); ok && lt == "dashed" {
		r.style.StrokeDashArray = []float64{5.0, 5.0}
	}
	return r
}

func (r *Renderer) Kind() charts.Kind {
	return r.kind
}

// SetColorForSeriesAt picks the palette color for a slot index
func (r *Renderer) SetColorForSeriesAt(index int) {
	if r.fixedColor {
		return
	}
	r.setColor(chart.GetDefaultColor(index))
}

func (r *Renderer) setColor(c drawing.Color) {
	r.style.StrokeColor = c
	if r.kind == charts.KindBar {
		r.style.FillColor = c
	}
}

// CSSColor returns the stroke color as #rrggbb
func (r *Renderer) CSSColor() string {
	return hexColor(r.style.StrokeColor)
}

// Style returns the go-chart style of the slot
func (r *Renderer) Style() chart.Style {
	return r.style
}

// DashArray returns the stroke dash pattern, nil for solid lines
func (r *Renderer) DashArray() []float64 {
	return r.style.StrokeDashArray
}

// RendererFactory creates go-chart renderers
type RendererFactory struct{}

// NewRendererFactory creates a renderer factory
func NewRendererFactory() *RendererFactory {
	return &RendererFactory{}
}

func (f *RendererFactory) CreateRenderer(style charts.Style) charts.SeriesRenderer {
	return NewRenderer(style)
}
