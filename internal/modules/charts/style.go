package charts

import (
	"strings"

	"github.com/aristath/seriesplot/internal/domain"
)

// IntervalProperty is the style property selecting the bar aggregation interval
const IntervalProperty = "interval"

// Granularity is the calendar period bars are aggregated over
type Granularity int

const (
	GranularityWeek Granularity = iota // default
	GranularityHour
	GranularityDay
	GranularityMonth
)

// recognizedIntervals maps interval property values to granularities.
// Anything else, including "byWeek", resolves to the week default.
var recognizedIntervals = map[string]Granularity{
	"byHour":  GranularityHour,
	"byDay":   GranularityDay,
	"byMonth": GranularityMonth,
}

// RecognizedIntervals lists the interval values with their granularity
func RecognizedIntervals() map[string]Granularity {
	out := make(map[string]Granularity, len(recognizedIntervals))
	for k, v := range recognizedIntervals {
		out[k] = v
	}
	return out
}

func (g Granularity) String() string {
	switch g {
	case GranularityHour:
		return "hour"
	case GranularityDay:
		return "day"
	case GranularityMonth:
		return "month"
	default:
		return "week"
	}
}

// Kind tells bar-style and line-style series apart
type Kind int

const (
	KindLine Kind = iota
	KindBar
)

func (k Kind) String() string {
	if k == KindBar {
		return "bar"
	}
	return "line"
}

// Style is a resolved series style: either BarStyle or LineStyle
type Style interface {
	Kind() Kind
	Properties() domain.StyleProperties
	sealed()
}

// BarStyle aggregates values into calendar intervals
type BarStyle struct {
	Granularity Granularity
	Props       domain.StyleProperties
}

// LineStyle plots every sample at whole-second resolution
type LineStyle struct {
	Props domain.StyleProperties
}

func (BarStyle) Kind() Kind                           { return KindBar }
func (s BarStyle) Properties() domain.StyleProperties { return s.Props }
func (BarStyle) sealed()                              {}

func (LineStyle) Kind() Kind                           { return KindLine }
func (s LineStyle) Properties() domain.StyleProperties { return s.Props }
func (LineStyle) sealed()                              {}

// ResolveStyle classifies style properties into a bar or line style
func ResolveStyle(props domain.StyleProperties) Style {
	if props.IsBarChart() {
		return BarStyle{Granularity: ResolveGranularity(props), Props: props}
	}
	return LineStyle{Props: props}
}

// Classify returns the kind declared by the properties
func Classify(props domain.StyleProperties) Kind {
	return ResolveStyle(props).Kind()
}

// IsBar reports whether props describe a bar series
func IsBar(props domain.StyleProperties) bool {
	return Classify(props) == KindBar
}

// IsLine reports whether props describe a line series
func IsLine(props domain.StyleProperties) bool {
	return Classify(props) == KindLine
}

// ResolveGranularity returns the configured interval granularity.
// Unknown or missing interval values fall back to week without error.
func ResolveGranularity(props domain.StyleProperties) Granularity {
	if v, ok := props.Property(IntervalProperty); ok {
		if g, ok := recognizedIntervals[v]; ok {
			return g
		}
	}
	return GranularityWeek
}

// unrecognizedInterval returns the interval value when it is set but not recognized
func unrecognizedInterval(props domain.StyleProperties) (string, bool) {
	v, ok := props.Property(IntervalProperty)
	if !ok {
		return "", false
	}
	if _, known := recognizedIntervals[v]; known {
		return "", false
	}
	return strings.TrimSpace(v), true
}
