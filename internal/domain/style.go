package domain

// Chart types understood by the style resolver
const (
	ChartTypeLine = "line"
	ChartTypeBar  = "bar"
)

// StyleProperties is the declarative style of one series
type StyleProperties struct {
	ChartType  string            `json:"chartType"`
	Properties map[string]string `json:"properties,omitempty"`
}

// DefaultStyle is used for series without an explicit style
func DefaultStyle() StyleProperties {
	return StyleProperties{ChartType: ChartTypeLine}
}

// Property returns a style property by key
func (s StyleProperties) Property(key string) (string, bool) {
	if s.Properties == nil {
		return "", false
	}
	v, ok := s.Properties[key]
	return v, ok
}

// IsBarChart reports whether the declared chart type is exactly "bar"
func (s StyleProperties) IsBarChart() bool {
	return s.ChartType == ChartTypeBar
}

// RenderingContext carries the per-request styling and span
type RenderingContext struct {
	Styles          map[string]StyleProperties            `json:"styles,omitempty"`
	ReferenceStyles map[string]map[string]StyleProperties `json:"referenceStyles,omitempty"`
	Timespan        *Timespan                             `json:"timespan,omitempty"`
	Width           int                                   `json:"width,omitempty"`
	Height          int                                   `json:"height,omitempty"`
}

// StyleFor returns the style of a primary series, or the default line style
func (c RenderingContext) StyleFor(seriesID string) StyleProperties {
	if s, ok := c.Styles[seriesID]; ok {
		return s
	}
	return DefaultStyle()
}

// ReferenceStyleFor returns the style of a reference series, or the default line style
func (c RenderingContext) ReferenceStyleFor(seriesID, referenceID string) StyleProperties {
	if refs, ok := c.ReferenceStyles[seriesID]; ok {
		if s, ok := refs[referenceID]; ok {
			return s
		}
	}
	return DefaultStyle()
}
