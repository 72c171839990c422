package domain

import (
	"fmt"
	"strings"
)

// RenderRequest asks for several timeseries on one shared plot
type RenderRequest struct {
	Timeseries      []string                              `json:"timeseries"`
	Styles          map[string]StyleProperties            `json:"styles,omitempty"`
	ReferenceStyles map[string]map[string]StyleProperties `json:"referenceStyles,omitempty"`
	Timespan        string                                `json:"timespan,omitempty"`
	Width           int                                   `json:"width,omitempty"`
	Height          int                                   `json:"height,omitempty"`
	FlushTrailing   *bool                                 `json:"flushTrailing,omitempty"`
}

// Validate checks the request shape
func (r RenderRequest) Validate() error {
	if len(r.Timeseries) == 0 {
		return fmt.Errorf("at least one timeseries is required")
	}
	seen := make(map[string]bool, len(r.Timeseries))
	for _, id := range r.Timeseries {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("timeseries id must not be empty")
		}
		if seen[id] {
			return fmt.Errorf("timeseries %q requested twice", id)
		}
		seen[id] = true
	}
	if r.Timespan != "" {
		if _, err := ParseTimespan(r.Timespan); err != nil {
			return err
		}
	}
	return nil
}

// Context builds the rendering context described by the request
func (r RenderRequest) Context() (RenderingContext, error) {
	ctx := RenderingContext{
		Styles:          r.Styles,
		ReferenceStyles: r.ReferenceStyles,
		Width:           r.Width,
		Height:          r.Height,
	}
	if r.Timespan != "" {
		span, err := ParseTimespan(r.Timespan)
		if err != nil {
			return RenderingContext{}, err
		}
		ctx.Timespan = &span
	}
	return ctx, nil
}
