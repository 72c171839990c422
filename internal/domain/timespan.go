package domain

import (
	"fmt"
	"strings"
	"time"
)

// Timespan is a closed time range used to query values
type Timespan struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseTimespan parses "<RFC3339 start>/<RFC3339 end>"
func ParseTimespan(s string) (Timespan, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Timespan{}, fmt.Errorf("invalid timespan %q: expected <start>/<end>", s)
	}
	from, err := time.Parse(time.RFC3339, strings.TrimSpace(start))
	if err != nil {
		return Timespan{}, fmt.Errorf("invalid timespan start: %w", err)
	}
	to, err := time.Parse(time.RFC3339, strings.TrimSpace(end))
	if err != nil {
		return Timespan{}, fmt.Errorf("invalid timespan end: %w", err)
	}
	if to.Before(from) {
		return Timespan{}, fmt.Errorf("invalid timespan %q: end before start", s)
	}
	return Timespan{Start: from, End: to}, nil
}

// Contains reports whether t lies within the span, both ends included
func (s Timespan) Contains(t time.Time) bool {
	return !t.Before(s.Start) && !t.After(s.End)
}

// String formats the span the way ParseTimespan reads it
func (s Timespan) String() string {
	return s.Start.Format(time.RFC3339) + "/" + s.End.Format(time.RFC3339)
}
