package charts

import (
	"time"

	"github.com/aristath/seriesplot/internal/domain"
)

// Interval is the half-open time range [Start, End)
type Interval struct {
	Start time.Time `json:"start" msgpack:"start"`
	End   time.Time `json:"end" msgpack:"end"`
}

// PeriodOf returns the calendar-aligned period of granularity g containing t.
// Weeks are ISO weeks starting on Monday. A nil loc means UTC.
func PeriodOf(g Granularity, t time.Time, loc *time.Location) Interval {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	y, m, d := t.Date()

	switch g {
	case GranularityHour:
		start := time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
		return Interval{Start: start, End: start.Add(time.Hour)}
	case GranularityDay:
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return Interval{Start: start, End: start.AddDate(0, 0, 1)}
	case GranularityMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return Interval{Start: start, End: start.AddDate(0, 1, 0)}
	default:
		offset := (int(t.Weekday()) + 6) % 7
		start := time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		return Interval{Start: start, End: start.AddDate(0, 0, 7)}
	}
}

// SecondOf returns the one-second period containing t
func SecondOf(t time.Time) Interval {
	start := t.Truncate(time.Second)
	return Interval{Start: start, End: start.Add(time.Second)}
}

// Contains reports whether t lies in [Start, End)
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// ContainsValue reports whether the value's timestamp lies in the interval
func (i Interval) ContainsValue(v *domain.ValuePoint) (bool, error) {
	if v == nil {
		return false, ErrNilValue
	}
	return i.Contains(v.Timestamp), nil
}

// Duration returns End - Start
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}
