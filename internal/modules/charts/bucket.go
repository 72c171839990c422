package charts

import (
	"iter"
	"time"

	"github.com/aristath/seriesplot/internal/domain"
)

// AggregatedPoint is one plotted position: a bar interval with its sum,
// or the one-second period of a line sample with its value.
type AggregatedPoint struct {
	Period Interval `json:"period" msgpack:"period"`
	Value  float64  `json:"value" msgpack:"value"`
}

// Bucketer turns ordered values into plotted positions
type Bucketer struct {
	flushTrailing bool
	loc           *time.Location
}

// BucketOption configures a Bucketer
type BucketOption func(*Bucketer)

// WithFlushTrailing emits the last bar interval at end of input.
// Without it the trailing interval's sum is dropped.
func WithFlushTrailing(flush bool) BucketOption {
	return func(b *Bucketer) {
		b.flushTrailing = flush
	}
}

// WithLocation sets the zone calendar periods are aligned in
func WithLocation(loc *time.Location) BucketOption {
	return func(b *Bucketer) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// NewBucketer creates a bucketer. Defaults: UTC, trailing interval dropped.
func NewBucketer(opts ...BucketOption) *Bucketer {
	b := &Bucketer{loc: time.UTC}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FlushesTrailing reports whether the trailing bar interval is emitted
func (b *Bucketer) FlushesTrailing() bool {
	return b.flushTrailing
}

// Bucketize lazily produces the plotted positions of points under style.
// Points must be in ascending timestamp order.
func (b *Bucketer) Bucketize(points []domain.ValuePoint, style Style) iter.Seq[AggregatedPoint] {
	switch s := style.(type) {
	case BarStyle:
		return b.bars(points, s.Granularity)
	case LineStyle:
		return b.lines(points)
	default:
		return func(func(AggregatedPoint) bool) {}
	}
}

func (b *Bucketer) bars(points []domain.ValuePoint, g Granularity) iter.Seq[AggregatedPoint] {
	return func(yield func(AggregatedPoint) bool) {
		if len(points) == 0 {
			return
		}

		current := PeriodOf(g, points[0].Timestamp, b.loc)
		var sum float64
		for _, p := range points {
			if current.Contains(p.Timestamp) {
				sum += p.Value
				continue
			}
			if !yield(AggregatedPoint{Period: current, Value: sum}) {
				return
			}
			current = PeriodOf(g, p.Timestamp, b.loc)
			sum = p.Value
		}

		if b.flushTrailing {
			yield(AggregatedPoint{Period: current, Value: sum})
		}
	}
}

// lines emits one point per whole second. Samples sharing a second collapse,
// the last one wins.
func (b *Bucketer) lines(points []domain.ValuePoint) iter.Seq[AggregatedPoint] {
	return func(yield func(AggregatedPoint) bool) {
		if len(points) == 0 {
			return
		}

		pending := AggregatedPoint{Period: SecondOf(points[0].Timestamp), Value: points[0].Value}
		for _, p := range points[1:] {
			second := SecondOf(p.Timestamp)
			if second.Start.Equal(pending.Period.Start) {
				pending.Value = p.Value
				continue
			}
			if !yield(pending) {
				return
			}
			pending = AggregatedPoint{Period: second, Value: p.Value}
		}
		yield(pending)
	}
}
