package charts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/seriesplot/internal/domain"
)

func TestSeriesBuilder_Build(t *testing.T) {
	builder := NewSeriesBuilder(NewBucketer(WithFlushTrailing(true)))
	values := points(t0, 5.0, t0.Add(time.Hour), 3.0, t0.Add(25*time.Hour), 2.0)

	series := builder.Build("Station A (range)", values, ResolveStyle(barProps("byDay")))

	assert.Equal(t, "Station A (range)", series.ID)
	assert.Equal(t, KindBar, series.Kind)
	assert.Equal(t, []float64{8, 2}, series.Values())
}

func TestSeriesBuilder_EmptyValuesGiveEmptySeries(t *testing.T) {
	series := NewSeriesBuilder(nil).Build("empty", nil, LineStyle{})

	assert.True(t, series.IsEmpty())
	assert.NotNil(t, series.Points)
	assert.Equal(t, 0, series.Len())
}

func TestSeriesBuilder_SortsUnorderedValues(t *testing.T) {
	values := points(t0.Add(2*time.Second), 3.0, t0, 1.0, t0.Add(time.Second), 2.0)
	original := append([]domain.ValuePoint(nil), values...)

	series := NewSeriesBuilder(nil).Build("s", values, LineStyle{})

	require.Equal(t, 3, series.Len())
	assert.Equal(t, []float64{1, 2, 3}, series.Values())
	assert.Equal(t, original, values, "input must not be reordered")
}

func TestSeriesBuilder_DefaultDropsTrailing(t *testing.T) {
	values := points(t0, 5.0, t0.Add(25*time.Hour), 2.0)
	series := NewSeriesBuilder(nil).Build("s", values, ResolveStyle(barProps("byDay")))
	assert.Equal(t, []float64{5}, series.Values())
}
