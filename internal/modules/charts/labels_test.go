package charts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/seriesplot/internal/domain"
)

func testMetadata() domain.TimeseriesMetadata {
	first := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 3, 31, 23, 30, 0, 0, time.UTC)
	return domain.TimeseriesMetadata{
		ID:         "ts_1",
		Feature:    domain.Feature{ID: "f1", Label: "Station A"},
		Phenomenon: domain.Phenomenon{ID: "p1", Label: "Temperature"},
		UOM:        "°C",
		FirstValue: &first,
		LastValue:  &last,
		ReferenceValues: []domain.ReferenceValueOutput{
			{ReferenceValueID: "ref_mean", Label: "Mean"},
		},
	}
}

func TestChartID(t *testing.T) {
	meta := testMetadata()

	assert.Equal(t, "Station A (r)", ChartID(meta, "", "r"))
	assert.Equal(t, "Station A, Mean (r)", ChartID(meta, "Mean", "r"))

	meta.Feature.Label = " "
	assert.Empty(t, ChartID(meta, "Mean", "r"))
}

func TestRangeLabel(t *testing.T) {
	meta := testMetadata()
	requested := &domain.Timespan{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, "2024-03-01 00:00 - 2024-03-31 23:30", RangeLabel(meta, requested))

	meta.LastValue = nil
	assert.Equal(t, "2024-01-01 00:00 - 2024-01-02 00:00", RangeLabel(meta, requested))
	assert.Equal(t, "Temperature", RangeLabel(meta, nil))
}

func TestAxisLabel(t *testing.T) {
	meta := testMetadata()
	assert.Equal(t, "Temperature [°C]", AxisLabel(meta))

	meta.UOM = ""
	assert.Equal(t, "Temperature", AxisLabel(meta))

	meta.UOM = "mm"
	meta.Phenomenon.Label = ""
	assert.Equal(t, "[mm]", AxisLabel(meta))
}

func TestReferenceLabel(t *testing.T) {
	meta := testMetadata()
	assert.Equal(t, "Mean", ReferenceLabel(meta, "ref_mean"))
	assert.Equal(t, "ref_max", ReferenceLabel(meta, "ref_max"))
}
