package testing

import (
	"time"

	"github.com/aristath/seriesplot/internal/domain"
)

// FixtureStart is a Monday, so weekly and daily periods start on it
var FixtureStart = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

// NewMetadataFixture returns metadata for a river gauge series with one
// reference series ("mean") spanning the fixture week.
func NewMetadataFixture(id string) domain.TimeseriesMetadata {
	first := FixtureStart
	last := FixtureStart.AddDate(0, 0, 7)
	return domain.TimeseriesMetadata{
		ID:         id,
		Feature:    domain.Feature{ID: "gauge-" + id, Label: "Gauge " + id},
		Phenomenon: domain.Phenomenon{ID: "level", Label: "Water level"},
		UOM:        "cm",
		FirstValue: &first,
		LastValue:  &last,
		ReferenceValues: []domain.ReferenceValueOutput{
			{ReferenceValueID: id + "_mean", Label: "Mean level"},
		},
	}
}

// NewValueFixtures returns hourly values over days days, value = hour index
func NewValueFixtures(days int) []domain.ValuePoint {
	out := make([]domain.ValuePoint, 0, days*24)
	for h := 0; h < days*24; h++ {
		out = append(out, domain.ValuePoint{
			Timestamp: FixtureStart.Add(time.Duration(h) * time.Hour),
			Value:     float64(h),
		})
	}
	return out
}

// NewDataFixture returns hourly values with a constant reference series
func NewDataFixture(id string, days int) *domain.TimeseriesData {
	values := NewValueFixtures(days)
	mean := make([]domain.ValuePoint, len(values))
	for i, v := range values {
		mean[i] = domain.ValuePoint{Timestamp: v.Timestamp, Value: 10}
	}

	refs := domain.NewReferenceValues()
	refs.Put(id+"_mean", &domain.TimeseriesData{Values: mean})
	return &domain.TimeseriesData{
		Values:   values,
		Metadata: domain.DataMetadata{ReferenceValues: refs},
	}
}
