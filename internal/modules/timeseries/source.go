// Package timeseries loads timeseries metadata and measurements for rendering.
package timeseries

import (
	"context"

	"github.com/aristath/seriesplot/internal/domain"
)

// Source provides metadata and values of timeseries.
// Unknown ids fail with an error wrapping domain.ErrTimeseriesNotFound.
type Source interface {
	Metadata(ctx context.Context, id string) (domain.TimeseriesMetadata, error)
	// Data returns the values of id within span (all values when span is nil),
	// with reference series attached in metadata order.
	Data(ctx context.Context, id string, span *domain.Timespan) (*domain.TimeseriesData, error)
}

// Writer stores timeseries
type Writer interface {
	UpsertMetadata(ctx context.Context, meta domain.TimeseriesMetadata) error
	InsertValues(ctx context.Context, seriesID string, values []domain.ValuePoint) error
}

// Import stores a timeseries, its reference series and their values
func Import(ctx context.Context, w Writer, meta domain.TimeseriesMetadata, data *domain.TimeseriesData) error {
	if err := w.UpsertMetadata(ctx, meta); err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	if err := w.InsertValues(ctx, meta.ID, data.Values); err != nil {
		return err
	}
	for refID, refData := range data.Metadata.ReferenceValues.All() {
		if refData == nil {
			continue
		}
		if err := w.InsertValues(ctx, refID, refData.Values); err != nil {
			return err
		}
	}
	return nil
}
