package timeseries

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/seriesplot/internal/domain"
	"github.com/aristath/seriesplot/internal/modules/charts"
)

// Service turns render requests into series inputs
type Service struct {
	source Source
	log    zerolog.Logger
}

// NewService creates a timeseries service on top of a source
func NewService(source Source, log zerolog.Logger) *Service {
	return &Service{
		source: source,
		log:    log.With().Str("service", "timeseries").Logger(),
	}
}

// Assemble loads every requested series in request order and attaches the
// styles of the request. The request must be valid.
func (s *Service) Assemble(ctx context.Context, req domain.RenderRequest) ([]charts.SeriesInput, domain.RenderingContext, error) {
	rc, err := req.Context()
	if err != nil {
		return nil, domain.RenderingContext{}, err
	}

	inputs := make([]charts.SeriesInput, 0, len(req.Timeseries))
	for _, id := range req.Timeseries {
		if err := ctx.Err(); err != nil {
			return nil, domain.RenderingContext{}, err
		}

		meta, err := s.source.Metadata(ctx, id)
		if err != nil {
			return nil, domain.RenderingContext{}, fmt.Errorf("failed to load metadata: %w", err)
		}
		data, err := s.source.Data(ctx, id, rc.Timespan)
		if err != nil {
			return nil, domain.RenderingContext{}, fmt.Errorf("failed to load data: %w", err)
		}

		inputs = append(inputs, charts.SeriesInput{
			ID:              id,
			Data:            data,
			Style:           rc.StyleFor(id),
			Metadata:        meta,
			ReferenceStyles: referenceStyles(rc, id, data),
		})
	}

	s.log.Debug().Int("series", len(inputs)).Msg("Assembled render inputs")
	return inputs, rc, nil
}

// Dataset loads one series and builds it under the given style, without
// placing it on a plot.
func (s *Service) Dataset(ctx context.Context, id string, style domain.StyleProperties, span *domain.Timespan, builder *charts.SeriesBuilder) (charts.NamedSeries, error) {
	meta, err := s.source.Metadata(ctx, id)
	if err != nil {
		return charts.NamedSeries{}, fmt.Errorf("failed to load metadata: %w", err)
	}
	data, err := s.source.Data(ctx, id, span)
	if err != nil {
		return charts.NamedSeries{}, fmt.Errorf("failed to load data: %w", err)
	}

	chartID := charts.ChartID(meta, "", charts.RangeLabel(meta, span))
	if chartID == "" {
		chartID = id
	}
	return builder.Build(chartID, data.Values, charts.ResolveStyle(style)), nil
}

func referenceStyles(rc domain.RenderingContext, id string, data *domain.TimeseriesData) map[string]domain.StyleProperties {
	if !data.HasReferenceValues() {
		return nil
	}
	out := make(map[string]domain.StyleProperties, data.Metadata.ReferenceValues.Len())
	for _, refID := range data.Metadata.ReferenceValues.Keys() {
		out[refID] = rc.ReferenceStyleFor(id, refID)
	}
	return out
}
