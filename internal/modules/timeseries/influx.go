package timeseries

import (
	"context"
	"fmt"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/rs/zerolog"

	"github.com/aristath/seriesplot/internal/domain"
)

// MetadataStore provides timeseries metadata
type MetadataStore interface {
	Metadata(ctx context.Context, id string) (domain.TimeseriesMetadata, error)
}

// fluxQuerier is the part of api.QueryAPI the source needs
type fluxQuerier interface {
	Query(ctx context.Context, query string) (*api.QueryTableResult, error)
}

// InfluxConfig selects the bucket and measurement holding values.
// Points are tagged with series_id and carry the value in field "value".
type InfluxConfig struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// InfluxSource reads values from InfluxDB and metadata from a MetadataStore
type InfluxSource struct {
	client   influxdb2.Client
	query    fluxQuerier
	writer   api.WriteAPIBlocking
	metadata MetadataStore
	cfg      InfluxConfig
	log      zerolog.Logger
}

// NewInfluxSource connects to InfluxDB
func NewInfluxSource(cfg InfluxConfig, metadata MetadataStore, log zerolog.Logger) *InfluxSource {
	if cfg.Measurement == "" {
		cfg.Measurement = "measurements"
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxSource{
		client:   client,
		query:    client.QueryAPI(cfg.Org),
		writer:   client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		metadata: metadata,
		cfg:      cfg,
		log:      log.With().Str("source", "influxdb").Logger(),
	}
}

// Close releases the client
func (s *InfluxSource) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// Ping reports whether the InfluxDB server is reachable
func (s *InfluxSource) Ping(ctx context.Context) error {
	ok, err := s.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influxdb ping failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("influxdb not ready")
	}
	return nil
}

func (s *InfluxSource) Metadata(ctx context.Context, id string) (domain.TimeseriesMetadata, error) {
	return s.metadata.Metadata(ctx, id)
}

func (s *InfluxSource) Data(ctx context.Context, id string, span *domain.Timespan) (*domain.TimeseriesData, error) {
	meta, err := s.metadata.Metadata(ctx, id)
	if err != nil {
		return nil, err
	}

	values, err := s.values(ctx, id, span)
	if err != nil {
		return nil, err
	}
	data := &domain.TimeseriesData{Values: values}

	if len(meta.ReferenceValues) > 0 {
		refs := domain.NewReferenceValues()
		for _, ref := range meta.ReferenceValues {
			refValues, err := s.values(ctx, ref.ReferenceValueID, span)
			if err != nil {
				return nil, err
			}
			refs.Put(ref.ReferenceValueID, &domain.TimeseriesData{Values: refValues})
		}
		data.Metadata.ReferenceValues = refs
	}
	return data, nil
}

func (s *InfluxSource) values(ctx context.Context, id string, span *domain.Timespan) ([]domain.ValuePoint, error) {
	query := buildFluxQuery(s.cfg.Bucket, s.cfg.Measurement, id, span)
	s.log.Trace().Str("query", query).Msg("Running flux query")

	result, err := s.query.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("influx query for %s failed: %w", id, err)
	}
	defer result.Close()

	values := []domain.ValuePoint{}
	for result.Next() {
		record := result.Record()
		if v, ok := toFloat(record.Value()); ok {
			values = append(values, domain.ValuePoint{Timestamp: record.Time(), Value: v})
		}
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("error parsing influx result for %s: %w", id, result.Err())
	}
	return values, nil
}

// InsertValues writes values of a series as points
func (s *InfluxSource) InsertValues(ctx context.Context, seriesID string, values []domain.ValuePoint) error {
	for _, v := range values {
		p := influxdb2.NewPoint(s.cfg.Measurement,
			map[string]string{"series_id": seriesID},
			map[string]interface{}{"value": v.Value},
			v.Timestamp,
		)
		if err := s.writer.WritePoint(ctx, p); err != nil {
			return fmt.Errorf("failed to write value of %s: %w", seriesID, err)
		}
	}
	return nil
}

// buildFluxQuery selects the values of one series in time order.
// Flux needs a range start, so an open span starts at the epoch.
func buildFluxQuery(bucket, measurement, seriesID string, span *domain.Timespan) string {
	start, stop := "0", "now()"
	if span != nil {
		start = span.Start.UTC().Format(time.RFC3339Nano)
		// range stop is exclusive, the span end is not
		stop = span.End.Add(time.Nanosecond).UTC().Format(time.RFC3339Nano)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %q)\n", bucket)
	fmt.Fprintf(&b, "  |> range(start: %s, stop: %s)\n", start, stop)
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r._measurement == %q and r.series_id == %q and r._field == \"value\")\n", measurement, seriesID)
	b.WriteString("  |> sort(columns: [\"_time\"])\n")
	return b.String()
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
