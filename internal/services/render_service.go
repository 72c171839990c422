package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/seriesplot/internal/domain"
	"github.com/aristath/seriesplot/internal/modules/charts"
	"github.com/aristath/seriesplot/internal/modules/charts/echarts"
	"github.com/aristath/seriesplot/internal/modules/charts/gochart"
	"github.com/aristath/seriesplot/internal/modules/timeseries"
)

// Output formats of a render
const (
	FormatJSON    = "json"
	FormatECharts = "echarts"
	FormatMsgpack = "msgpack"
	FormatCSV     = "csv"
	FormatLayout  = "layout"
)

var contentTypes = map[string]string{
	FormatJSON:    "application/json",
	FormatECharts: "application/json",
	FormatMsgpack: "application/msgpack",
	FormatCSV:     "text/csv; charset=utf-8",
	FormatLayout:  "application/json",
}

// ContentType returns the MIME type of a format, and whether the format is known
func ContentType(format string) (string, bool) {
	ct, ok := contentTypes[format]
	return ct, ok
}

// Rendered is the outcome of one render pass
type Rendered struct {
	Result   *charts.RenderResult
	Surface  *charts.Surface
	Document charts.Document
	Title    string
	Width    int // requested drawing size, zero for the renderer default
	Height   int
}

// RenderService loads series, places them on a plot and encodes the result
type RenderService struct {
	timeseries    *timeseries.Service
	renderers     charts.RendererFactory
	location      *time.Location
	flushTrailing bool
	log           zerolog.Logger
}

// NewRenderService creates a render service. flushTrailing is the default
// trailing interval policy; requests may override it.
func NewRenderService(ts *timeseries.Service, location *time.Location, flushTrailing bool, log zerolog.Logger) *RenderService {
	if location == nil {
		location = time.UTC
	}
	return &RenderService{
		timeseries:    ts,
		renderers:     gochart.NewRendererFactory(),
		location:      location,
		flushTrailing: flushTrailing,
		log:           log.With().Str("service", "render").Logger(),
	}
}

// Bucketer returns the bucketer for a request's trailing policy
func (s *RenderService) Bucketer(flushTrailing *bool) *charts.Bucketer {
	flush := s.flushTrailing
	if flushTrailing != nil {
		flush = *flushTrailing
	}
	return charts.NewBucketer(charts.WithFlushTrailing(flush), charts.WithLocation(s.location))
}

// Render runs a validated request through the orchestrator
func (s *RenderService) Render(ctx context.Context, req domain.RenderRequest) (*Rendered, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	inputs, rc, err := s.timeseries.Assemble(ctx, req)
	if err != nil {
		return nil, err
	}

	orchestrator := charts.NewOrchestrator(s.renderers, s.log,
		charts.WithBucketer(s.Bucketer(req.FlushTrailing)),
		charts.WithTimespan(rc.Timespan),
	)

	surface := charts.NewSurface()
	result, err := orchestrator.Render(inputs, surface)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("render_id", result.RenderID).
		Int("series", result.PrimaryCount).
		Int("references", result.ReferenceCount).
		Msg("Render completed")

	return &Rendered{
		Result:   result,
		Surface:  surface,
		Document: charts.NewDocument(result, surface),
		Title:    title(inputs),
		Width:    rc.Width,
		Height:   rc.Height,
	}, nil
}

// Encode writes a render in the given format
func (s *RenderService) Encode(r *Rendered, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return json.Marshal(r.Document)
	case FormatECharts:
		return echarts.Marshal(r.Surface, r.Title)
	case FormatMsgpack:
		return msgpack.Marshal(&r.Document)
	case FormatLayout:
		return json.Marshal(gochart.Describe(gochart.Chart(r.Surface, r.Title, r.Width, r.Height)))
	case FormatCSV:
		var buf bytes.Buffer
		if err := charts.WriteCSV(&buf, r.Document); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidRequest, format)
	}
}

// Dataset builds one series on its own, without slot allocation
func (s *RenderService) Dataset(ctx context.Context, id string, style domain.StyleProperties, span *domain.Timespan, flushTrailing *bool) (charts.NamedSeries, error) {
	return s.timeseries.Dataset(ctx, id, style, span, charts.NewSeriesBuilder(s.Bucketer(flushTrailing)))
}

func title(inputs []charts.SeriesInput) string {
	if len(inputs) == 0 {
		return ""
	}
	return inputs[0].Metadata.Phenomenon.Label
}
