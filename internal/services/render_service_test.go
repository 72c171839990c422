package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/seriesplot/internal/domain"
	"github.com/aristath/seriesplot/internal/modules/charts"
	"github.com/aristath/seriesplot/internal/modules/charts/gochart"
	"github.com/aristath/seriesplot/internal/modules/timeseries"
	testutil "github.com/aristath/seriesplot/internal/testing"
)

func newRenderService(t *testing.T, flush bool) *RenderService {
	t.Helper()
	src := testutil.NewMockSource()
	src.Add(testutil.NewMetadataFixture("a"), testutil.NewDataFixture("a", 3))
	src.Add(testutil.NewMetadataFixture("b"), testutil.NewDataFixture("b", 3))
	return NewRenderService(timeseries.NewService(src, zerolog.Nop()), time.UTC, flush, zerolog.Nop())
}

var dailyBars = domain.StyleProperties{ChartType: "bar", Properties: map[string]string{"interval": "byDay"}}

func TestRenderService_Render(t *testing.T) {
	svc := newRenderService(t, false)

	r, err := svc.Render(context.Background(), domain.RenderRequest{
		Timeseries: []string{"a", "b"},
		Styles:     map[string]domain.StyleProperties{"b": dailyBars},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, r.Result.PrimaryCount)
	assert.Equal(t, 2, r.Result.ReferenceCount)
	require.Len(t, r.Document.Datasets, 4)
	assert.Equal(t, "Water level", r.Title)

	// three days of hourly values, trailing day dropped
	bars := r.Document.Datasets[1]
	assert.Equal(t, "bar", bars.Kind)
	assert.Len(t, bars.Points, 2)
	assert.NotEmpty(t, bars.Color)

	// reference of b follows reference of a and uses b's axis
	assert.Equal(t, "a_mean", r.Document.Datasets[2].ReferenceID)
	assert.Equal(t, "b_mean", r.Document.Datasets[3].ReferenceID)
	assert.Equal(t, 1, r.Document.Datasets[3].Axis)
}

func TestRenderService_FlushTrailingOverride(t *testing.T) {
	svc := newRenderService(t, false)
	flush := true

	r, err := svc.Render(context.Background(), domain.RenderRequest{
		Timeseries:    []string{"a"},
		Styles:        map[string]domain.StyleProperties{"a": dailyBars},
		FlushTrailing: &flush,
	})
	require.NoError(t, err)
	assert.Len(t, r.Document.Datasets[0].Points, 3)
}

func TestRenderService_InvalidRequest(t *testing.T) {
	svc := newRenderService(t, false)

	_, err := svc.Render(context.Background(), domain.RenderRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Render(context.Background(), domain.RenderRequest{Timeseries: []string{"a", "a"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Render(context.Background(), domain.RenderRequest{Timeseries: []string{"zzz"}})
	assert.ErrorIs(t, err, domain.ErrTimeseriesNotFound)
}

func TestRenderService_Encode(t *testing.T) {
	svc := newRenderService(t, true)
	r, err := svc.Render(context.Background(), domain.RenderRequest{Timeseries: []string{"a"}})
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		b, err := svc.Encode(r, FormatJSON)
		require.NoError(t, err)
		var doc charts.Document
		require.NoError(t, json.Unmarshal(b, &doc))
		assert.Equal(t, r.Result.RenderID, doc.RenderID)
	})

	t.Run("msgpack", func(t *testing.T) {
		b, err := svc.Encode(r, FormatMsgpack)
		require.NoError(t, err)
		var doc charts.Document
		require.NoError(t, msgpack.Unmarshal(b, &doc))
		assert.Len(t, doc.Datasets, 2)
	})

	t.Run("csv", func(t *testing.T) {
		b, err := svc.Encode(r, FormatCSV)
		require.NoError(t, err)
		rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
		require.NoError(t, err)
		// header + 72 hourly line points for the series and its reference
		assert.Len(t, rows, 1+72*2)
	})

	t.Run("echarts", func(t *testing.T) {
		b, err := svc.Encode(r, FormatECharts)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"series"`)
	})

	t.Run("layout uses default size", func(t *testing.T) {
		b, err := svc.Encode(r, FormatLayout)
		require.NoError(t, err)
		var layout gochart.Layout
		require.NoError(t, json.Unmarshal(b, &layout))
		assert.Equal(t, 1024, layout.Width)
		assert.Equal(t, 400, layout.Height)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := svc.Encode(r, "png")
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestRenderService_LayoutHonorsRequestedSize(t *testing.T) {
	svc := newRenderService(t, false)
	r, err := svc.Render(context.Background(), domain.RenderRequest{
		Timeseries: []string{"a"},
		Width:      800,
		Height:     300,
	})
	require.NoError(t, err)
	assert.Equal(t, 800, r.Width)
	assert.Equal(t, 300, r.Height)

	b, err := svc.Encode(r, FormatLayout)
	require.NoError(t, err)
	var layout gochart.Layout
	require.NoError(t, json.Unmarshal(b, &layout))

	assert.Equal(t, 800, layout.Width)
	assert.Equal(t, 300, layout.Height)
	assert.Equal(t, "Water level [cm]", layout.YAxis.Name)
	require.NotNil(t, layout.YAxis.Range)
	assert.Equal(t, [2]float64{0, 71}, *layout.YAxis.Range)
	assert.Nil(t, layout.YAxisSecondary)
	require.Len(t, layout.Series, 2)
	for _, s := range layout.Series {
		assert.Equal(t, "primary", s.Axis)
		assert.Equal(t, 72, s.Points)
	}
}

func TestRenderService_Dataset(t *testing.T) {
	svc := newRenderService(t, false)

	series, err := svc.Dataset(context.Background(), "a", dailyBars, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, series.Len())
}

func TestContentType(t *testing.T) {
	ct, ok := ContentType(FormatCSV)
	assert.True(t, ok)
	assert.Contains(t, ct, "text/csv")

	_, ok = ContentType("png")
	assert.False(t, ok)
}
