package echarts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/seriesplot/internal/domain"
	"github.com/aristath/seriesplot/internal/modules/charts"
	"github.com/aristath/seriesplot/internal/modules/charts/gochart"
)

func populatedSurface(t *testing.T) *charts.Surface {
	t.Helper()
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	first, last := start, start.AddDate(0, 0, 2)
	meta := func(feature, phenomenon string) domain.TimeseriesMetadata {
		return domain.TimeseriesMetadata{
			Feature:    domain.Feature{Label: feature},
			Phenomenon: domain.Phenomenon{Label: phenomenon},
			UOM:        "mm",
			FirstValue: &first,
			LastValue:  &last,
		}
	}
	values := []domain.ValuePoint{
		{Timestamp: start, Value: 1},
		{Timestamp: start.Add(time.Hour), Value: 2},
		{Timestamp: start.Add(25 * time.Hour), Value: 4},
	}

	refs := domain.NewReferenceValues()
	refs.Put("mean", &domain.TimeseriesData{Values: values})

	surface := charts.NewSurface()
	o := charts.NewOrchestrator(gochart.NewRendererFactory(), zerolog.New(nil).Level(zerolog.Disabled),
		charts.WithBucketer(charts.NewBucketer(charts.WithFlushTrailing(true))))
	_, err := o.Render([]charts.SeriesInput{
		{
			ID:       "level",
			Data:     &domain.TimeseriesData{Values: values, Metadata: domain.DataMetadata{ReferenceValues: refs}},
			Style:    domain.DefaultStyle(),
			Metadata: meta("Gauge", "Level"),
		},
		{
			ID:       "rain",
			Data:     &domain.TimeseriesData{Values: values},
			Style:    domain.StyleProperties{ChartType: "bar", Properties: map[string]string{"interval": "byDay"}},
			Metadata: meta("Rain gauge", "Rainfall"),
		},
	}, surface)
	require.NoError(t, err)
	return surface
}

func TestMarshal(t *testing.T) {
	b, err := Marshal(populatedSurface(t), "gauge")
	require.NoError(t, err)

	var option map[string]any
	require.NoError(t, json.Unmarshal(b, &option))

	yAxes, ok := option["yAxis"].([]any)
	require.True(t, ok)
	require.Len(t, yAxes, 2)

	primary := yAxes[0].(map[string]any)
	assert.Equal(t, "Level [mm]", primary["name"])
	assert.Equal(t, 1.0, primary["min"])
	assert.Equal(t, 4.0, primary["max"])
	assert.NotContains(t, primary, "splitLine")

	secondary := yAxes[1].(map[string]any)
	assert.Equal(t, "Rainfall [mm]", secondary["name"])
	assert.Equal(t, 3.0, secondary["min"])
	assert.Equal(t, 4.0, secondary["max"])
	assert.Equal(t, map[string]any{"show": false}, secondary["splitLine"])

	series, ok := option["series"].([]any)
	require.True(t, ok)
	require.Len(t, series, 3)

	types := make([]string, 0, len(series))
	for _, s := range series {
		types = append(types, s.(map[string]any)["type"].(string))
	}
	assert.ElementsMatch(t, []string{"line", "line", "bar"}, types)
}

func TestBuild_ReferenceUsesParentAxis(t *testing.T) {
	line := Build(populatedSurface(t), "gauge")
	line.Validate()

	b, err := json.Marshal(line.JSON())
	require.NoError(t, err)

	var option struct {
		Series []struct {
			Name       string `json:"name"`
			Type       string `json:"type"`
			YAxisIndex int    `json:"yAxisIndex"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(b, &option))

	byName := map[string]int{}
	for _, s := range option.Series {
		byName[s.Name] = s.YAxisIndex
	}
	require.Len(t, byName, 3)
	assert.Equal(t, 0, byName["Gauge (2024-03-04 00:00 - 2024-03-06 00:00)"])
	assert.Equal(t, 0, byName["Gauge, mean (2024-03-04 00:00 - 2024-03-06 00:00)"])
	assert.Equal(t, 1, byName["Rain gauge (2024-03-04 00:00 - 2024-03-06 00:00)"])
}
