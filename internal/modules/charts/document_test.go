package charts

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/seriesplot/internal/domain"
)

func renderDocument(t *testing.T) Document {
	t.Helper()
	values := points(t0, 1.5, t0.Add(time.Second), 2.0)
	surface := NewSurface()
	result, err := NewOrchestrator(&fakeFactory{}, silentLogger()).Render([]SeriesInput{
		seriesInput("ts_1", "A", domain.DefaultStyle(), values, "ref"),
	}, surface)
	require.NoError(t, err)
	return NewDocument(result, surface)
}

func TestNewDocument(t *testing.T) {
	doc := renderDocument(t)

	assert.NotEmpty(t, doc.RenderID)
	require.Len(t, doc.Datasets, 2)
	require.Len(t, doc.Axes, 1)

	primary := doc.Datasets[0]
	assert.Equal(t, 0, primary.Index)
	assert.Equal(t, "ts_1", primary.SeriesID)
	assert.Empty(t, primary.ReferenceID)
	assert.Equal(t, "line", primary.Kind)
	assert.Equal(t, "#000000", primary.Color)
	assert.Len(t, primary.Points, 2)
	assert.Equal(t, 3.5, primary.Summary.Sum)

	ref := doc.Datasets[1]
	assert.Equal(t, "ref", ref.ReferenceID)
	assert.Equal(t, 0, ref.Axis)
	assert.Equal(t, "#000001", ref.Color)

	assert.Equal(t, "Temperature [°C]", doc.Axes[0].Label)
}

func TestNewDocument_EmptySurface(t *testing.T) {
	doc := NewDocument(nil, NewSurface())
	assert.NotNil(t, doc.Datasets)
	assert.NotNil(t, doc.Axes)
	assert.Empty(t, doc.RenderID)
}

func TestWriteCSV(t *testing.T) {
	doc := renderDocument(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, doc))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"chartId", "start", "end", "value"}, rows[0])
	assert.Equal(t, "A (2024-03-01 00:00 - 2024-03-31 23:30)", rows[1][0])
	assert.Equal(t, "2024-03-04T00:00:00Z", rows[1][1])
	assert.Equal(t, "2024-03-04T00:00:01Z", rows[1][2])
	assert.Equal(t, "1.5", rows[1][3])
}
