package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceValues_KeepsInsertionOrder(t *testing.T) {
	refs := NewReferenceValues()
	refs.Put("zeta", &TimeseriesData{})
	refs.Put("alpha", &TimeseriesData{})
	refs.Put("mid", &TimeseriesData{})
	// Replacing keeps the original position
	refs.Put("zeta", &TimeseriesData{Values: []ValuePoint{{Value: 1}}})

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, refs.Keys())
	assert.Equal(t, 3, refs.Len())

	var visited []string
	for id := range refs.All() {
		visited = append(visited, id)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, visited)

	zeta, ok := refs.Get("zeta")
	require.True(t, ok)
	assert.Len(t, zeta.Values, 1)
}

func TestReferenceValues_NilSafe(t *testing.T) {
	var refs *ReferenceValues
	assert.Equal(t, 0, refs.Len())
	assert.Nil(t, refs.Keys())
	_, ok := refs.Get("x")
	assert.False(t, ok)
	for range refs.All() {
		t.Fatal("nil map must not yield")
	}
}

func TestReferenceValues_JSONPreservesOrder(t *testing.T) {
	raw := `{"values":[],"metadata":{"referenceValues":[
		{"id":"ref-b","data":{"values":[{"timestamp":"2024-01-01T00:00:00Z","value":2}]}},
		{"id":"ref-a","data":{"values":[]}}
	]}}`

	var data TimeseriesData
	require.NoError(t, json.Unmarshal([]byte(raw), &data))

	assert.True(t, data.HasReferenceValues())
	assert.False(t, data.HasValues())
	assert.Equal(t, []string{"ref-b", "ref-a"}, data.Metadata.ReferenceValues.Keys())

	out, err := json.Marshal(data.Metadata.ReferenceValues)
	require.NoError(t, err)
	assert.Less(t, indexOf(string(out), "ref-b"), indexOf(string(out), "ref-a"))
}

func TestReferenceValues_RejectsMissingID(t *testing.T) {
	var refs ReferenceValues
	err := json.Unmarshal([]byte(`[{"data":{"values":[]}}]`), &refs)
	assert.Error(t, err)
}

func TestTimeseriesMetadata_ReferenceValueAndSpan(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	last := first.Add(48 * time.Hour)
	meta := TimeseriesMetadata{
		ID:              "ts-1",
		FirstValue:      &first,
		LastValue:       &last,
		ReferenceValues: []ReferenceValueOutput{{ReferenceValueID: "r1", Label: "Mean water level"}},
	}

	ref, ok := meta.ReferenceValue("r1")
	require.True(t, ok)
	assert.Equal(t, "Mean water level", ref.Label)

	_, ok = meta.ReferenceValue("r2")
	assert.False(t, ok)

	span, ok := meta.Span()
	require.True(t, ok)
	assert.Equal(t, first, span.Start)
	assert.Equal(t, last, span.End)

	_, ok = TimeseriesMetadata{}.Span()
	assert.False(t, ok)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
