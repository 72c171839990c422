package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/seriesplot/internal/database"
	"github.com/aristath/seriesplot/internal/domain"
	"github.com/aristath/seriesplot/internal/modules/timeseries"
	"github.com/aristath/seriesplot/internal/rendercache"
	"github.com/aristath/seriesplot/internal/services"
	fixtures "github.com/aristath/seriesplot/internal/testing"
)

func setupCacheDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db, database.NameCache))
	return db
}

func newTestHandler(t *testing.T, withCache bool) (*Handler, *fixtures.MockSource, *Metrics) {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	src := fixtures.NewMockSource()
	src.Add(fixtures.NewMetadataFixture("a"), fixtures.NewDataFixture("a", 2))
	src.Add(fixtures.NewMetadataFixture("b"), fixtures.NewDataFixture("b", 2))

	noFeature := fixtures.NewMetadataFixture("nameless")
	noFeature.Feature.Label = ""
	src.Add(noFeature, fixtures.NewDataFixture("nameless", 1))

	svc := services.NewRenderService(timeseries.NewService(src, logger), time.UTC, false, logger)

	var cache *rendercache.Repository
	if withCache {
		cache = rendercache.NewRepository(setupCacheDB(t))
	}
	metrics := NewMetrics(prometheus.NewRegistry())
	return NewHandler(svc, cache, time.Hour, metrics, logger), src, metrics
}

func postRender(h *Handler, query string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/charts/render"+query, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleRender(w, req)
	return w
}

func TestHandleRender(t *testing.T) {
	handler, _, _ := newTestHandler(t, false)

	tests := []struct {
		name           string
		query          string
		body           string
		expectedStatus int
		validate       func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "json document",
			body:           `{"timeseries":["a","b"],"styles":{"b":{"chartType":"bar","properties":{"interval":"byDay"}}}}`,
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
				var doc struct {
					Datasets []struct {
						Index int    `json:"index"`
						Kind  string `json:"kind"`
						Axis  int    `json:"axis"`
					} `json:"datasets"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
				require.Len(t, doc.Datasets, 4)
				assert.Equal(t, "bar", doc.Datasets[1].Kind)
				assert.Equal(t, 1, doc.Datasets[3].Axis)
			},
		},
		{
			name:           "csv",
			query:          "?format=csv",
			body:           `{"timeseries":["a"]}`,
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.True(t, strings.HasPrefix(w.Body.String(), "chartId,start,end,value"))
			},
		},
		{
			name:           "echarts",
			query:          "?format=echarts",
			body:           `{"timeseries":["a"]}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "msgpack",
			query:          "?format=msgpack",
			body:           `{"timeseries":["a"]}`,
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "application/msgpack", w.Header().Get("Content-Type"))
			},
		},
		{name: "unknown format", query: "?format=png", body: `{"timeseries":["a"]}`, expectedStatus: http.StatusBadRequest},
		{name: "malformed body", body: `{"timeseries":`, expectedStatus: http.StatusBadRequest},
		{name: "empty request", body: `{"timeseries":[]}`, expectedStatus: http.StatusBadRequest},
		{name: "duplicate series", body: `{"timeseries":["a","a"]}`, expectedStatus: http.StatusBadRequest},
		{name: "bad timespan", body: `{"timeseries":["a"],"timespan":"yesterday"}`, expectedStatus: http.StatusBadRequest},
		{name: "unknown series", body: `{"timeseries":["zzz"]}`, expectedStatus: http.StatusNotFound},
		{name: "series without feature label", body: `{"timeseries":["nameless"]}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postRender(handler, tt.query, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.validate != nil {
				tt.validate(t, w)
			}
		})
	}
}

func TestHandleRender_Cache(t *testing.T) {
	handler, src, metrics := newTestHandler(t, true)
	body := `{"timeseries":["a"]}`

	first := postRender(handler, "", body)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "miss", first.Header().Get("X-Render-Cache"))
	calls := src.Calls()

	second := postRender(handler, "", body)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "hit", second.Header().Get("X-Render-Cache"))
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.Equal(t, calls, src.Calls(), "cached render must not load data")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheHits))

	csv := postRender(handler, "?format=csv", body)
	assert.Equal(t, "miss", csv.Header().Get("X-Render-Cache"))
}

func TestHandleRender_Metrics(t *testing.T) {
	handler, _, metrics := newTestHandler(t, false)

	postRender(handler, "", `{"timeseries":["a"]}`)
	postRender(handler, "", `{"timeseries":["zzz"]}`)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.renders.WithLabelValues("json", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.renders.WithLabelValues("json", "404")))
}

func TestHandleGetDataset(t *testing.T) {
	handler, _, _ := newTestHandler(t, false)

	tests := []struct {
		name           string
		id             string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{name: "line default", id: "a", expectedStatus: http.StatusOK, expectedCount: 48},
		{name: "daily bars", id: "a", query: "?chartType=bar&interval=byDay", expectedStatus: http.StatusOK, expectedCount: 1},
		{name: "daily bars flushed", id: "a", query: "?chartType=bar&interval=byDay&flushTrailing=true", expectedStatus: http.StatusOK, expectedCount: 2},
		{name: "bad flush flag", id: "a", query: "?flushTrailing=maybe", expectedStatus: http.StatusBadRequest},
		{name: "bad timespan", id: "a", query: "?timespan=x", expectedStatus: http.StatusBadRequest},
		{name: "unknown", id: "zzz", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/charts/timeseries/"+tt.id+"/dataset"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.HandleGetDataset(w, req, tt.id)

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var response struct {
				Data struct {
					Count int `json:"count"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedCount, response.Data.Count)
		})
	}
}

func TestHandleGetIntervals(t *testing.T) {
	handler, _, _ := newTestHandler(t, false)

	w := httptest.NewRecorder()
	handler.HandleGetIntervals(w, httptest.NewRequest("GET", "/api/charts/intervals", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Data struct {
			Intervals map[string]string `json:"intervals"`
			Default   string            `json:"default"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "day", response.Data.Intervals["byDay"])
	assert.Equal(t, "week", response.Data.Default)
}

func TestStatusFor(t *testing.T) {
	status, _ := statusFor(domain.ErrTimeseriesNotFound)
	assert.Equal(t, http.StatusNotFound, status)

	status, msg := statusFor(bytes.ErrTooLarge)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to render chart", msg)
}
