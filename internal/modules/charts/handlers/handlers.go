// Package handlers provides HTTP handlers for chart rendering.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/seriesplot/internal/domain"
	"github.com/aristath/seriesplot/internal/modules/charts"
	"github.com/aristath/seriesplot/internal/rendercache"
	"github.com/aristath/seriesplot/internal/services"
)

// maxRequestBytes bounds the size of a render request body
const maxRequestBytes = 1 << 20

// Handler handles chart HTTP requests
type Handler struct {
	renderService *services.RenderService
	cache         *rendercache.Repository
	cacheTTL      time.Duration
	metrics       *Metrics
	log           zerolog.Logger
}

// NewHandler creates a new charts handler. cache may be nil to disable caching.
func NewHandler(
	renderService *services.RenderService,
	cache *rendercache.Repository,
	cacheTTL time.Duration,
	metrics *Metrics,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		renderService: renderService,
		cache:         cache,
		cacheTTL:      cacheTTL,
		metrics:       metrics,
		log:           log.With().Str("handler", "charts").Logger(),
	}
}

// HandleRender handles POST /api/charts/render?format=json|echarts|msgpack|csv
func (h *Handler) HandleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = services.FormatJSON
	}
	contentType, ok := services.ContentType(format)
	if !ok {
		h.fail(w, format, http.StatusBadRequest, "Unknown format")
		return
	}

	var req domain.RenderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.fail(w, format, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, format, http.StatusBadRequest, err.Error())
		return
	}

	key, err := rendercache.Key(format, req)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to derive cache key")
		h.fail(w, format, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	if entry := h.cached(key); entry != nil {
		h.metrics.cacheHits.Inc()
		w.Header().Set("X-Render-Cache", "hit")
		h.write(w, format, entry.ContentType, entry.Body)
		return
	}

	start := time.Now()
	rendered, err := h.renderService.Render(r.Context(), req)
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Strs("timeseries", req.Timeseries).Msg("Failed to render chart")
		}
		h.fail(w, format, status, msg)
		return
	}

	body, err := h.renderService.Encode(rendered, format)
	if err != nil {
		h.log.Error().Err(err).Str("format", format).Msg("Failed to encode chart")
		h.fail(w, format, http.StatusInternalServerError, "Failed to encode chart")
		return
	}
	h.metrics.duration.WithLabelValues(format).Observe(time.Since(start).Seconds())

	if h.cache != nil {
		entry := rendercache.Entry{
			RenderID:    rendered.Result.RenderID,
			Format:      format,
			ContentType: contentType,
			Body:        body,
		}
		if err := h.cache.Store(key, entry, h.cacheTTL); err != nil {
			h.log.Warn().Err(err).Msg("Failed to cache render")
		}
	}

	w.Header().Set("X-Render-Cache", "miss")
	w.Header().Set("X-Render-ID", rendered.Result.RenderID)
	h.write(w, format, contentType, body)
}

// HandleGetDataset handles GET /api/charts/timeseries/{id}/dataset
//
// Query parameters: chartType (line|bar), interval (byHour|byDay|byWeek|byMonth),
// timespan (<start>/<end>), flushTrailing (bool).
func (h *Handler) HandleGetDataset(w http.ResponseWriter, r *http.Request, id string) {
	q := r.URL.Query()

	style := domain.DefaultStyle()
	if ct := q.Get("chartType"); ct != "" {
		style.ChartType = ct
	}
	if interval := q.Get("interval"); interval != "" {
		style.Properties = map[string]string{charts.IntervalProperty: interval}
	}

	var span *domain.Timespan
	if ts := q.Get("timespan"); ts != "" {
		parsed, err := domain.ParseTimespan(ts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		span = &parsed
	}

	var flush *bool
	if v := q.Get("flushTrailing"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Invalid flushTrailing", http.StatusBadRequest)
			return
		}
		flush = &b
	}

	series, err := h.renderService.Dataset(r.Context(), id, style, span, flush)
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("series_id", id).Msg("Failed to build dataset")
		}
		http.Error(w, msg, status)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"id":     id,
			"kind":   series.Kind.String(),
			"series": series,
			"count":  series.Len(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetIntervals handles GET /api/charts/intervals
func (h *Handler) HandleGetIntervals(w http.ResponseWriter, r *http.Request) {
	intervals := make(map[string]string)
	for name, g := range charts.RecognizedIntervals() {
		intervals[name] = g.String()
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"intervals": intervals,
			"default":   charts.GranularityWeek.String(),
		},
	})
}

func (h *Handler) cached(key string) *rendercache.Entry {
	if h.cache == nil {
		return nil
	}
	entry, err := h.cache.GetIfFresh(key)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read render cache")
		return nil
	}
	return entry
}

// statusFor maps render errors to HTTP status codes and client messages
func statusFor(err error) (int, string) {
	var cfgErr *charts.ConfigurationError
	switch {
	case errors.Is(err, domain.ErrTimeseriesNotFound),
		errors.Is(err, charts.ErrMissingTimeseries):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, charts.ErrDuplicateSeries),
		errors.As(err, &cfgErr):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Failed to render chart"
	}
}

func (h *Handler) fail(w http.ResponseWriter, format string, status int, msg string) {
	h.metrics.renders.WithLabelValues(format, strconv.Itoa(status)).Inc()
	http.Error(w, msg, status)
}

func (h *Handler) write(w http.ResponseWriter, format, contentType string, body []byte) {
	h.metrics.renders.WithLabelValues(format, strconv.Itoa(http.StatusOK)).Inc()
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.log.Error().Err(err).Msg("Failed to write response")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
