package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/seriesplot/internal/database"
)

// SystemHandlers handles system monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	databases   []*database.DB

	// Overridable in tests; gopsutil readings are host dependent
	systemStats func() (float64, float64)
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, databases []*database.DB) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		databases:   databases,
	}
	h.systemStats = h.getSystemStats
	return h
}

// SystemStatusResponse represents the system status payload
type SystemStatusResponse struct {
	Status        string   `json:"status"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	Goroutines    int      `json:"goroutines"`
	CPUPercent    float64  `json:"cpu_percent"`
	MemoryPercent float64  `json:"memory_percent"`
	Databases     []DBInfo `json:"databases"`
	LastChecked   string   `json:"last_checked"`
}

// DBInfo describes one database
type DBInfo struct {
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	Healthy   bool    `json:"healthy"`
	SizeMB    float64 `json:"size_mb"`
	WALSizeMB float64 `json:"wal_size_mb"`
	PageCount int64   `json:"page_count"`
	Freelist  int64   `json:"freelist_count"`
}

// DatabaseStatsResponse represents the database statistics payload
type DatabaseStatsResponse struct {
	Databases   []DBInfo `json:"databases"`
	TotalSizeMB float64  `json:"total_size_mb"`
	LastChecked string   `json:"last_checked"`
}

// HandleSystemStatus returns process, host and database status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.systemStats()
	dbs := h.databaseInfo(r.Context())

	status := "healthy"
	for _, db := range dbs {
		if !db.Healthy {
			status = "degraded"
			break
		}
	}

	response := SystemStatusResponse{
		Status:        status,
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Databases:     dbs,
		LastChecked:   time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode system status")
	}
}

// HandleDatabaseStats returns database statistics
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	dbs := h.databaseInfo(r.Context())
	totalSizeMB := 0.0
	for _, db := range dbs {
		totalSizeMB += db.SizeMB + db.WALSizeMB
	}

	response := DatabaseStatsResponse{
		Databases:   dbs,
		TotalSizeMB: totalSizeMB,
		LastChecked: time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode database stats")
	}
}

func (h *SystemHandlers) databaseInfo(ctx context.Context) []DBInfo {
	infos := make([]DBInfo, 0, len(h.databases))
	for _, db := range h.databases {
		info := DBInfo{
			Name:    db.Name(),
			Path:    db.Path(),
			Healthy: db.HealthCheck(ctx) == nil,
		}

		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
		} else {
			info.SizeMB = float64(stats.SizeBytes) / 1024 / 1024
			info.WALSizeMB = float64(stats.WALSizeBytes) / 1024 / 1024
			info.PageCount = stats.PageCount
			info.Freelist = stats.FreelistCount
		}

		infos = append(infos, info)
	}
	return infos
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
