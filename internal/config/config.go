// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Measurement source kinds
const (
	SourceSQLite = "sqlite"
	SourceInflux = "influx"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the SQLite databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool
	Source   string // sqlite or influx
	Influx   InfluxConfig
	Charts   ChartsConfig
	Cache    CacheConfig
}

// InfluxConfig holds connection settings for the InfluxDB measurement source
type InfluxConfig struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// ChartsConfig holds rendering defaults
type ChartsConfig struct {
	FlushTrailingInterval bool           // Emit the last bar interval instead of dropping it
	Location              *time.Location // Zone used for calendar-aligned intervals
}

// CacheConfig holds render cache settings
type CacheConfig struct {
	TTL             time.Duration
	CleanupSchedule string // cron spec with seconds field
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("SERIESPLOT_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	loc, err := time.LoadLocation(getEnv("SERIESPLOT_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERIESPLOT_TIMEZONE: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnvAsInt("GO_PORT", 8001),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		Source:   getEnv("SERIESPLOT_SOURCE", SourceSQLite),
		Influx: InfluxConfig{
			URL:         getEnv("INFLUXDB_URL", ""),
			Token:       getEnv("INFLUXDB_TOKEN", ""),
			Org:         getEnv("INFLUXDB_ORG", ""),
			Bucket:      getEnv("INFLUXDB_BUCKET", ""),
			Measurement: getEnv("INFLUXDB_MEASUREMENT", "observation"),
		},
		Charts: ChartsConfig{
			FlushTrailingInterval: getEnvAsBool("SERIESPLOT_FLUSH_TRAILING_INTERVAL", false),
			Location:              loc,
		},
		Cache: CacheConfig{
			TTL:             getEnvAsDuration("SERIESPLOT_CACHE_TTL", 10*time.Minute),
			CleanupSchedule: getEnv("SERIESPLOT_CACHE_CLEANUP_SCHEDULE", "0 */5 * * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	switch c.Source {
	case SourceSQLite:
	case SourceInflux:
		if c.Influx.URL == "" || c.Influx.Bucket == "" {
			return fmt.Errorf("INFLUXDB_URL and INFLUXDB_BUCKET are required for the influx source")
		}
	default:
		return fmt.Errorf("unknown measurement source: %q (must be %s or %s)", c.Source, SourceSQLite, SourceInflux)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.Cache.TTL)
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Cache.CleanupSchedule); err != nil {
		return fmt.Errorf("invalid cache cleanup schedule %q: %w", c.Cache.CleanupSchedule, err)
	}

	return nil
}

// TimeseriesDBPath returns the path of the measurement database
func (c *Config) TimeseriesDBPath() string {
	return filepath.Join(c.DataDir, "timeseries.db")
}

// CacheDBPath returns the path of the render cache database
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
