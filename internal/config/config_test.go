package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERIESPLOT_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, SourceSQLite, cfg.Source)
	assert.False(t, cfg.Charts.FlushTrailingInterval)
	assert.Equal(t, time.UTC, cfg.Charts.Location)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "0 */5 * * * *", cfg.Cache.CleanupSchedule)
	assert.Contains(t, cfg.TimeseriesDBPath(), "timeseries.db")
	assert.Contains(t, cfg.CacheDBPath(), "cache.db")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERIESPLOT_DATA_DIR", t.TempDir())
	t.Setenv("GO_PORT", "9100")
	t.Setenv("SERIESPLOT_FLUSH_TRAILING_INTERVAL", "true")
	t.Setenv("SERIESPLOT_TIMEZONE", "Europe/Berlin")
	t.Setenv("SERIESPLOT_CACHE_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.Charts.FlushTrailingInterval)
	assert.Equal(t, "Europe/Berlin", cfg.Charts.Location.String())
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("SERIESPLOT_DATA_DIR", t.TempDir())
	t.Setenv("SERIESPLOT_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:   8001,
			Source: SourceSQLite,
			Cache:  CacheConfig{TTL: time.Minute, CleanupSchedule: "@every 1m"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid sqlite", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Port = 0 }, true},
		{"unknown source", func(c *Config) { c.Source = "csv" }, true},
		{"influx without url", func(c *Config) { c.Source = SourceInflux }, true},
		{"influx configured", func(c *Config) {
			c.Source = SourceInflux
			c.Influx = InfluxConfig{URL: "http://localhost:8086", Bucket: "sensors"}
		}, false},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, true},
		{"bad schedule", func(c *Config) { c.Cache.CleanupSchedule = "every now and then" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
