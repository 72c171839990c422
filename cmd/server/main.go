// Package main is the entry point for the seriesplot chart dataset server.
//
// It serves multi-series chart datasets over HTTP: measurements and metadata
// come from SQLite (or InfluxDB for values), rendered documents are cached in
// a separate SQLite database, and maintenance jobs run on cron schedules.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/aristath/seriesplot/internal/config"
	"github.com/aristath/seriesplot/internal/database"
	chartshandlers "github.com/aristath/seriesplot/internal/modules/charts/handlers"
	"github.com/aristath/seriesplot/internal/modules/timeseries"
	"github.com/aristath/seriesplot/internal/rendercache"
	"github.com/aristath/seriesplot/internal/scheduler"
	"github.com/aristath/seriesplot/internal/server"
	"github.com/aristath/seriesplot/internal/services"
	"github.com/aristath/seriesplot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("source", cfg.Source).
		Msg("Starting seriesplot")

	timeseriesDB, err := openDatabase(cfg.TimeseriesDBPath(), database.ProfileStandard, database.NameTimeseries)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open timeseries database")
	}
	defer timeseriesDB.Close()

	cacheDB, err := openDatabase(cfg.CacheDBPath(), database.ProfileCache, database.NameCache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	repo := timeseries.NewRepository(timeseriesDB.Conn(), log)
	source, closeSource := measurementSource(cfg, repo, log)
	defer closeSource()

	renderService := services.NewRenderService(
		timeseries.NewService(source, log),
		cfg.Charts.Location,
		cfg.Charts.FlushTrailingInterval,
		log,
	)
	cache := rendercache.NewRepository(cacheDB.Conn())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	chartsHandler := chartshandlers.NewHandler(
		renderService,
		cache,
		cfg.Cache.TTL,
		chartshandlers.NewMetrics(registry),
		log,
	)

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.Cache.CleanupSchedule, rendercache.NewCleanupJob(cache, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
	}
	if err := sched.AddJob("0 0 * * * *", scheduler.NewWALCheckpointJob(log, timeseriesDB, cacheDB)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register WAL checkpoint job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:           log,
		Port:          cfg.Port,
		DevMode:       cfg.DevMode,
		ChartsHandler: chartsHandler,
		Registry:      registry,
		Databases:     []*database.DB{timeseriesDB, cacheDB},
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func openDatabase(path string, profile database.DatabaseProfile, name string) (*database.DB, error) {
	db, err := database.New(database.Config{Path: path, Profile: profile, Name: name})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// measurementSource picks where values are read from. Metadata always
// lives in the SQLite repository.
func measurementSource(cfg *config.Config, repo *timeseries.Repository, log zerolog.Logger) (timeseries.Source, func()) {
	if cfg.Source != config.SourceInflux {
		return repo, func() {}
	}

	influx := timeseries.NewInfluxSource(timeseries.InfluxConfig{
		URL:         cfg.Influx.URL,
		Token:       cfg.Influx.Token,
		Org:         cfg.Influx.Org,
		Bucket:      cfg.Influx.Bucket,
		Measurement: cfg.Influx.Measurement,
	}, repo, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := influx.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("url", cfg.Influx.URL).Msg("InfluxDB not reachable at startup")
	}
	return influx, influx.Close
}
