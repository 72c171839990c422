// Package main provides the seriesctl command line tool.
//
// seriesctl renders chart datasets from JSON files without a running server
// and imports timeseries into the SQLite database the server reads.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/seriesplot/internal/database"
	"github.com/aristath/seriesplot/internal/domain"
	"github.com/aristath/seriesplot/internal/modules/charts"
	"github.com/aristath/seriesplot/internal/modules/timeseries"
	"github.com/aristath/seriesplot/internal/services"
	"github.com/aristath/seriesplot/pkg/logger"
)

// seriesFile is one entry of a --data file
type seriesFile struct {
	Metadata domain.TimeseriesMetadata `json:"metadata"`
	Data     *domain.TimeseriesData    `json:"data"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "seriesctl",
		Short:         "Render and import multi-series chart datasets",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: trace, debug, info, warn, error")

	newLogger := func(cmd *cobra.Command) zerolog.Logger {
		return logger.New(logger.Config{Level: logLevel, Pretty: true, Output: cmd.ErrOrStderr()})
	}

	rootCmd.AddCommand(
		newRenderCmd(newLogger),
		newImportCmd(newLogger),
		newIntervalsCmd(),
	)
	return rootCmd
}

func newRenderCmd(newLogger func(*cobra.Command) zerolog.Logger) *cobra.Command {
	var (
		requestPath   string
		dataPath      string
		format        string
		outputPath    string
		timezone      string
		flushTrailing bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a request against series read from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("invalid timezone: %w", err)
			}
			if _, ok := services.ContentType(format); !ok {
				return fmt.Errorf("unknown format: %s", format)
			}

			var req domain.RenderRequest
			if err := readJSON(requestPath, &req); err != nil {
				return err
			}
			if cmd.Flags().Changed("flush-trailing") {
				req.FlushTrailing = &flushTrailing
			}

			var entries []seriesFile
			if err := readJSON(dataPath, &entries); err != nil {
				return err
			}

			log := newLogger(cmd)
			source := timeseries.NewMemorySource()
			if err := load(cmd.Context(), source, entries); err != nil {
				return err
			}

			svc := services.NewRenderService(timeseries.NewService(source, log), loc, false, log)
			rendered, err := svc.Render(cmd.Context(), req)
			if err != nil {
				return err
			}
			body, err := svc.Encode(rendered, format)
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), outputPath, body)
		},
	}

	cmd.Flags().StringVar(&requestPath, "request", "", "Render request JSON file")
	cmd.Flags().StringVar(&dataPath, "data", "", "Series JSON file: [{\"metadata\":...,\"data\":...}]")
	cmd.Flags().StringVarP(&format, "format", "f", services.FormatJSON, "Output format: json, echarts, msgpack, csv, layout")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "Zone used for calendar-aligned intervals")
	cmd.Flags().BoolVar(&flushTrailing, "flush-trailing", false, "Emit the last bar interval instead of dropping it")
	_ = cmd.MarkFlagRequired("request")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newImportCmd(newLogger func(*cobra.Command) zerolog.Logger) *cobra.Command {
	var (
		dataPath string
		dbPath   string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import series from a JSON file into the timeseries database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []seriesFile
			if err := readJSON(dataPath, &entries); err != nil {
				return err
			}

			db, err := database.New(database.Config{
				Path:    dbPath,
				Profile: database.ProfileStandard,
				Name:    database.NameTimeseries,
			})
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Migrate(); err != nil {
				return err
			}

			repo := timeseries.NewRepository(db.Conn(), newLogger(cmd))
			if err := load(cmd.Context(), repo, entries); err != nil {
				return err
			}

			count, err := repo.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d series (%d stored)\n", len(entries), count)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "Series JSON file: [{\"metadata\":...,\"data\":...}]")
	cmd.Flags().StringVar(&dbPath, "db", "./data/timeseries.db", "Timeseries database path")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newIntervalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "intervals",
		Short: "List the recognized bar intervals",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			intervals := charts.RecognizedIntervals()
			names := make([]string, 0, len(intervals))
			for name := range intervals {
				names = append(names, name)
			}
			slices.Sort(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintf(out, "%-12s %s\n", name, intervals[name])
			}
			fmt.Fprintf(out, "default: %s\n", charts.GranularityWeek)
		},
	}
}

func load(ctx context.Context, w timeseries.Writer, entries []seriesFile) error {
	for _, e := range entries {
		if e.Metadata.ID == "" {
			return fmt.Errorf("series without id in data file")
		}
		if err := timeseries.Import(ctx, w, e.Metadata, e.Data); err != nil {
			return fmt.Errorf("failed to import %s: %w", e.Metadata.ID, err)
		}
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func writeOutput(stdout io.Writer, path string, body []byte) error {
	if path == "" {
		_, err := stdout.Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
