package timeseries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/seriesplot/internal/database"
	"github.com/aristath/seriesplot/internal/domain"
)

// Repository stores timeseries in SQLite (timeseries.db)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a timeseries repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "timeseries").Logger(),
	}
}

// Metadata loads a timeseries with its references in position order
func (r *Repository) Metadata(ctx context.Context, id string) (domain.TimeseriesMetadata, error) {
	var (
		meta        domain.TimeseriesMetadata
		first, last sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, feature_id, feature_label, phenomenon_id, phenomenon_label, uom, first_value, last_value
		FROM timeseries WHERE id = ?`, id).Scan(
		&meta.ID, &meta.Feature.ID, &meta.Feature.Label,
		&meta.Phenomenon.ID, &meta.Phenomenon.Label, &meta.UOM, &first, &last,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TimeseriesMetadata{}, fmt.Errorf("%w: %s", domain.ErrTimeseriesNotFound, id)
	}
	if err != nil {
		return domain.TimeseriesMetadata{}, fmt.Errorf("failed to load timeseries %s: %w", id, err)
	}
	meta.FirstValue = fromMillis(first)
	meta.LastValue = fromMillis(last)

	rows, err := r.db.QueryContext(ctx, `
		SELECT reference_id, label FROM reference_values
		WHERE series_id = ? ORDER BY position, reference_id`, id)
	if err != nil {
		return domain.TimeseriesMetadata{}, fmt.Errorf("failed to load references of %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref domain.ReferenceValueOutput
		if err := rows.Scan(&ref.ReferenceValueID, &ref.Label); err != nil {
			return domain.TimeseriesMetadata{}, fmt.Errorf("failed to scan reference of %s: %w", id, err)
		}
		meta.ReferenceValues = append(meta.ReferenceValues, ref)
	}
	if err := rows.Err(); err != nil {
		return domain.TimeseriesMetadata{}, fmt.Errorf("failed to iterate references of %s: %w", id, err)
	}

	return meta, nil
}

// Data loads values of a timeseries and of each of its references
func (r *Repository) Data(ctx context.Context, id string, span *domain.Timespan) (*domain.TimeseriesData, error) {
	meta, err := r.Metadata(ctx, id)
	if err != nil {
		return nil, err
	}

	values, err := r.values(ctx, id, span)
	if err != nil {
		return nil, err
	}
	data := &domain.TimeseriesData{Values: values}

	if len(meta.ReferenceValues) > 0 {
		refs := domain.NewReferenceValues()
		for _, ref := range meta.ReferenceValues {
			refValues, err := r.values(ctx, ref.ReferenceValueID, span)
			if err != nil {
				return nil, err
			}
			refs.Put(ref.ReferenceValueID, &domain.TimeseriesData{Values: refValues})
		}
		data.Metadata.ReferenceValues = refs
	}

	r.log.Debug().
		Str("series_id", id).
		Int("values", len(values)).
		Int("references", len(meta.ReferenceValues)).
		Msg("Loaded timeseries")

	return data, nil
}

func (r *Repository) values(ctx context.Context, id string, span *domain.Timespan) ([]domain.ValuePoint, error) {
	from, to := int64(math.MinInt64), int64(math.MaxInt64)
	if span != nil {
		from, to = span.Start.UnixMilli(), span.End.UnixMilli()
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ts, value FROM measurements
		WHERE series_id = ? AND ts >= ? AND ts <= ?
		ORDER BY ts`, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query values of %s: %w", id, err)
	}
	defer rows.Close()

	values := []domain.ValuePoint{}
	for rows.Next() {
		var (
			ts    int64
			value float64
		)
		if err := rows.Scan(&ts, &value); err != nil {
			return nil, fmt.Errorf("failed to scan value of %s: %w", id, err)
		}
		values = append(values, domain.ValuePoint{Timestamp: time.UnixMilli(ts).UTC(), Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate values of %s: %w", id, err)
	}
	return values, nil
}

// UpsertMetadata stores a timeseries and replaces its reference list
func (r *Repository) UpsertMetadata(ctx context.Context, meta domain.TimeseriesMetadata) error {
	if meta.ID == "" {
		return fmt.Errorf("timeseries id must not be empty")
	}

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO timeseries (id, feature_id, feature_label, phenomenon_id, phenomenon_label, uom, first_value, last_value)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				feature_id = excluded.feature_id,
				feature_label = excluded.feature_label,
				phenomenon_id = excluded.phenomenon_id,
				phenomenon_label = excluded.phenomenon_label,
				uom = excluded.uom,
				first_value = excluded.first_value,
				last_value = excluded.last_value`,
			meta.ID, meta.Feature.ID, meta.Feature.Label, meta.Phenomenon.ID, meta.Phenomenon.Label,
			meta.UOM, toMillis(meta.FirstValue), toMillis(meta.LastValue),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert timeseries %s: %w", meta.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM reference_values WHERE series_id = ?`, meta.ID); err != nil {
			return fmt.Errorf("failed to clear references of %s: %w", meta.ID, err)
		}
		for pos, ref := range meta.ReferenceValues {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO reference_values (series_id, reference_id, label, position)
				VALUES (?, ?, ?, ?)`, meta.ID, ref.ReferenceValueID, ref.Label, pos)
			if err != nil {
				return fmt.Errorf("failed to store reference %s of %s: %w", ref.ReferenceValueID, meta.ID, err)
			}
		}
		return nil
	})
}

// InsertValues stores measurements. A value at an existing timestamp replaces it.
func (r *Repository) InsertValues(ctx context.Context, seriesID string, values []domain.ValuePoint) error {
	if len(values) == 0 {
		return nil
	}

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO measurements (series_id, ts, value) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, v := range values {
			if _, err := stmt.ExecContext(ctx, seriesID, v.Timestamp.UnixMilli(), v.Value); err != nil {
				return fmt.Errorf("failed to insert value of %s: %w", seriesID, err)
			}
		}
		return nil
	})
}

// Count returns the number of stored timeseries
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM timeseries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count timeseries: %w", err)
	}
	return n, nil
}

func toMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}
