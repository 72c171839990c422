package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTempDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()
	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), "data", name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_CreatesDirectoryAndMigrates(t *testing.T) {
	db := newTempDB(t, NameTimeseries, "")
	assert.Equal(t, ProfileStandard, db.Profile())
	assert.Equal(t, NameTimeseries, db.Name())
	assert.True(t, filepath.IsAbs(db.Path()))

	require.NoError(t, db.Migrate())
	// idempotent
	require.NoError(t, db.Migrate())

	var n int
	err := db.Conn().QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('timeseries','reference_values','measurements')`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, db.HealthCheck(context.Background()))
	require.NoError(t, db.WALCheckpoint(""))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Positive(t, stats.PageSize)
}

func TestMigrate_Cache(t *testing.T) {
	db := newTempDB(t, NameCache, ProfileCache)
	require.NoError(t, db.Migrate())

	_, err := db.Conn().Exec(`INSERT INTO render_cache (key, format, data, created_at, expires_at) VALUES ('k', 'json', x'00', 1, 2)`)
	require.NoError(t, err)
}

func TestMigrate_UnknownName(t *testing.T) {
	db := newTempDB(t, "ledger", "")
	assert.Error(t, db.Migrate())
}

func TestBuildConnectionString(t *testing.T) {
	cs := buildConnectionString("/tmp/x.db", ProfileCache)
	assert.Contains(t, cs, "/tmp/x.db?_pragma=journal_mode(WAL)")
	assert.Contains(t, cs, "synchronous(OFF)")

	cs = buildConnectionString("file::memory:?cache=shared", ProfileStandard)
	assert.Contains(t, cs, "cache=shared&_pragma=journal_mode(WAL)")
	assert.Contains(t, cs, "synchronous(NORMAL)")
}

func TestWithTransaction(t *testing.T) {
	db := newTempDB(t, NameCache, ProfileCache)
	require.NoError(t, db.Migrate())
	conn := db.Conn()

	insert := func(tx *sql.Tx, key string) error {
		_, err := tx.Exec(`INSERT INTO render_cache (key, format, data, created_at, expires_at) VALUES (?, 'json', x'00', 1, 2)`, key)
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM render_cache`).Scan(&n))
		return n
	}

	require.NoError(t, WithTransaction(conn, func(tx *sql.Tx) error { return insert(tx, "a") }))
	assert.Equal(t, 1, count())

	boom := errors.New("boom")
	err := WithTransaction(conn, func(tx *sql.Tx) error {
		require.NoError(t, insert(tx, "b"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, count())

	err = WithTransaction(conn, func(tx *sql.Tx) error {
		require.NoError(t, insert(tx, "c"))
		panic("oops")
	})
	assert.ErrorContains(t, err, "panic in transaction")
	assert.Equal(t, 1, count())

	assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
}
