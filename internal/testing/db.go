// Package testing provides test helpers for the seriesplot project.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/aristath/seriesplot/internal/database"
)

// NewTestDB creates a file-backed SQLite database with the embedded schema
// for name applied ("timeseries" or "cache"). The returned cleanup closes and
// removes the database and is safe to call more than once.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	db, tmpPath := newTempDB(t, name)
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}
	return db, cleanupFunc(t, db, tmpPath)
}

// NewTestDBWithSchema creates a test database and executes schema on it
func NewTestDBWithSchema(t *testing.T, name string, schema string) (*database.DB, func()) {
	t.Helper()

	db, tmpPath := newTempDB(t, name)
	if schema != "" {
		if _, err := db.Conn().Exec(schema); err != nil {
			_ = db.Close()
			_ = os.Remove(tmpPath)
			t.Fatalf("Failed to execute custom schema for test database %s: %v", name, err)
		}
	}
	return db, cleanupFunc(t, db, tmpPath)
}

func newTempDB(t *testing.T, name string) (*database.DB, string) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	profile := database.ProfileStandard
	if name == database.NameCache {
		profile = database.ProfileCache
	}

	db, err := database.New(database.Config{Path: tmpPath, Profile: profile, Name: name})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	return db, tmpPath
}

func cleanupFunc(t *testing.T, db *database.DB, tmpPath string) func() {
	closed := false
	return func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", db.Name(), err)
		}
		for _, p := range []string{tmpPath, tmpPath + "-wal", tmpPath + "-shm"} {
			_ = os.Remove(p)
		}
	}
}
