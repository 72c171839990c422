// Package rendercache stores rendered chart documents with an expiry so that
// repeated render requests are served without touching the measurement source.
package rendercache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Entry is one cached render output
type Entry struct {
	RenderID    string `msgpack:"render_id"`
	Format      string `msgpack:"format"`
	ContentType string `msgpack:"content_type"`
	Body        []byte `msgpack:"body"`
}

// Repository provides cache operations on render_cache (cache.db)
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new render cache repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Key derives the cache key of a request in a given format.
// The request is hashed in its JSON form.
func Key(format string, request interface{}) (string, error) {
	b, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache key: %w", err)
	}
	sum := sha256.Sum256(append([]byte(format+"\x00"), b...))
	return hex.EncodeToString(sum[:]), nil
}

// Store saves an entry with expiration = now + ttl, replacing any previous one
func (r *Repository) Store(key string, entry Entry, ttl time.Duration) error {
	data, err := msgpack.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	now := r.now()
	_, err = r.db.Exec(
		"INSERT OR REPLACE INTO render_cache (key, format, data, created_at, expires_at) VALUES (?, ?, ?, ?, ?)",
		key, entry.Format, data, now.Unix(), now.Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store render %s: %w", key, err)
	}
	return nil
}

// GetIfFresh returns the entry only if it has not expired.
// Returns nil, nil if the key doesn't exist or the entry is expired.
func (r *Repository) GetIfFresh(key string) (*Entry, error) {
	var data []byte
	err := r.db.QueryRow(
		"SELECT data FROM render_cache WHERE key = ? AND expires_at > ?",
		key, r.now().Unix(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get render %s: %w", key, err)
	}

	var entry Entry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry %s: %w", key, err)
	}
	return &entry, nil
}

// Delete removes a specific entry
func (r *Repository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM render_cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete render %s: %w", key, err)
	}
	return nil
}

// DeleteExpired removes all entries with expires_at <= now.
// Returns the number of rows deleted.
func (r *Repository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec("DELETE FROM render_cache WHERE expires_at <= ?", r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired renders: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Count returns the number of cached entries, expired ones included
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM render_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count renders: %w", err)
	}
	return n, nil
}
