package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CacheSet stores a value under key, replacing any previous value.
func (db *DB) CacheSet(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO kv_cache (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: cache set: %w", err)
	}
	return nil
}

// CacheGet returns the cached value for key. The second result reports
// whether the key was present; a missing key is not an error.
func (db *DB) CacheGet(key string) (string, bool, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM kv_cache WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: cache get: %w", err)
	}
	return value, true, nil
}

// CacheClear removes every cache entry whose key starts with prefix. An empty
// prefix clears the whole cache.
func (db *DB) CacheClear(prefix string) error {
	if _, err := db.conn.Exec(`DELETE FROM kv_cache WHERE key LIKE ? || '%'`, prefix); err != nil {
		return fmt.Errorf("store: cache clear: %w", err)
	}
	return nil
}
