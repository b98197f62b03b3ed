package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vdhoang/botui/internal/apperr"
	"github.com/vdhoang/botui/internal/models"
)

// UpsertMemory inserts or replaces a mirrored record.
func (db *DB) UpsertMemory(m models.Memory) error {
	_, err := db.conn.Exec(`
		INSERT INTO memories (id, title, body, event_date, image_base64, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title        = excluded.title,
			body         = excluded.body,
			event_date   = excluded.event_date,
			image_base64 = excluded.image_base64,
			is_deleted   = excluded.is_deleted,
			updated_at   = excluded.updated_at
	`, m.ID, m.Title, m.Text, m.EventDate, m.ImageBase64, m.IsDeleted, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: upsert memory: %w", err)
	}
	return nil
}

// GetMemory returns the mirrored record for id.
func (db *DB) GetMemory(id int64) (*models.Memory, error) {
	var m models.Memory
	var deleted int
	err := db.conn.QueryRow(`
		SELECT id, title, body, event_date, image_base64, is_deleted, created_at, updated_at
		FROM memories WHERE id = ?
	`, id).Scan(&m.ID, &m.Title, &m.Text, &m.EventDate, &m.ImageBase64, &deleted, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get memory: %w", err)
	}
	m.IsDeleted = deleted != 0
	return &m, nil
}

// ListMemories returns mirrored records ordered by event date descending.
// Soft-deleted records are included; filtering is the caller's concern.
func (db *DB) ListMemories() ([]models.Memory, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, body, event_date, image_base64, is_deleted, created_at, updated_at
		FROM memories ORDER BY event_date DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list memories: %w", err)
	}
	defer rows.Close()

	var out []models.Memory
	for rows.Next() {
		var m models.Memory
		var deleted int
		if err := rows.Scan(&m.ID, &m.Title, &m.Text, &m.EventDate, &m.ImageBase64, &deleted, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.IsDeleted = deleted != 0
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMemory removes a mirrored record entirely. Used when an id disappears
// from a fresh basic index, not for user-facing soft deletes.
func (db *DB) DeleteMemory(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM memories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete memory: %w", err)
	}
	return nil
}

// AllMemoryIDs returns the set of mirrored ids.
func (db *DB) AllMemoryIDs() (map[int64]struct{}, error) {
	rows, err := db.conn.Query(`SELECT id FROM memories`)
	if err != nil {
		return nil, fmt.Errorf("store: all memory ids: %w", err)
	}
	defer rows.Close()
	out := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}
