package memories

import (
	"context"
	"errors"

	"github.com/vdhoang/botui/internal/apperr"
	"github.com/vdhoang/botui/internal/models"
)

// RequestDetail returns the cached full record for id, or fetches it.
//
// Returns (cached, nil) immediately on a cache hit, and (nil, nil) when a
// fetch for the same id is already in flight: that is a de-duplication guard,
// not a wait primitive — callers re-observe the cache after the "detail"
// event fires. A cached record whose updatedAt no longer matches the basic
// index is treated as stale and refetched.
func (c *Collection) RequestDetail(ctx context.Context, id int64) (*models.Memory, error) {
	c.mu.Lock()
	if d, ok := c.detail[id]; ok {
		if !c.staleLocked(id, d) {
			c.mu.Unlock()
			return d, nil
		}
	}
	if _, inflight := c.pending[id]; inflight {
		c.mu.Unlock()
		return nil, nil
	}
	c.pending[id] = struct{}{}
	c.mu.Unlock()

	m, err := c.remote.LoadMemory(ctx, id)
	if err != nil && errors.Is(err, apperr.ErrTransport) && c.mirror != nil {
		// The upstream is unreachable; serve the last mirrored copy instead.
		if cached, mirrorErr := c.mirror.GetMemory(id); mirrorErr == nil {
			m, err = cached, nil
		}
	}

	c.mu.Lock()
	delete(c.pending, id)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	// A refresh may have removed the id while the fetch was in flight; a
	// stale completion must not resurrect cache state.
	if _, ok := c.inBasicLocked(id); !ok {
		c.mu.Unlock()
		return m, nil
	}

	c.detail[id] = m
	c.updateDisplayLocked(id)
	c.mu.Unlock()

	if c.mirror != nil {
		_ = c.mirror.UpsertMemory(*m)
	}
	c.emit("detail", id)
	return m, nil
}

// staleLocked reports whether the cached record is older than the basic
// index claims.
func (c *Collection) staleLocked(id int64, d *models.Memory) bool {
	s, ok := c.inBasicLocked(id)
	if !ok || s.UpdatedAt.IsZero() {
		return false
	}
	return !s.UpdatedAt.Equal(d.UpdatedAt)
}

// updateDisplayLocked rewrites the already-disclosed row for id in place.
// A record that turns out to be soft-deleted is dropped from the display
// sequence instead.
func (c *Collection) updateDisplayLocked(id int64) {
	d := c.detail[id]
	for i := range c.display {
		if c.display[i].ID != id {
			continue
		}
		if d.IsDeleted {
			c.display = append(c.display[:i], c.display[i+1:]...)
			return
		}
		s := models.MemorySummary{ID: id, Title: d.Title, EventDate: d.EventDate, UpdatedAt: d.UpdatedAt}
		c.display[i] = c.buildItemLocked(s)
		return
	}
}
