package memories

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/vdhoang/botui/internal/apperr"
	"github.com/vdhoang/botui/internal/dates"
	"github.com/vdhoang/botui/internal/models"
)

// SaveInput carries the user-editable fields of a record. A zero ID means
// create; a non-zero ID means update.
type SaveInput struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	EventDate   string `json:"eventDate"`
	ImageBase64 string `json:"imageBase64"`
}

// Validate checks the fields that must never reach the network invalid.
func (in SaveInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.EventDate, validation.Required, validation.Date(dates.ISO)),
	)
	if err != nil {
		return fmt.Errorf("memories: %v: %w", err, apperr.ErrValidation)
	}
	return nil
}

// Save creates or updates a record and then refreshes the list so the
// authoritative order and any server-side id reassignment are reflected.
func (c *Collection) Save(ctx context.Context, in SaveInput) (models.Memory, error) {
	if err := in.Validate(); err != nil {
		return models.Memory{}, err
	}

	var record models.Memory
	if in.ID == 0 {
		now := c.now()
		record = models.Memory{
			ID:          now.UnixMilli(),
			Title:       in.Title,
			Text:        in.Text,
			EventDate:   in.EventDate,
			ImageBase64: in.ImageBase64,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	} else {
		existing, err := c.existingRecord(ctx, in.ID)
		if err != nil {
			return models.Memory{}, err
		}
		record = existing
		record.Title = in.Title
		record.Text = in.Text
		record.EventDate = in.EventDate
		record.ImageBase64 = in.ImageBase64
		record.UpdatedAt = c.now()
		undeleteOnUpdate(&record)
	}

	saved, err := c.remote.SaveMemory(ctx, record)
	if err != nil {
		return models.Memory{}, err
	}

	c.mu.Lock()
	if in.ID == 0 {
		// A fresh record's authoritative shape comes from the reload.
		delete(c.detail, saved.ID)
	} else {
		c.detail[saved.ID] = &saved
	}
	c.mu.Unlock()

	if c.mirror != nil {
		_ = c.mirror.UpsertMemory(saved)
	}

	if err := c.Refresh(ctx); err != nil {
		return saved, err
	}
	if in.ID == 0 {
		c.emit("created", saved.ID)
	} else {
		c.emit("updated", saved.ID)
	}
	return saved, nil
}

// undeleteOnUpdate clears the soft-delete flag on every update. This is the
// only path that resurrects a record; keep it in one place so the behavior
// can be revisited without hunting through merge logic.
func undeleteOnUpdate(m *models.Memory) {
	m.IsDeleted = false
}

// Delete soft-deletes a record: it sends an update carrying isDeleted=true
// and a fresh updatedAt, never a physical removal, then refreshes the list.
func (c *Collection) Delete(ctx context.Context, id int64) error {
	record, err := c.existingRecord(ctx, id)
	if err != nil {
		return err
	}
	record.IsDeleted = true
	record.UpdatedAt = c.now()

	saved, err := c.remote.SaveMemory(ctx, record)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.detail[saved.ID] = &saved
	c.mu.Unlock()

	if c.mirror != nil {
		_ = c.mirror.UpsertMemory(saved)
	}

	if err := c.Refresh(ctx); err != nil {
		return err
	}
	c.emit("deleted", id)
	return nil
}

// existingRecord resolves the current shape of a record for merging: the
// detail cache first, then a remote load, then the bare basic entry.
func (c *Collection) existingRecord(ctx context.Context, id int64) (models.Memory, error) {
	c.mu.Lock()
	if d, ok := c.detail[id]; ok {
		m := *d
		c.mu.Unlock()
		return m, nil
	}
	s, listed := c.inBasicLocked(id)
	c.mu.Unlock()

	if m, err := c.remote.LoadMemory(ctx, id); err == nil {
		return *m, nil
	}
	if listed {
		return models.Memory{
			ID:        s.ID,
			Title:     s.Title,
			EventDate: s.EventDate,
			UpdatedAt: s.UpdatedAt,
		}, nil
	}
	return models.Memory{}, fmt.Errorf("memories: record %d: %w", id, apperr.ErrNotFound)
}
