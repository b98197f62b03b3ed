// Package memories implements the list synchronization and cache layer for
// the memories journal: a two-tier representation (lightweight summaries vs
// full records), stale-first reads with authoritative network refresh, and
// batch-by-batch disclosure of entries to the presentation layer.
package memories

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/vdhoang/botui/internal/apperr"
	"github.com/vdhoang/botui/internal/dates"
	"github.com/vdhoang/botui/internal/models"
)

// BatchSize is the number of basic-index entries consumed per disclosure
// batch. Fixed on purpose: it paces infinite scroll, it is not a tunable.
const BatchSize = 10

// RemoteStore is the remote side the collection synchronizes against.
type RemoteStore interface {
	ListMemories(ctx context.Context) ([]models.MemorySummary, error)
	LoadMemory(ctx context.Context, id int64) (*models.Memory, error)
	SaveMemory(ctx context.Context, m models.Memory) (models.Memory, error)
}

// Mirror is the optional durable local side. Fetched records are written
// through to it, and it is read back when the upstream is unreachable: a cold
// start hydrates the whole index from it, a detail fetch falls back to the
// last mirrored copy. A nil mirror disables both.
type Mirror interface {
	UpsertMemory(m models.Memory) error
	GetMemory(id int64) (*models.Memory, error)
	ListMemories() ([]models.Memory, error)
	DeleteMemory(id int64) error
	AllMemoryIDs() (map[int64]struct{}, error)
}

// EventCallback is called after collection mutations.
// kind is one of "list", "detail", "created", "updated", "deleted".
type EventCallback func(kind string, id int64)

// DisplayState tags a DisplayItem as a skeleton (basic fields only) or a
// fully hydrated record, so consumers dispatch on the tag instead of probing
// for field presence.
type DisplayState string

const (
	DisplaySkeleton DisplayState = "skeleton"
	DisplayFull     DisplayState = "full"
)

// DisplayItem is one visible row of the journal.
type DisplayItem struct {
	State     DisplayState   `json:"state"`
	ID        int64          `json:"id"`
	Title     string         `json:"title"`
	EventDate string         `json:"eventDate"`
	Days      dates.Distance `json:"daysInfo"`
	IsLoading bool           `json:"isLoading"`
	Detail    *models.Memory `json:"detail,omitempty"`
}

// Collection owns the cache state for one memories view. Construct one per
// consumer and discard it when the view closes; there is no process-wide
// instance.
type Collection struct {
	remote RemoteStore
	mirror Mirror
	notify EventCallback
	now    func() time.Time

	mu         sync.Mutex
	basic      []models.MemorySummary
	detail     map[int64]*models.Memory
	pending    map[int64]struct{}
	disclosed  int
	display    []DisplayItem
	refreshSeq uint64
}

// New creates an empty collection backed by the given remote store and
// optional mirror.
func New(remote RemoteStore, mirror Mirror) *Collection {
	return &Collection{
		remote:  remote,
		mirror:  mirror,
		now:     time.Now,
		detail:  make(map[int64]*models.Memory),
		pending: make(map[int64]struct{}),
	}
}

// OnEvent registers the change-notification callback. Callers that need the
// eventual value of an in-flight detail fetch re-observe the cache after a
// "detail" event.
func (c *Collection) OnEvent(cb EventCallback) {
	c.notify = cb
}

func (c *Collection) emit(kind string, id int64) {
	if c.notify != nil {
		c.notify(kind, id)
	}
}

// Refresh replaces the basic index wholesale from the remote listing, prunes
// detail-cache entries whose id disappeared, resets disclosure, and discloses
// the first batch. On transport failure the existing state stays untouched.
//
// Concurrent refreshes are guarded by a monotonic sequence: a slow earlier
// response never overwrites a faster later one.
func (c *Collection) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.refreshSeq++
	seq := c.refreshSeq
	c.mu.Unlock()

	items, err := c.remote.ListMemories(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrTransport) && c.hydrateFromMirror(seq) {
			return nil
		}
		return err
	}

	c.mu.Lock()
	if seq != c.refreshSeq {
		c.mu.Unlock()
		return nil
	}
	c.basic = items
	c.pruneDetailLocked()
	c.disclosed = 0
	c.display = nil
	c.discloseLocked()
	c.mu.Unlock()

	c.gcMirror(items)
	c.emit("list", 0)
	return nil
}

// Search filters the current basic index locally by case-insensitive
// substring match against titles and, where a detail is already cached, its
// text. It never fetches missing details to widen the match. An empty query
// is equivalent to Refresh.
func (c *Collection) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Refresh(ctx)
	}
	needle := strings.ToLower(query)

	c.mu.Lock()
	filtered := c.basic[:0:0]
	for _, s := range c.basic {
		if strings.Contains(strings.ToLower(s.Title), needle) {
			filtered = append(filtered, s)
			continue
		}
		if d := c.detail[s.ID]; d != nil && strings.Contains(strings.ToLower(d.Text), needle) {
			filtered = append(filtered, s)
		}
	}
	c.basic = filtered
	c.disclosed = 0
	c.display = nil
	c.discloseLocked()
	c.mu.Unlock()

	c.emit("list", 0)
	return nil
}

// DiscloseNext promotes the next batch of basic entries into the display
// sequence and returns the newly visible items. A no-op returning nil once
// the whole index has been disclosed.
func (c *Collection) DiscloseNext() []DisplayItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discloseLocked()
}

// discloseLocked consumes up to BatchSize basic entries. The disclosure
// cursor advances by entries consumed, not by entries surviving the
// soft-delete filter, so a batch may yield fewer visible items.
func (c *Collection) discloseLocked() []DisplayItem {
	if c.disclosed >= len(c.basic) {
		return nil
	}
	end := c.disclosed + BatchSize
	if end > len(c.basic) {
		end = len(c.basic)
	}

	var out []DisplayItem
	for _, s := range c.basic[c.disclosed:end] {
		if d := c.detail[s.ID]; d != nil && d.IsDeleted {
			continue
		}
		out = append(out, c.buildItemLocked(s))
	}
	c.disclosed = end
	c.display = append(c.display, out...)
	return out
}

// buildItemLocked constructs the display row for one summary: the full cached
// record when available, otherwise a skeleton with the distance label and the
// in-flight flag.
func (c *Collection) buildItemLocked(s models.MemorySummary) DisplayItem {
	item := DisplayItem{
		State:     DisplaySkeleton,
		ID:        s.ID,
		Title:     s.Title,
		EventDate: s.EventDate,
		Days:      c.describe(s.EventDate),
	}
	if d := c.detail[s.ID]; d != nil {
		item.State = DisplayFull
		item.Title = d.Title
		item.EventDate = d.EventDate
		item.Days = c.describe(d.EventDate)
		item.Detail = d
		return item
	}
	_, item.IsLoading = c.pending[s.ID]
	return item
}

func (c *Collection) describe(eventDate string) dates.Distance {
	t, err := dates.ParseISO(eventDate)
	if err != nil {
		return dates.Distance{DateFormatted: eventDate}
	}
	return dates.Describe(t, c.now())
}

// Display returns a copy of the current display sequence.
func (c *Collection) Display() []DisplayItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]DisplayItem, len(c.display))
	copy(out, c.display)
	return out
}

// Total reports the length of the current basic index.
func (c *Collection) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.basic)
}

// HasMore reports whether undisclosed basic entries remain.
func (c *Collection) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disclosed < len(c.basic)
}

// pruneDetailLocked evicts detail-cache entries whose id is absent from the
// current basic index.
func (c *Collection) pruneDetailLocked() {
	live := make(map[int64]struct{}, len(c.basic))
	for _, s := range c.basic {
		live[s.ID] = struct{}{}
	}
	for id := range c.detail {
		if _, ok := live[id]; !ok {
			delete(c.detail, id)
		}
	}
}

// hydrateFromMirror rebuilds the collection from the local mirror after a
// failed refresh, so a cold start still shows the last known journal while
// the upstream is down. Mirrored records land in both the basic index and the
// detail cache; soft-deleted ones stay hidden through the usual disclosure
// filter. Hydration only applies to an empty index: a warm collection keeps
// its in-memory state instead.
func (c *Collection) hydrateFromMirror(seq uint64) bool {
	if c.mirror == nil {
		return false
	}
	records, err := c.mirror.ListMemories()
	if err != nil || len(records) == 0 {
		return false
	}

	c.mu.Lock()
	if seq != c.refreshSeq || len(c.basic) > 0 {
		c.mu.Unlock()
		return false
	}
	basic := make([]models.MemorySummary, 0, len(records))
	for i := range records {
		r := records[i]
		basic = append(basic, models.MemorySummary{ID: r.ID, Title: r.Title, EventDate: r.EventDate, UpdatedAt: r.UpdatedAt})
		c.detail[r.ID] = &r
	}
	c.basic = basic
	c.disclosed = 0
	c.display = nil
	c.discloseLocked()
	c.mu.Unlock()

	c.emit("list", 0)
	return true
}

// gcMirror drops mirrored records whose id is no longer listed remotely.
func (c *Collection) gcMirror(items []models.MemorySummary) {
	if c.mirror == nil {
		return
	}
	mirrored, err := c.mirror.AllMemoryIDs()
	if err != nil {
		return
	}
	live := make(map[int64]struct{}, len(items))
	for _, s := range items {
		live[s.ID] = struct{}{}
	}
	for id := range mirrored {
		if _, ok := live[id]; !ok {
			_ = c.mirror.DeleteMemory(id)
		}
	}
}

// inBasicLocked reports whether id is present in the current basic index.
func (c *Collection) inBasicLocked(id int64) (models.MemorySummary, bool) {
	for _, s := range c.basic {
		if s.ID == id {
			return s, true
		}
	}
	return models.MemorySummary{}, false
}
