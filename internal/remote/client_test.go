package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vdhoang/botui/internal/apperr"
	"github.com/vdhoang/botui/internal/models"
	"github.com/vdhoang/botui/internal/testutil"
)

func newTestClient(t *testing.T) (*testutil.Endpoint, *Client) {
	t.Helper()
	e, srv := testutil.NewEndpoint(t)
	return e, NewClient(srv.URL, 5*time.Second)
}

func TestListMemories_SortedDescending(t *testing.T) {
	e, c := newTestClient(t)
	e.Seed(models.Memory{ID: 1, Title: "a", EventDate: "2024-01-01"})
	e.Seed(models.Memory{ID: 2, Title: "b", EventDate: "2024-06-01"})
	e.Seed(models.Memory{ID: 3, Title: "c", EventDate: "2024-03-01"})

	got, err := c.ListMemories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != 2 || got[1].ID != 3 || got[2].ID != 1 {
		t.Errorf("order = %d,%d,%d, want 2,3,1", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestListMemories_BareArrayEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]models.MemorySummary{{ID: 5, Title: "bare"}})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, time.Second)
	got, err := c.ListMemories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 5 {
		t.Errorf("got %+v", got)
	}
}

func TestLoadMemory(t *testing.T) {
	e, c := newTestClient(t)
	e.Seed(models.Memory{ID: 9, Title: "chín", Text: "văn bản", EventDate: "2024-02-02"})

	m, err := c.LoadMemory(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Title != "chín" || m.Text != "văn bản" {
		t.Errorf("got %+v", m)
	}

	if _, err := c.LoadMemory(context.Background(), 404); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveMemory_MergesAuthoritativeFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 777, "eventDate": "2024-12-31"})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, time.Second)
	saved, err := c.SaveMemory(context.Background(), models.Memory{ID: 1, Title: "t", EventDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID != 777 {
		t.Errorf("ID = %d, want server-assigned 777", saved.ID)
	}
	if saved.EventDate != "2024-12-31" {
		t.Errorf("EventDate = %q, want server value", saved.EventDate)
	}
	if saved.Title != "t" {
		t.Errorf("Title = %q, submitted fields must survive the merge", saved.Title)
	}
}

func TestLoadSaveText(t *testing.T) {
	e, c := newTestClient(t)

	content, err := c.LoadText(context.Background(), "family", "me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "" {
		t.Errorf("content = %q, want empty", content)
	}

	msg, err := c.SaveText(context.Background(), "family", "me", "Ông\n Bố")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "saved" {
		t.Errorf("message = %q", msg)
	}

	content, err = c.LoadText(context.Background(), "family", "me")
	if err != nil {
		t.Fatal(err)
	}
	if content != "Ông\n Bố" {
		t.Errorf("content = %q", content)
	}

	// Targets are namespaced per username.
	e.Lock()
	other := e.Texts["family:other"]
	e.Unlock()
	if other != "" {
		t.Errorf("cross-user leak: %q", other)
	}
}

func TestReminders(t *testing.T) {
	e, c := newTestClient(t)

	msgs, err := c.ListReminderMessages(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("msgs = %v", msgs)
	}

	if err := c.CreateReminder(context.Background(), "u1", "me", "Mẹ", "2024-06-01 08:00", "Uống thuốc", "day", 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.Lock()
	stored := append([]string(nil), e.Reminders["u1"]...)
	e.Unlock()
	if len(stored) != 1 {
		t.Fatalf("stored = %v", stored)
	}
	if stored[0] != "remind Mẹ 2024-06-01 08:00 Uống thuốc !repeat day" {
		t.Errorf("command = %q", stored[0])
	}

	// Zero-based caller index maps to the endpoint's one-based position.
	if err := c.RemoveReminder(context.Background(), "u1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.Lock()
	remaining := len(e.Reminders["u1"])
	e.Unlock()
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
}

func TestTransportErrors(t *testing.T) {
	e, c := newTestClient(t)
	e.Lock()
	e.Fail = true
	e.Unlock()

	if _, err := c.ListMemories(context.Background()); !errors.Is(err, apperr.ErrTransport) {
		t.Errorf("list err = %v, want ErrTransport", err)
	}
	if _, err := c.LoadText(context.Background(), "family", "me"); !errors.Is(err, apperr.ErrTransport) {
		t.Errorf("text err = %v, want ErrTransport", err)
	}

	// Unreachable host.
	dead := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	if _, err := dead.ListMemories(context.Background()); !errors.Is(err, apperr.ErrTransport) {
		t.Errorf("dead err = %v, want ErrTransport", err)
	}
}
