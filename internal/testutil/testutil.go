// Package testutil provides shared test helpers: temporary databases and a
// fake script endpoint speaking the target/action protocol.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/vdhoang/botui/internal/models"
	"github.com/vdhoang/botui/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "botui-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Endpoint is an in-memory fake of the remote script endpoint. All state is
// exported so tests can seed and inspect it; guard access with Lock when the
// server is live.
type Endpoint struct {
	mu sync.Mutex

	Memories  map[int64]models.Memory
	Texts     map[string]string // "target:username" -> content
	Reminders map[string][]string

	// Fail makes every request answer 500 to exercise transport fallbacks.
	Fail bool

	// ListCalls counts memory list requests.
	ListCalls int
}

// NewEndpoint starts an httptest server around a fresh Endpoint. The server
// is shut down with the test.
func NewEndpoint(t *testing.T) (*Endpoint, *httptest.Server) {
	t.Helper()
	e := &Endpoint{
		Memories:  make(map[int64]models.Memory),
		Texts:     make(map[string]string),
		Reminders: make(map[string][]string),
	}
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return e, srv
}

// Lock takes the endpoint mutex for direct state manipulation.
func (e *Endpoint) Lock() { e.mu.Lock() }

// Unlock releases the endpoint mutex.
func (e *Endpoint) Unlock() { e.mu.Unlock() }

// Seed adds a memory record.
func (e *Endpoint) Seed(m models.Memory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Memories[m.ID] = m
}

func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Fail {
		http.Error(w, "upstream down", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	if msg := q.Get("msg"); msg != "" {
		e.serveReminder(w, q.Get("userId"), msg)
		return
	}

	switch q.Get("target") {
	case "memory":
		e.serveMemory(w, r, q.Get("action"), q.Get("postId"))
	case "family", "lunarEvents":
		e.serveText(w, q)
	default:
		http.Error(w, "unknown target", http.StatusBadRequest)
	}
}

func (e *Endpoint) serveMemory(w http.ResponseWriter, r *http.Request, action, postID string) {
	switch action {
	case "list":
		e.ListCalls++
		items := make([]models.MemorySummary, 0, len(e.Memories))
		for _, m := range e.Memories {
			items = append(items, models.MemorySummary{
				ID:        m.ID,
				Title:     m.Title,
				EventDate: m.EventDate,
				UpdatedAt: m.UpdatedAt,
			})
		}
		writeJSON(w, map[string]any{"data": items})

	case "load":
		id, _ := strconv.ParseInt(postID, 10, 64)
		m, ok := e.Memories[id]
		if !ok {
			writeJSON(w, map[string]any{"data": nil})
			return
		}
		writeJSON(w, map[string]any{"data": m})

	case "save":
		body, _ := io.ReadAll(r.Body)
		var m models.Memory
		if err := json.Unmarshal(body, &m); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		e.Memories[m.ID] = m
		writeJSON(w, map[string]any{"id": m.ID, "eventDate": m.EventDate})

	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func (e *Endpoint) serveText(w http.ResponseWriter, q map[string][]string) {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	key := get("target") + ":" + get("username")
	switch get("action") {
	case "load":
		writeJSON(w, map[string]string{"content": e.Texts[key]})
	case "save":
		e.Texts[key] = get("content")
		writeJSON(w, map[string]string{"message": "saved"})
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func (e *Endpoint) serveReminder(w http.ResponseWriter, userID, msg string) {
	switch {
	case msg == "list_remind":
		list := e.Reminders[userID]
		messages := make([]map[string]string, 0, len(list))
		for _, text := range list {
			messages = append(messages, map[string]string{"text": text})
		}
		writeJSON(w, map[string]any{"messages": messages})

	case strings.HasPrefix(msg, "remove_remind "):
		n, err := strconv.Atoi(strings.TrimPrefix(msg, "remove_remind "))
		list := e.Reminders[userID]
		if err != nil || n < 1 || n > len(list) {
			http.Error(w, "bad index", http.StatusBadRequest)
			return
		}
		e.Reminders[userID] = append(list[:n-1], list[n:]...)
		writeJSON(w, map[string]string{"message": "removed"})

	case strings.HasPrefix(msg, "remind "):
		e.Reminders[userID] = append(e.Reminders[userID], msg)
		writeJSON(w, map[string]string{"message": "created"})

	default:
		http.Error(w, fmt.Sprintf("unknown msg %q", msg), http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
