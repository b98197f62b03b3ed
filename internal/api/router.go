package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vdhoang/botui/internal/memories"
	"github.com/vdhoang/botui/internal/remote"
	"github.com/vdhoang/botui/internal/store"
)

// Handler holds API route handlers and their collaborators: the memories
// cache layer, the remote endpoint client, and the local store (nil disables
// caching/mirroring).
type Handler struct {
	col    *memories.Collection
	remote *remote.Client
	db     *store.DB
}

// NewHandler creates a new Handler.
func NewHandler(col *memories.Collection, rc *remote.Client, db *store.DB) *Handler {
	return &Handler{col: col, remote: rc, db: db}
}

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Memories journal.
	r.Get("/memories", h.ListMemories)
	r.Get("/memories/more", h.MoreMemories)
	r.Post("/memories", h.CreateMemory)
	r.Get("/memories/{id}", h.GetMemory)
	r.Put("/memories/{id}", h.UpdateMemory)
	r.Delete("/memories/{id}", h.DeleteMemory)
	r.Get("/memories/{id}/image", h.MemoryImage)

	// Lunar events.
	r.Get("/lunar-events", h.LunarEvents)
	r.Put("/lunar-events", h.SaveLunarEvents)

	// Family tree.
	r.Get("/family-tree", h.FamilyTree)
	r.Put("/family-tree", h.SaveFamilyTree)

	// Panel cache.
	r.Delete("/cache", h.ClearCache)

	// Reminders.
	r.Get("/reminders", h.ListReminders)
	r.Post("/reminders", h.CreateReminder)
	r.Delete("/reminders/{index}", h.DeleteReminder)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
