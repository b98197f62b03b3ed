package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vdhoang/botui/internal/apperr"
	"github.com/vdhoang/botui/internal/familytree"
	"github.com/vdhoang/botui/internal/lunar"
	"github.com/vdhoang/botui/internal/models"
	"github.com/vdhoang/botui/internal/reminders"
)

// cacheKeyPrefix namespaces the gateway's entries in the kv cache.
const cacheKeyPrefix = "botui_cache_"

// loadTextCached fetches a text block from the remote endpoint with the
// stale-fallback read: a fresh value replaces the cached copy, a transport
// failure degrades to the last cached copy if one exists.
func (h *Handler) loadTextCached(r *http.Request, target, username string) (content string, stale bool, err error) {
	key := cacheKeyPrefix + target + ":" + username

	content, err = h.remote.LoadText(r.Context(), target, username)
	if err == nil {
		if h.db != nil && content != "" {
			_ = h.db.CacheSet(key, content)
		}
		return content, false, nil
	}
	if h.db != nil && errors.Is(err, apperr.ErrTransport) {
		if cached, ok, cacheErr := h.db.CacheGet(key); cacheErr == nil && ok {
			return cached, true, nil
		}
	}
	return "", false, err
}

// LunarEvents handles GET /api/lunar-events: the raw text block plus its
// projection onto this year's solar calendar.
func (h *Handler) LunarEvents(w http.ResponseWriter, r *http.Request) {
	content, stale, err := h.loadTextCached(r, "lunarEvents", "common")
	if err != nil {
		writeError(w, err)
		return
	}
	events := lunar.ParseEvents(content, time.Now())
	if events == nil {
		events = []models.LunarEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"content": content,
		"events":  events,
		"stale":   stale,
	})
}

// SaveLunarEvents handles PUT /api/lunar-events.
func (h *Handler) SaveLunarEvents(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	msg, err := h.remote.SaveText(r.Context(), "lunarEvents", "common", req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.db != nil {
		_ = h.db.CacheSet(cacheKeyPrefix+"lunarEvents:common", req.Content)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// FamilyTree handles GET /api/family-tree?person=.
func (h *Handler) FamilyTree(w http.ResponseWriter, r *http.Request) {
	person := r.URL.Query().Get("person")
	if person == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'person' is required"))
		return
	}
	content, stale, err := h.loadTextCached(r, "family", person)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"content":  content,
		"rendered": familytree.Render(content),
		"stale":    stale,
	})
}

// SaveFamilyTree handles PUT /api/family-tree.
func (h *Handler) SaveFamilyTree(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Person  string `json:"person"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Person == "" || !familytree.Validate(req.Content) {
		writeJSON(w, http.StatusBadRequest, errorBody("person and content are required"))
		return
	}
	msg, err := h.remote.SaveText(r.Context(), "family", req.Person, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.db != nil {
		_ = h.db.CacheSet(cacheKeyPrefix+"family:"+req.Person, req.Content)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// ClearCache handles DELETE /api/cache: it drops every cached panel copy so
// the next reads go back to the remote endpoint.
func (h *Handler) ClearCache(w http.ResponseWriter, _ *http.Request) {
	if h.db != nil {
		if err := h.db.CacheClear(cacheKeyPrefix); err != nil {
			writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListReminders handles GET /api/reminders?userId=.
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'userId' is required"))
		return
	}
	messages, err := h.remote.ListReminderMessages(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	parsed := reminders.Parse(messages)
	if parsed == nil {
		parsed = []models.Reminder{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reminders": parsed})
}

// CreateReminder handles POST /api/reminders.
func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     string `json:"userId"`
		Username   string `json:"username"`
		Person     string `json:"person"`
		Datetime   string `json:"datetime"`
		Content    string `json:"content"`
		RepeatType string `json:"repeatType"`
		Timezone   *int   `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.UserID == "" || req.Person == "" || req.Datetime == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("userId, person, datetime and content are required"))
		return
	}
	if req.RepeatType == "" {
		req.RepeatType = "no"
	}
	tz := 9
	if req.Timezone != nil {
		tz = *req.Timezone
	}
	datetime := reminders.NormalizeDateTime(req.Datetime)
	if err := h.remote.CreateReminder(r.Context(), req.UserID, req.Username, req.Person, datetime, req.Content, req.RepeatType, tz); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// DeleteReminder handles DELETE /api/reminders/{index}?userId=.
func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'userId' is required"))
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid index"))
		return
	}
	if err := h.remote.RemoveReminder(r.Context(), userID, index); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
