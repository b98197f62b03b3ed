package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vdhoang/botui/internal/apperr"
	"github.com/vdhoang/botui/internal/memories"
)

// maxSaveBytes bounds a save request body; image payloads arrive base64
// inline.
const maxSaveBytes = 20 << 20

// ListMemories handles GET /api/memories. An empty q refreshes from the
// remote listing; a non-empty q filters the already-loaded index locally.
func (h *Handler) ListMemories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var err error
	if q == "" {
		err = h.col.Refresh(r.Context())
	} else {
		err = h.col.Search(r.Context(), q)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeListState(w)
}

// MoreMemories handles GET /api/memories/more: the next disclosure batch.
func (h *Handler) MoreMemories(w http.ResponseWriter, _ *http.Request) {
	items := h.col.DiscloseNext()
	if items == nil {
		items = []memories.DisplayItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":   items,
		"hasMore": h.col.HasMore(),
	})
}

func (h *Handler) writeListState(w http.ResponseWriter) {
	items := h.col.Display()
	if items == nil {
		items = []memories.DisplayItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":   items,
		"total":   h.col.Total(),
		"hasMore": h.col.HasMore(),
	})
}

// GetMemory handles GET /api/memories/{id}. While a fetch for the same id is
// already in flight the handler answers 202; the client re-requests after the
// SSE detail event.
func (h *Handler) GetMemory(w http.ResponseWriter, r *http.Request) {
	id, err := memoryID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	m, err := h.col.RequestDetail(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if m == nil {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "loading"})
		return
	}
	// Soft-deleted records are hidden from clients, not served.
	if m.IsDeleted {
		writeError(w, fmt.Errorf("memory %d: %w", id, apperr.ErrDeleted))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CreateMemory handles POST /api/memories.
func (h *Handler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSaveBytes)
	var in memories.SaveInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	in.ID = 0
	saved, err := h.col.Save(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// UpdateMemory handles PUT /api/memories/{id}.
func (h *Handler) UpdateMemory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSaveBytes)
	id, err := memoryID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	var in memories.SaveInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	in.ID = id
	saved, err := h.col.Save(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteMemory handles DELETE /api/memories/{id} (soft delete).
func (h *Handler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	id, err := memoryID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	if err := h.col.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func memoryID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
