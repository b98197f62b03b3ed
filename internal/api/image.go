package api

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// MemoryImage handles GET /api/memories/{id}/image: it decodes the record's
// inline base64 attachment and serves it as a binary image. Attachments are
// stored as data URLs ("data:image/png;base64,....") or bare base64.
func (h *Handler) MemoryImage(w http.ResponseWriter, r *http.Request) {
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
	if m.ImageBase64 == "" {
		writeJSON(w, http.StatusNotFound, errorBody("no image"))
		return
	}

	contentType, payload := splitDataURL(m.ImageBase64)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("corrupt image payload"))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// splitDataURL separates the media type from the base64 payload. Bare base64
// input falls back to a generic octet-stream type.
func splitDataURL(s string) (contentType, payload string) {
	if !strings.HasPrefix(s, "data:") {
		return "application/octet-stream", s
	}
	meta, rest, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return "application/octet-stream", s
	}
	contentType = strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return contentType, rest
}
