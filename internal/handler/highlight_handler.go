package handler

import (
	"net/http"

	"pdf-highlighter/internal/domain"

	"github.com/gorilla/mux"
)

// HighlightHandler handles highlight-related HTTP requests.
type HighlightHandler struct {
	viewer Viewer
	logger domain.Logger
}

func NewHighlightHandler(viewer Viewer, logger domain.Logger) *HighlightHandler {
	return &HighlightHandler{
		viewer: viewer,
		logger: logger,
	}
}

type updateHighlightRequest struct {
	Position domain.PositionPatch `json:"position"`
	Content  domain.ContentPatch  `json:"content"`
}

type areaRequest struct {
	PageNumber int                 `json:"pageNumber"`
	Rect       domain.ViewportRect `json:"rect"`
}

type addressResponse struct {
	ID   string `json:"id"`
	Hash string `json:"hash"`
}

// ListHighlights handles GET /highlights
func (h *HighlightHandler) ListHighlights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.viewer.Highlights())
}

// CreateHighlight handles POST /highlights with a finished selection.
func (h *HighlightHandler) CreateHighlight(w http.ResponseWriter, r *http.Request) {
	var req domain.NewHighlight
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, "Failed to decode highlight", err)
		return
	}

	created, ok, err := h.viewer.SelectionFinished(req)
	if err != nil {
		writeAppError(w, h.logger, "Failed to create highlight", err)
		return
	}
	if !ok {
		writeAppError(w, h.logger, "Failed to create highlight", domain.ErrNoActiveDocument)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ResetHighlights handles DELETE /highlights
func (h *HighlightHandler) ResetHighlights(w http.ResponseWriter, r *http.Request) {
	h.viewer.ResetHighlights()
	w.WriteHeader(http.StatusNoContent)
}

// GetHighlight handles GET /highlights/{id}
func (h *HighlightHandler) GetHighlight(w http.ResponseWriter, r *http.Request) {
	highlight, ok := h.viewer.Highlight(mux.Vars(r)["id"])
	if !ok {
		writeAppError(w, h.logger, "Failed to get highlight", domain.ErrHighlightNotFound)
		return
	}
	writeJSON(w, http.StatusOK, highlight)
}

// UpdateHighlight handles PATCH /highlights/{id}. Only the fields present in
// the request change. A patch leaving the content without exactly one of
// text or image is rejected with 400 and changes nothing.
func (h *HighlightHandler) UpdateHighlight(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateHighlightRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, "Failed to decode highlight update", err)
		return
	}

	if req.Position.IsEmpty() && req.Content.IsEmpty() {
		writeAppError(w, h.logger, "Failed to update highlight", &domain.ValidationError{Field: "body", Message: "nothing to update"})
		return
	}

	found, err := h.viewer.UpdateHighlight(id, req.Position, req.Content)
	if err != nil {
		writeAppError(w, h.logger, "Failed to update highlight", err)
		return
	}
	if !found {
		writeAppError(w, h.logger, "Failed to update highlight", domain.ErrHighlightNotFound)
		return
	}
	h.GetHighlight(w, r)
}

// UpdateArea handles PUT /highlights/{id}/area after an area highlight was
// moved or resized. The screenshot is merged asynchronously.
func (h *HighlightHandler) UpdateArea(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req areaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, "Failed to decode area", err)
		return
	}
	if req.Rect.Width <= 0 || req.Rect.Height <= 0 {
		writeAppError(w, h.logger, "Failed to update area", &domain.ValidationError{Field: "rect", Message: "width and height must be positive"})
		return
	}

	if _, err := h.viewer.AreaChanged(id, req.PageNumber, req.Rect); err != nil {
		writeAppError(w, h.logger, "Failed to update area", err)
		return
	}
	highlight, _ := h.viewer.Highlight(id)
	writeJSON(w, http.StatusAccepted, highlight)
}

// GetAddress handles GET /highlights/{id}/address
func (h *HighlightHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	hash, ok := h.viewer.Address(id)
	if !ok {
		writeAppError(w, h.logger, "Failed to address highlight", domain.ErrHighlightNotFound)
		return
	}
	writeJSON(w, http.StatusOK, addressResponse{ID: id, Hash: hash})
}
