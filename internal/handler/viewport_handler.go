package handler

import (
	"net/http"

	"pdf-highlighter/internal/domain"
)

// ViewportHandler exposes the location fragment and the rendered view.
type ViewportHandler struct {
	viewer Viewer
	logger domain.Logger
}

func NewViewportHandler(viewer Viewer, logger domain.Logger) *ViewportHandler {
	return &ViewportHandler{
		viewer: viewer,
		logger: logger,
	}
}

type locationBody struct {
	Hash string `json:"hash"`
}

type scrollRequest struct {
	PageNumber int     `json:"pageNumber"`
	Top        float64 `json:"top"`
}

// GetLocation handles GET /location
func (h *ViewportHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, locationBody{Hash: h.viewer.Hash()})
}

// SetLocation handles PUT /location. A fragment addressing a highlight
// scrolls the view to it.
func (h *ViewportHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	var req locationBody
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, "Failed to decode location", err)
		return
	}
	h.viewer.SetHash(req.Hash)
	writeJSON(w, http.StatusOK, locationBody{Hash: h.viewer.Hash()})
}

// GetViewport handles GET /viewport
func (h *ViewportHandler) GetViewport(w http.ResponseWriter, r *http.Request) {
	view, err := h.viewer.View()
	if err != nil {
		writeAppError(w, h.logger, "Failed to get viewport", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Scroll handles POST /viewport/scroll, a user scroll of the view.
func (h *ViewportHandler) Scroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, "Failed to decode scroll", err)
		return
	}
	h.viewer.Scrolled(req.PageNumber, req.Top)
	h.GetViewport(w, r)
}
