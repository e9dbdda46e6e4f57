package handler

import (
	"net/http"
	"strings"

	"pdf-highlighter/internal/domain"
)

// multipartOverhead leaves room for form boundaries and headers around the file.
const multipartOverhead = 1 << 20

// SessionHandler switches the open document.
type SessionHandler struct {
	viewer      Viewer
	maxFileSize int64
	logger      domain.Logger
}

func NewSessionHandler(viewer Viewer, maxFileSize int64, logger domain.Logger) *SessionHandler {
	return &SessionHandler{
		viewer:      viewer,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

type openRequest struct {
	URL string `json:"url"`
}

// LoadSession handles POST /session/load?url=...
func (h *SessionHandler) LoadSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.viewer.Load(r.Context(), r.URL.Query()))
}

// GetSession handles GET /session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.viewer.Session())
}

// OpenSession handles POST /session/open
func (h *SessionHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, "Failed to decode open request", err)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeAppError(w, h.logger, "Failed to open document", &domain.ValidationError{Field: "url", Message: "is required"})
		return
	}
	writeJSON(w, http.StatusOK, h.viewer.Open(r.Context(), domain.URLLocator(req.URL)))
}

// NextSession handles POST /session/next
func (h *SessionHandler) NextSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.viewer.Next(r.Context()))
}

// UploadDocument handles POST /session/upload with a multipart "file" field.
func (h *SessionHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxFileSize {
		writeError(w, http.StatusBadRequest, "File too large")
		return
	}

	session, err := h.viewer.Upload(r.Context(), header.Filename, file)
	if err != nil {
		writeAppError(w, h.logger, "Failed to upload document", err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// ListDocuments handles GET /documents
func (h *SessionHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.viewer.Documents())
}
