package handler

import (
	"net/http"
	"time"

	"pdf-highlighter/internal/domain"
)

// RequestRecorder counts served requests.
type RequestRecorder interface {
	RecordRequest(method string, status int)
}

// RequestMiddleware logs every request and records it in the metrics.
type RequestMiddleware struct {
	recorder RequestRecorder
	logger   domain.Logger
}

func NewRequestMiddleware(recorder RequestRecorder, logger domain.Logger) *RequestMiddleware {
	return &RequestMiddleware{
		recorder: recorder,
		logger:   logger,
	}
}

// Middleware wraps next with request logging
func (m *RequestMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		if m.recorder != nil {
			m.recorder.RecordRequest(r.Method, sw.status)
		}
		m.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
