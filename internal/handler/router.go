package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	highlightHandler *HighlightHandler,
	sessionHandler *SessionHandler,
	viewportHandler *ViewportHandler,
	metricsHandler http.Handler,
	middleware mux.MiddlewareFunc,
	allowedOrigins []string,
) http.Handler {
	router := mux.NewRouter()
	if middleware != nil {
		router.Use(middleware)
	}

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "pdf-highlighter"})
	}).Methods(http.MethodGet)
	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Session routes
	api.HandleFunc("/session", sessionHandler.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/session/load", sessionHandler.LoadSession).Methods(http.MethodPost)
	api.HandleFunc("/session/open", sessionHandler.OpenSession).Methods(http.MethodPost)
	api.HandleFunc("/session/next", sessionHandler.NextSession).Methods(http.MethodPost)
	api.HandleFunc("/session/upload", sessionHandler.UploadDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents", sessionHandler.ListDocuments).Methods(http.MethodGet)

	// Highlight routes
	api.HandleFunc("/highlights", highlightHandler.ListHighlights).Methods(http.MethodGet)
	api.HandleFunc("/highlights", highlightHandler.CreateHighlight).Methods(http.MethodPost)
	api.HandleFunc("/highlights", highlightHandler.ResetHighlights).Methods(http.MethodDelete)
	api.HandleFunc("/highlights/{id}", highlightHandler.GetHighlight).Methods(http.MethodGet)
	api.HandleFunc("/highlights/{id}", highlightHandler.UpdateHighlight).Methods(http.MethodPatch)
	api.HandleFunc("/highlights/{id}/area", highlightHandler.UpdateArea).Methods(http.MethodPut)
	api.HandleFunc("/highlights/{id}/address", highlightHandler.GetAddress).Methods(http.MethodGet)

	// Location and viewport routes
	api.HandleFunc("/location", viewportHandler.GetLocation).Methods(http.MethodGet)
	api.HandleFunc("/location", viewportHandler.SetLocation).Methods(http.MethodPut)
	api.HandleFunc("/viewport", viewportHandler.GetViewport).Methods(http.MethodGet)
	api.HandleFunc("/viewport/scroll", viewportHandler.Scroll).Methods(http.MethodPost)

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
