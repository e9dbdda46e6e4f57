package handler

import (
	"encoding/json"
	"net/http"

	"pdf-highlighter/internal/domain"
	apperrors "pdf-highlighter/pkg/errors"
)

// writeJSON writes data as a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeAppError maps err onto a status code. Internal errors are logged and
// their details are not exposed.
func writeAppError(w http.ResponseWriter, logger domain.Logger, msg string, err error) {
	appErr := apperrors.FromDomain(err)
	if apperrors.IsType(appErr, apperrors.ErrorTypeInternal) {
		logger.Error(msg, err)
		writeError(w, apperrors.GetStatusCode(appErr), appErr.Message)
		return
	}
	message := appErr.Message
	if appErr.Details != "" {
		message += ": " + appErr.Details
	}
	writeError(w, apperrors.GetStatusCode(appErr), message)
}

// decodeJSON decodes the request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.NewValidationError("Invalid request body", err.Error())
	}
	return nil
}
