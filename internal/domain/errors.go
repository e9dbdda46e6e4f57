package domain

import "errors"

// Domain errors
var (
	ErrHighlightNotFound = errors.New("highlight not found")
	ErrNoActiveDocument  = errors.New("no active document")
	ErrSurfaceNotReady   = errors.New("document surface not ready")
	ErrInvalidFile       = errors.New("invalid file")
	ErrPageOutOfRange    = errors.New("page out of range")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
