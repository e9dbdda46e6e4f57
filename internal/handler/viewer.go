package handler

import (
	"context"
	"io"
	"net/url"

	"pdf-highlighter/internal/domain"
)

// Viewer is the application surface the HTTP handlers drive.
type Viewer interface {
	Load(ctx context.Context, query url.Values) domain.Session
	Open(ctx context.Context, locator domain.Locator) domain.Session
	Next(ctx context.Context) domain.Session
	Upload(ctx context.Context, filename string, r io.Reader) (domain.Session, error)
	Session() domain.Session
	Documents() []domain.Locator

	SelectionFinished(n domain.NewHighlight) (domain.Highlight, bool, error)
	UpdateHighlight(id string, position domain.PositionPatch, content domain.ContentPatch) (bool, error)
	AreaChanged(id string, page int, r domain.ViewportRect) (<-chan struct{}, error)
	ResetHighlights()
	Highlights() []domain.Highlight
	Highlight(id string) (domain.Highlight, bool)
	Address(id string) (string, bool)

	Hash() string
	SetHash(hash string)
	Scrolled(page int, top float64)
	View() (domain.ViewState, error)
}
