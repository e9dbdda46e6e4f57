package domain

import "context"

// Viewport is the rendered size of a page in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ViewportRect is a raw on-screen rectangle relative to a page's top-left corner.
type ViewportRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ViewState describes where the rendered surface is scrolled to.
type ViewState struct {
	Locator      Locator `json:"locator"`
	PageCount    int     `json:"pageCount"`
	PageNumber   int     `json:"pageNumber"`
	Top          float64 `json:"top"`
	ScrolledToID string  `json:"scrolledToId"`
}

// Surface is a rendered document. It provides the capabilities the highlight
// core needs from the rendering engine.
type Surface interface {
	PageCount() int
	PageViewport(page int) (Viewport, error)
	ViewportToScaled(page int, r ViewportRect) (Scaled, error)
	Screenshot(page int, r ViewportRect) (string, error)
	ScrollTo(h Highlight)
	SetScroll(page int, top float64)
	State() ViewState
	Close() error
}

// SurfaceLoader renders the document behind a locator.
type SurfaceLoader interface {
	Load(ctx context.Context, locator Locator) (Surface, error)
}
