// Package renderer renders documents with MuPDF and provides the viewport
// capabilities highlights need: scaled conversion, screenshots and scrolling.
package renderer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
	"sync"

	"pdf-highlighter/internal/domain"

	"golang.org/x/image/draw"
)

// maxScreenshotWidth bounds the width of screenshot images in pixels.
const maxScreenshotWidth = 1024

// pageSource is the subset of *fitz.Document the surface relies on. Page
// numbers are zero-based here.
type pageSource interface {
	NumPage() int
	Bound(pageNumber int) (image.Rectangle, error)
	ImageDPI(pageNumber int, dpi float64) (*image.RGBA, error)
	Close() error
}

// Surface is a rendered document. Page numbers are 1-based.
type Surface struct {
	mu        sync.Mutex
	doc       pageSource
	scale     float64
	viewports map[int]domain.Viewport
	state     domain.ViewState
	closed    bool
}

func newSurface(locator domain.Locator, doc pageSource, scale float64) *Surface {
	if scale <= 0 {
		scale = 1
	}
	return &Surface{
		doc:       doc,
		scale:     scale,
		viewports: make(map[int]domain.Viewport),
		state: domain.ViewState{
			Locator:    locator,
			PageCount:  doc.NumPage(),
			PageNumber: 1,
		},
	}
}

// PageCount returns the number of pages.
func (s *Surface) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PageCount
}

// PageViewport returns the rendered size of a page at the surface scale.
func (s *Surface) PageViewport(page int) (domain.Viewport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageViewportLocked(page)
}

func (s *Surface) pageViewportLocked(page int) (domain.Viewport, error) {
	if page < 1 || page > s.state.PageCount {
		return domain.Viewport{}, fmt.Errorf("page %d of %d: %w", page, s.state.PageCount, domain.ErrPageOutOfRange)
	}
	if vp, ok := s.viewports[page]; ok {
		return vp, nil
	}
	if s.closed {
		return domain.Viewport{}, domain.ErrSurfaceNotReady
	}
	bound, err := s.doc.Bound(page - 1)
	if err != nil {
		return domain.Viewport{}, fmt.Errorf("failed to get bounds of page %d: %w", page, err)
	}
	vp := domain.Viewport{
		Width:  float64(bound.Dx()) * s.scale,
		Height: float64(bound.Dy()) * s.scale,
	}
	s.viewports[page] = vp
	return vp, nil
}

// ViewportToScaled records an on-screen rectangle relative to the page's
// current viewport size.
func (s *Surface) ViewportToScaled(page int, r domain.ViewportRect) (domain.Scaled, error) {
	vp, err := s.PageViewport(page)
	if err != nil {
		return domain.Scaled{}, err
	}
	return domain.Scaled{
		X1:         r.Left,
		Y1:         r.Top,
		X2:         r.Left + r.Width,
		Y2:         r.Top + r.Height,
		Width:      vp.Width,
		Height:     vp.Height,
		PageNumber: page,
	}, nil
}

// Screenshot renders the page and returns the given rectangle as a PNG data URL.
func (s *Surface) Screenshot(page int, r domain.ViewportRect) (string, error) {
	s.mu.Lock()
	if page < 1 || page > s.state.PageCount {
		s.mu.Unlock()
		return "", fmt.Errorf("page %d of %d: %w", page, s.state.PageCount, domain.ErrPageOutOfRange)
	}
	if s.closed {
		s.mu.Unlock()
		return "", domain.ErrSurfaceNotReady
	}
	img, err := s.doc.ImageDPI(page-1, 72*s.scale)
	s.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to render page %d: %w", page, err)
	}

	cropped, err := crop(img, r)
	if err != nil {
		return "", err
	}
	return encodeDataURL(cropped)
}

// ScrollTo moves the view to the top of the highlight's bounding rect.
func (s *Surface) ScrollTo(h domain.Highlight) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := h.Position.PageNumber
	vp, err := s.pageViewportLocked(page)
	if err != nil {
		return
	}
	s.state.PageNumber = page
	s.state.Top = math.Max(0, h.Position.BoundingRect.ToViewport(vp).Top)
	s.state.ScrolledToID = h.ID
}

// SetScroll records a user scroll; the view is no longer on a highlight.
func (s *Surface) SetScroll(page int, top float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if page >= 1 && page <= s.state.PageCount {
		s.state.PageNumber = page
	}
	s.state.Top = math.Max(0, top)
	s.state.ScrolledToID = ""
}

// State returns the current view state.
func (s *Surface) State() domain.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close releases the document. Later renders fail with ErrSurfaceNotReady.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.doc.Close()
}

// crop copies r out of img, downscaling it when wider than maxScreenshotWidth.
func crop(img image.Image, r domain.ViewportRect) (*image.RGBA, error) {
	b := img.Bounds()
	src := image.Rect(
		b.Min.X+int(math.Floor(r.Left)),
		b.Min.Y+int(math.Floor(r.Top)),
		b.Min.X+int(math.Ceil(r.Left+r.Width)),
		b.Min.Y+int(math.Ceil(r.Top+r.Height)),
	).Intersect(b)
	if src.Empty() {
		return nil, fmt.Errorf("screenshot rectangle %+v is outside the page", r)
	}

	w, h := src.Dx(), src.Dy()
	if w > maxScreenshotWidth {
		h = h * maxScreenshotWidth / w
		if h < 1 {
			h = 1
		}
		w = maxScreenshotWidth
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == src.Dx() {
		draw.Copy(dst, image.Point{}, img, src, draw.Src, nil)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	}
	return dst, nil
}

func encodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
