package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"pdf-highlighter/internal/domain"
	"pdf-highlighter/internal/hashrouter"
	"pdf-highlighter/internal/highlight"
	"pdf-highlighter/internal/renderer"
	"pdf-highlighter/internal/session"
)

// ScreenshotObserver is told about every asynchronous screenshot.
type ScreenshotObserver interface {
	ScreenshotTaken(err error)
}

// ViewerService connects the selection callbacks, the highlight store, the
// session controller and the hash router to the rendered surface.
type ViewerService struct {
	store      *highlight.Store
	sessions   *session.Controller
	router     *hashrouter.Router
	location   *hashrouter.Location
	loader     domain.SurfaceLoader
	uploads    *UploadService
	defaultURL string
	logger     domain.Logger
	observer   ScreenshotObserver

	// switchMu serializes document switches with the rebind that follows
	// them, and late screenshot merges with both.
	switchMu sync.Mutex

	mu      sync.Mutex
	binding *hashrouter.Binding
	surface domain.Surface
	cancel  context.CancelFunc

	// pending tracks background surface loads and screenshots.
	pending sync.WaitGroup
}

// ViewerDeps groups the collaborators of a ViewerService.
type ViewerDeps struct {
	Store      *highlight.Store
	Sessions   *session.Controller
	Router     *hashrouter.Router
	Location   *hashrouter.Location
	Loader     domain.SurfaceLoader
	Uploads    *UploadService
	DefaultURL string
	Logger     domain.Logger
	Observer   ScreenshotObserver
}

func NewViewerService(deps ViewerDeps) *ViewerService {
	return &ViewerService{
		store:      deps.Store,
		sessions:   deps.Sessions,
		router:     deps.Router,
		location:   deps.Location,
		loader:     deps.Loader,
		uploads:    deps.Uploads,
		defaultURL: deps.DefaultURL,
		logger:     deps.Logger,
		observer:   deps.Observer,
	}
}

// Load opens the document named by the "url" query parameter, or the
// default document.
func (s *ViewerService) Load(ctx context.Context, query url.Values) domain.Session {
	return s.Open(ctx, session.InitialLocator(query, s.defaultURL))
}

// Open switches to the given document.
func (s *ViewerService) Open(ctx context.Context, locator domain.Locator) domain.Session {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	snap := s.sessions.Open(ctx, locator)
	s.rebind(snap.Locator)
	return snap
}

// Next switches to the following known document, discarding edits.
func (s *ViewerService) Next(ctx context.Context) domain.Session {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	before, _ := s.sessions.Current()
	snap := s.sessions.Swap(ctx)
	if snap.Locator != before || !s.hasBinding() {
		s.rebind(snap.Locator)
	}
	return snap
}

// Upload stores a local file and opens it with no highlights.
func (s *ViewerService) Upload(ctx context.Context, filename string, r io.Reader) (domain.Session, error) {
	path, err := s.uploads.Save(ctx, filename, r)
	if err != nil {
		return domain.Session{}, err
	}

	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	snap := s.sessions.ReplaceFromLocalSource(path)
	s.rebind(snap.Locator)
	return snap, nil
}

// Session returns the active document with its highlights.
func (s *ViewerService) Session() domain.Session {
	return s.sessions.Snapshot()
}

// Documents lists the known documents.
func (s *ViewerService) Documents() []domain.Locator {
	return s.sessions.Registry().Locators()
}

// SelectionFinished stores a completed selection. Without an open document
// it does nothing and reports false.
func (s *ViewerService) SelectionFinished(n domain.NewHighlight) (domain.Highlight, bool, error) {
	if err := n.Validate(); err != nil {
		return domain.Highlight{}, false, err
	}
	if !s.sessions.HasDocument() {
		s.logger.Debug("Selection ignored without an open document")
		return domain.Highlight{}, false, nil
	}
	if n.Position.BoundingRect == (domain.Scaled{}) && len(n.Position.Rects) > 0 {
		n.Position.BoundingRect = renderer.UnionRects(n.Position.Rects)
	}
	h := s.store.Create(n)
	s.logger.Info("Saving highlight", "highlight_id", h.ID, "page", h.Position.PageNumber, "image", h.Content.IsImage())
	return h, true, nil
}

// UpdateHighlight merges patches into a highlight and reports whether the id
// was known. A merge that leaves the content without exactly one of text or
// image is rejected and the highlight stays unchanged.
func (s *ViewerService) UpdateHighlight(id string, position domain.PositionPatch, content domain.ContentPatch) (bool, error) {
	if err := position.Validate(); err != nil {
		return false, err
	}
	return s.store.UpdateChecked(id, position, content, func(h domain.Highlight) error {
		return h.Content.Validate()
	})
}

// AreaChanged handles a resized or moved area highlight. The new geometry is
// stored right away; the screenshot follows asynchronously as a second,
// content-only update. The returned channel is closed once the screenshot
// was merged or abandoned. Without a rendered surface nothing happens. A
// screenshot finishing after the document was switched is dropped.
func (s *ViewerService) AreaChanged(id string, page int, r domain.ViewportRect) (<-chan struct{}, error) {
	s.mu.Lock()
	surface, binding := s.surface, s.binding
	s.mu.Unlock()
	if surface == nil {
		return nil, domain.ErrSurfaceNotReady
	}
	scaled, err := surface.ViewportToScaled(page, r)
	if err != nil {
		return nil, err
	}
	if !s.store.Update(id, domain.PositionPatch{BoundingRect: &scaled, PageNumber: &page}, domain.ContentPatch{}) {
		return nil, domain.ErrHighlightNotFound
	}

	done := make(chan struct{})
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer close(done)

		image, err := surface.Screenshot(page, r)
		if s.observer != nil {
			s.observer.ScreenshotTaken(err)
		}
		if err != nil {
			s.logger.Error("Failed to take screenshot", err, "highlight_id", id, "page", page)
			return
		}

		s.switchMu.Lock()
		defer s.switchMu.Unlock()
		if !s.isCurrent(binding) {
			s.logger.Debug("Dropped screenshot of a previous session", "highlight_id", id)
			return
		}
		s.store.Update(id, domain.PositionPatch{}, domain.ContentPatch{Image: &image})
	}()
	return done, nil
}

// ResetHighlights clears the collection.
func (s *ViewerService) ResetHighlights() {
	s.store.Reset()
}

// Highlights lists the collection, newest first.
func (s *ViewerService) Highlights() []domain.Highlight {
	return s.store.List()
}

// Highlight looks up a single highlight.
func (s *ViewerService) Highlight(id string) (domain.Highlight, bool) {
	return s.store.Lookup(id)
}

// Address returns the fragment addressing a stored highlight.
func (s *ViewerService) Address(id string) (string, bool) {
	if _, ok := s.store.Lookup(id); !ok {
		return "", false
	}
	return hashrouter.Encode(id), true
}

// Hash returns the current location fragment.
func (s *ViewerService) Hash() string {
	return s.location.Hash()
}

// SetHash changes the location fragment, which navigates when it addresses
// a highlight.
func (s *ViewerService) SetHash(hash string) {
	s.location.SetHash(hash)
}

// Scrolled records a user scroll on the surface and clears the fragment.
func (s *ViewerService) Scrolled(page int, top float64) {
	if surface := s.currentSurface(); surface != nil {
		surface.SetScroll(page, top)
	}
	s.router.Clear()
}

// View returns the state of the rendered surface.
func (s *ViewerService) View() (domain.ViewState, error) {
	surface := s.currentSurface()
	if surface == nil {
		return domain.ViewState{}, domain.ErrSurfaceNotReady
	}
	return surface.State(), nil
}

// Ready is closed once the current surface can scroll.
func (s *ViewerService) Ready() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding == nil {
		return nil
	}
	return s.binding.Ready()
}

// Close releases the router binding and the surface, and waits for
// background work.
func (s *ViewerService) Close() error {
	s.mu.Lock()
	binding, surface, cancel := s.binding, s.surface, s.cancel
	s.binding, s.surface, s.cancel = nil, nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if binding != nil {
		binding.Release()
	}
	s.pending.Wait()
	if surface != nil {
		if err := surface.Close(); err != nil {
			return fmt.Errorf("failed to close surface: %w", err)
		}
	}
	return nil
}

func (s *ViewerService) hasBinding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binding != nil
}

func (s *ViewerService) isCurrent(binding *hashrouter.Binding) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binding == binding
}

func (s *ViewerService) currentSurface() domain.Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface
}

// rebind releases the listener and surface of the previous session, then
// acquires new ones and renders the document in the background.
func (s *ViewerService) rebind(locator domain.Locator) {
	binding := s.router.Acquire()
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	oldSurface, oldCancel := s.surface, s.cancel
	s.binding, s.surface, s.cancel = binding, nil, cancel
	s.mu.Unlock()

	if oldCancel != nil {
		oldCancel()
	}
	if oldSurface != nil {
		if err := oldSurface.Close(); err != nil {
			s.logger.Warn("Failed to close previous surface", "error", err.Error())
		}
	}
	if s.loader == nil {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		surface, err := s.loader.Load(ctx, locator)
		if err != nil {
			s.logger.Error("Failed to render document", err, "locator", locator.String())
			return
		}

		s.mu.Lock()
		stale := s.binding != binding
		if !stale {
			s.surface = surface
		}
		s.mu.Unlock()

		if stale {
			_ = surface.Close()
			s.logger.Debug("Discarded surface of a closed session", "locator", locator.String())
			return
		}
		binding.ProvideScroll(surface.ScrollTo)
	}()
}
