package service

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"pdf-highlighter/internal/domain"
	"pdf-highlighter/internal/hashrouter"
	"pdf-highlighter/internal/highlight"
	"pdf-highlighter/internal/session"
	"pdf-highlighter/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	primaryURL   = "https://arxiv.org/pdf/1708.08021.pdf"
	secondaryURL = "https://arxiv.org/pdf/1604.02480.pdf"
)

type mapSeeds map[string][]domain.Highlight

func (m mapSeeds) Seed(_ context.Context, locator string) ([]domain.Highlight, error) {
	return domain.CloneHighlights(m[locator]), nil
}

// fakeSurface is a 100x200 pixel document of three pages.
type fakeSurface struct {
	locator domain.Locator

	mu        sync.Mutex
	scrolled  []string
	state     domain.ViewState
	closed    bool
	shotErr   error
	shotCalls int
	// shotGate, when set, holds screenshots until it is closed.
	shotGate chan struct{}
}

func (f *fakeSurface) PageCount() int { return 3 }

func (f *fakeSurface) PageViewport(page int) (domain.Viewport, error) {
	if page < 1 || page > 3 {
		return domain.Viewport{}, domain.ErrPageOutOfRange
	}
	return domain.Viewport{Width: 100, Height: 200}, nil
}

func (f *fakeSurface) ViewportToScaled(page int, r domain.ViewportRect) (domain.Scaled, error) {
	vp, err := f.PageViewport(page)
	if err != nil {
		return domain.Scaled{}, err
	}
	return domain.Scaled{
		X1: r.Left, Y1: r.Top, X2: r.Left + r.Width, Y2: r.Top + r.Height,
		Width: vp.Width, Height: vp.Height, PageNumber: page,
	}, nil
}

func (f *fakeSurface) Screenshot(page int, _ domain.ViewportRect) (string, error) {
	f.mu.Lock()
	gate := f.shotGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.shotCalls++
	if f.shotErr != nil {
		return "", f.shotErr
	}
	return "data:image/png;base64,cGFnZQ==", nil
}

func (f *fakeSurface) ScrollTo(h domain.Highlight) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrolled = append(f.scrolled, h.ID)
	f.state.ScrolledToID = h.ID
	f.state.PageNumber = h.Position.PageNumber
}

func (f *fakeSurface) SetScroll(page int, top float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.PageNumber = page
	f.state.Top = top
	f.state.ScrolledToID = ""
}

func (f *fakeSurface) State() domain.ViewState {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state
	s.Locator = f.locator
	s.PageCount = 3
	return s
}

func (f *fakeSurface) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSurface) scrolls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.scrolled...)
}

func (f *fakeSurface) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeLoader hands out a fakeSurface per load. Loads of gated locators block
// until the gate is closed or the load is cancelled.
type fakeLoader struct {
	mu       sync.Mutex
	surfaces []*fakeSurface
	gates    map[string]chan struct{}
	canceled []string
}

func (l *fakeLoader) Load(ctx context.Context, locator domain.Locator) (domain.Surface, error) {
	l.mu.Lock()
	gate := l.gates[locator.Value]
	l.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			l.mu.Lock()
			l.canceled = append(l.canceled, locator.Value)
			l.mu.Unlock()
			return nil, ctx.Err()
		}
	}

	s := &fakeSurface{locator: locator}
	l.mu.Lock()
	l.surfaces = append(l.surfaces, s)
	l.mu.Unlock()
	return s, nil
}

func (l *fakeLoader) last() *fakeSurface {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.surfaces) == 0 {
		return nil
	}
	return l.surfaces[len(l.surfaces)-1]
}

type screenshotLog struct {
	mu   sync.Mutex
	errs []error
}

func (s *screenshotLog) ScreenshotTaken(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

type viewerFixture struct {
	svc      *ViewerService
	store    *highlight.Store
	location *hashrouter.Location
	loader   *fakeLoader
	shots    *screenshotLog
}

func primarySeed() []domain.Highlight {
	return []domain.Highlight{{
		ID:      "h1",
		Content: domain.Content{Text: "Seeded"},
		Position: domain.Position{
			PageNumber:   2,
			BoundingRect: domain.Scaled{X1: 10, Y1: 20, X2: 30, Y2: 40, Width: 100, Height: 200, PageNumber: 2},
		},
	}}
}

func newViewerFixture(t *testing.T) *viewerFixture {
	t.Helper()
	log := logger.NewNop()
	store := highlight.NewStore(log)
	location := hashrouter.NewLocation("")
	router := hashrouter.NewRouter(location, store, log, nil)
	controller := session.NewController(store, mapSeeds{primaryURL: primarySeed()}, session.NewRegistry(primaryURL, secondaryURL), log, nil)
	loader := &fakeLoader{gates: map[string]chan struct{}{}}
	shots := &screenshotLog{}

	svc := NewViewerService(ViewerDeps{
		Store:      store,
		Sessions:   controller,
		Router:     router,
		Location:   location,
		Loader:     loader,
		Uploads:    NewUploadService(t.TempDir(), 1024, log),
		DefaultURL: primaryURL,
		Logger:     log,
		Observer:   shots,
	})
	t.Cleanup(func() { _ = svc.Close() })

	return &viewerFixture{svc: svc, store: store, location: location, loader: loader, shots: shots}
}

func waitReady(t *testing.T, svc *ViewerService) {
	t.Helper()
	ready := svc.Ready()
	require.NotNil(t, ready)
	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatalf("surface did not become ready")
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("screenshot did not finish")
	}
}

func TestViewerService_LoadUsesQueryOrDefault(t *testing.T) {
	f := newViewerFixture(t)

	snap := f.svc.Load(context.Background(), url.Values{})
	assert.Equal(t, primaryURL, snap.Locator.Value)
	assert.Equal(t, primarySeed(), snap.Highlights)

	snap = f.svc.Load(context.Background(), url.Values{"url": {"https://example.com/x.pdf"}})
	assert.Equal(t, "https://example.com/x.pdf", snap.Locator.Value)
	assert.Empty(t, snap.Highlights)
}

func TestViewerService_HashScrollsOnceSurfaceIsReady(t *testing.T) {
	f := newViewerFixture(t)
	f.location.SetHash(hashrouter.Encode("h1"))

	f.svc.Load(context.Background(), url.Values{})
	waitReady(t, f.svc)

	surface := f.loader.last()
	require.NotNil(t, surface)
	assert.Equal(t, []string{"h1"}, surface.scrolls())

	view, err := f.svc.View()
	require.NoError(t, err)
	assert.Equal(t, "h1", view.ScrolledToID)
	assert.Equal(t, 2, view.PageNumber)
}

func TestViewerService_SelectionFinished(t *testing.T) {
	f := newViewerFixture(t)
	selection := domain.NewHighlight{
		Position: domain.Position{
			PageNumber: 1,
			Rects: []domain.Scaled{
				{X1: 10, Y1: 10, X2: 50, Y2: 20, Width: 100, Height: 200, PageNumber: 1},
				{X1: 10, Y1: 20, X2: 80, Y2: 30, Width: 100, Height: 200, PageNumber: 1},
			},
		},
		Content: domain.Content{Text: "selected"},
		Comment: domain.Comment{Text: "note", Emoji: "💩"},
	}

	_, ok, err := f.svc.SelectionFinished(selection)
	require.NoError(t, err)
	assert.False(t, ok, "no document is open yet")
	assert.Equal(t, 0, f.store.Len())

	f.svc.Load(context.Background(), url.Values{})
	created, ok, err := f.svc.SelectionFinished(selection)
	require.NoError(t, err)
	require.True(t, ok)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.Scaled{X1: 10, Y1: 10, X2: 80, Y2: 30, Width: 100, Height: 200, PageNumber: 1}, created.Position.BoundingRect)
	assert.Equal(t, created, f.svc.Highlights()[0])
	assert.Equal(t, 2, f.store.Len())
}

func TestViewerService_SelectionFinishedValidates(t *testing.T) {
	f := newViewerFixture(t)
	f.svc.Load(context.Background(), url.Values{})

	_, _, err := f.svc.SelectionFinished(domain.NewHighlight{Position: domain.Position{PageNumber: 1}})

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestViewerService_AreaChangedUpdatesThenScreenshots(t *testing.T) {
	f := newViewerFixture(t)
	f.svc.Load(context.Background(), url.Values{})
	waitReady(t, f.svc)

	done, err := f.svc.AreaChanged("h1", 3, domain.ViewportRect{Left: 5, Top: 6, Width: 20, Height: 30})
	require.NoError(t, err)
	waitDone(t, done)

	h, ok := f.svc.Highlight("h1")
	require.True(t, ok)
	assert.Equal(t, 3, h.Position.PageNumber)
	assert.Equal(t, domain.Scaled{X1: 5, Y1: 6, X2: 25, Y2: 36, Width: 100, Height: 200, PageNumber: 3}, h.Position.BoundingRect)
	assert.Equal(t, "data:image/png;base64,cGFnZQ==", h.Content.Image)
	assert.Empty(t, h.Content.Text)
	assert.Equal(t, []error{nil}, f.shots.errs)
}

func TestViewerService_AreaChangedScreenshotFailureKeepsPosition(t *testing.T) {
	f := newViewerFixture(t)
	f.svc.Load(context.Background(), url.Values{})
	waitReady(t, f.svc)
	shotErr := errors.New("render failed")
	f.loader.last().shotErr = shotErr

	done, err := f.svc.AreaChanged("h1", 1, domain.ViewportRect{Width: 10, Height: 10})
	require.NoError(t, err)
	waitDone(t, done)

	h, _ := f.svc.Highlight("h1")
	assert.Equal(t, 1, h.Position.PageNumber)
	assert.Equal(t, "Seeded", h.Content.Text)
	assert.Equal(t, []error{shotErr}, f.shots.errs)
}

func TestViewerService_AreaChangedErrors(t *testing.T) {
	f := newViewerFixture(t)

	_, err := f.svc.AreaChanged("h1", 1, domain.ViewportRect{Width: 10, Height: 10})
	assert.ErrorIs(t, err, domain.ErrSurfaceNotReady)

	f.svc.Load(context.Background(), url.Values{})
	waitReady(t, f.svc)

	_, err = f.svc.AreaChanged("missing", 1, domain.ViewportRect{Width: 10, Height: 10})
	assert.ErrorIs(t, err, domain.ErrHighlightNotFound)

	_, err = f.svc.AreaChanged("h1", 9, domain.ViewportRect{Width: 10, Height: 10})
	assert.ErrorIs(t, err, domain.ErrPageOutOfRange)
}

func TestViewerService_UpdateHighlightRejectsInvalidMerge(t *testing.T) {
	f := newViewerFixture(t)
	f.svc.Load(context.Background(), url.Values{})
	empty := ""
	zero := 0

	found, err := f.svc.UpdateHighlight("h1", domain.PositionPatch{}, domain.ContentPatch{Text: &empty})
	assert.True(t, found)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.UpdateHighlight("h1", domain.PositionPatch{PageNumber: &zero}, domain.ContentPatch{})
	assert.ErrorAs(t, err, &verr)

	h, _ := f.svc.Highlight("h1")
	assert.Equal(t, primarySeed()[0], h)

	text := "edited"
	found, err = f.svc.UpdateHighlight("h1", domain.PositionPatch{}, domain.ContentPatch{Text: &text})
	require.NoError(t, err)
	assert.True(t, found)
	h, _ = f.svc.Highlight("h1")
	assert.Equal(t, "edited", h.Content.Text)

	found, err = f.svc.UpdateHighlight("missing", domain.PositionPatch{}, domain.ContentPatch{Text: &text})
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestViewerService_StaleScreenshotIsDropped(t *testing.T) {
	f := newViewerFixture(t)
	f.svc.Load(context.Background(), url.Values{})
	waitReady(t, f.svc)
	gate := make(chan struct{})
	surface := f.loader.last()
	surface.mu.Lock()
	surface.shotGate = gate
	surface.mu.Unlock()

	done, err := f.svc.AreaChanged("h1", 1, domain.ViewportRect{Width: 10, Height: 10})
	require.NoError(t, err)

	f.svc.Next(context.Background())
	waitReady(t, f.svc)
	f.svc.Next(context.Background())
	waitReady(t, f.svc)
	close(gate)
	waitDone(t, done)

	h, ok := f.svc.Highlight("h1")
	require.True(t, ok)
	assert.Equal(t, primarySeed()[0], h, "a screenshot of the earlier session must not touch the reinstalled seed")
}

func TestViewerService_ConcurrentOpensKeepSurfaceInSync(t *testing.T) {
	f := newViewerFixture(t)
	locators := []domain.Locator{domain.URLLocator(primaryURL), domain.URLLocator(secondaryURL)}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(locator domain.Locator) {
			defer wg.Done()
			f.svc.Open(context.Background(), locator)
		}(locators[i%2])
	}
	wg.Wait()
	waitReady(t, f.svc)

	view, err := f.svc.View()
	require.NoError(t, err)
	assert.Equal(t, f.svc.Session().Locator, view.Locator)
}

func TestViewerService_NextRebindsSurface(t *testing.T) {
	f := newViewerFixture(t)
	f.svc.Load(context.Background(), url.Values{})
	waitReady(t, f.svc)
	first := f.loader.last()
	f.store.Create(domain.NewHighlight{Position: domain.Position{PageNumber: 1}, Content: domain.Content{Text: "edit"}})

	snap := f.svc.Next(context.Background())
	waitReady(t, f.svc)
	second := f.loader.last()

	assert.Equal(t, secondaryURL, snap.Locator.Value)
	assert.Empty(t, snap.Highlights)
	assert.True(t, first.isClosed())
	assert.NotSame(t, first, second)

	created := f.store.Create(domain.NewHighlight{Position: domain.Position{PageNumber: 1}, Content: domain.Content{Text: "b"}})
	f.location.SetHash(hashrouter.Encode(created.ID))
	assert.Empty(t, first.scrolls())
	assert.Equal(t, []string{created.ID}, second.scrolls())

	back := f.svc.Next(context.Background())
	assert.Equal(t, primarySeed(), back.Highlights)
}

func TestViewerService_StaleLoadIsCancelled(t *testing.T) {
	f := newViewerFixture(t)
	f.loader.gates[primaryURL] = make(chan struct{})

	f.svc.Load(context.Background(), url.Values{})
	f.svc.Next(context.Background())
	waitReady(t, f.svc)

	view, err := f.svc.View()
	require.NoError(t, err)
	assert.Equal(t, secondaryURL, view.Locator.Value)

	require.NoError(t, f.svc.Close())
	assert.Equal(t, []string{primaryURL}, f.loader.canceled)
}

func TestViewerService_ScrolledClearsHash(t *testing.T) {
	f := newViewerFixture(t)
	f.svc.Load(context.Background(), url.Values{})
	waitReady(t, f.svc)
	f.svc.SetHash(hashrouter.Encode("h1"))
	require.Equal(t, "#highlight-h1", f.svc.Hash())

	f.svc.Scrolled(3, 120)

	assert.Equal(t, "", f.svc.Hash())
	view, err := f.svc.View()
	require.NoError(t, err)
	assert.Equal(t, 3, view.PageNumber)
	assert.Equal(t, 120.0, view.Top)
	assert.Empty(t, view.ScrolledToID)
}

func TestViewerService_UploadOpensLocalFile(t *testing.T) {
	f := newViewerFixture(t)
	f.svc.Load(context.Background(), url.Values{})

	snap, err := f.svc.Upload(context.Background(), "../../paper.pdf", bytes.NewReader([]byte("%PDF-1.4")))
	require.NoError(t, err)

	assert.Equal(t, domain.LocatorFile, snap.Locator.Kind)
	assert.True(t, strings.HasSuffix(snap.Locator.Value, "-paper.pdf"))
	assert.Empty(t, snap.Highlights)
	data, err := os.ReadFile(snap.Locator.Value)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	waitReady(t, f.svc)
}

func TestViewerService_UploadRejectsInvalidFiles(t *testing.T) {
	f := newViewerFixture(t)

	_, err := f.svc.Upload(context.Background(), "notes.txt", strings.NewReader("text"))
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.Upload(context.Background(), "big.pdf", bytes.NewReader(make([]byte, 2048)))
	assert.ErrorIs(t, err, domain.ErrInvalidFile)

	_, err = f.svc.Upload(context.Background(), "empty.pdf", strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrInvalidFile)
}

func TestViewerService_AddressAndReset(t *testing.T) {
	f := newViewerFixture(t)
	f.svc.Load(context.Background(), url.Values{})

	addr, ok := f.svc.Address("h1")
	assert.True(t, ok)
	assert.Equal(t, "#highlight-h1", addr)
	_, ok = f.svc.Address("missing")
	assert.False(t, ok)

	f.svc.ResetHighlights()
	assert.Empty(t, f.svc.Highlights())
	assert.NotNil(t, f.svc.Highlights())
}

func TestViewerService_Documents(t *testing.T) {
	f := newViewerFixture(t)

	docs := f.svc.Documents()

	require.Len(t, docs, 2)
	assert.Equal(t, primaryURL, docs[0].Value)
	assert.Equal(t, secondaryURL, docs[1].Value)
}
