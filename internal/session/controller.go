// Package session tracks the open document and installs its highlights.
package session

import (
	"context"
	"net/url"
	"sync"

	"pdf-highlighter/internal/domain"
)

// Collection is the part of the highlight store the controller drives.
type Collection interface {
	Replace(highlights []domain.Highlight)
	List() []domain.Highlight
}

// Observer is notified after every session switch.
type Observer interface {
	SessionSwitched(kind string, seeded int)
}

// Switch kinds reported to observers.
const (
	SwitchOpen   = "open"
	SwitchToggle = "toggle"
	SwitchLocal  = "local"
)

// Controller holds the active locator and swaps it together with the
// highlight collection.
type Controller struct {
	mu       sync.Mutex
	active   domain.Locator
	store    Collection
	seeds    domain.SeedTable
	registry *Registry
	logger   domain.Logger
	observer Observer
}

// NewController creates a controller with no open document.
func NewController(store Collection, seeds domain.SeedTable, registry *Registry, logger domain.Logger, observer Observer) *Controller {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Controller{
		store:    store,
		seeds:    seeds,
		registry: registry,
		logger:   logger,
		observer: observer,
	}
}

// InitialLocator picks the document named by the "url" query parameter,
// falling back to the given default.
func InitialLocator(query url.Values, fallback string) domain.Locator {
	if u := query.Get("url"); u != "" {
		return domain.URLLocator(u)
	}
	return domain.URLLocator(fallback)
}

// Open makes locator the active document and installs its seeded highlights,
// or an empty collection when nothing is seeded for it.
func (c *Controller) Open(ctx context.Context, locator domain.Locator) domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.installLocked(ctx, locator, SwitchOpen, true)
}

// Swap switches to the registry entry after the active document. Edits made
// to the current collection are discarded. With an empty registry it keeps
// the current session.
func (c *Controller) Swap(ctx context.Context) domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, ok := c.registry.Next(c.active)
	if !ok {
		c.logger.Warn("No known documents to switch to", "locator", c.active.String())
		return c.snapshotLocked()
	}
	return c.installLocked(ctx, next, SwitchToggle, true)
}

// ReplaceFromLocalSource opens a local file. File-sourced documents always
// start without highlights.
func (c *Controller) ReplaceFromLocalSource(fileHandle string) domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.installLocked(context.Background(), domain.FileLocator(fileHandle), SwitchLocal, false)
}

// Current returns the active locator.
func (c *Controller) Current() (domain.Locator, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, !c.active.IsZero()
}

// HasDocument reports whether a document is open.
func (c *Controller) HasDocument() bool {
	_, ok := c.Current()
	return ok
}

// Snapshot returns the active locator with the current collection.
func (c *Controller) Snapshot() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Registry returns the known documents.
func (c *Controller) Registry() *Registry {
	return c.registry
}

func (c *Controller) installLocked(ctx context.Context, locator domain.Locator, kind string, seeded bool) domain.Session {
	var highlights []domain.Highlight
	if seeded && c.seeds != nil {
		seed, err := c.seeds.Seed(ctx, locator.Value)
		if err != nil {
			c.logger.Error("Failed to load seeded highlights", err, "locator", locator.String())
		} else {
			highlights = seed
		}
	}

	c.active = locator
	c.store.Replace(highlights)

	c.logger.Info("Document session opened", "locator", locator.String(), "kind", kind, "highlights", len(highlights))
	if c.observer != nil {
		c.observer.SessionSwitched(kind, len(highlights))
	}
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() domain.Session {
	return domain.Session{Locator: c.active, Highlights: c.store.List()}
}
