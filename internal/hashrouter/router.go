// Package hashrouter addresses highlights through the "#highlight-<id>"
// location fragment.
package hashrouter

import (
	"strings"
	"sync"

	"pdf-highlighter/internal/domain"
)

// Prefix precedes the highlight id in a fragment.
const Prefix = "highlight-"

// Encode returns the fragment addressing the highlight with the given id.
func Encode(id string) string {
	return "#" + Prefix + id
}

// Decode extracts the highlight id from a fragment. The leading "#" is
// optional; the remainder after the prefix is returned verbatim and may be
// empty or unknown. A fragment without the prefix addresses nothing.
func Decode(fragment string) string {
	fragment = strings.TrimPrefix(fragment, "#")
	id, ok := strings.CutPrefix(fragment, Prefix)
	if !ok {
		return ""
	}
	return id
}

// Lookup resolves an id against the live highlight collection.
type Lookup interface {
	Lookup(id string) (domain.Highlight, bool)
}

// ScrollFunc moves the rendered surface to a highlight.
type ScrollFunc func(h domain.Highlight)

// Outcome of a navigation attempt.
type Outcome string

const (
	OutcomeScrolled    Outcome = "scrolled"
	OutcomeMiss        Outcome = "miss"
	OutcomeUnavailable Outcome = "unavailable"
)

// Observer is told the outcome of every navigation.
type Observer interface {
	Navigated(outcome Outcome)
}

// Router reacts to fragment changes by scrolling to the addressed highlight.
type Router struct {
	location *Location
	store    Lookup
	logger   domain.Logger
	observer Observer

	mu      sync.Mutex
	current *Binding
}

// NewRouter creates a router reading fragments from location.
func NewRouter(location *Location, store Lookup, logger domain.Logger, observer Observer) *Router {
	return &Router{
		location: location,
		store:    store,
		logger:   logger,
		observer: observer,
	}
}

// Acquire registers the fragment-change listener for a new session and
// returns its binding. The previous binding, if any, is released first.
func (r *Router) Acquire() *Binding {
	b := &Binding{router: r, ready: make(chan struct{})}

	r.mu.Lock()
	prev := r.current
	r.current = b
	r.mu.Unlock()

	if prev != nil {
		prev.Release()
	}

	unsubscribe := r.location.Subscribe(func(string) { b.navigate() })
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		unsubscribe()
		return b
	}
	b.unsubscribe = unsubscribe
	b.mu.Unlock()
	return b
}

// Current returns the active binding, or nil.
func (r *Router) Current() *Binding {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate scrolls to the highlight addressed by the current fragment using
// the active binding. Every failure is a no-op.
func (r *Router) Navigate() Outcome {
	b := r.Current()
	if b == nil {
		r.record(OutcomeUnavailable, "")
		return OutcomeUnavailable
	}
	return b.navigate()
}

// Clear empties the fragment so a stale address does not linger after the
// user scrolls or selects.
func (r *Router) Clear() {
	r.location.SetHash("")
}

func (r *Router) record(outcome Outcome, id string) {
	switch outcome {
	case OutcomeScrolled:
		r.logger.Debug("Scrolled to highlight from hash", "highlight_id", id)
	default:
		r.logger.Debug("Hash navigation ignored", "highlight_id", id, "outcome", string(outcome))
	}
	if r.observer != nil {
		r.observer.Navigated(outcome)
	}
}

func (r *Router) release(b *Binding) {
	r.mu.Lock()
	if r.current == b {
		r.current = nil
	}
	r.mu.Unlock()
}

// Binding ties the fragment listener and the scroll capability to one
// session. It is released when the session ends.
type Binding struct {
	router *Router

	mu          sync.Mutex
	scroll      ScrollFunc
	unsubscribe func()
	released    bool
	ready       chan struct{}
}

// ProvideScroll fills the scroll capability slot once the surface is ready,
// then navigates to the current fragment. Later calls, and calls after
// release, are ignored. It reports whether the capability was accepted.
func (b *Binding) ProvideScroll(fn ScrollFunc) bool {
	if fn == nil {
		return false
	}
	b.mu.Lock()
	if b.released || b.scroll != nil {
		b.mu.Unlock()
		return false
	}
	b.scroll = fn
	close(b.ready)
	b.mu.Unlock()

	b.navigate()
	return true
}

// Ready is closed once the scroll capability is available.
func (b *Binding) Ready() <-chan struct{} {
	return b.ready
}

// Available reports whether the binding can scroll.
func (b *Binding) Available() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.released && b.scroll != nil
}

// Release unsubscribes the fragment listener and drops the capability. It is
// safe to call more than once.
func (b *Binding) Release() {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return
	}
	b.released = true
	b.scroll = nil
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	b.router.release(b)
}

func (b *Binding) navigate() Outcome {
	r := b.router
	id := Decode(r.location.Hash())

	b.mu.Lock()
	scroll := b.scroll
	released := b.released
	b.mu.Unlock()

	if released || scroll == nil {
		r.record(OutcomeUnavailable, id)
		return OutcomeUnavailable
	}
	h, ok := r.store.Lookup(id)
	if !ok {
		r.record(OutcomeMiss, id)
		return OutcomeMiss
	}
	scroll(h)
	r.record(OutcomeScrolled, id)
	return OutcomeScrolled
}
