package hashrouter

import (
	"strings"
	"sync"
)

// Location models the fragment of the containing document's address. Setting
// a different value notifies subscribers, like a browser hashchange event.
type Location struct {
	mu        sync.Mutex
	hash      string
	nextID    int
	listeners map[int]func(hash string)
}

// NewLocation creates a location with the given initial fragment.
func NewLocation(hash string) *Location {
	return &Location{
		hash:      normalize(hash),
		listeners: make(map[int]func(string)),
	}
}

// Hash returns the current fragment including the leading "#", or "".
func (l *Location) Hash() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hash
}

// SetHash replaces the fragment and notifies listeners when it changed.
func (l *Location) SetHash(hash string) {
	hash = normalize(hash)

	l.mu.Lock()
	if hash == l.hash {
		l.mu.Unlock()
		return
	}
	l.hash = hash
	listeners := make([]func(string), 0, len(l.listeners))
	for _, fn := range l.listeners {
		listeners = append(listeners, fn)
	}
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(hash)
	}
}

// Subscribe registers fn for fragment changes. The returned function removes
// the registration and may be called more than once.
func (l *Location) Subscribe(fn func(hash string)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.listeners, id)
			l.mu.Unlock()
		})
	}
}

// Listeners returns the number of registered listeners.
func (l *Location) Listeners() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.listeners)
}

func normalize(hash string) string {
	hash = strings.TrimSpace(hash)
	if hash == "" || hash == "#" {
		return ""
	}
	if !strings.HasPrefix(hash, "#") {
		hash = "#" + hash
	}
	return hash
}
