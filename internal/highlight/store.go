// Package highlight owns the highlight collection of the open document.
package highlight

import (
	"sync"

	"pdf-highlighter/internal/domain"

	"github.com/google/uuid"
)

// Observer is notified after each store mutation.
type Observer interface {
	HighlightCreated()
	HighlightUpdated(found bool)
	HighlightsReset(size int)
}

// Store keeps the highlights of the active session, newest first.
type Store struct {
	mu         sync.RWMutex
	highlights []domain.Highlight
	newID      func() string
	logger     domain.Logger
	observer   Observer
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithObserver registers an observer for store mutations.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// NewStore creates an empty store.
func NewStore(logger domain.Logger, opts ...Option) *Store {
	s := &Store{
		highlights: []domain.Highlight{},
		newID:      uuid.NewString,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new highlight in front of the collection and returns it.
func (s *Store) Create(n domain.NewHighlight) domain.Highlight {
	s.mu.Lock()
	h := domain.Highlight{
		ID:       s.uniqueIDLocked(),
		Position: n.Position,
		Content:  n.Content,
		Comment:  n.Comment,
	}.Clone()
	s.highlights = append([]domain.Highlight{h}, s.highlights...)
	size := len(s.highlights)
	s.mu.Unlock()

	s.logger.Debug("Highlight created", "highlight_id", h.ID, "page", h.Position.PageNumber, "size", size)
	if s.observer != nil {
		s.observer.HighlightCreated()
	}
	return h.Clone()
}

// uniqueIDLocked draws ids until one is unused in the collection.
func (s *Store) uniqueIDLocked() string {
	for {
		id := s.newID()
		if id == "" {
			continue
		}
		if s.indexLocked(id) < 0 {
			return id
		}
	}
}

// Update merges the patches into the highlight with the given id. An unknown
// id leaves the collection untouched and returns false.
func (s *Store) Update(id string, position domain.PositionPatch, content domain.ContentPatch) bool {
	found, _ := s.UpdateChecked(id, position, content, nil)
	return found
}

// UpdateChecked is Update with a check of the merged highlight. When check
// fails the collection is left untouched and its error is returned.
func (s *Store) UpdateChecked(id string, position domain.PositionPatch, content domain.ContentPatch, check func(domain.Highlight) error) (bool, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	var err error
	if i >= 0 {
		merged := s.highlights[i].Clone()
		merged.Position = position.Apply(merged.Position)
		merged.Content = content.Apply(merged.Content)
		if check != nil {
			err = check(merged)
		}
		if err == nil {
			// Replace the element instead of mutating it so slices previously
			// handed out keep their values.
			next := make([]domain.Highlight, len(s.highlights))
			copy(next, s.highlights)
			next[i] = merged
			s.highlights = next
		}
	}
	s.mu.Unlock()

	switch {
	case i < 0:
		s.logger.Debug("Highlight update ignored", "highlight_id", id)
	case err != nil:
		s.logger.Debug("Highlight update rejected", "highlight_id", id, "reason", err.Error())
		return true, err
	default:
		s.logger.Debug("Highlight updated", "highlight_id", id)
	}
	if s.observer != nil {
		s.observer.HighlightUpdated(i >= 0)
	}
	return i >= 0, nil
}

// Reset empties the collection.
func (s *Store) Reset() {
	s.Replace(nil)
}

// Replace installs a copy of highlights as the new collection.
func (s *Store) Replace(highlights []domain.Highlight) {
	next := domain.CloneHighlights(highlights)
	s.mu.Lock()
	s.highlights = next
	s.mu.Unlock()

	s.logger.Debug("Highlights replaced", "size", len(next))
	if s.observer != nil {
		s.observer.HighlightsReset(len(next))
	}
}

// List returns a copy of the collection, most recent first.
func (s *Store) List() []domain.Highlight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneHighlights(s.highlights)
}

// Lookup finds a highlight in the collection as it is at call time.
func (s *Store) Lookup(id string) (domain.Highlight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return domain.Highlight{}, false
	}
	return s.highlights[i].Clone(), true
}

// Len returns the number of highlights.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.highlights)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.highlights {
		if s.highlights[i].ID == id {
			return i
		}
	}
	return -1
}
