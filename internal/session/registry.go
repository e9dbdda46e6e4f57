package session

import "pdf-highlighter/internal/domain"

// Registry is the ordered list of known document locators the viewer can
// cycle through.
type Registry struct {
	locators []domain.Locator
}

// NewRegistry builds a registry from URLs, dropping blanks and duplicates
// while keeping the first occurrence's position.
func NewRegistry(urls ...string) *Registry {
	r := &Registry{}
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		loc := domain.URLLocator(u)
		if loc.IsZero() || seen[loc.Value] {
			continue
		}
		seen[loc.Value] = true
		r.locators = append(r.locators, loc)
	}
	return r
}

// Locators returns the known locators in order.
func (r *Registry) Locators() []domain.Locator {
	out := make([]domain.Locator, len(r.locators))
	copy(out, r.locators)
	return out
}

// Len returns the number of known locators.
func (r *Registry) Len() int {
	return len(r.locators)
}

// Next returns the locator following current, wrapping around. A current
// locator that is not registered maps to the first entry. It reports false
// when the registry is empty.
func (r *Registry) Next(current domain.Locator) (domain.Locator, bool) {
	if len(r.locators) == 0 {
		return domain.Locator{}, false
	}
	for i, loc := range r.locators {
		if loc == current {
			return r.locators[(i+1)%len(r.locators)], true
		}
	}
	return r.locators[0], true
}
