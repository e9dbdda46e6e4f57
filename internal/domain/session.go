package domain

import (
	"context"
	"strings"
)

// LocatorKind tells where a document comes from.
type LocatorKind string

const (
	LocatorURL  LocatorKind = "url"
	LocatorFile LocatorKind = "file"
)

// Locator references a document: a remote URL or a local file handle.
type Locator struct {
	Kind  LocatorKind `json:"kind"`
	Value string      `json:"value"`
}

// URLLocator builds a locator for a remote document.
func URLLocator(u string) Locator {
	return Locator{Kind: LocatorURL, Value: strings.TrimSpace(u)}
}

// FileLocator builds a locator for a local file handle.
func FileLocator(path string) Locator {
	return Locator{Kind: LocatorFile, Value: path}
}

// IsZero reports whether no document is referenced.
func (l Locator) IsZero() bool {
	return l.Value == ""
}

func (l Locator) String() string {
	if l.Kind == LocatorFile {
		return "file://" + l.Value
	}
	return l.Value
}

// Session is the pairing of the active locator with its highlights.
type Session struct {
	Locator    Locator     `json:"locator"`
	Highlights []Highlight `json:"highlights"`
}

// SeedTable maps a locator (exact string) to the highlights a session starts
// with. A missing entry yields an empty slice and no error.
type SeedTable interface {
	Seed(ctx context.Context, locator string) ([]Highlight, error)
}
