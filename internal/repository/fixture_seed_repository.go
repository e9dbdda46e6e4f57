package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"pdf-highlighter/internal/domain"
)

//go:embed fixtures/seed_highlights.json
var defaultSeedFixtures []byte

// FixtureSeedRepository implements domain.SeedTable from a JSON document
// keyed by locator.
type FixtureSeedRepository struct {
	seeds  map[string][]domain.Highlight
	logger domain.Logger
}

// NewDefaultFixtureSeedRepository loads the embedded demo highlights.
func NewDefaultFixtureSeedRepository(logger domain.Logger) (*FixtureSeedRepository, error) {
	return NewFixtureSeedRepository(defaultSeedFixtures, logger)
}

// NewFixtureSeedRepository parses a {"<locator>": [highlight, ...]} document.
func NewFixtureSeedRepository(data []byte, logger domain.Logger) (*FixtureSeedRepository, error) {
	seeds := make(map[string][]domain.Highlight)
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed fixtures: %w", err)
	}
	for locator, highlights := range seeds {
		if err := validateSeed(highlights); err != nil {
			return nil, fmt.Errorf("invalid seed for %s: %w", locator, err)
		}
	}
	logger.Debug("Seed fixtures loaded", "documents", len(seeds))
	return &FixtureSeedRepository{seeds: seeds, logger: logger}, nil
}

// Seed returns a copy of the highlights seeded for locator.
func (r *FixtureSeedRepository) Seed(_ context.Context, locator string) ([]domain.Highlight, error) {
	highlights, ok := r.seeds[locator]
	if !ok {
		return []domain.Highlight{}, nil
	}
	return domain.CloneHighlights(highlights), nil
}

// validateSeed enforces id uniqueness and single-kinded content.
func validateSeed(highlights []domain.Highlight) error {
	ids := make(map[string]bool, len(highlights))
	for _, h := range highlights {
		if h.ID == "" {
			return &domain.ValidationError{Field: "id", Message: "is required"}
		}
		if ids[h.ID] {
			return &domain.ValidationError{Field: "id", Message: "duplicate " + h.ID}
		}
		ids[h.ID] = true
		if (h.Content.Text == "") == (h.Content.Image == "") {
			return &domain.ValidationError{Field: "content", Message: "exactly one of text or image is required for " + h.ID}
		}
	}
	return nil
}
