package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"pdf-highlighter/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

const seedTable = "highlight_seeds"

// SupabaseSeedRepository implements domain.SeedTable on a read-only
// PostgREST table with columns locator, ordinal and highlight (jsonb).
type SupabaseSeedRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewSupabaseSeedRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseSeedRepository {
	return &SupabaseSeedRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

type seedRow struct {
	Ordinal   int             `json:"ordinal"`
	Highlight json.RawMessage `json:"highlight"`
}

// Seed fetches the highlights seeded for locator, in ordinal order.
func (r *SupabaseSeedRepository) Seed(ctx context.Context, locator string) ([]domain.Highlight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	data, _, err := client.From(seedTable).
		Select("ordinal,highlight", "", false).
		Eq("locator", locator).
		Order("ordinal", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to query highlight seeds: %w", err)
	}

	highlights, err := decodeSeedRows(data)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Highlight seeds fetched", "locator", locator, "count", len(highlights))
	return highlights, nil
}

func decodeSeedRows(data []byte) ([]domain.Highlight, error) {
	var rows []seedRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	out := make([]domain.Highlight, 0, len(rows))
	for _, row := range rows {
		var h domain.Highlight
		if err := json.Unmarshal(row.Highlight, &h); err != nil {
			return nil, fmt.Errorf("failed to unmarshal seed %d: %w", row.Ordinal, err)
		}
		h.Content.Text = sanitizeText(h.Content.Text)
		h.Comment.Text = sanitizeText(h.Comment.Text)
		out = append(out, h)
	}
	if err := validateSeed(out); err != nil {
		return nil, err
	}
	return out, nil
}

var reControl = regexp.MustCompile(`[\x00]`)

// sanitizeText removes NUL bytes that can leak from extracted PDF text.
func sanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = reControl.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\\u0000", "")
	return s
}
