package repository

import (
	"context"
	"strings"
	"testing"

	"pdf-highlighter/internal/domain"
	"pdf-highlighter/pkg/logger"

	"github.com/supabase-community/supabase-go"
)

func TestDefaultFixtureSeedRepository_Loads(t *testing.T) {
	repo, err := NewDefaultFixtureSeedRepository(logger.NewNop())
	if err != nil {
		t.Fatalf("expected embedded fixtures to load, got %v", err)
	}

	seed, err := repo.Seed(context.Background(), "https://arxiv.org/pdf/1708.08021.pdf")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(seed) != 3 {
		t.Fatalf("expected 3 seeded highlights, got %d", len(seed))
	}
	if !seed[1].Content.IsImage() {
		t.Fatalf("expected second seed to be an area highlight")
	}
	secondary, err := repo.Seed(context.Background(), "https://arxiv.org/pdf/1604.02480.pdf")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(secondary) != 1 {
		t.Fatalf("expected 1 seeded highlight for the second document, got %d", len(secondary))
	}
}

func TestFixtureSeedRepository_UnknownLocator(t *testing.T) {
	repo, err := NewFixtureSeedRepository([]byte(`{}`), logger.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	seed, err := repo.Seed(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if seed == nil || len(seed) != 0 {
		t.Fatalf("expected empty non-nil seed, got %v", seed)
	}
}

func TestFixtureSeedRepository_ReturnsCopies(t *testing.T) {
	repo, err := NewFixtureSeedRepository([]byte(`{"doc1":[{"id":"h1","position":{"pageNumber":1,"rects":[{"x1":1}]},"content":{"text":"foo"},"comment":{"text":"","emoji":""}}]}`), logger.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	first, _ := repo.Seed(context.Background(), "doc1")
	first[0].Content.Text = "mutated"
	first[0].Position.Rects[0].X1 = 42

	second, _ := repo.Seed(context.Background(), "doc1")
	if second[0].Content.Text != "foo" {
		t.Fatalf("expected seed text to be untouched, got %s", second[0].Content.Text)
	}
	if second[0].Position.Rects[0].X1 != 1 {
		t.Fatalf("expected seed rects to be untouched, got %v", second[0].Position.Rects[0].X1)
	}
}

func TestFixtureSeedRepository_RejectsInvalidSeeds(t *testing.T) {
	cases := map[string]string{
		"malformed":     `{"doc1": [`,
		"missing id":    `{"doc1":[{"content":{"text":"a"}}]}`,
		"duplicate id":  `{"doc1":[{"id":"a","content":{"text":"a"}},{"id":"a","content":{"text":"b"}}]}`,
		"both contents": `{"doc1":[{"id":"a","content":{"text":"a","image":"data:"}}]}`,
		"no content":    `{"doc1":[{"id":"a","content":{}}]}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewFixtureSeedRepository([]byte(data), logger.NewNop()); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestDecodeSeedRows(t *testing.T) {
	data := []byte(`[
		{"ordinal":0,"highlight":{"id":"h1","position":{"pageNumber":1},"content":{"text":"foo\u0000bar"},"comment":{"text":"note","emoji":""}}},
		{"ordinal":1,"highlight":{"id":"h2","position":{"pageNumber":2},"content":{"image":"data:image/png;base64,AA=="},"comment":{"text":"","emoji":""}}}
	]`)

	highlights, err := decodeSeedRows(data)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(highlights) != 2 {
		t.Fatalf("expected 2 highlights, got %d", len(highlights))
	}
	if highlights[0].Content.Text != "foobar" {
		t.Fatalf("expected NUL bytes to be stripped, got %q", highlights[0].Content.Text)
	}
	if highlights[1].ID != "h2" || highlights[1].Position.PageNumber != 2 {
		t.Fatalf("unexpected second highlight: %+v", highlights[1])
	}
}

func TestDecodeSeedRows_Errors(t *testing.T) {
	if _, err := decodeSeedRows([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed response")
	}
	if _, err := decodeSeedRows([]byte(`[{"ordinal":0,"highlight":"oops"}]`)); err == nil || !strings.Contains(err.Error(), "seed 0") {
		t.Fatalf("expected per-row error, got %v", err)
	}
}

type uninitializedClient struct{}

func (uninitializedClient) Initialize() error     { return nil }
func (uninitializedClient) DB() *supabase.Client { return nil }

var _ domain.SupabaseClient = uninitializedClient{}

func TestSupabaseSeedRepository_RequiresClient(t *testing.T) {
	repo := NewSupabaseSeedRepository(uninitializedClient{}, logger.NewNop())

	if _, err := repo.Seed(context.Background(), "doc1"); err == nil {
		t.Fatalf("expected error when client is not initialized")
	}
}

func TestSupabaseSeedRepository_HonorsCanceledContext(t *testing.T) {
	repo := NewSupabaseSeedRepository(uninitializedClient{}, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.Seed(ctx, "doc1"); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
