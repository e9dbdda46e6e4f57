package renderer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"pdf-highlighter/internal/domain"

	"github.com/gen2brain/go-fitz"
)

// FitzLoader opens documents with MuPDF. URL locators are downloaded, file
// locators are read from disk.
type FitzLoader struct {
	client   *http.Client
	scale    float64
	maxBytes int64
	logger   domain.Logger
	open     func(data []byte) (pageSource, error)
}

// NewFitzLoader creates a loader rendering at the given scale.
func NewFitzLoader(scale float64, fetchTimeout time.Duration, maxBytes int64, logger domain.Logger) *FitzLoader {
	return &FitzLoader{
		client:   &http.Client{Timeout: fetchTimeout},
		scale:    scale,
		maxBytes: maxBytes,
		logger:   logger,
		open: func(data []byte) (pageSource, error) {
			return fitz.NewFromMemory(data)
		},
	}
}

// Load fetches and opens the document behind locator.
func (l *FitzLoader) Load(ctx context.Context, locator domain.Locator) (domain.Surface, error) {
	start := time.Now()
	data, err := l.read(ctx, locator)
	if err != nil {
		return nil, err
	}

	doc, err := l.open(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	surface := newSurface(locator, doc, l.scale)
	l.logger.Info("Document rendered",
		"locator", locator.String(),
		"pages", surface.PageCount(),
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return surface, nil
}

func (l *FitzLoader) read(ctx context.Context, locator domain.Locator) ([]byte, error) {
	switch locator.Kind {
	case domain.LocatorFile:
		f, err := os.Open(locator.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", locator.Value, err)
		}
		defer f.Close()
		return l.readLimited(f)
	case domain.LocatorURL:
		return l.fetch(ctx, locator.Value)
	default:
		return nil, fmt.Errorf("unsupported locator kind %q", locator.Kind)
	}
}

func (l *FitzLoader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch document: status %d", resp.StatusCode)
	}
	return l.readLimited(resp.Body)
}

func (l *FitzLoader) readLimited(r io.Reader) ([]byte, error) {
	if l.maxBytes > 0 {
		r = io.LimitReader(r, l.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("document exceeds %d bytes: %w", l.maxBytes, domain.ErrInvalidFile)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("document is empty: %w", domain.ErrInvalidFile)
	}
	return data, nil
}
