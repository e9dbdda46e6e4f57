package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pdf-highlighter/internal/hashrouter"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Observers(t *testing.T) {
	m := NewMetrics()

	m.HighlightsReset(3)
	m.HighlightCreated()
	m.HighlightUpdated(true)
	m.HighlightUpdated(false)
	m.HighlightUpdated(false)
	m.SessionSwitched("toggle", 0)
	m.Navigated(hashrouter.OutcomeScrolled)
	m.ScreenshotTaken(errors.New("render failed"))

	if got := testutil.ToFloat64(m.HighlightsCreatedTotal); got != 1 {
		t.Fatalf("expected 1 created highlight, got %v", got)
	}
	if got := testutil.ToFloat64(m.HighlightsActive); got != 4 {
		t.Fatalf("expected 4 active highlights, got %v", got)
	}
	if got := testutil.ToFloat64(m.HighlightUpdatesTotal.WithLabelValues("miss")); got != 2 {
		t.Fatalf("expected 2 missed updates, got %v", got)
	}
	if got := testutil.ToFloat64(m.SessionSwitchesTotal.WithLabelValues("toggle")); got != 1 {
		t.Fatalf("expected 1 toggle, got %v", got)
	}
	if got := testutil.ToFloat64(m.HashNavigationsTotal.WithLabelValues("scrolled")); got != 1 {
		t.Fatalf("expected 1 navigation, got %v", got)
	}
	if got := testutil.ToFloat64(m.ScreenshotsTotal.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected 1 failed screenshot, got %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest(http.MethodGet, http.StatusOK)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `highlighter_http_requests_total{method="GET",status="200"} 1`) {
		t.Fatalf("expected request counter in output")
	}
}
