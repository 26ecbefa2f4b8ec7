package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordVerification(t *testing.T) {
	m := New()
	m.RecordVerification("fresh")
	m.RecordVerification("fresh")
	m.RecordVerification("duplicate")

	if got := testutil.ToFloat64(m.verifications.WithLabelValues("fresh")); got != 2 {
		t.Fatalf("expected 2 fresh, got %v", got)
	}
	if got := testutil.ToFloat64(m.verifications.WithLabelValues("duplicate")); got != 1 {
		t.Fatalf("expected 1 duplicate, got %v", got)
	}
}

func TestMetrics_ObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodPost, "/api/v1/verify-qr", http.StatusOK, 20*time.Millisecond)

	count := testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodPost, "/api/v1/verify-qr", "200"))
	if count != 1 {
		t.Fatalf("expected one request counted, got %v", count)
	}
	if n := testutil.CollectAndCount(m.requestLatency); n != 1 {
		t.Fatalf("expected one latency series, got %d", n)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RecordVerification("invalid")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `admission_entry_verifications_total{outcome="invalid"} 1`) {
		t.Fatalf("expected verification counter in exposition, got:\n%s", body)
	}
}
