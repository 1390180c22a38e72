package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestMetrics_HandlerExposesCounters(t *testing.T) {
	m := New()
	m.SubmissionsTotal.WithLabelValues("free", "saved").Inc()
	m.PersistFailuresTotal.Inc()

	body := scrape(t, m)
	for _, want := range []string{
		`career_test_submissions_total{outcome="saved",tier="free"} 1`,
		"career_test_persist_failures_total 1",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.PersistFailuresTotal.Inc()
	if !strings.Contains(scrape(t, b), "career_test_persist_failures_total 0") {
		t.Fatalf("registries should not share state")
	}
}
