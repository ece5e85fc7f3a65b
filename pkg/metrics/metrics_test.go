package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ritzau/pipe-analyzer/pkg/model"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.AnalysesTotal == nil {
		t.Error("AnalysesTotal not initialized")
	}
	if r.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordAnalysis(t *testing.T) {
	r := NewRegistry()

	ok := model.Summary{MinPressureHead: 31.5, MaxVelocity: 1.2, PressureAdequate: true, VelocityAcceptable: true}
	low := model.Summary{MinPressureHead: 12, MaxVelocity: 1.4, PressureAdequate: false, VelocityAcceptable: true}

	r.RecordAnalysis(10*time.Millisecond, 12, 4, 0, ok)
	r.RecordAnalysis(10*time.Millisecond, 14, 5, 1, low)
	r.RecordAnalysisError(time.Millisecond)

	if got := testutil.ToFloat64(r.AnalysesTotal.WithLabelValues(StatusSuccess)); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.AnalysesTotal.WithLabelValues(StatusError)); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.PipesAnalyzed); got != 14 {
		t.Errorf("pipes = %v, want 14", got)
	}
	if got := testutil.ToFloat64(r.MinPressureHead); got != 12 {
		t.Errorf("min pressure = %v, want 12", got)
	}
	if got := testutil.ToFloat64(r.ConstraintViolations.WithLabelValues("pressure")); got != 1 {
		t.Errorf("pressure violations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.ConstraintViolations.WithLabelValues("velocity")); got != 0 {
		t.Errorf("velocity violations = %v, want 0", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordHTTPRequest("GET", "/api/summary", "200", 5*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/summary", "200", 7*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/pipes/{id}", "404", time.Millisecond)

	if got := testutil.ToFloat64(r.HTTPRequestsTotal.WithLabelValues("GET", "/api/summary", "200")); got != 2 {
		t.Errorf("counter = %v, want 2", got)
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordAnalysis(time.Millisecond, 3, 2, 0, model.Summary{PressureAdequate: true, VelocityAcceptable: true})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"pipe_analyzer_analyses_total", "pipe_analyzer_pipes 3"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
