package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ritzau/pipe-analyzer/pkg/analysis"
	"github.com/ritzau/pipe-analyzer/pkg/hydraulics"
	"github.com/ritzau/pipe-analyzer/pkg/metrics"
	"github.com/ritzau/pipe-analyzer/pkg/model"
	"github.com/ritzau/pipe-analyzer/pkg/network"
	"github.com/ritzau/pipe-analyzer/pkg/profile"
	"github.com/ritzau/pipe-analyzer/pkg/pubsub"
)

func snapshot(t *testing.T) *Snapshot {
	t.Helper()
	mk := func(id, start, end string, elevation float64) model.PipeRow {
		return model.PipeRow{
			ID: id, StartJunction: start, EndJunction: end,
			LengthM: 100, DiameterM: 0.2, Roughness: 130, FlowCMS: 0.02,
			EndElevationM: elevation,
		}
	}
	topo, err := network.Build([]model.PipeRow{
		mk("P1", "R", "J1", 280),
		mk("P2", "J1", "J2", 275),
		mk("P3", "J1", "J3", 270),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	res, err := analysis.New(hydraulics.HazenWilliams{}).Analyze(topo, model.DefaultSystemParams())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	profiles, err := profile.Build(topo, res)
	if err != nil {
		t.Fatalf("profile.Build failed: %v", err)
	}
	return &Snapshot{RunID: "run-1", AnalyzedAt: time.Now(), Topology: topo, Result: res, Profiles: profiles}
}

func newTestServer(t *testing.T) (*Server, *metrics.Registry) {
	t.Helper()
	reg := metrics.NewRegistry()
	pub := pubsub.NewSSEPublisher()
	t.Cleanup(func() { _ = pub.Close() })
	pubsub.ConfigureAnalysisTopics(pub)
	return NewServer(pub, reg), reg
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestUnavailableBeforeFirstAnalysis(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/api/results", "/api/summary", "/api/warnings", "/api/terminals", "/api/pipes/P1", "/api/profiles", "/api/topology.dot"} {
		if rec := get(t, s, path); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d, want 503", path, rec.Code)
		}
	}
}

func TestResultsAndSummary(t *testing.T) {
	s, _ := newTestServer(t)
	snap := snapshot(t)
	s.SetSnapshot(snap)

	rec := get(t, s, "/api/results")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/results = %d", rec.Code)
	}
	var res struct {
		Rows []model.ResultRow `json:"rows"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 3 || res.Rows[0].PipeID != "P1" {
		t.Errorf("rows = %+v", res.Rows)
	}

	rec = get(t, s, "/api/summary")
	var sum struct {
		RunID   string        `json:"run_id"`
		Summary model.Summary `json:"summary"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&sum); err != nil {
		t.Fatal(err)
	}
	if sum.RunID != "run-1" || sum.Summary != snap.Result.Summary {
		t.Errorf("summary = %+v", sum)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response has no request id")
	}
}

func TestPipeEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	s.SetSnapshot(snapshot(t))

	rec := get(t, s, "/api/pipes/P1")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/pipes/P1 = %d", rec.Code)
	}
	var detail PipeDetail
	if err := json.NewDecoder(rec.Body).Decode(&detail); err != nil {
		t.Fatal(err)
	}
	if detail.Pipe.ID != "P1" || !slices.Equal(detail.Children, []string{"P2", "P3"}) || !slices.Equal(detail.Path, []string{"P1"}) {
		t.Errorf("detail = %+v", detail)
	}

	rec = get(t, s, "/api/pipes/P3/path")
	var path []string
	if err := json.NewDecoder(rec.Body).Decode(&path); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(path, []string{"P1", "P3"}) {
		t.Errorf("path = %v", path)
	}

	for _, p := range []string{"/api/pipes/nope", "/api/pipes/nope/path"} {
		if rec := get(t, s, p); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", p, rec.Code)
		}
	}
}

func TestTerminalsProfilesWarningsDOT(t *testing.T) {
	s, _ := newTestServer(t)
	s.SetSnapshot(snapshot(t))

	var terms map[string][]string
	if err := json.NewDecoder(get(t, s, "/api/terminals").Body).Decode(&terms); err != nil {
		t.Fatal(err)
	}
	if len(terms) != 2 || !slices.Equal(terms["P2"], []string{"P1", "P2"}) {
		t.Errorf("terminals = %v", terms)
	}

	var profiles []profile.Profile
	if err := json.NewDecoder(get(t, s, "/api/profiles").Body).Decode(&profiles); err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 2 || profiles[0].Points[0].Junction != "R" {
		t.Errorf("profiles = %+v", profiles)
	}

	if body := get(t, s, "/api/warnings").Body.String(); strings.TrimSpace(body) != "[]" {
		t.Errorf("warnings = %s, want []", body)
	}

	rec := get(t, s, "/api/topology.dot")
	if !strings.Contains(rec.Body.String(), "digraph") || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/vnd.graphviz") {
		t.Errorf("unexpected DOT response: %s", rec.Body.String())
	}
}

func TestMetricsEndpointAndInstrumentation(t *testing.T) {
	s, reg := newTestServer(t)
	s.SetSnapshot(snapshot(t))

	get(t, s, "/api/pipes/P1")
	get(t, s, "/api/pipes/P2")
	get(t, s, "/api/pipes/nope")

	if got := testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("GET", "/api/pipes/{id}", "200")); got != 2 {
		t.Errorf("200 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("GET", "/api/pipes/{id}", "404")); got != 1 {
		t.Errorf("404 count = %v, want 1", got)
	}

	rec := get(t, s, "/metrics")
	if !strings.Contains(rec.Body.String(), "pipe_analyzer_http_requests_total") {
		t.Error("/metrics does not expose request counter")
	}
}

func TestSubscribeStreamsReplayedSummary(t *testing.T) {
	s, _ := newTestServer(t)
	if err := s.publisher.Publish(pubsub.TopicSummary, "summary", pubsub.SummaryData{RunID: "run-1"}); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/subscribe/summary", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			if !strings.Contains(line, `"run_id":"run-1"`) {
				t.Errorf("unexpected data line %s", line)
			}
			return
		}
	}
	t.Fatalf("stream ended without data: %v", scanner.Err())
}

func TestSubscribeUnknownTopic(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := get(t, s, "/api/subscribe/other"); rec.Code != http.StatusNotFound {
		t.Errorf("GET unknown topic = %d, want 404", rec.Code)
	}
}
