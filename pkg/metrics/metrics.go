// Package metrics exposes Prometheus metrics for analysis runs and the web API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ritzau/pipe-analyzer/pkg/model"
)

// Analysis outcomes used as the status label.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RecordAnalysis records a successful run and the state of its result.
func (r *Registry) RecordAnalysis(duration time.Duration, pipes, terminals, warnings int, s model.Summary) {
	r.AnalysesTotal.WithLabelValues(StatusSuccess).Inc()
	r.AnalysisDuration.Observe(duration.Seconds())
	r.PipesAnalyzed.Set(float64(pipes))
	r.TerminalBranches.Set(float64(terminals))
	r.IntegrityWarnings.Set(float64(warnings))
	r.MinPressureHead.Set(s.MinPressureHead)
	r.MaxVelocity.Set(s.MaxVelocity)
	r.LastAnalysisTime.SetToCurrentTime()

	if !s.PressureAdequate {
		r.ConstraintViolations.WithLabelValues("pressure").Inc()
	}
	if !s.VelocityAcceptable {
		r.ConstraintViolations.WithLabelValues("velocity").Inc()
	}
}

// RecordAnalysisError records a run that produced no result.
func (r *Registry) RecordAnalysisError(duration time.Duration) {
	r.AnalysesTotal.WithLabelValues(StatusError).Inc()
	r.AnalysisDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
