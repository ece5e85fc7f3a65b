package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Analysis Metrics
	AnalysesTotal        *prometheus.CounterVec
	AnalysisDuration     prometheus.Histogram
	PipesAnalyzed        prometheus.Gauge
	TerminalBranches     prometheus.Gauge
	IntegrityWarnings    prometheus.Gauge
	MinPressureHead      prometheus.Gauge
	MaxVelocity          prometheus.Gauge
	ConstraintViolations *prometheus.CounterVec
	LastAnalysisTime     prometheus.Gauge

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initAnalysisMetrics()
	r.initHTTPMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
