package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipe_analyzer_analyses_total",
			Help: "Total number of analysis runs by outcome",
		},
		[]string{"status"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipe_analyzer_analysis_duration_seconds",
			Help:    "Time from loading the network to a finished result",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	r.PipesAnalyzed = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "pipe_analyzer_pipes",
			Help: "Number of pipes in the last analyzed network",
		},
	)

	r.TerminalBranches = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "pipe_analyzer_terminal_branches",
			Help: "Number of branch termini in the last analyzed network",
		},
	)

	r.IntegrityWarnings = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "pipe_analyzer_integrity_warnings",
			Help: "Data integrity warnings raised by the last topology build",
		},
	)

	r.MinPressureHead = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "pipe_analyzer_min_pressure_head_meters",
			Help: "Lowest pressure head in the last analysis",
		},
	)

	r.MaxVelocity = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "pipe_analyzer_max_velocity_meters_per_second",
			Help: "Highest flow velocity in the last analysis",
		},
	)

	r.ConstraintViolations = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipe_analyzer_constraint_violations_total",
			Help: "Analyses that failed a design constraint",
		},
		[]string{"constraint"},
	)

	r.LastAnalysisTime = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "pipe_analyzer_last_analysis_timestamp_seconds",
			Help: "Unix time of the last successful analysis",
		},
	)
}
