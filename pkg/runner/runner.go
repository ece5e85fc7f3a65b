// Package runner drives one analysis end to end: load the pipe table,
// build the topology, analyze it and hand the result to its consumers.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ritzau/pipe-analyzer/pkg/analysis"
	"github.com/ritzau/pipe-analyzer/pkg/config"
	"github.com/ritzau/pipe-analyzer/pkg/loader"
	"github.com/ritzau/pipe-analyzer/pkg/logging"
	"github.com/ritzau/pipe-analyzer/pkg/metrics"
	"github.com/ritzau/pipe-analyzer/pkg/network"
	"github.com/ritzau/pipe-analyzer/pkg/profile"
	"github.com/ritzau/pipe-analyzer/pkg/pubsub"
	"github.com/ritzau/pipe-analyzer/pkg/watcher"
	"github.com/ritzau/pipe-analyzer/pkg/web"
)

// ReasonStartup is the reason of the first run.
const ReasonStartup = "startup"

const totalSteps = 4

// Option configures a Runner.
type Option func(*Runner)

// WithServer stores every snapshot in the web server.
func WithServer(s *web.Server) Option {
	return func(r *Runner) { r.server = s }
}

// WithPublisher publishes status and summary events.
func WithPublisher(p pubsub.Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithMetrics records run metrics in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(r *Runner) { r.metrics = reg }
}

// WithReload sets how configuration is re-read after a config file change.
func WithReload(fn func() (*config.Config, error)) Option {
	return func(r *Runner) { r.reload = fn }
}

// Runner serialises analysis runs. Each run builds a fresh frozen topology
// and swaps the finished snapshot in; nothing is mutated in place.
type Runner struct {
	mu        sync.Mutex
	cfg       *config.Config
	reload    func() (*config.Config, error)
	server    *web.Server
	publisher pubsub.Publisher
	metrics   *metrics.Registry
	last      *web.Snapshot
}

// New creates a runner for cfg.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the configuration used by the next run.
func (r *Runner) Config() *config.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// Last returns the latest successful snapshot, or nil.
func (r *Runner) Last() *web.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Run performs one complete analysis. On failure the previous snapshot
// stays in place.
func (r *Runner) Run(ctx context.Context, reason string) (*web.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	start := time.Now()

	logging.InfoContext(ctx, "Analysis started", "reason", reason, "input", r.cfg.Input)

	snap, err := r.run(ctx, runID, reason)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordAnalysisError(time.Since(start))
		}
		r.status(ctx, pubsub.AnalysisStatus{
			RunID: runID, Reason: reason, State: pubsub.StateFailed,
			Message: "Analysis failed", Total: totalSteps, Error: err.Error(),
		})
		logging.ErrorContext(ctx, "Analysis failed", "reason", reason, "error", err)
		return nil, err
	}

	res := snap.Result
	terminals := len(snap.Topology.TerminalPipes())
	if r.metrics != nil {
		r.metrics.RecordAnalysis(time.Since(start), len(res.Rows), terminals, len(res.Warnings), res.Summary)
	}
	if r.server != nil {
		r.server.SetSnapshot(snap)
	}
	r.last = snap

	r.status(ctx, pubsub.AnalysisStatus{
		RunID: runID, Reason: reason, State: pubsub.StateReady,
		Message: "Analysis complete", Step: totalSteps, Total: totalSteps,
	})
	r.publish(ctx, pubsub.TopicSummary, "summary", pubsub.SummaryData{
		RunID:     runID,
		Summary:   res.Summary,
		Pipes:     len(res.Rows),
		Terminals: terminals,
		Warnings:  len(res.Warnings),
	})

	logging.InfoContext(ctx, "Analysis complete",
		"pipes", len(res.Rows),
		"terminals", terminals,
		"warnings", len(res.Warnings),
		"minPressureHead", res.Summary.MinPressureHead,
		"criticalNode", res.Summary.CriticalNode,
		"durationMs", time.Since(start).Milliseconds(),
	)
	return snap, nil
}

func (r *Runner) run(ctx context.Context, runID, reason string) (*web.Snapshot, error) {
	step := func(n int, state, msg string) {
		r.status(ctx, pubsub.AnalysisStatus{
			RunID: runID, Reason: reason, State: state, Message: msg, Step: n, Total: totalSteps,
		})
	}

	step(1, pubsub.StateLoading, "Loading pipe table")
	rows, err := loader.LoadFile(r.cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	step(2, pubsub.StateBuilding, "Building topology")
	topo, err := network.Build(rows, network.WithSource(r.cfg.Source))
	if err != nil {
		return nil, fmt.Errorf("topology: %w", err)
	}
	for _, w := range topo.Warnings() {
		logging.WarnContext(ctx, "Data integrity warning", "kind", string(w.Kind), "pipe", w.PipeID, "message", w.Message)
	}

	step(3, pubsub.StateAnalyzing, "Analyzing hydraulics")
	formulas, err := r.cfg.Formulas()
	if err != nil {
		return nil, err
	}
	res, err := analysis.New(formulas).Analyze(topo, r.cfg.Params())
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	profiles, err := profile.Build(topo, res)
	if err != nil {
		return nil, fmt.Errorf("profiles: %w", err)
	}

	return &web.Snapshot{
		RunID:      runID,
		AnalyzedAt: time.Now(),
		Topology:   topo,
		Result:     res,
		Profiles:   profiles,
	}, nil
}

// HandleChange re-runs the analysis for a debounced file change,
// re-reading the configuration first when it changed.
func (r *Runner) HandleChange(ctx context.Context, event watcher.ChangeEvent) error {
	change := watcher.AnalyzeChanges(event)
	logging.InfoContext(ctx, "Input changed", "reason", change.Reason, "files", change.ChangedFiles)

	if change.ReloadConfig && r.reload != nil {
		cfg, err := r.reload()
		if err != nil {
			// Keep analyzing with the last good configuration
			logging.ErrorContext(ctx, "Config reload failed", "error", err)
		} else {
			r.mu.Lock()
			r.cfg = cfg
			r.mu.Unlock()
		}
	}

	_, err := r.Run(ctx, change.Reason)
	return err
}

// Watch handles change events until the channel closes or ctx ends.
// Failed runs are logged and published; watching continues.
func (r *Runner) Watch(ctx context.Context, events <-chan watcher.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = r.HandleChange(ctx, event)
		}
	}
}

func (r *Runner) status(ctx context.Context, st pubsub.AnalysisStatus) {
	r.publish(ctx, pubsub.TopicAnalysisStatus, st.State, st)
}

func (r *Runner) publish(ctx context.Context, topic, eventType string, data any) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(topic, eventType, data); err != nil {
		logging.DebugContext(ctx, "Publish failed", "topic", topic, "error", err)
	}
}
