package watcher

import (
	"context"
	"slices"
	"time"

	"github.com/ritzau/pipe-analyzer/pkg/logging"
)

// Debouncer batches rapid file system events to avoid excessive re-analysis
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. A batch is flushed after
// quietPeriod without events, or maxWait after its first event.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run owns all batching state; timers only signal through channels.
func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet       *time.Timer
		deadline    *time.Timer
		accumulated = make(map[ChangeType][]string)
		eventCount  int
	)

	stop := func(t *time.Timer) *time.Timer {
		if t != nil {
			t.Stop()
		}
		return nil
	}
	timerC := func(t *time.Timer) <-chan time.Time {
		if t == nil {
			return nil
		}
		return t.C
	}

	flush := func() {
		quiet = stop(quiet)
		deadline = stop(deadline)
		if eventCount == 0 {
			return
		}

		logging.Debug("Flushing accumulated events", "count", eventCount)

		// Config first: it implies a network reload as well
		for _, kind := range []ChangeType{ChangeTypeConfig, ChangeTypeNetwork} {
			paths := accumulated[kind]
			if len(paths) == 0 {
				continue
			}
			slices.Sort(paths)
			d.output <- ChangeEvent{
				Type:      kind,
				Paths:     slices.Compact(paths),
				Timestamp: time.Now(),
			}
		}

		accumulated = make(map[ChangeType][]string)
		eventCount = 0
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			accumulated[event.Type] = append(accumulated[event.Type], event.Paths...)
			eventCount++

			stop(quiet)
			quiet = time.NewTimer(d.quietPeriod)
			if deadline == nil {
				deadline = time.NewTimer(d.maxWait)
			}

		case <-timerC(quiet):
			quiet = nil
			flush()

		case <-timerC(deadline):
			deadline = nil
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
