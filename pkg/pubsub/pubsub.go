package pubsub

import (
	"context"
	"encoding/json"

	"github.com/ritzau/pipe-analyzer/pkg/model"
)

// Topics published by the analysis runner.
const (
	TopicAnalysisStatus = "analysis_status"
	TopicSummary        = "summary"
)

// Analysis states carried by AnalysisStatus events.
const (
	StateLoading   = "loading"
	StateBuilding  = "building"
	StateAnalyzing = "analyzing"
	StateReady     = "ready"
	StateFailed    = "failed"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (analysis_status, summary)
	Type    string          `json:"type"`    // Event type, the analysis state for status events
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events. It is closed when the
	// subscription or the publisher closes.
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// AnalysisStatus reports the progress of one analysis run.
type AnalysisStatus struct {
	RunID   string `json:"run_id"`
	Reason  string `json:"reason"` // startup, network_changed, config_changed
	State   string `json:"state"`
	Message string `json:"message"`
	Step    int    `json:"step"`  // Current step number (1-based)
	Total   int    `json:"total"` // Total number of steps
	Error   string `json:"error,omitempty"`
}

// SummaryData is published after every successful analysis.
type SummaryData struct {
	RunID     string        `json:"run_id"`
	Summary   model.Summary `json:"summary"`
	Pipes     int           `json:"pipes"`
	Terminals int           `json:"terminals"`
	Warnings  int           `json:"warnings"`
}

// ConfigureAnalysisTopics sets up replay so late subscribers see the
// latest status and summary.
func ConfigureAnalysisTopics(p *SSEPublisher) {
	p.ConfigureTopic(TopicAnalysisStatus, TopicConfig{BufferSize: 5, ReplayAll: false})
	p.ConfigureTopic(TopicSummary, TopicConfig{BufferSize: 1, ReplayAll: false})
}
