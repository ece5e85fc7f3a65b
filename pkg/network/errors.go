package network

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTopology matches every *TopologyError via errors.Is.
	ErrTopology = errors.New("invalid network topology")

	ErrUnknownPipe = errors.New("unknown pipe")
	ErrNotTerminal = errors.New("pipe is not a branch terminus")
	ErrFrozen      = errors.New("topology builder is frozen")
)

// TopologyKind classifies a structural violation of the tree invariants.
type TopologyKind string

const (
	KindDuplicate            TopologyKind = "duplicate"
	KindAmbiguousPredecessor TopologyKind = "ambiguous_predecessor"
	KindCycle                TopologyKind = "cycle"
	KindOrphan               TopologyKind = "orphan"
	KindUnreachable          TopologyKind = "unreachable"
)

// TopologyError reports pipes or junctions that break the rooted-tree shape.
type TopologyError struct {
	Kind      TopologyKind
	Pipes     []string
	Junctions []string
	Detail    string
}

func (e *TopologyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "topology error (%s)", e.Kind)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if len(e.Pipes) > 0 {
		fmt.Fprintf(&b, " [pipes: %s]", strings.Join(e.Pipes, ", "))
	}
	if len(e.Junctions) > 0 {
		fmt.Fprintf(&b, " [junctions: %s]", strings.Join(e.Junctions, ", "))
	}
	return b.String()
}

func (e *TopologyError) Is(target error) bool {
	return target == ErrTopology
}

// WarningKind classifies non-fatal diagnostics found while building.
type WarningKind string

const (
	// WarnTerminalMismatch is a data-integrity warning: the declared
	// branch-end flag disagrees with the structure. The structure wins.
	WarnTerminalMismatch WarningKind = "terminal_flag_mismatch"
	// WarnPathDepth means a pipe sits at different depths on different
	// terminal paths. It cannot happen with unique parents.
	WarnPathDepth WarningKind = "path_depth_mismatch"
)

// Warning is a diagnostic that accompanies a still-valid topology.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	PipeID  string      `json:"pipe_id" yaml:"pipe_id"`
	Message string      `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: pipe %s: %s", w.Kind, w.PipeID, w.Message)
}
