package network

import (
	"fmt"
	"slices"

	"github.com/ritzau/pipe-analyzer/pkg/cycles"
	"github.com/ritzau/pipe-analyzer/pkg/logging"
	"github.com/ritzau/pipe-analyzer/pkg/model"
)

// Option configures a Builder.
type Option func(*Builder)

// WithSource names the reservoir junction explicitly. Without it the source
// is the single junction that starts a pipe but ends none.
func WithSource(junction string) Option {
	return func(b *Builder) {
		b.source = junction
	}
}

// Builder collects pipe rows and turns them into a frozen Topology. A
// builder is single use: after Build it rejects further input.
type Builder struct {
	source string
	rows   []model.PipeRow
	frozen bool
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add queues one pipe row.
func (b *Builder) Add(row model.PipeRow) error {
	if b.frozen {
		return ErrFrozen
	}
	b.rows = append(b.rows, row)
	return nil
}

// AddRows queues all rows in order.
func (b *Builder) AddRows(rows []model.PipeRow) error {
	if b.frozen {
		return ErrFrozen
	}
	b.rows = append(b.rows, rows...)
	return nil
}

// Build is a shorthand for NewBuilder(opts...).AddRows(rows) followed by Build.
func Build(rows []model.PipeRow, opts ...Option) (*Topology, error) {
	b := NewBuilder(opts...)
	if err := b.AddRows(rows); err != nil {
		return nil, err
	}
	return b.Build()
}

// Build validates the tree invariants and freezes the builder. The parent
// pointers are derived in a single pass over the rows.
func (b *Builder) Build() (*Topology, error) {
	if b.frozen {
		return nil, ErrFrozen
	}
	b.frozen = true

	n := len(b.rows)
	t := &Topology{
		pipes:    make([]model.Pipe, 0, n),
		index:    make(map[string]int, n),
		byEnd:    make(map[string]int, n),
		parent:   make([]int, n),
		children: make([][]int, n),
	}

	for i, row := range b.rows {
		if prev, dup := t.index[row.ID]; dup {
			return nil, &TopologyError{
				Kind:   KindDuplicate,
				Pipes:  []string{row.ID},
				Detail: fmt.Sprintf("pipe id used by rows %d and %d", prev+1, i+1),
			}
		}
		if row.StartJunction == row.EndJunction {
			return nil, &TopologyError{
				Kind:      KindCycle,
				Pipes:     []string{row.ID},
				Junctions: []string{row.StartJunction},
				Detail:    "pipe starts and ends at the same junction",
			}
		}
		if prev, claimed := t.byEnd[row.EndJunction]; claimed {
			return nil, &TopologyError{
				Kind:      KindAmbiguousPredecessor,
				Pipes:     []string{t.pipes[prev].ID, row.ID},
				Junctions: []string{row.EndJunction},
				Detail:    "junction has more than one incoming pipe",
			}
		}

		t.index[row.ID] = i
		t.byEnd[row.EndJunction] = i
		t.pipes = append(t.pipes, model.PipeFromRow(row))
	}

	for i, p := range t.pipes {
		if j, ok := t.byEnd[p.StartJunction]; ok {
			t.parent[i] = j
			t.children[j] = append(t.children[j], i)
		} else {
			t.parent[i] = -1
		}
	}

	source, err := t.resolveSource(b.source)
	if err != nil {
		return nil, err
	}
	t.source = source

	for i := range t.pipes {
		t.pipes[i].Terminal = len(t.children[i]) == 0
	}

	t.graph = newJunctionGraph(source)
	if source != "" {
		t.graph.addJunction(source)
	}
	for _, p := range t.pipes {
		t.graph.addPipe(p.ID, p.StartJunction, p.EndJunction, p.Terminal)
	}

	if loops := cycles.FindCycles(t.graph.graph, t.graph.name); len(loops) > 0 {
		return nil, &TopologyError{
			Kind:      KindCycle,
			Pipes:     t.pipesWithin(loops[0].Junctions),
			Junctions: loops[0].Junctions,
			Detail:    fmt.Sprintf("%d closed loop(s) in the network", len(loops)),
		}
	}

	if n > 0 {
		reached := t.graph.reachableFrom(source)
		var unreachable []string
		for _, p := range t.pipes {
			if !reached[p.EndJunction] {
				unreachable = append(unreachable, p.ID)
			}
		}
		if len(unreachable) > 0 {
			return nil, &TopologyError{
				Kind:   KindUnreachable,
				Pipes:  unreachable,
				Detail: "pipes cannot be reached from the source " + source,
			}
		}
	}

	if uncovered := t.uncoveredPipes(); len(uncovered) > 0 {
		return nil, &TopologyError{
			Kind:   KindUnreachable,
			Pipes:  uncovered,
			Detail: "pipes are not on any terminal path",
		}
	}

	for i, p := range t.pipes {
		if p.DeclaredTerminal == nil || *p.DeclaredTerminal == p.Terminal {
			continue
		}
		w := Warning{
			Kind:    WarnTerminalMismatch,
			PipeID:  p.ID,
			Message: fmt.Sprintf("declared branch_end=%t but structure says %t", *p.DeclaredTerminal, p.Terminal),
		}
		logging.Warn("branch terminus flag disagrees with topology",
			"pipe", p.ID, "declared", *p.DeclaredTerminal, "derived", t.pipes[i].Terminal)
		t.warnings = append(t.warnings, w)
	}

	for _, w := range t.CrossCheckPaths() {
		logging.Warn("pipe found at different depths on terminal paths", "pipe", w.PipeID)
		t.warnings = append(t.warnings, w)
	}

	logging.Debug("built network topology",
		"pipes", n, "terminals", len(t.terminalIndices()), "source", source)
	return t, nil
}

// resolveSource finds the reservoir junction and checks that every root
// pipe starts there.
func (t *Topology) resolveSource(configured string) (string, error) {
	var roots []string
	rootPipes := make(map[string][]string)
	for i, p := range t.pipes {
		if t.parent[i] != -1 {
			continue
		}
		if _, seen := rootPipes[p.StartJunction]; !seen {
			roots = append(roots, p.StartJunction)
		}
		rootPipes[p.StartJunction] = append(rootPipes[p.StartJunction], p.ID)
	}

	if configured != "" {
		if i, ok := t.byEnd[configured]; ok {
			return "", &TopologyError{
				Kind:      KindCycle,
				Pipes:     []string{t.pipes[i].ID},
				Junctions: []string{configured},
				Detail:    "pipe feeds back into the source",
			}
		}
		var orphans []string
		var junctions []string
		for _, root := range roots {
			if root != configured {
				orphans = append(orphans, rootPipes[root]...)
				junctions = append(junctions, root)
			}
		}
		if len(orphans) > 0 {
			return "", &TopologyError{
				Kind:      KindOrphan,
				Pipes:     orphans,
				Junctions: junctions,
				Detail:    "start junction is neither the source " + configured + " nor the end of another pipe",
			}
		}
		return configured, nil
	}

	switch len(roots) {
	case 0:
		// every start junction is fed by another pipe; the cycle check reports it
		return "", nil
	case 1:
		return roots[0], nil
	default:
		var orphans []string
		for _, root := range roots[1:] {
			orphans = append(orphans, rootPipes[root]...)
		}
		return "", &TopologyError{
			Kind:      KindOrphan,
			Pipes:     orphans,
			Junctions: roots,
			Detail:    "more than one candidate source junction",
		}
	}
}

// pipesWithin lists the pipes whose both ends lie in junctions.
func (t *Topology) pipesWithin(junctions []string) []string {
	var ids []string
	for _, p := range t.pipes {
		if slices.Contains(junctions, p.StartJunction) && slices.Contains(junctions, p.EndJunction) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// uncoveredPipes returns the pipes that lie on no terminal path.
func (t *Topology) uncoveredPipes() []string {
	covered := make([]bool, len(t.pipes))
	for _, term := range t.terminalIndices() {
		path, err := t.pathIndices(term)
		if err != nil {
			continue
		}
		for _, i := range path {
			covered[i] = true
		}
	}

	var ids []string
	for i, ok := range covered {
		if !ok {
			ids = append(ids, t.pipes[i].ID)
		}
	}
	return ids
}
