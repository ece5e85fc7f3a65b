package network

import (
	"fmt"
	"slices"

	"github.com/ritzau/pipe-analyzer/pkg/model"
)

// Topology is a frozen, rooted tree of pipes. Pipes live in a dense arena;
// ids resolve to arena slots through index, and parent holds the slot of the
// upstream pipe (-1 when the pipe is fed directly by the source).
//
// A Topology has no mutating methods, so any number of analyses may read
// it concurrently.
type Topology struct {
	pipes    []model.Pipe
	index    map[string]int // pipe id -> slot
	byEnd    map[string]int // end junction -> slot
	parent   []int
	children [][]int
	source   string
	graph    *junctionGraph
	warnings []Warning
}

// Len returns the number of pipes.
func (t *Topology) Len() int {
	return len(t.pipes)
}

// Source returns the reservoir junction id ("" for an empty network).
func (t *Topology) Source() string {
	return t.source
}

// Pipe returns the pipe with the given id.
func (t *Topology) Pipe(id string) (model.Pipe, bool) {
	i, ok := t.index[id]
	if !ok {
		return model.Pipe{}, false
	}
	return t.pipes[i], true
}

// Pipes returns a copy of all pipes in input order.
func (t *Topology) Pipes() []model.Pipe {
	return slices.Clone(t.pipes)
}

// Warnings returns the non-fatal diagnostics collected while building.
func (t *Topology) Warnings() []Warning {
	return slices.Clone(t.warnings)
}

// TerminalPipes returns the ids of all branch termini in input order.
func (t *Topology) TerminalPipes() []string {
	terms := t.terminalIndices()
	ids := make([]string, len(terms))
	for k, i := range terms {
		ids[k] = t.pipes[i].ID
	}
	return ids
}

// Roots returns the pipes fed directly by the source, in input order.
func (t *Topology) Roots() []string {
	var ids []string
	for i, p := range t.parent {
		if p < 0 {
			ids = append(ids, t.pipes[i].ID)
		}
	}
	return ids
}

// Children returns the pipes that continue from the end junction of id.
func (t *Topology) Children(id string) ([]string, error) {
	i, ok := t.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPipe, id)
	}
	ids := make([]string, len(t.children[i]))
	for k, c := range t.children[i] {
		ids[k] = t.pipes[c].ID
	}
	return ids, nil
}

// PathToTerminal returns the pipe ids from the source to the terminal pipe,
// inclusive.
func (t *Topology) PathToTerminal(id string) ([]string, error) {
	i, ok := t.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPipe, id)
	}
	if !t.pipes[i].Terminal {
		return nil, fmt.Errorf("%w: %s", ErrNotTerminal, id)
	}
	return t.pathIDs(i)
}

// PathTo returns the pipe ids from the source to any pipe, inclusive. It
// follows parent pointers upward, so the cost is the depth of the pipe.
func (t *Topology) PathTo(id string) ([]string, error) {
	i, ok := t.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPipe, id)
	}
	return t.pathIDs(i)
}

// BranchPaths maps every terminal pipe to its source path.
func (t *Topology) BranchPaths() (map[string][]string, error) {
	paths := make(map[string][]string)
	for _, i := range t.terminalIndices() {
		path, err := t.pathIDs(i)
		if err != nil {
			return nil, err
		}
		paths[t.pipes[i].ID] = path
	}
	return paths, nil
}

// CrossCheckPaths compares the depth of every pipe across all terminal
// paths that contain it. With unique parents each pipe has exactly one
// depth; anything else is reported as a warning naming the shortest prefix.
func (t *Topology) CrossCheckPaths() []Warning {
	depths := make([]map[int]bool, len(t.pipes))
	for _, term := range t.terminalIndices() {
		path, err := t.pathIndices(term)
		if err != nil {
			continue
		}
		for d, i := range path {
			if depths[i] == nil {
				depths[i] = make(map[int]bool)
			}
			depths[i][d] = true
		}
	}

	var warnings []Warning
	for i, seen := range depths {
		if len(seen) <= 1 {
			continue
		}
		ds := make([]int, 0, len(seen))
		for d := range seen {
			ds = append(ds, d+1)
		}
		slices.Sort(ds)
		warnings = append(warnings, Warning{
			Kind:    WarnPathDepth,
			PipeID:  t.pipes[i].ID,
			Message: fmt.Sprintf("on terminal paths at depths %v; the shortest prefix (%d pipes) applies", ds, ds[0]),
		})
	}
	return warnings
}

func (t *Topology) terminalIndices() []int {
	var terms []int
	for i := range t.pipes {
		if len(t.children[i]) == 0 {
			terms = append(terms, i)
		}
	}
	return terms
}

// pathIndices walks parent pointers from slot i up to the source.
func (t *Topology) pathIndices(i int) ([]int, error) {
	var path []int
	for cur := i; cur >= 0; cur = t.parent[cur] {
		if len(path) >= len(t.pipes) {
			return nil, &TopologyError{
				Kind:   KindCycle,
				Pipes:  []string{t.pipes[i].ID},
				Detail: "predecessor search revisited a pipe",
			}
		}
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path, nil
}

func (t *Topology) pathIDs(i int) ([]string, error) {
	path, err := t.pathIndices(i)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(path))
	for k, p := range path {
		ids[k] = t.pipes[p].ID
	}
	return ids, nil
}
