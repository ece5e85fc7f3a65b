package network

import (
	"fmt"

	"gonum.org/v1/gonum/graph/encoding/dot"
)

// DOT renders the junction graph in Graphviz format. The source junction is
// drawn as a box and terminal pipes in bold.
func (t *Topology) DOT(name string) ([]byte, error) {
	if name == "" {
		name = "network"
	}
	out, err := dot.Marshal(t.graph.graph, name, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal topology: %w", err)
	}
	return out, nil
}
