package cycles

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/graph"
)

// Cycle is a closed loop of junctions in a pipe network.
type Cycle struct {
	Junctions []string // sorted junction ids
}

// FindCycles returns every loop in g. name maps a graph node id back to the
// junction id it was created for.
func FindCycles(g graph.Directed, name func(id int64) string) []Cycle {
	tarjan := NewTarjanSCC(g)
	sccs := tarjan.FindSCCs()

	cycles := make([]Cycle, 0, len(sccs))
	for _, scc := range sccs {
		junctions := make([]string, 0, len(scc))
		for _, id := range scc {
			junctions = append(junctions, name(id))
		}
		slices.Sort(junctions)
		cycles = append(cycles, Cycle{Junctions: junctions})
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Junctions[0] < cycles[j].Junctions[0]
	})
	return cycles
}

func sortIDs(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}
