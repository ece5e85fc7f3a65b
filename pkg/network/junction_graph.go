package network

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// junctionNode is a junction in the gonum graph.
type junctionNode struct {
	id     int64
	name   string
	source bool
}

func (n junctionNode) ID() int64      { return n.id }
func (n junctionNode) DOTID() string  { return n.name }

func (n junctionNode) Attributes() []encoding.Attribute {
	if n.source {
		return []encoding.Attribute{{Key: "shape", Value: "box"}}
	}
	return nil
}

// pipeEdge is a pipe between two junctions.
type pipeEdge struct {
	from, to junctionNode
	pipeID   string
	terminal bool
}

func (e pipeEdge) From() graph.Node { return e.from }
func (e pipeEdge) To() graph.Node   { return e.to }

func (e pipeEdge) ReversedEdge() graph.Edge {
	return pipeEdge{from: e.to, to: e.from, pipeID: e.pipeID, terminal: e.terminal}
}

func (e pipeEdge) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "label", Value: e.pipeID}}
	if e.terminal {
		attrs = append(attrs, encoding.Attribute{Key: "style", Value: "bold"})
	}
	return attrs
}

// junctionGraph is the physical network: junctions as nodes, pipes as
// directed edges pointing downstream.
type junctionGraph struct {
	graph  *simple.DirectedGraph
	ids    map[string]int64
	nodes  []junctionNode // indexed by graph id
	source string
}

func newJunctionGraph(source string) *junctionGraph {
	return &junctionGraph{
		graph:  simple.NewDirectedGraph(),
		ids:    make(map[string]int64),
		source: source,
	}
}

// addJunction adds a junction once and returns its graph id.
func (jg *junctionGraph) addJunction(name string) junctionNode {
	if id, exists := jg.ids[name]; exists {
		return jg.nodes[id]
	}

	node := junctionNode{
		id:     int64(len(jg.nodes)),
		name:   name,
		source: name == jg.source && name != "",
	}
	jg.ids[name] = node.id
	jg.nodes = append(jg.nodes, node)
	jg.graph.AddNode(node)
	return node
}

// addPipe adds the edge for one pipe. Callers reject self loops first;
// simple graphs panic on them.
func (jg *junctionGraph) addPipe(pipeID, start, end string, terminal bool) {
	from := jg.addJunction(start)
	to := jg.addJunction(end)
	jg.graph.SetEdge(pipeEdge{from: from, to: to, pipeID: pipeID, terminal: terminal})
}

func (jg *junctionGraph) name(id int64) string {
	if id < 0 || int(id) >= len(jg.nodes) {
		return ""
	}
	return jg.nodes[id].name
}

// reachableFrom returns the junctions reachable downstream of start.
func (jg *junctionGraph) reachableFrom(start string) map[string]bool {
	reached := make(map[string]bool)
	id, ok := jg.ids[start]
	if !ok {
		return reached
	}

	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) {
			reached[jg.name(n.ID())] = true
		},
	}
	bf.Walk(jg.graph, jg.graph.Node(id), nil)
	return reached
}
