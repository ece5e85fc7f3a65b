package output

import (
	"fmt"

	"github.com/m1gwings/treedrawer/tree"
	"github.com/ritzau/pipe-analyzer/pkg/analysis"
	"github.com/ritzau/pipe-analyzer/pkg/network"
)

// Tree draws the network as an ASCII tree rooted at the source junction.
// Each node is a pipe labelled with its end junction; when res is non-nil
// the pressure head at that junction is appended.
func Tree(topo *network.Topology, res *analysis.Result) (string, error) {
	if topo == nil || topo.Len() == 0 {
		return "", analysis.ErrEmptyNetwork
	}

	root := tree.NewTree(tree.NodeString(topo.Source()))
	for _, id := range topo.Roots() {
		if err := addPipe(root, topo, res, id); err != nil {
			return "", err
		}
	}
	return root.String(), nil
}

func addPipe(parent *tree.Tree, topo *network.Topology, res *analysis.Result, id string) error {
	node := parent.AddChild(tree.NodeString(pipeLabel(topo, res, id)))

	children, err := topo.Children(id)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := addPipe(node, topo, res, c); err != nil {
			return err
		}
	}
	return nil
}

func pipeLabel(topo *network.Topology, res *analysis.Result, id string) string {
	p, _ := topo.Pipe(id)
	label := fmt.Sprintf("%s->%s", p.ID, p.EndJunction)
	if res == nil {
		return label
	}
	if row, ok := res.Row(id); ok {
		label = fmt.Sprintf("%s %.1fm", label, row.PressureHeadM)
	}
	return label
}
