package main

import (
	"fmt"

	"github.com/ritzau/pipe-analyzer/pkg/analysis"
	"github.com/ritzau/pipe-analyzer/pkg/output"
	"github.com/spf13/cobra"
)

func (a *app) treeCommand() *cobra.Command {
	var (
		dot      bool
		pressure bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Draw the network as an ASCII tree or Graphviz DOT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := a.loadTopology()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if dot {
				data, err := topo.DOT("network")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(data))
				return err
			}

			var res *analysis.Result
			if pressure {
				formulas, err := a.cfg.Formulas()
				if err != nil {
					return err
				}
				if res, err = analysis.New(formulas).Analyze(topo, a.cfg.Params()); err != nil {
					return err
				}
			}

			drawing, err := output.Tree(topo, res)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, drawing)
			return err
		},
	}

	cmd.Flags().BoolVar(&dot, "dot", false, "emit Graphviz DOT instead of ASCII")
	cmd.Flags().BoolVar(&pressure, "pressure", false, "annotate junctions with pressure head")
	return cmd
}
