package main

import (
	"fmt"

	"github.com/ritzau/pipe-analyzer/pkg/analysis"
	"github.com/ritzau/pipe-analyzer/pkg/output"
	"github.com/spf13/cobra"
)

func (a *app) sensitivityCommand() *cobra.Command {
	var (
		pipes []string
		rng   = analysis.DefaultDiameterRange
	)

	cmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "Sweep pipe diameters and report the effect on the summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := a.loadTopology()
			if err != nil {
				return err
			}
			formulas, err := a.cfg.Formulas()
			if err != nil {
				return err
			}

			rows, err := analysis.New(formulas).DiameterSensitivity(topo, a.cfg.Params(), pipes, rng)
			if err != nil {
				return fmt.Errorf("diameter sensitivity: %w", err)
			}
			return output.WriteJSON(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringSliceVar(&pipes, "pipe", nil, "pipes to resize (default: all)")
	cmd.Flags().Float64Var(&rng.Min, "min", rng.Min, "smallest trial diameter (m)")
	cmd.Flags().Float64Var(&rng.Max, "max", rng.Max, "largest trial diameter (m)")
	cmd.Flags().Float64Var(&rng.Step, "step", rng.Step, "diameter step (m)")
	return cmd
}
