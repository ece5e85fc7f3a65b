package main

import (
	"fmt"

	"github.com/ritzau/pipe-analyzer/pkg/output"
	"github.com/ritzau/pipe-analyzer/pkg/runner"
	"github.com/spf13/cobra"
)

const reasonCLI = "cli"

func (a *app) analyzeCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the network and print the result table and summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := runner.New(a.cfg).Run(cmd.Context(), reasonCLI)
			if err != nil {
				return err
			}

			if err := output.Write(cmd.OutOrStdout(), a.cfg.Format, snap.Result); err != nil {
				return err
			}

			s := snap.Result.Summary
			if strict && !s.ConstraintsMet() {
				return &exitError{
					code: 2,
					msg: fmt.Sprintf("design constraints not met: pressure adequate=%t, velocity acceptable=%t",
						s.PressureAdequate, s.VelocityAcceptable),
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 2 when a design constraint fails")
	return cmd
}
