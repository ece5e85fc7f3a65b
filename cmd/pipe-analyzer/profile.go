package main

import (
	"github.com/ritzau/pipe-analyzer/pkg/output"
	"github.com/ritzau/pipe-analyzer/pkg/profile"
	"github.com/ritzau/pipe-analyzer/pkg/runner"
	"github.com/spf13/cobra"
)

func (a *app) profileCommand() *cobra.Command {
	var branch string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print hydraulic profiles of the terminal branches as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := runner.New(a.cfg).Run(cmd.Context(), reasonCLI)
			if err != nil {
				return err
			}

			var v any = snap.Profiles
			if branch != "" {
				p, err := profile.Branch(snap.Topology, snap.Result, branch)
				if err != nil {
					return err
				}
				v = p
			}

			if a.cfg.Format == output.FormatYAML {
				return output.WriteYAML(cmd.OutOrStdout(), v)
			}
			return output.WriteJSON(cmd.OutOrStdout(), v)
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "only the branch ending in this terminal pipe")
	return cmd
}
