package main

import (
	"fmt"

	"github.com/ritzau/pipe-analyzer/pkg/output"
	"github.com/spf13/cobra"
)

func (a *app) pathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths [pipe...]",
		Short: "Print source paths of the given pipes, or of every terminal branch",
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := a.loadTopology()
			if err != nil {
				return err
			}

			ids := args
			if len(ids) == 0 {
				ids = topo.TerminalPipes()
			}

			paths := make(map[string][]string, len(ids))
			for _, id := range ids {
				path, err := topo.PathTo(id)
				if err != nil {
					return err
				}
				paths[id] = path
			}

			w := cmd.OutOrStdout()
			switch a.cfg.Format {
			case output.FormatJSON:
				return output.WriteJSON(w, paths)
			case output.FormatYAML:
				return output.WriteYAML(w, paths)
			}
			for _, id := range ids {
				fmt.Fprintf(w, "%s: %s\n", id, joinPath(paths[id]))
			}
			return nil
		},
	}
}
