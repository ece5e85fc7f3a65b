package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ritzau/pipe-analyzer/pkg/config"
	"github.com/ritzau/pipe-analyzer/pkg/loader"
	"github.com/ritzau/pipe-analyzer/pkg/logging"
	"github.com/ritzau/pipe-analyzer/pkg/model"
	"github.com/ritzau/pipe-analyzer/pkg/network"
	"github.com/spf13/cobra"
)

// app holds state shared by all commands.
type app struct {
	configPath string
	cfg        *config.Config
}

func newApp() *app {
	return &app{}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pipe-analyzer",
		Short: "Steady-state hydraulic analysis of branched pipe networks",
		Long: `pipe-analyzer reads a tree-shaped pipe network from CSV, checks its topology,
and computes head loss, pressure head and velocity at every junction.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultFile+" if present)")
	pf.StringP("input", "i", "network.csv", "pipe table CSV")
	pf.String("source", "", "reservoir junction (default: derived from the network)")
	pf.Float64("elevation", model.DefaultReservoirElevation, "reservoir elevation (m)")
	pf.Float64("total-head", model.DefaultReservoirTotalHead, "reservoir total head (m)")
	pf.Float64("min-pressure", model.DefaultMinPressureHead, "minimum acceptable pressure head (m)")
	pf.Float64("max-velocity", model.DefaultMaxVelocity, "maximum acceptable velocity (m/s)")
	pf.String("formula", "hazen-williams", "head loss formula: hazen-williams or darcy-weisbach")
	pf.Float64("viscosity", 1.004e-6, "kinematic viscosity (m^2/s)")
	pf.StringP("format", "f", "table", "output format: table, json, yaml or csv")
	pf.String("verbosity", "", "log level: trace, debug, info, warn or error")
	pf.CountP("verbose", "v", "increase log verbosity (-v debug, -vv trace)")
	pf.String("log-format", "text", "log format: text or json")

	root.AddCommand(a.analyzeCommand())
	root.AddCommand(a.pathsCommand())
	root.AddCommand(a.treeCommand())
	root.AddCommand(a.profileCommand())
	root.AddCommand(a.sensitivityCommand())
	root.AddCommand(a.serveCommand())

	return root
}

// setup loads configuration and configures logging before any command runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt)
	if err != nil {
		return err
	}
	logging.Setup(os.Stderr, level, cfg.LogFormat == "json")
	logging.Debug("Configuration loaded", "input", cfg.Input, "formula", cfg.Formula, "params", fmt.Sprintf("%+v", cfg.Params()))
	return nil
}

func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cmd.Flags(), a.configPath)
}

// configFile returns the config file in effect, or "" when none is used.
func (a *app) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	if _, err := os.Stat(config.DefaultFile); err == nil {
		return config.DefaultFile
	}
	return ""
}

func (a *app) loadTopology() (*network.Topology, error) {
	rows, err := loader.LoadFile(a.cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	topo, err := network.Build(rows, network.WithSource(a.cfg.Source))
	if err != nil {
		return nil, fmt.Errorf("topology: %w", err)
	}
	for _, w := range topo.Warnings() {
		logging.Warn("Data integrity warning", "kind", string(w.Kind), "pipe", w.PipeID, "message", w.Message)
	}
	return topo, nil
}

func joinPath(path []string) string {
	return strings.Join(path, " -> ")
}
