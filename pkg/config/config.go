package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/ritzau/pipe-analyzer/pkg/hydraulics"
	"github.com/ritzau/pipe-analyzer/pkg/model"
	"github.com/ritzau/pipe-analyzer/pkg/validation"
	"github.com/spf13/pflag"
)

const (
	// DefaultFile is read from the working directory when present.
	DefaultFile = "pipe-analyzer.toml"
	// EnvPrefix namespaces environment overrides. Nested keys use a double
	// underscore: PIPE_ANALYZER_RESERVOIR__TOTAL_HEAD=330.
	EnvPrefix = "PIPE_ANALYZER_"
)

// Reservoir describes the single supply point.
type Reservoir struct {
	Elevation float64 `koanf:"elevation"`
	TotalHead float64 `koanf:"total_head"`
}

// Constraints are the design limits results are judged against.
type Constraints struct {
	MinPressureHead float64 `koanf:"min_pressure_head"`
	MaxVelocity     float64 `koanf:"max_velocity"`
}

// Config holds all configuration for the application
type Config struct {
	Input       string      `koanf:"input"`
	Source      string      `koanf:"source"`
	Reservoir   Reservoir   `koanf:"reservoir"`
	Constraints Constraints `koanf:"constraints"`
	Formula     string      `koanf:"formula" validate:"omitempty,oneof=hazen-williams hw darcy-weisbach dw"`
	Viscosity   float64     `koanf:"viscosity" validate:"gt=0"`
	Format      string      `koanf:"format" validate:"oneof=table json yaml csv"`
	Port        int         `koanf:"port" validate:"gte=0,lte=65535"`
	Watch       bool        `koanf:"watch"`
	OpenBrowser bool        `koanf:"open"`
	Verbosity   string      `koanf:"verbosity"`
	VerboseCnt  int         `koanf:"verbose"`
	LogFormat   string      `koanf:"log_format" validate:"oneof=text json"`
}

// flagKeys maps command line flag names to configuration keys. Flags not
// listed here are command options and never reach the config.
var flagKeys = map[string]string{
	"input":        "input",
	"source":       "source",
	"elevation":    "reservoir.elevation",
	"total-head":   "reservoir.total_head",
	"min-pressure": "constraints.min_pressure_head",
	"max-velocity": "constraints.max_velocity",
	"formula":      "formula",
	"viscosity":    "viscosity",
	"format":       "format",
	"port":         "port",
	"watch":        "watch",
	"open":         "open",
	"verbosity":    "verbosity",
	"verbose":      "verbose",
	"log-format":   "log_format",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"input":                         "network.csv",
		"source":                        "",
		"reservoir.elevation":           model.DefaultReservoirElevation,
		"reservoir.total_head":          model.DefaultReservoirTotalHead,
		"constraints.min_pressure_head": model.DefaultMinPressureHead,
		"constraints.max_velocity":      model.DefaultMaxVelocity,
		"formula":                       hydraulics.FormulaHazenWilliams,
		"viscosity":                     hydraulics.DefaultViscosity,
		"format":                        "table",
		"port":                          8080,
		"watch":                         false,
		"open":                          false,
		"verbosity":                     "",
		"verbose":                       0,
		"log_format":                    "text",
	}
}

// Default returns the configuration used when no file, environment or
// flag overrides anything.
func Default() *Config {
	k := koanf.New(".")
	_ = k.Load(makeMapProvider(defaults()), nil)

	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return &cfg
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
//
// An empty path reads DefaultFile if it exists. An explicit path must exist.
func Load(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if err := loadFile(k, path); err != nil {
		return nil, err
	}

	// 3. Environment Variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, flagKey(f)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Formula = strings.ToLower(strings.TrimSpace(cfg.Formula))
	cfg.Format = strings.ToLower(cfg.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file: %w", err)
	}

	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// envKey turns PIPE_ANALYZER_RESERVOIR__TOTAL_HEAD into reservoir.total_head.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func flagKey(fs *pflag.FlagSet) func(*pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	params := c.Params()
	if err := validation.ValidateSystemParams(&params); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Params returns the system parameters of an analysis run.
func (c *Config) Params() model.SystemParams {
	return model.SystemParams{
		ReservoirElevation: c.Reservoir.Elevation,
		ReservoirTotalHead: c.Reservoir.TotalHead,
		MinPressureHead:    c.Constraints.MinPressureHead,
		MaxVelocity:        c.Constraints.MaxVelocity,
	}
}

// Formulas returns the configured head loss formula set.
func (c *Config) Formulas() (hydraulics.Formulas, error) {
	return hydraulics.ByName(c.Formula, c.Viscosity)
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

// Read returns the map unflattened so dotted keys become nested sections.
func (p *mapProvider) Read() (map[string]interface{}, error) {
	nested := make(map[string]interface{})
	for key, v := range p.m {
		parts := strings.Split(key, ".")
		cur := nested
		for _, part := range parts[:len(parts)-1] {
			next, ok := cur[part].(map[string]interface{})
			if !ok {
				next = make(map[string]interface{})
				cur[part] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = v
	}
	return nested, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
