package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ritzau/pipe-analyzer/pkg/hydraulics"
	"github.com/ritzau/pipe-analyzer/pkg/model"
	"github.com/spf13/pflag"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("input", "network.csv", "")
	fs.Float64("total-head", model.DefaultReservoirTotalHead, "")
	fs.Float64("min-pressure", model.DefaultMinPressureHead, "")
	fs.String("format", "table", "")
	fs.CountP("verbose", "v", "")
	fs.Bool("strict", false, "")
	return fs
}

// inTempDir runs the test in an empty directory so no stray
// pipe-analyzer.toml is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, wdErr := os.Getwd()
	if wdErr != nil {
		t.Fatal(wdErr)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.Params(); got != model.DefaultSystemParams() {
		t.Errorf("Params() = %+v, want defaults", got)
	}
	if cfg.Input != "network.csv" || cfg.Format != "table" || cfg.Port != 8080 || cfg.LogFormat != "text" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	f, err := cfg.Formulas()
	if err != nil {
		t.Fatalf("Formulas() error = %v", err)
	}
	if _, ok := f.(hydraulics.HazenWilliams); !ok {
		t.Errorf("default formulas = %T, want HazenWilliams", f)
	}
}

func TestDefaultMatchesLoad(t *testing.T) {
	inTempDir(t)

	loaded, err := Load(nil, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if def := Default(); *def != *loaded {
		t.Errorf("Default() = %+v, Load() = %+v", def, loaded)
	}
}

func TestLoadLayers(t *testing.T) {
	dir := inTempDir(t)

	toml := `input = "from-file.csv"
formula = "darcy-weisbach"

[reservoir]
elevation = 310
total_head = 340

[constraints]
min_pressure_head = 20
`
	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PIPE_ANALYZER_RESERVOIR__TOTAL_HEAD", "350")
	t.Setenv("PIPE_ANALYZER_CONSTRAINTS__MAX_VELOCITY", "2.5")

	fs := testFlags()
	if err := fs.Parse([]string{"--min-pressure", "30", "--strict", "-vv"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(fs, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := model.SystemParams{
		ReservoirElevation: 310, // file
		ReservoirTotalHead: 350, // env over file
		MinPressureHead:    30,  // flag over file
		MaxVelocity:        2.5, // env over default
	}
	if got := cfg.Params(); got != want {
		t.Errorf("Params() = %+v, want %+v", got, want)
	}
	// Unchanged flag defaults do not override the file
	if cfg.Input != "from-file.csv" {
		t.Errorf("Input = %q, want from-file.csv", cfg.Input)
	}
	if cfg.VerboseCnt != 2 {
		t.Errorf("VerboseCnt = %d, want 2", cfg.VerboseCnt)
	}

	f, err := cfg.Formulas()
	if err != nil {
		t.Fatalf("Formulas() error = %v", err)
	}
	if _, ok := f.(hydraulics.DarcyWeisbach); !ok {
		t.Errorf("formulas = %T, want DarcyWeisbach", f)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	dir := inTempDir(t)

	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("port = 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}

	if _, err := Load(nil, filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("explicit missing config file should fail")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown format", map[string]string{"PIPE_ANALYZER_FORMAT": "xml"}, "Format"},
		{"unknown formula", map[string]string{"PIPE_ANALYZER_FORMULA": "manning"}, "Formula"},
		{"head below reservoir", map[string]string{"PIPE_ANALYZER_RESERVOIR__TOTAL_HEAD": "250"}, "ReservoirTotalHead"},
		{"zero velocity limit", map[string]string{"PIPE_ANALYZER_CONSTRAINTS__MAX_VELOCITY": "0"}, "MaxVelocity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inTempDir(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(nil, "")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %s", err, tt.want)
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"PIPE_ANALYZER_PORT":                      "port",
		"PIPE_ANALYZER_LOG_FORMAT":                "log_format",
		"PIPE_ANALYZER_RESERVOIR__TOTAL_HEAD":     "reservoir.total_head",
		"PIPE_ANALYZER_CONSTRAINTS__MAX_VELOCITY": "constraints.max_velocity",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
