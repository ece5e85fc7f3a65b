package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/ritzau/pipe-analyzer/pkg/analysis"
)

const networkCSV = `pipe_id,start_junc,end_junc,length_m,diameter_m,hwc,flow_cms,end_junc_elevation
P1,R,J1,300,0.3,130,0.04,280
P2,J1,J2,200,0.2,120,0.02,275
P3,J1,J3,150,0.15,120,0.01,270
`

func init() {
	color.NoColor = true
}

// execute runs the CLI in a fresh directory holding network.csv.
func execute(t *testing.T, args ...string) (string, error) {
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
	if err := os.WriteFile(filepath.Join(dir, "network.csv"), []byte(networkCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	root := newApp().rootCommand()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyzeTable(t *testing.T) {
	out, err := execute(t, "analyze")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	for _, want := range []string{"P1", "P2", "P3", "SYSTEM SUMMARY"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestAnalyzeJSON(t *testing.T) {
	out, err := execute(t, "analyze", "--format", "json")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	var res analysis.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(res.Rows) != 3 {
		t.Errorf("got %d rows", len(res.Rows))
	}
}

func TestAnalyzeStrictExitCode(t *testing.T) {
	_, err := execute(t, "analyze", "--strict", "--min-pressure", "200")

	var ee *exitError
	if !errors.As(err, &ee) || ee.code != 2 {
		t.Fatalf("got %v, want exit code 2", err)
	}
	if exitCode(err) != 2 {
		t.Errorf("exitCode() = %d, want 2", exitCode(err))
	}
}

func TestPaths(t *testing.T) {
	out, err := execute(t, "paths")
	if err != nil {
		t.Fatalf("paths failed: %v", err)
	}
	if !strings.Contains(out, "P2: P1 -> P2") || !strings.Contains(out, "P3: P1 -> P3") {
		t.Errorf("unexpected paths output:\n%s", out)
	}

	if _, err := execute(t, "paths", "nope"); err == nil {
		t.Error("unknown pipe should fail")
	}
}

func TestTreeDOT(t *testing.T) {
	out, err := execute(t, "tree", "--dot")
	if err != nil {
		t.Fatalf("tree failed: %v", err)
	}
	if !strings.Contains(out, "digraph") {
		t.Errorf("not DOT output:\n%s", out)
	}
}

func TestProfileBranch(t *testing.T) {
	out, err := execute(t, "profile", "--branch", "P3")
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	var p struct {
		Terminal string `json:"terminal"`
		Points   []any  `json:"points"`
	}
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if p.Terminal != "P3" || len(p.Points) != 3 {
		t.Errorf("profile = %+v", p)
	}
}

func TestSensitivityNotImplemented(t *testing.T) {
	_, err := execute(t, "sensitivity")
	if !errors.Is(err, analysis.ErrNotImplemented) {
		t.Errorf("got %v, want ErrNotImplemented", err)
	}
}

func TestMissingExplicitConfig(t *testing.T) {
	if _, err := execute(t, "analyze", "--config", "missing.toml"); err == nil {
		t.Error("missing explicit config should fail")
	}
}
