package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Info("analysis complete", "pipes", 12, "minPressure", 27.5, "critical", "J7")

	line := buf.String()
	if !strings.HasPrefix(line, "[INFO]  ") {
		t.Errorf("Expected INFO prefix, got %q", line)
	}
	for _, want := range []string{"analysis complete |", "pipes=12", "minPressure=27.5", "critical=J7"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}

func TestCompactHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("Info should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "[WARN]  ") {
		t.Errorf("Expected WARN line, got %q", buf.String())
	}
}

func TestCompactHandlerSpecialKeys(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, nil))

	log.Error("run failed",
		"runID", "0123456789abcdef",
		"error", errors.New("boom"),
		"note", "two words")

	line := buf.String()
	for _, want := range []string{"run=01234567", `error="boom"`, `note="two words"`} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}

func TestCompactHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, nil)).With("component", "watcher")

	log.Info("change detected", "path", "network.csv")

	line := buf.String()
	if !strings.Contains(line, "component=watcher") || !strings.Contains(line, "path=network.csv") {
		t.Errorf("Expected accumulated and record attrs in %q", line)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		verbosity string
		count     int
		want      slog.Level
		wantErr   bool
	}{
		{"", 0, slog.LevelInfo, false},
		{"", 1, slog.LevelDebug, false},
		{"", 3, LevelTrace, false},
		{"warn", 2, slog.LevelWarn, false},
		{"ERROR", 0, slog.LevelError, false},
		{"loud", 0, slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.verbosity, tt.count)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q, %d) error = %v, wantErr %v", tt.verbosity, tt.count, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q, %d) = %v, want %v", tt.verbosity, tt.count, got, tt.want)
		}
	}
}
