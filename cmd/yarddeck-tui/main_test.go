package main

import (
	"os"
	"path/filepath"
	"testing"

	"yarddeck-tui/internal/config"
)

func TestApplyOverridesPrefersFlags(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	applyOverrides(&cfg, " http://gateway:9000/api ", "")
	if cfg.APIBaseURL != "http://gateway:9000/api" {
		t.Fatalf("api override not applied: %q", cfg.APIBaseURL)
	}
	if cfg.TelemetryStreamURL != config.DefaultTelemetryStreamURL {
		t.Fatalf("stream URL should be untouched, got %q", cfg.TelemetryStreamURL)
	}

	applyOverrides(&cfg, "", "ws://bridge:9100")
	if cfg.TelemetryStreamURL != "ws://bridge:9100" {
		t.Fatalf("stream override not applied: %q", cfg.TelemetryStreamURL)
	}
}

func TestBuildLoggerWritesToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := buildLogger(path, true)
	if err != nil {
		t.Fatalf("buildLogger: %v", err)
	}
	logger.Debug("probe")
	_ = logger.Sync()

	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(blob) == 0 {
		t.Fatalf("expected debug entry in log file")
	}
}

func TestRootCmdDeclaresFlags(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	for _, name := range []string{"config", "api", "stream", "verbose"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Fatalf("missing flag %q", name)
		}
	}
}
