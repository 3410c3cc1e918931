package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL         = "http://localhost:8000/api"
	DefaultTelemetryStreamURL = "ws://localhost:8765"
	DefaultTelemetryBufferCap = 10000
	DefaultLogFile            = "yarddeck.log"
)

// Config holds the console's own settings. Everything the backend declares
// (signal bounds, curing methods) is fetched at runtime, not configured here.
type Config struct {
	APIBaseURL         string `yaml:"api_base_url"`
	TelemetryStreamURL string `yaml:"telemetry_stream_url"`
	TelemetryBufferCap int    `yaml:"telemetry_buffer_cap"`
	LogFile            string `yaml:"log_file"`
}

// Default returns a config pointing at the local dev backends.
func Default() Config {
	return Config{
		APIBaseURL:         DefaultAPIBaseURL,
		TelemetryStreamURL: DefaultTelemetryStreamURL,
		TelemetryBufferCap: DefaultTelemetryBufferCap,
		LogFile:            DefaultLogFile,
	}
}

// Load reads a YAML config file and fills unset fields with defaults.
// An empty path returns the defaults without touching the filesystem.
func Load(path string) (Config, error) {
	cfg := Default()

	rawPath := strings.TrimSpace(path)
	if rawPath == "" {
		return cfg, nil
	}
	if strings.Contains(rawPath, "://") {
		return cfg, fmt.Errorf("only local filesystem paths are supported")
	}

	resolvedPath, err := filepath.Abs(rawPath)
	if err != nil {
		return cfg, fmt.Errorf("resolve config path %q: %w", rawPath, err)
	}
	blob, err := os.ReadFile(resolvedPath)
	if err != nil {
		return cfg, fmt.Errorf("read config file %q: %w", resolvedPath, err)
	}
	if err := yaml.Unmarshal(blob, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config YAML %q: %w", resolvedPath, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", resolvedPath, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if strings.TrimSpace(c.TelemetryStreamURL) == "" {
		c.TelemetryStreamURL = DefaultTelemetryStreamURL
	}
	if c.TelemetryBufferCap <= 0 {
		c.TelemetryBufferCap = DefaultTelemetryBufferCap
	}
	if strings.TrimSpace(c.LogFile) == "" {
		c.LogFile = DefaultLogFile
	}
}

func (c Config) validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("api_base_url must be an http(s) URL, got %q", c.APIBaseURL)
	}
	if !strings.HasPrefix(c.TelemetryStreamURL, "ws://") && !strings.HasPrefix(c.TelemetryStreamURL, "wss://") {
		return fmt.Errorf("telemetry_stream_url must be a ws(s) URL, got %q", c.TelemetryStreamURL)
	}
	return nil
}
