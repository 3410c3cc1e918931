package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yarddeck-tui/internal/app"
	"yarddeck-tui/internal/config"
	"yarddeck-tui/internal/gateway"
	"yarddeck-tui/internal/storage"
	"yarddeck-tui/internal/telemetry"
)

type rootFlags struct {
	configPath string
	apiBase    string
	streamURL  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "yarddeck-tui",
		Short: "Terminal console for the precast yard backend",
		Long: "yarddeck-tui is a terminal console for a precast concrete yard: curing\n" +
			"time and cost predictions, live sensor telemetry, and project records.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "path to YAML config file")
	cmd.Flags().StringVar(&flags.apiBase, "api", "", "backend API base URL (overrides config)")
	cmd.Flags().StringVar(&flags.streamURL, "stream", "", "telemetry websocket URL (overrides config)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log at debug level")
	return cmd
}

func run(flags *rootFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	applyOverrides(&cfg, flags.apiBase, flags.streamURL)

	logger, err := buildLogger(cfg.LogFile, flags.verbose)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	rootDir, _ = filepath.Abs(rootDir)

	store, err := storage.NewStore(rootDir)
	if err != nil {
		return fmt.Errorf("initialize scenario storage: %w", err)
	}

	client := gateway.NewClient(cfg.APIBaseURL)
	stream := telemetry.NewStream(cfg.TelemetryStreamURL, cfg.TelemetryBufferCap, logger.Named("telemetry"))
	defer stream.Close()

	go func() {
		if err := stream.Start(context.Background()); err != nil {
			logger.Debug("telemetry stream ended", zap.Error(err))
		}
	}()

	logger.Info("console starting",
		zap.String("api", cfg.APIBaseURL),
		zap.String("stream", cfg.TelemetryStreamURL),
	)

	model := app.NewModel(client, stream, store, logger.Named("app"))
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui exited: %w", err)
	}
	return nil
}

// applyOverrides lets the CLI flags win over the config file.
func applyOverrides(cfg *config.Config, apiBase, streamURL string) {
	if v := strings.TrimSpace(apiBase); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(streamURL); v != "" {
		cfg.TelemetryStreamURL = v
	}
}

// buildLogger writes structured logs to a file. The terminal belongs to
// the TUI, so nothing goes to stderr.
func buildLogger(logFile string, verbose bool) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	if strings.TrimSpace(logFile) == "" {
		logFile = config.DefaultLogFile
	}
	zapCfg.OutputPaths = []string{logFile}
	zapCfg.ErrorOutputPaths = []string{logFile}
	return zapCfg.Build()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "yarddeck-tui: %v\n", err)
		os.Exit(1)
	}
}
