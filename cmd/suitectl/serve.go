package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/workflow-use/suitectl/pkg/api"
	"github.com/workflow-use/suitectl/pkg/cleanup"
	"github.com/workflow-use/suitectl/pkg/config"
	"github.com/workflow-use/suitectl/pkg/engine"
	"github.com/workflow-use/suitectl/pkg/executor"
	"github.com/workflow-use/suitectl/pkg/models"
	"github.com/workflow-use/suitectl/pkg/session"
	"github.com/workflow-use/suitectl/pkg/telemetry"
	"github.com/workflow-use/suitectl/pkg/version"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat backend HTTP server",
		Long: `Run the chat-session backend: an HTTP API for creating sessions,
sending messages that trigger browser-automation runs, and exporting
transcripts. Listens on the configured API address (default 127.0.0.1:8000).`,
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
}

func runServe() {
	// Load .env from the config directory before anything reads the
	// environment.
	loadDotEnv()

	ctx := context.Background()

	// 1. Load configuration
	cfg, err := config.Load(configDir)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize logging and telemetry
	if _, err := telemetry.InitLogger(cfg.Logging); err != nil {
		slog.Error("Failed to initialize logging", "error", err)
		os.Exit(1)
	}

	tracer, meter, telemetryCleanup, err := telemetry.InitTelemetry(ctx, cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer telemetryCleanup()

	stats := cfg.Stats()
	slog.Info("Starting suitectl backend",
		"version", version.Full(),
		"addr", cfg.API.Addr(),
		"providers", stats.Providers,
		"models", stats.Models,
		"config_dir", configDir)

	// 3. Create the in-memory session store
	sessions := session.NewManager()

	// 4. Select the automation engine
	var eng engine.Engine
	if cfg.Engine.URL != "" {
		eng = engine.NewHTTPEngine(cfg.Engine.URL)
		slog.Info("Using HTTP automation engine", "url", cfg.Engine.URL)
	} else {
		eng = engine.NewStubEngine()
		slog.Info("No engine URL configured, using stub engine")
	}

	// 5. Create the run executor
	runExec := executor.NewExecutor(eng, cfg.Providers, executor.Config{
		RunTimeout: cfg.Engine.RunTimeout,
		BrowserDefaults: models.BrowserConfig{
			Headless:        cfg.Browser.Headless,
			DisableSecurity: cfg.Browser.DisableSecurity,
		},
	}, tracer, meter)

	// 6. Start the retention sweeper
	sweeper := cleanup.NewService(cfg.Retention, sessions)
	sweeper.Start(ctx)

	// 7. Start the HTTP server (non-blocking)
	srv := api.NewServer(cfg, sessions, runExec, meter)
	errCh := srv.Start()

	slog.Info("suitectl started successfully", "addr", cfg.API.Addr())

	// 8. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 9. Graceful shutdown: stop accepting requests first
	httpShutdownCtx, httpCancel := context.WithTimeout(ctx, 5*time.Second)
	defer httpCancel()
	if err := srv.Shutdown(httpShutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// 10. Drain in-flight runs within the configured grace window
	drainCtx, drainCancel := context.WithTimeout(ctx, cfg.Engine.ShutdownGrace)
	defer drainCancel()

	done := make(chan struct{})
	go func() {
		runExec.Stop()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Executor drained gracefully")
	case <-drainCtx.Done():
		slog.Warn("Executor drain timeout exceeded, abandoning in-flight runs")
	}

	// 11. Stop the retention sweeper
	sweeper.Stop()

	slog.Info("Shutdown complete")
}
