// FILE: logscribe/src/cmd/logscribe/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logscribe/src/internal/config"
	"logscribe/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

func main() {
	CheckAndDisplayHelp(os.Args[1:])

	flagCfg, overrides, err := ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	term.quiet.Store(flagCfg.Quiet)

	if flagCfg.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if flagCfg.ConfigFile != "" {
		if _, err := os.Stat(flagCfg.ConfigFile); err != nil {
			FatalError(2, "Config file not found: %s\n", flagCfg.ConfigFile)
		}
		os.Setenv("LOGSCRIBE_CONFIG_FILE", flagCfg.ConfigFile)
	}

	cfg, err := config.LoadWithCLI(overrides)
	if err != nil {
		FatalError(1, "Failed to load config: %v\n", err)
	}
	if flagCfg.Quiet {
		cfg.Quiet = true
	}
	term.quiet.Store(cfg.Quiet)

	if flagCfg.DumpConfig != "" {
		if err := cfg.SaveToFile(flagCfg.DumpConfig); err != nil {
			FatalError(1, "Failed to write config: %v\n", err)
		}
		Print("Configuration written to %s\n", flagCfg.DumpConfig)
		os.Exit(0)
	}

	if err := initializeLogger(cfg); err != nil {
		FatalError(1, "Failed to initialize logger: %v\n", err)
	}
	defer shutdownLogger()

	logger.Info("msg", "LogScribe starting",
		"version", version.String(),
		"config_file", config.GetConfigPath(),
		"log_output", cfg.Logging.Output)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	svc, metricsServer, err := bootstrapService(ctx, cfg)
	if err != nil {
		logger.Error("msg", "Failed to bootstrap service", "error", err)
		shutdownLogger()
		os.Exit(1)
	}

	if cfg.StatusIntervalSeconds > 0 {
		go statusReporter(ctx, svc, time.Duration(cfg.StatusIntervalSeconds)*time.Second)
	}

	sig := <-sigChan
	logger.Info("msg", "Shutdown signal received, starting graceful shutdown",
		"signal", sig.String())

	// Pending chunks get one flush attempt each; bound the whole drain by
	// the collector timeout plus a margin
	shutdownTimeout := cfg.Scribe.TimeoutDuration()*2 + 5*time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		svc.Shutdown()
		if metricsServer != nil {
			metricsServer.Stop()
		}
		close(done)
	}()

	select {
	case <-done:
		logger.Info("msg", "Shutdown complete")
	case <-shutdownCtx.Done():
		logger.Error("msg", "Shutdown timeout exceeded - forcing exit")
		shutdownLogger()
		os.Exit(1)
	}
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			Error("Logger shutdown error: %v\n", err)
		}
	}
}
