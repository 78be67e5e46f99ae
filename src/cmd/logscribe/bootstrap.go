// FILE: logscribe/src/cmd/logscribe/bootstrap.go
package main

import (
	"context"
	"fmt"
	"strings"

	"logscribe/src/internal/config"
	"logscribe/src/internal/metrics"
	"logscribe/src/internal/service"
	"logscribe/src/internal/version"

	"github.com/lixenwraith/log"
)

// bootstrapService creates and starts the forwarding service and, when
// enabled, the metrics endpoint
func bootstrapService(ctx context.Context, cfg *config.Config) (*service.Service, *metrics.Server, error) {
	svc, err := service.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if err := svc.Start(); err != nil {
		return nil, nil, err
	}

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics, logger)
		if err := metricsServer.Start(); err != nil {
			svc.Shutdown()
			return nil, nil, fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	displayEndpoints(cfg)

	logger.Info("msg", "LogScribe started",
		"version", version.Short(),
		"sources", len(cfg.Sources),
		"scribe", cfg.Scribe.Address())

	return svc, metricsServer, nil
}

// displayEndpoints prints the listening inputs for the operator
func displayEndpoints(cfg *config.Config) {
	for i, src := range cfg.Sources {
		switch src.Type {
		case "http":
			Print("Source[%d] http: POST http://%s:%d/<tag>\n", i, src.Host, src.Port)
		case "tcp":
			Print("Source[%d] tcp: %s:%d (newline-delimited JSON)\n", i, src.Host, src.Port)
		case "stdin":
			Print("Source[%d] stdin: tag %q, format %s\n", i, src.Tag, src.Format)
		}
	}
	if cfg.Metrics.Enabled {
		Print("Metrics: http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	}
	Print("Scribe collector: %s\n", cfg.Scribe.Address())
}

// initializeLogger sets up the logger based on configuration
func initializeLogger(cfg *config.Config) error {
	logger = log.NewLogger()

	if cfg.Quiet {
		// In quiet mode, disable ALL logging output
		return logger.InitWithDefaults(
			"disable_file=true",
			"enable_stdout=false",
			"level=255")
	}

	levelValue, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	configArgs := []string{fmt.Sprintf("level=%d", levelValue)}

	switch cfg.Logging.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout", "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target="+cfg.Logging.Output)

	case "file":
		configArgs = append(configArgs, "enable_stdout=false")
		configArgs = append(configArgs, fileLoggingArgs(cfg.Logging.File)...)

	case "both":
		configArgs = append(configArgs, "enable_stdout=true")
		configArgs = append(configArgs, fileLoggingArgs(cfg.Logging.File)...)
		configArgs = append(configArgs, consoleTargetArgs(cfg.Logging.Console)...)

	default:
		return fmt.Errorf("invalid log output mode: %s", cfg.Logging.Output)
	}

	if cfg.Logging.Console != nil && cfg.Logging.Console.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", cfg.Logging.Console.Format))
	}

	return logger.InitWithDefaults(configArgs...)
}

func fileLoggingArgs(file *config.LogFileConfig) []string {
	if file == nil {
		return nil
	}

	args := []string{
		fmt.Sprintf("directory=%s", file.Directory),
		fmt.Sprintf("name=%s", file.Name),
		fmt.Sprintf("max_size_mb=%d", file.MaxSizeMB),
		fmt.Sprintf("max_total_size_mb=%d", file.MaxTotalSizeMB),
	}
	if file.RetentionHours > 0 {
		args = append(args, fmt.Sprintf("retention_period_hrs=%.1f", file.RetentionHours))
	}
	return args
}

func consoleTargetArgs(console *config.LogConsoleConfig) []string {
	target := "stderr"
	if console != nil && console.Target != "" {
		target = console.Target
	}

	if target == "split" {
		return []string{"stdout_split_mode=true", "stdout_target=split"}
	}
	return []string{"stdout_target=" + target}
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
