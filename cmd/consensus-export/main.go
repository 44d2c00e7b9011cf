package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consensuscli/internal/config"
	apperrors "consensuscli/internal/errors"
	"consensuscli/internal/infrastructure"
	"consensuscli/internal/services"
	"consensuscli/pkg/contracts"
)

const shutdownTimeout = 5 * time.Second

// exitUsage is the sysexits EX_USAGE status for bad command-line flags,
// kept apart from the 1-5 codes apperrors.ExitCode returns
const exitUsage = 64

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one export and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "path to a YAML config file (overrides "+config.ConfigFileEnv+")")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return exitUsage
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString(config.AppName))
		return 0
	}

	if *configFile != "" {
		os.Setenv(config.ConfigFileEnv, *configFile)
	}

	cfg, err := config.Load()
	if err != nil {
		// the configured logger does not exist yet
		infrastructure.NewJSONLogger(stderr, nil).Error("Failed to load configuration",
			slog.String("error", err.Error()))
		return apperrors.ExitCode(err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		infrastructure.NewJSONLogger(stderr, nil).Error("Failed to initialize logger",
			slog.String("error", err.Error()))
		return 1
	}
	defer infrastructure.CloseLogFile()

	logger.Info("Starting Consensus export",
		slog.String("version", config.AppVersion),
		slog.Any("settings", cfg))

	telemetry, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromSettings(cfg), logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := export(ctx, cfg, telemetry, logger, stdout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
	}

	return code
}

func export(ctx context.Context, cfg *config.Settings, telemetry *infrastructure.OTelProviders, logger *slog.Logger, stdout io.Writer) int {
	svc, err := services.NewExportService(cfg,
		services.WithLogger(logger),
		services.WithTelemetry(telemetry))
	if err != nil {
		logger.Error("Failed to create export service", slog.String("error", err.Error()))
		return 1
	}

	result, runErr := svc.Run(ctx)

	// metrics are written for failed runs too
	if cfg.MetricsFile != "" {
		if err := telemetry.WriteMetricsFile(cfg.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics file",
				slog.String("path", cfg.MetricsFile),
				slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		code := apperrors.ExitCode(runErr)
		logger.Error("Export failed",
			slog.String("error", runErr.Error()),
			slog.Int("exit_code", code))
		return code
	}

	fmt.Fprintf(stdout, "Exported %d records from %d pages\n", result.Records, result.Pages)
	fmt.Fprintf(stdout, "  full:    %s\n", result.FullPath)
	fmt.Fprintf(stdout, "  summary: %s\n", result.SummaryPath)
	if result.WorkbookPath != "" {
		fmt.Fprintf(stdout, "  workbook: %s\n", result.WorkbookPath)
	}

	return 0
}
