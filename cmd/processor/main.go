package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/w-flo/eu-emission-factors/internal/app"
	"github.com/w-flo/eu-emission-factors/internal/infrastructure"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		infrastructure.WithError(slog.Default(), err).Error("Processing failed")
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
	infrastructure.CloseLogFile()
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cl, err := app.ParseCommandLine("processor", args, true, stderr)
	if err != nil {
		return err
	}

	cfg, err := cl.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureRunID(ctx)

	application, err := app.NewApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}

	state, runErr := application.Process(ctx, application.Acknowledger(stdin, stdout))
	if runErr == nil {
		logger.InfoContext(ctx, "Emission factors written",
			slog.Int("plants", state.ActiveMatches()),
			slog.Int("fuel_stats", len(state.Stats)),
			slog.String("output_dir", cfg.Paths().OutputDir()))
	}

	if err := application.Stop(context.WithoutCancel(ctx)); err != nil {
		logger.ErrorContext(ctx, "Shutdown incomplete", slog.String("error", err.Error()))
	}
	return runErr
}
