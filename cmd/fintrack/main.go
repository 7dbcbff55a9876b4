package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fintrack/internal/cli"
	"fintrack/internal/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file for local development
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := cli.SetupLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := cli.OpenService(cfg)
	if err != nil {
		logger.Error("Failed to open database", log.FieldError, err, log.FieldPath, cfg.SQLiteDBPath)
		return 1
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to close database", log.FieldOperation, log.OpShutdown, log.FieldError, err)
		}
	}()

	app := &cli.App{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Service: svc,
		Config:  cfg,
	}
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}
