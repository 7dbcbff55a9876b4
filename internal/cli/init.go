// Package cli implements the fintrack command line: startup helpers shared by
// cmd/fintrack and the subcommands that drive the finance service.
package cli

import (
	"fmt"
	"io"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// A missing file is ignored.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// SetupLogger builds the logger described by cfg and makes it the default.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentCLI,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenService opens the database named by cfg.
func OpenService(cfg *config.Config, storeOpts ...storage.Option) (*services.FinanceService, error) {
	svc, err := services.Open(services.Options{
		DBPath:       cfg.SQLiteDBPath,
		BackupDir:    cfg.BackupLocation(),
		StoreOptions: storeOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("open finance service at %s: %w", cfg.SQLiteDBPath, err)
	}
	return svc, nil
}
