package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultDBName = "finance.db"

type Config struct {
	// Database
	SQLiteDBPath string
	BackupDir    string

	// Ledger
	DefaultCurrency string

	// Logging
	LogLevel  string
	LogFormat string

	// CLI
	TrendMonths      int
	ImportErrorLimit int
}

// DefaultDBPath is ~/Documents/FinanceTracker/finance.db, or ./finance.db when
// the home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return defaultDBName
	}
	return filepath.Join(home, "Documents", "FinanceTracker", defaultDBName)
}

func Load() *Config {
	cfg := &Config{
		SQLiteDBPath: expandHome(getEnv("SQLITE_DB_PATH", DefaultDBPath())),
		BackupDir:    expandHome(getEnv("BACKUP_DIR", "")),

		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		TrendMonths:      getEnvInt("TREND_MONTHS", 12),
		ImportErrorLimit: getEnvInt("IMPORT_ERROR_LIMIT", 10),
	}

	return cfg
}

// BackupLocation returns BackupDir, defaulting to the database directory.
func (c *Config) BackupLocation() string {
	if c.BackupDir != "" {
		return c.BackupDir
	}
	return filepath.Dir(c.SQLiteDBPath)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else if info, err := os.Stat(c.SQLiteDBPath); err == nil && info.IsDir() {
		errors = append(errors, fmt.Sprintf("SQLite database path '%s' is a directory", c.SQLiteDBPath))
	}

	if c.BackupDir != "" {
		if info, err := os.Stat(c.BackupDir); err == nil && !info.IsDir() {
			errors = append(errors, fmt.Sprintf("backup directory '%s' is not a directory", c.BackupDir))
		}
	}

	if len(c.DefaultCurrency) != 3 {
		errors = append(errors, fmt.Sprintf("invalid default currency '%s': must be a 3-letter code", c.DefaultCurrency))
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !oneOf(validLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	validFormats := []string{"text", "json"}
	if !oneOf(validFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validFormats))
	}

	if c.TrendMonths < 1 {
		errors = append(errors, fmt.Sprintf("invalid trend months %d: must be at least 1", c.TrendMonths))
	} else if c.TrendMonths > 120 {
		errors = append(errors, fmt.Sprintf("invalid trend months %d: must be at most 120", c.TrendMonths))
	}

	if c.ImportErrorLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid import error limit %d: must not be negative", c.ImportErrorLimit))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func oneOf(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
