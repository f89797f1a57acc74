// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	// StorageRoot is the directory holding the account index and the
	// per-account detail records.
	StorageRoot string
	// DatabasePath is the sqlite file recording quota history.
	DatabasePath string
	// ClientID overrides the built-in OAuth device-flow client id when
	// non-empty.
	ClientID string
	// QuotaRefreshInterval is how often quotas are refreshed in the
	// background. Zero disables background refresh.
	QuotaRefreshInterval time.Duration
}

// Default values
const (
	defaultQuotaRefreshInterval = 5 * time.Minute

	appDirName = "com.cockpit-tools.copilot"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		StorageRoot:          getEnvString("STORAGE_ROOT", getDefaultStorageRoot()),
		DatabasePath:         getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		ClientID:             strings.TrimSpace(os.Getenv("COPILOT_CLIENT_ID")),
		QuotaRefreshInterval: getEnvDuration("QUOTA_REFRESH_INTERVAL", defaultQuotaRefreshInterval),
	}

	if err := ensureDir(cfg.StorageRoot); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "cockpit-tools", ".env"),
			filepath.Join(home, ".cockpit-tools", ".env"),
		)
	}

	return paths
}

// getDefaultStorageRoot returns the per-user local-data directory for
// account storage.
func getDefaultStorageRoot() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return appDirName
	}
	return filepath.Join(home, ".local", "share", appDirName)
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(home, ".config", "cockpit-tools", "history.db")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
