// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Library LibraryConfig
	Capture CaptureConfig
	Export  ExportConfig
	Catalog CatalogConfig
	Server  ServerConfig
	Notify  NotifyConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds local data storage configuration.
type StorageConfig struct {
	// DataPath is the badger database directory (default: ~/SnapTag/data).
	DataPath string
	// StagingPath is the scratch directory used while exporting
	// (default: {data}/staging).
	StagingPath string
}

// LibraryConfig holds device photo library configuration.
type LibraryConfig struct {
	// Path is the photo library root (default: ~/SnapTag/library).
	Path string
	// AlbumName is the fixed album exports are attached to.
	AlbumName string
}

// CaptureConfig holds photo capture configuration.
type CaptureConfig struct {
	// InboxPath is the directory watched for newly captured photos.
	// Empty disables the inbox watcher.
	InboxPath string
	// MaxImages is the hard cap on the photo collection (default: 80).
	MaxImages int
}

// ExportConfig holds export pipeline configuration.
type ExportConfig struct {
	// BatchSize is the number of images staged and attached per batch (default: 10).
	BatchSize int
}

// CatalogConfig holds tag catalog configuration.
type CatalogConfig struct {
	// Locale drives the collation used when sorting tags on save (default: en).
	Locale string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8090)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// NotifyConfig holds desktop notification configuration.
type NotifyConfig struct {
	// Enabled turns desktop notifications on (default: true).
	Enabled bool
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Directory for the local database")
	stagingPath := flag.String("staging-path", "", "Scratch directory for export staging")
	libraryPath := flag.String("library-path", "", "Photo library root directory")
	albumName := flag.String("album-name", "", "Album exports are attached to")
	inboxPath := flag.String("inbox-path", "", "Directory watched for captured photos")
	maxImages := flag.String("max-images", "", "Photo collection cap (default: 80)")
	batchSize := flag.String("export-batch-size", "", "Images per export batch (default: 10)")
	locale := flag.String("catalog-locale", "", "Collation locale for tag sorting (default: en)")

	serverPort := flag.String("port", "", "Server port (default: 8090)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	notifyEnabled := flag.String("notify", "", "Desktop notifications (default: true)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if present; env vars set in the process win.
	if err := loadEnvFile(*envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath:    getConfigValue(*dataPath, "DATA_PATH", ""),
			StagingPath: getConfigValue(*stagingPath, "STAGING_PATH", ""),
		},
		Library: LibraryConfig{
			Path:      getConfigValue(*libraryPath, "LIBRARY_PATH", ""),
			AlbumName: getConfigValue(*albumName, "ALBUM_NAME", "SnapTag"),
		},
		Capture: CaptureConfig{
			InboxPath: getConfigValue(*inboxPath, "INBOX_PATH", ""),
			MaxImages: getIntConfigValue(*maxImages, "MAX_IMAGES", 80),
		},
		Export: ExportConfig{
			BatchSize: getIntConfigValue(*batchSize, "EXPORT_BATCH_SIZE", 10),
		},
		Catalog: CatalogConfig{
			Locale: getConfigValue(*locale, "CATALOG_LOCALE", "en"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8090"),
		},
		Notify: NotifyConfig{
			Enabled: getBoolConfigValue(*notifyEnabled, "NOTIFY_ENABLED", true),
		},
	}

	// Parse server timeouts.
	var err error
	cfg.Server.ReadTimeout, err = parseDuration(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.WriteTimeout, err = parseDuration(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.IdleTimeout, err = parseDuration(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	// Expand storage, library, and inbox paths.
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Library.AlbumName == "" {
		return errors.New("album name cannot be empty")
	}

	if c.Capture.MaxImages <= 0 {
		return fmt.Errorf("max images must be positive, got %d", c.Capture.MaxImages)
	}

	if c.Export.BatchSize <= 0 {
		return fmt.Errorf("export batch size must be positive, got %d", c.Export.BatchSize)
	}

	return nil
}

// expandPaths expands ~ and applies defaults for all filesystem paths.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	c.Storage.DataPath, err = expandPath(c.Storage.DataPath, filepath.Join(homeDir, "SnapTag", "data"))
	if err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}

	c.Storage.StagingPath, err = expandPath(c.Storage.StagingPath, filepath.Join(c.Storage.DataPath, "staging"))
	if err != nil {
		return fmt.Errorf("invalid staging path: %w", err)
	}

	c.Library.Path, err = expandPath(c.Library.Path, filepath.Join(homeDir, "SnapTag", "library"))
	if err != nil {
		return fmt.Errorf("invalid library path: %w", err)
	}

	// Inbox is optional; empty disables the watcher.
	if c.Capture.InboxPath != "" {
		c.Capture.InboxPath, err = expandPath(c.Capture.InboxPath, "")
		if err != nil {
			return fmt.Errorf("invalid inbox path: %w", err)
		}
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// parseDuration resolves a duration from flag, env var, or default.
func parseDuration(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), raw, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars already set take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
