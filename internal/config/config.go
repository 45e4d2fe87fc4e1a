// Package config handles configuration loading and validation for episodic.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"episodic/internal/audit"
	"episodic/internal/scanner"
	"episodic/internal/watcher"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	InvalidJSON     ConfigErrorType = "INVALID_JSON"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		if e.Message != "" {
			return fmt.Sprintf("configuration file not readable: %s: %s", e.Path, e.Message)
		}
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case InvalidJSON:
		return fmt.Sprintf("invalid JSON in configuration file: %s", e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// Logging formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// LoggingConfig selects the log level, format and optional log file.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file,omitempty"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	DebounceMs     int      `json:"debounceMs"`
	IgnorePatterns []string `json:"ignorePatterns"`
}

// Configuration holds all settings for episodic.
type Configuration struct {
	SourceDir       string            `json:"sourceDir"`
	DestDir         string            `json:"destDir"`
	NewName         string            `json:"newName"`
	Extension       string            `json:"extension"`
	DigitLength     int               `json:"digitLength"`
	StartIndex      int               `json:"startIndex"`
	ReplaceExisting bool              `json:"replaceExisting"`
	Threads         int               `json:"threads"`
	Audit           audit.AuditConfig `json:"audit"`
	Logging         LoggingConfig     `json:"logging"`
	Watch           WatchConfig       `json:"watch"`
}

// Default returns a Configuration with every optional setting at its default.
func Default() *Configuration {
	return &Configuration{
		Extension:  "mp4",
		StartIndex: 1,
		Threads:    1,
		Audit:      audit.DefaultAuditConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: FormatConsole,
		},
		Watch: WatchConfig{
			DebounceMs:     2000,
			IgnorePatterns: watcher.DefaultIgnorePatterns(),
		},
	}
}

// Validate checks that the configuration has all required fields and that
// numeric settings are in range. It returns the first problem found.
func (c *Configuration) Validate() error {
	invalid := func(format string, args ...any) error {
		return &ConfigError{Type: ValidationError, Message: fmt.Sprintf(format, args...)}
	}

	switch {
	case strings.TrimSpace(c.SourceDir) == "":
		return invalid("sourceDir is required")
	case strings.TrimSpace(c.DestDir) == "":
		return invalid("destDir is required")
	case strings.TrimSpace(c.NewName) == "":
		return invalid("newName is required")
	case strings.ContainsAny(c.NewName, `/\`):
		return invalid("newName must not contain a path separator: %q", c.NewName)
	case scanner.NormalizeExtension(c.Extension) == "":
		return invalid("extension cannot be empty")
	case c.DigitLength < 0:
		return invalid("digitLength must be >= 0, got %d", c.DigitLength)
	case c.StartIndex < 0:
		return invalid("startIndex must be >= 0, got %d", c.StartIndex)
	case c.Threads < 1:
		return invalid("threads must be >= 1, got %d", c.Threads)
	case c.Watch.DebounceMs < 0:
		return invalid("watch.debounceMs must be >= 0, got %d", c.Watch.DebounceMs)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return invalid("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", FormatConsole, FormatJSON:
	default:
		return invalid("logging.format must be %q or %q, got %q", FormatConsole, FormatJSON, c.Logging.Format)
	}

	if c.Audit.Enabled && strings.TrimSpace(c.Audit.LogDirectory) == "" {
		return invalid("audit.logDirectory is required when the audit log is enabled")
	}

	for i, pattern := range c.Watch.IgnorePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return invalid("watch.ignorePatterns[%d] is not a valid pattern: %q", i, pattern)
		}
	}

	return nil
}

// WatcherConfig converts the watch settings into a watcher configuration.
func (c *Configuration) WatcherConfig() *watcher.WatchConfig {
	wc := watcher.DefaultWatchConfig()
	wc.Extension = c.Extension
	wc.Debounce = time.Duration(c.Watch.DebounceMs) * time.Millisecond
	wc.IgnorePatterns = c.Watch.IgnorePatterns
	if wc.IgnorePatterns == nil {
		wc.IgnorePatterns = []string{}
	}
	return wc
}

// Read parses a configuration file on top of Default without validating it,
// so that command-line overrides can be applied first. Keys absent from the
// file keep their default values.
func Read(filePath string) (*Configuration, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{
				Type: FileNotFound,
				Path: filePath,
			}
		}
		return nil, &ConfigError{
			Type:    FileNotFound,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, &ConfigError{
			Type:    InvalidJSON,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	return config, nil
}

// Load reads, parses and validates a configuration file from the given path.
func Load(filePath string) (*Configuration, error) {
	config, err := Read(filePath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save serializes and writes a configuration to the given path.
func Save(config *Configuration, filePath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return &ConfigError{
			Type:    InvalidJSON,
			Message: err.Error(),
		}
	}

	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &ConfigError{
				Type:    ValidationError,
				Path:    filePath,
				Message: fmt.Sprintf("failed to create configuration directory: %s", err.Error()),
			}
		}
	}

	if err := os.WriteFile(filePath, append(data, '\n'), 0644); err != nil {
		return &ConfigError{
			Type:    ValidationError,
			Path:    filePath,
			Message: fmt.Sprintf("failed to write configuration file: %s", err.Error()),
		}
	}

	return nil
}
