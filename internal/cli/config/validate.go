package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// OutputFormats lists the accepted values of the output key.
var OutputFormats = []string{"auto", "text", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", c.MaxDepth)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative, got %s", c.WatchDebounce)
	}
	if c.OutputFormat != "" && !slices.Contains(OutputFormats, strings.ToLower(c.OutputFormat)) {
		return fmt.Errorf("unknown output format %q (expected one of %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// ValidateMacrosDir checks that macros_dir, when it exists, is a directory.
// A missing directory is allowed and simply means no libraries.
func (c *Config) ValidateMacrosDir() error {
	if c.MacrosDir == "" {
		return nil
	}
	info, err := os.Stat(c.MacrosDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access macros directory %s: %w", c.MacrosDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("macros_dir is not a directory: %s\nHint: use --macros-dir to specify a different path", c.MacrosDir)
	}
	return nil
}

// Level returns the slog level for log_level. Verbose forces debug.
func (c *Config) Level() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
