// Package config provides configuration management for the macropp CLI.
//
// Values are layered with koanf: built-in defaults, then macropp.yaml, then
// MACROPP_* environment variables, then explicitly set flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	// ProjectRoot is the directory holding macropp.yaml, or the working
	// directory when no config file was found. Not read from config.
	ProjectRoot string `koanf:"-"`

	MacrosDir     string        `koanf:"macros_dir"`
	OutputSuffix  string        `koanf:"output_suffix"`
	ErrorLog      string        `koanf:"error_log"` // Empty disables the error log file
	MaxDepth      int           `koanf:"max_depth"`
	Strict        bool          `koanf:"strict"`
	Verbose       bool          `koanf:"verbose"`
	LogLevel      string        `koanf:"log_level"`
	OutputFormat  string        `koanf:"output"`
	WatchDebounce time.Duration `koanf:"watch_debounce"`
	HistoryFile   string        `koanf:"history_file"`
}

// Default configuration values.
const (
	DefaultMacrosDir     = "macros"
	DefaultOutputSuffix  = "_processed"
	DefaultErrorLog      = "error_log.txt"
	DefaultMaxDepth      = 64
	DefaultLogLevel      = "warn"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=plain text without styling
	DefaultWatchDebounce = 100 * time.Millisecond
	DefaultHistoryFile   = ".macropp_history"
)

// ConfigFileNames are the config file names searched for, in order.
var ConfigFileNames = []string{"macropp.yaml", "macropp.yml"}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		MacrosDir:     DefaultMacrosDir,
		OutputSuffix:  DefaultOutputSuffix,
		ErrorLog:      DefaultErrorLog,
		MaxDepth:      DefaultMaxDepth,
		LogLevel:      DefaultLogLevel,
		OutputFormat:  DefaultOutput,
		WatchDebounce: DefaultWatchDebounce,
		HistoryFile:   DefaultHistoryFile,
	}
}
