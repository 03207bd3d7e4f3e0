// Package engine drives macro expansion over whole documents.
// It owns the top-level macro table, preloads macro libraries and runs the
// line dispatch loop that decides between definitions, calls and text.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/macropp/internal/macro"
)

// Engine expands documents against a persistent top-level macro table.
// Definitions accumulate across Expand calls until Reset. An Engine is not
// safe for concurrent use.
type Engine struct {
	// Structured logger
	logger *slog.Logger

	macrosDir string
	sink      macro.Sink

	top       *macro.Table
	expander  *macro.Expander
	libraries []*macro.Library
}

// Config holds engine configuration.
type Config struct {
	// MacrosDir is the directory of .mdef libraries loaded before any
	// document (optional)
	MacrosDir string
	// MaxDepth limits nested invocations (0 uses macro.DefaultMaxDepth)
	MaxDepth int
	// Sink receives every diagnostic of every run (optional)
	Sink macro.Sink
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine and loads the macro libraries.
func New(cfg Config) (*Engine, error) {
	// Initialize logger (use discard handler if nil)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing engine", "macros_dir", cfg.MacrosDir, "max_depth", cfg.MaxDepth)

	top := macro.NewTable()
	e := &Engine{
		logger:    logger,
		macrosDir: cfg.MacrosDir,
		sink:      cfg.Sink,
		top:       top,
		expander: macro.NewExpander(top, macro.Options{
			MaxDepth: cfg.MaxDepth,
			Sink:     cfg.Sink,
			Logger:   logger,
		}),
	}

	if err := e.loadLibraries(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) loadLibraries() error {
	if e.macrosDir == "" {
		return nil
	}
	libs, err := macro.NewLoader(e.macrosDir).Load(e.top, e.runSink(nil, nil))
	if err != nil {
		return fmt.Errorf("failed to load macros: %w", err)
	}
	e.libraries = libs
	for _, lib := range libs {
		e.logger.Debug("loaded macro library", "path", lib.Path, "macros", len(lib.Macros))
	}
	return nil
}

// Reset forgets every definition and reloads the macro libraries, so the
// next document starts from a clean table.
func (e *Engine) Reset() error {
	e.logger.Debug("resetting macro table", "macros", e.top.Len())
	e.top.Clear()
	e.libraries = nil
	return e.loadLibraries()
}

// --- Getters (public accessors) ---

// Table returns the top-level macro table.
func (e *Engine) Table() *macro.Table {
	return e.top
}

// Libraries returns the libraries loaded from the macros directory.
func (e *Engine) Libraries() []*macro.Library {
	return e.libraries
}

// Expander returns the invocation dispatcher bound to the top-level table.
func (e *Engine) Expander() *macro.Expander {
	return e.expander
}
