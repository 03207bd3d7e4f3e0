package commands

import (
	"log/slog"

	"github.com/leapstack-labs/macropp/internal/cli/config"
	"github.com/leapstack-labs/macropp/internal/cli/output"
	"github.com/leapstack-labs/macropp/internal/engine"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Library diagnostics found while creating the engine are reported through
// the renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cctx := NewCommandContextWithoutEngine(cmd)
	if err := cctx.Cfg.ValidateMacrosDir(); err != nil {
		return nil, err
	}

	eng, err := createEngine(cctx.Cfg, cctx.Logger, cctx.Renderer)
	if err != nil {
		return nil, err
	}
	cctx.Engine = eng
	return cctx, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or defaults when no
// configuration was loaded (commands executed outside the root command).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

func createEngine(cfg *config.Config, logger *slog.Logger, r *output.Renderer) (*engine.Engine, error) {
	return engine.New(engine.Config{
		MacrosDir: cfg.MacrosDir,
		MaxDepth:  cfg.MaxDepth,
		Sink:      r,
		Logger:    logger,
	})
}
