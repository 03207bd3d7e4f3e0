// Package cli provides the command-line interface for macropp.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/leapstack-labs/macropp/internal/cli/commands"
	"github.com/leapstack-labs/macropp/internal/cli/config"
	"github.com/leapstack-labs/macropp/internal/cli/output"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// rendererKey is used to store renderer in context.
type rendererKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "macropp",
		Short: "macropp - line-oriented text macro preprocessor",
		Long: `macropp expands text macros in plain documents.

Macros are defined between #MDEF and #MEND lines, may nest and are scoped
to the block that defines them. #MCALL lines invoke a macro with name=value
arguments that replace $placeholders in its body. Libraries of *.mdef files
in the macros directory are loaded before every run.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger, err := config.NewLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = config.WithLogger(ctx, logger)
			ctx = context.WithValue(ctx, configKey{}, cfg)

			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
			ctx = context.WithValue(ctx, rendererKey{}, renderer)
			cmd.SetContext(ctx)

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", "path", configFile)
			}
			logger.Debug("configuration loaded",
				"macros_dir", cfg.MacrosDir,
				"max_depth", cfg.MaxDepth,
				"output", cfg.OutputFormat)

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Line-oriented macro preprocessor
`)

	// Global persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./macropp.yaml, searched upward)")
	flags.String("macros-dir", "", "Directory of *.mdef macro libraries")
	flags.Int("max-depth", config.DefaultMaxDepth, "Maximum nesting of macro calls")
	flags.String("output-suffix", "", "Suffix added to the input name for the default output file")
	flags.Bool("strict", false, "Exit with an error when any diagnostic is reported")
	flags.BoolP("verbose", "v", false, "Verbose output (debug logging)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.StringP("format", "f", "", "Output format (auto|text|json|yaml)")
	flags.Duration("watch-debounce", config.DefaultWatchDebounce, "Delay before re-expanding in watch mode")
	flags.String("history-file", "", "REPL history file")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.MarkPersistentFlagDirname("macros-dir")

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(commands.NewBuildInfo(Version, GitCommit, BuildDate)))
	rootCmd.AddCommand(commands.NewExpandCommand())
	rootCmd.AddCommand(commands.NewDefsCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
			return c
		}
	}
	return config.Default()
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if ctx != nil {
		if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
			return r
		}
	}
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for macropp.

To load completions:

Bash:
  $ source <(macropp completion bash)

  # To load completions for each session, execute once:
  $ macropp completion bash > /etc/bash_completion.d/macropp

Zsh:
  $ macropp completion zsh > "${fpath[1]}/_macropp"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ macropp completion fish > ~/.config/fish/completions/macropp.fish

PowerShell:
  PS> macropp completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
