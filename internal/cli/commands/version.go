package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/leapstack-labs/macropp/internal/macro"
	"github.com/spf13/cobra"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version    string   `json:"version" yaml:"version"`
	Commit     string   `json:"commit" yaml:"commit"`
	BuildDate  string   `json:"build_date" yaml:"build_date"`
	GoVersion  string   `json:"go_version" yaml:"go_version"`
	Directives []string `json:"directives" yaml:"directives"`
	LibraryExt string   `json:"library_ext" yaml:"library_ext"`
	MaxDepth   int      `json:"default_max_depth" yaml:"default_max_depth"`
}

// NewBuildInfo fills in the fields that do not come from the linker.
func NewBuildInfo(version, commit, date string) BuildInfo {
	return BuildInfo{
		Version:    version,
		Commit:     commit,
		BuildDate:  date,
		GoVersion:  runtime.Version(),
		Directives: []string{macro.DirectiveDefine, macro.DirectiveEnd, macro.DirectiveCall},
		LibraryExt: macro.LibraryExt,
		MaxDepth:   macro.DefaultMaxDepth,
	}
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the macropp version, build metadata and the directive set this
binary understands. Honours --format json|yaml.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := NewCommandContextWithoutEngine(cmd).Renderer
			if ok, err := r.Structured(info); ok || err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "macropp v%s (%s, built %s)\n", info.Version, info.Commit, info.BuildDate)
			_, _ = fmt.Fprintf(out, "Macro preprocessor built with %s\n", info.GoVersion)
			_, _ = fmt.Fprintf(out, "Directives: %s; libraries: *%s; default max depth %d\n",
				strings.Join(info.Directives, " "), info.LibraryExt, info.MaxDepth)
			return nil
		},
	}
}
