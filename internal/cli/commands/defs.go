package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/macropp/internal/macro"
	"github.com/spf13/cobra"
)

// DefsOutput is the structured form of the defs command.
type DefsOutput struct {
	Macros  []*macro.Summary `json:"macros" yaml:"macros"`
	Total   int              `json:"total" yaml:"total"`
	Sources []string         `json:"sources" yaml:"sources"`
}

// NewDefsCommand creates the defs command.
func NewDefsCommand() *cobra.Command {
	var flat bool

	cmd := &cobra.Command{
		Use:   "defs [input]",
		Short: "List macro definitions",
		Long: `Compile the macro libraries and, optionally, the definitions of a
document, then list every macro with its parameters, body size, the macros
it calls and where it was defined. Nothing is expanded.`,
		Example: `  # Macros from the libraries only
  macropp defs

  # Include a document's definitions, as JSON
  macropp defs input.txt --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefs(cmd, args, flat)
		},
	}

	cmd.Flags().BoolVar(&flat, "flat", false, "List nested macros as separate rows only (no tree indentation)")

	return cmd
}

func runDefs(cmd *cobra.Command, args []string, flat bool) error {
	cctx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	eng := cctx.Engine

	var sources []string
	for _, lib := range eng.Libraries() {
		sources = append(sources, lib.Path)
	}

	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		lines, err := macro.SplitLines(content)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		eng.Define(lines, args[0], nil)
		sources = append(sources, args[0])
	}

	summaries := macro.Describe(eng.Table())
	result := DefsOutput{
		Macros:  summaries,
		Total:   len(macro.Flatten(summaries)),
		Sources: sources,
	}
	if result.Sources == nil {
		result.Sources = []string{}
	}

	if ok, err := cctx.Renderer.Structured(result); ok || err != nil {
		return err
	}

	r := cctx.Renderer
	r.Header(1, fmt.Sprintf("Macros (%d total)", result.Total))
	renderDefsTable(r.Writer(), summaries, flat)
	return nil
}

// renderDefsTable writes the macro tree as a table. Nested macros are
// indented under their parent unless flat is set.
func renderDefsTable(w io.Writer, summaries []*macro.Summary, flat bool) {
	if len(summaries) == 0 {
		_, _ = fmt.Fprintln(w, "(no macros)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Macro", "Params", "Lines", "Calls", "Defined"})

	var appendRows func(list []*macro.Summary, depth int)
	appendRows = func(list []*macro.Summary, depth int) {
		for _, s := range list {
			name := s.Path
			if !flat {
				name = treePrefix(depth) + s.Name
			}
			t.AppendRow(table.Row{
				name,
				formatList(s.Params),
				s.Lines,
				formatList(s.Calls),
				definedAt(s),
			})
			appendRows(s.Children, depth+1)
		}
	}
	appendRows(summaries, 0)

	t.Render()
}

func treePrefix(depth int) string {
	if depth == 0 {
		return ""
	}
	return strings.Repeat("   ", depth-1) + "└─ "
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func definedAt(s *macro.Summary) string {
	switch {
	case s.File != "" && s.Line > 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	case s.Line > 0:
		return fmt.Sprintf("line %d", s.Line)
	default:
		return s.File
	}
}
