package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/macropp/internal/engine"
	"github.com/leapstack-labs/macropp/internal/macro"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "macropp> "
	replContinuePrompt = "   ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Define and call macros interactively",
		Long: `Start an interactive session. Lines are expanded as they are entered;
a #MDEF block is collected until its matching #MEND and then defined.
Macro libraries are loaded at startup and after .reset.`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cctx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	historyFile := cctx.Cfg.HistoryFile
	if historyFile != "" && !filepath.IsAbs(historyFile) {
		historyFile = filepath.Join(cctx.Cfg.ProjectRoot, historyFile)
	}

	session := newREPLSession(cctx.Engine, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Configure readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newMacroCompleter(cctx.Engine),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// Print welcome message
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "macropp REPL (%d macros loaded)\n", cctx.Engine.Table().Len())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.discard()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if session.handle(line) {
			break
		}
		rl.SetPrompt(session.prompt())
	}

	return nil
}

// replSession holds the state of one interactive session: the pending
// definition block and the engine whose table persists between inputs.
type replSession struct {
	eng     *engine.Engine
	out     io.Writer
	errOut  io.Writer
	pending []string
	depth   int
}

func newREPLSession(eng *engine.Engine, out, errOut io.Writer) *replSession {
	return &replSession{eng: eng, out: out, errOut: errOut}
}

// prompt returns the continuation prompt while a definition is open.
func (s *replSession) prompt() string {
	if s.depth > 0 {
		return replContinuePrompt
	}
	return replPrompt
}

// discard drops a partially entered definition.
func (s *replSession) discard() {
	s.pending = nil
	s.depth = 0
}

// handle processes one input line and reports whether the session should end.
func (s *replSession) handle(line string) bool {
	trimmed := strings.TrimSpace(line)

	if s.depth == 0 && strings.HasPrefix(trimmed, ".") {
		return s.dotCommand(trimmed)
	}

	switch kind, _ := macro.Classify(line); kind {
	case macro.LineDefine:
		s.depth++
	case macro.LineEnd:
		if s.depth > 0 {
			s.depth--
		}
	}

	s.pending = append(s.pending, line)
	if s.depth > 0 {
		return false
	}

	lines := s.pending
	s.pending = nil
	if _, err := s.eng.Expand(lines, s.out, engine.ExpandOptions{File: "repl"}); err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	return false
}

func (s *replSession) dotCommand(line string) bool {
	command := strings.ToLower(strings.Fields(line)[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".defs":
		renderDefsTable(s.out, macro.Describe(s.eng.Table()), false)

	case ".reset":
		s.discard()
		if err := s.eng.Reset(); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			break
		}
		_, _ = fmt.Fprintf(s.out, "Definitions cleared (%d library macros loaded)\n", s.eng.Table().Len())

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .defs           List defined macros
  .reset          Forget definitions and reload libraries
  .quit / .exit   Exit the REPL

Tips:
  - A #MDEF block is collected until its matching #MEND
  - Ctrl+C discards a partially entered definition
  - Tab after "#MCALL " completes macro names
`
	_, _ = fmt.Fprintln(w, help)
}

// newMacroCompleter creates a readline completer for directives, dot
// commands and the names of currently visible macros.
func newMacroCompleter(eng *engine.Engine) *readline.PrefixCompleter {
	names := func(string) []string {
		return eng.Table().Names()
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(macro.DirectiveCall, readline.PcItemDynamic(names)),
		readline.PcItem(macro.DirectiveDefine),
		readline.PcItem(macro.DirectiveEnd),
		readline.PcItem(".help"),
		readline.PcItem(".defs"),
		readline.PcItem(".reset"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
