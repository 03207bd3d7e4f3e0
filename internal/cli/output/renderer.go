// Package output renders CLI results for terminals and machines.
//
// The renderer picks styled text on a TTY, unstyled text when piped, or
// JSON/YAML when requested. Diagnostics always go to the error writer so the
// expanded document on stdout stays clean.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	ModeAuto Mode = "auto" // Styled text on a TTY, plain text otherwise
	ModeText Mode = "text"
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
)

// Renderer writes command results and diagnostics.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	isTTY  bool
	mode   Mode

	// Styles used in text mode. Plain when not attached to a TTY.
	Styles *Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	lr := lipgloss.NewRenderer(errOut)
	if isTTY {
		lr.SetColorProfile(termenv.ANSI256)
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		isTTY:  isTTY,
		mode:   Mode(strings.ToLower(string(mode))),
		Styles: NewStyles(lr),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int
}

// EffectiveMode resolves ModeAuto to ModeText.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode == ModeAuto {
		return ModeText
	}
	return r.mode
}

// IsTTY reports whether styled output is enabled.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Writer returns the primary output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the diagnostic writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a line to the primary output.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted text to the primary output.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Header writes a section heading. Level 1 is underlined.
func (r *Renderer) Header(level int, text string) {
	if level <= 1 {
		r.Println(r.Styles.Title.Render(text))
		r.Println(r.Styles.Muted.Render(strings.Repeat("─", len([]rune(text)))))
		return
	}
	r.Println("")
	r.Println(r.Styles.Subtitle.Render(text))
}

// Warning writes a warning to the error writer.
func (r *Renderer) Warning(msg string) {
	r.status(r.Styles.Warning, "!", msg)
}

// Error writes an error message to the error writer.
func (r *Renderer) Error(msg string) {
	r.status(r.Styles.Error, "✗", msg)
}

// Muted writes de-emphasised text to the error writer.
func (r *Renderer) Muted(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.Styles.Muted.Render(msg))
}

func (r *Renderer) status(style lipgloss.Style, icon, msg string) {
	_, _ = fmt.Fprintln(r.errOut, style.Render(icon+" "+msg))
}

// StatusLine writes "icon name detail" for a named item with status
// success, warning or error.
func (r *Renderer) StatusLine(name, status, detail string) {
	style, icon := r.Styles.Success, "✓"
	switch status {
	case "warning":
		style, icon = r.Styles.Warning, "!"
	case "error":
		style, icon = r.Styles.Error, "✗"
	}
	line := style.Render(icon) + " " + name
	if detail != "" {
		line += " " + r.Styles.Muted.Render(detail)
	}
	_, _ = fmt.Fprintln(r.errOut, line)
}

// JSON writes v as indented JSON to the primary output.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// YAML writes v as YAML to the primary output.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// Structured writes v as JSON or YAML depending on the effective mode.
// It returns false in text mode without writing anything.
func (r *Renderer) Structured(v any) (bool, error) {
	switch r.EffectiveMode() {
	case ModeJSON:
		return true, r.JSON(v)
	case ModeYAML:
		return true, r.YAML(v)
	default:
		return false, nil
	}
}
