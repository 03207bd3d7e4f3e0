package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the renderer.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style
	Name     lipgloss.Style
	Location lipgloss.Style
}

// NewStyles builds styles bound to a lipgloss renderer, so the color
// profile follows the writer rather than the process stdout.
func NewStyles(lr *lipgloss.Renderer) *Styles {
	return &Styles{
		Title:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Subtitle: lr.NewStyle().Bold(true),
		Success:  lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:  lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Muted:    lr.NewStyle().Foreground(lipgloss.Color("8")),
		Name:     lr.NewStyle().Foreground(lipgloss.Color("14")),
		Location: lr.NewStyle().Underline(true),
	}
}
