package terminal

import "github.com/charmbracelet/lipgloss"

var (
	colorText    = lipgloss.Color("#F8F8F2")
	colorMuted   = lipgloss.Color("#6272A4")
	colorPrimary = lipgloss.Color("#BD93F9")
	colorWarning = lipgloss.Color("#FFB86C")
)

// Styles are the lipgloss styles the model renders with.
type Styles struct {
	Title       lipgloss.Style
	Status      lipgloss.Style
	Fetching    lipgloss.Style
	Row         lipgloss.Style
	Placeholder lipgloss.Style
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Status:      lipgloss.NewStyle().Foreground(colorMuted),
		Fetching:    lipgloss.NewStyle().Foreground(colorWarning),
		Row:         lipgloss.NewStyle().Foreground(colorText),
		Placeholder: lipgloss.NewStyle().Foreground(colorMuted),
	}
}
