package overlay

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/chatterm/internal/ui/styles"
)

// Styles holds all popup-specific styles
type Styles struct {
	// Frame is the popup border drawn around the full popup rectangle
	Frame lipgloss.Style
	// Title is the popup title set into the top border
	Title lipgloss.Style
	// MenuItem is the default text style
	MenuItem lipgloss.Style
	// MenuKey is the style for keybinding hints
	MenuKey lipgloss.Style
	// MenuHeader is the style for section headers
	MenuHeader lipgloss.Style
	// Path is the style for the file browser's directory line
	Path lipgloss.Style
	// Footer is the style for hints and secondary text
	Footer lipgloss.Style
	// Error is the style for inline failures
	Error lipgloss.Style
}

// New creates a new Styles instance using the Catppuccin Macchiato theme
func New() *Styles {
	return &Styles{
		Frame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(styles.Surface2),

		Title: lipgloss.NewStyle().
			Foreground(styles.Text).
			Bold(true),

		MenuItem: lipgloss.NewStyle().
			Foreground(styles.Text),

		MenuKey: lipgloss.NewStyle().
			Foreground(styles.Yellow).
			Bold(true),

		MenuHeader: lipgloss.NewStyle().
			Foreground(styles.Blue).
			Bold(true),

		Path: lipgloss.NewStyle().
			Foreground(styles.Teal),

		Footer: lipgloss.NewStyle().
			Foreground(styles.Subtext0),

		Error: lipgloss.NewStyle().
			Foreground(styles.Red).
			Bold(true),
	}
}
