package styles

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds all the UI styles
type Styles struct {
	// Panes
	Pane       lipgloss.Style
	PaneActive lipgloss.Style
	PaneTitle  lipgloss.Style

	// Messages
	Timestamp       lipgloss.Style
	Author          func(name string) lipgloss.Style
	Self            lipgloss.Style
	MessageText     lipgloss.Style
	MessageSystem   lipgloss.Style
	MessageFile     lipgloss.Style
	MessageError    lipgloss.Style
	MessageSelected lipgloss.Style

	// Room list
	Room       lipgloss.Style
	RoomActive lipgloss.Style
	RoomUser   lipgloss.Style

	// Input
	Input      lipgloss.Style
	InputTitle lipgloss.Style

	// Status bar
	StatusBar  lipgloss.Style
	StatusMode lipgloss.Style
	StatusHint lipgloss.Style
	StatusInfo lipgloss.Style

	// Toasts
	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastWarning lipgloss.Style
	ToastError   lipgloss.Style
}

// New creates a new Styles instance with Catppuccin Macchiato theme
func New() *Styles {
	return &Styles{
		Pane: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Surface1),

		PaneActive: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Lavender),

		PaneTitle: lipgloss.NewStyle().
			Foreground(Subtext0).
			Bold(true),

		Timestamp: lipgloss.NewStyle().
			Foreground(Overlay0),

		Author: func(name string) lipgloss.Style {
			return lipgloss.NewStyle().
				Foreground(UserColor(name)).
				Bold(true)
		},

		Self: lipgloss.NewStyle().
			Foreground(Blue).
			Bold(true),

		MessageText: lipgloss.NewStyle().
			Foreground(Text),

		MessageSystem: lipgloss.NewStyle().
			Foreground(Overlay1).
			Italic(true),

		MessageFile: lipgloss.NewStyle().
			Foreground(Teal).
			Underline(true),

		MessageError: lipgloss.NewStyle().
			Foreground(Red),

		MessageSelected: lipgloss.NewStyle().
			Background(Surface0),

		Room: lipgloss.NewStyle().
			Foreground(Subtext0),

		RoomActive: lipgloss.NewStyle().
			Foreground(Blue).
			Bold(true),

		RoomUser: lipgloss.NewStyle().
			Foreground(Overlay2),

		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Surface2),

		InputTitle: lipgloss.NewStyle().
			Foreground(Text).
			Bold(true),

		StatusBar: lipgloss.NewStyle().
			Background(Surface0).
			Foreground(Subtext0).
			Padding(0, 1),

		StatusMode: lipgloss.NewStyle().
			Background(Blue).
			Foreground(Base).
			Bold(true).
			Padding(0, 1),

		StatusHint: lipgloss.NewStyle().
			Foreground(Overlay1),

		StatusInfo: lipgloss.NewStyle().
			Foreground(Subtext0),

		ToastInfo: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Blue).
			Foreground(Blue).
			Padding(0, 1),

		ToastSuccess: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Green).
			Foreground(Green).
			Padding(0, 1),

		ToastWarning: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Yellow).
			Foreground(Yellow).
			Padding(0, 1),

		ToastError: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Red).
			Foreground(Red).
			Padding(0, 1),
	}
}

// UserColor picks a stable colour for a username
func UserColor(name string) lipgloss.Color {
	h := fnv.New32a()
	h.Write([]byte(name))
	return UserColors[h.Sum32()%uint32(len(UserColors))]
}
