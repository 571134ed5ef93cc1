package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/chatterm/internal/core/notify"
)

// KeyBinding represents a single keybinding entry
type KeyBinding struct {
	Key         string
	Description string
}

// KeyCategory represents a category of keybindings
type KeyCategory struct {
	Name     string
	Bindings []KeyBinding
}

// Help displays the keybinding reference
type Help struct {
	Categories []KeyCategory
	styles     *Styles
}

func (h *Help) kind() Kind { return KindHelp }

// NewHelp creates a help popup listing categories. A nil slice uses the
// default chat bindings.
func NewHelp(sender notify.Sender, categories []KeyCategory) *Popup {
	if categories == nil {
		categories = DefaultKeyCategories()
	}
	return newPopup(sender, "Help", &Help{
		Categories: categories,
		styles:     New(),
	})
}

// View renders the bindings as two aligned columns, cut to height lines
func (h *Help) View(width, height int) string {
	keyWidth := 0
	for _, cat := range h.Categories {
		for _, b := range cat.Bindings {
			keyWidth = max(keyWidth, lipgloss.Width(b.Key))
		}
	}

	var lines []string
	for i, cat := range h.Categories {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, h.styles.MenuHeader.Render(cat.Name+":"))

		for _, b := range cat.Bindings {
			key := h.styles.MenuKey.Width(keyWidth).Render(b.Key)
			desc := h.styles.MenuItem.Render(b.Description)
			lines = append(lines, " "+key+"  "+desc)
		}
	}

	if height >= 0 && len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(lines, "\n"))
}

// DefaultKeyCategories returns the chat client's key bindings
func DefaultKeyCategories() []KeyCategory {
	return []KeyCategory{
		{
			Name: "Messages",
			Bindings: []KeyBinding{
				{Key: "j/k", Description: "Select next/previous message"},
				{Key: "g/G", Description: "Jump to first/last message"},
				{Key: "enter", Description: "Preview selected file"},
				{Key: "y", Description: "Copy selected message"},
			},
		},
		{
			Name: "Input",
			Bindings: []KeyBinding{
				{Key: "i", Description: "Start typing"},
				{Key: "enter", Description: "Send message or /command"},
				{Key: "esc", Description: "Stop typing"},
			},
		},
		{
			Name: "Popups",
			Bindings: []KeyBinding{
				{Key: "?", Description: "Help (this screen)"},
				{Key: "f", Description: "Browse local files"},
				{Key: "esc", Description: "Close popup"},
			},
		},
		{
			Name: "Commands",
			Bindings: []KeyBinding{
				{Key: "/name", Description: "Change username"},
				{Key: "/join", Description: "Join or create a room"},
				{Key: "/rooms", Description: "List rooms"},
				{Key: "/users", Description: "List users in room"},
				{Key: "/nudge", Description: "Nudge a user"},
				{Key: "/file", Description: "Send a local file"},
			},
		},
		{
			Name: "Other",
			Bindings: []KeyBinding{
				{Key: "ctrl+l", Description: "Refresh screen"},
				{Key: "ctrl+c", Description: "Quit"},
			},
		},
	}
}
