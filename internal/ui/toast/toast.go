// Package toast draws the notification stack in the corner of the chat view.
package toast

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/riordanpawley/chatterm/internal/types"
	"github.com/riordanpawley/chatterm/internal/ui/styles"
)

const (
	// MaxVisible is how many toasts are drawn at once. Older ones are
	// summarised in a single line above the stack.
	MaxVisible = 4
	maxWidth   = 40
	minWidth   = 12
)

// Renderer draws the toast stack
type Renderer struct {
	styles *styles.Styles
}

// New creates a Renderer with the given styles
func New(st *styles.Styles) *Renderer {
	return &Renderer{styles: st}
}

// Render draws toasts oldest first, right aligned, one line of text each.
// Returns empty string if there is nothing to show.
func (r *Renderer) Render(toasts []types.Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	boxWidth := min(max(width/3, minWidth), maxWidth)

	var blocks []string
	if hidden := len(toasts) - MaxVisible; hidden > 0 {
		blocks = append(blocks, r.styles.StatusInfo.Render(fmt.Sprintf("+%d more", hidden)))
		toasts = toasts[hidden:]
	}
	for _, t := range toasts {
		blocks = append(blocks, r.box(t, boxWidth))
	}
	return lipgloss.JoinVertical(lipgloss.Right, blocks...)
}

// box renders one toast, cutting its text so it never wraps
func (r *Renderer) box(t types.Toast, width int) string {
	style := r.styleForLevel(t.Level)
	text := width - style.GetHorizontalPadding()

	suffix := ""
	if t.Count > 1 {
		suffix = fmt.Sprintf(" ×%d", t.Count)
	}
	line := levelIcon(t.Level) + " " + strings.ReplaceAll(t.Message, "\n", " ")
	line = runewidth.Truncate(line, text-runewidth.StringWidth(suffix), "…") + suffix

	return style.Width(width).Render(line)
}

func (r *Renderer) styleForLevel(level types.ToastLevel) lipgloss.Style {
	switch level {
	case types.ToastSuccess:
		return r.styles.ToastSuccess
	case types.ToastWarning:
		return r.styles.ToastWarning
	case types.ToastError:
		return r.styles.ToastError
	default:
		return r.styles.ToastInfo
	}
}

// levelIcon prefixes messages so levels stay distinguishable without colour
func levelIcon(level types.ToastLevel) string {
	switch level {
	case types.ToastSuccess:
		return "✓"
	case types.ToastWarning:
		return "!"
	case types.ToastError:
		return "✗"
	default:
		return "•"
	}
}
