package app

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/riordanpawley/chatterm/internal/ui/canvas"
	"github.com/riordanpawley/chatterm/internal/ui/statusbar"
	"github.com/riordanpawley/chatterm/internal/ui/toast"
)

const (
	// messagesPercent is the share of the width given to the message pane
	messagesPercent = 80
	inputHeight     = 3
	statusHeight    = 1
)

// layout is where each pane sits on screen
type layout struct {
	messages canvas.Rect
	rooms    canvas.Rect
	input    canvas.Rect
	status   canvas.Rect
}

func computeLayout(width, height int) layout {
	mainHeight := max(height-inputHeight-statusHeight, 0)
	messagesWidth := width * messagesPercent / 100

	return layout{
		messages: canvas.Rect{Width: messagesWidth, Height: mainHeight},
		rooms:    canvas.Rect{X: messagesWidth, Width: width - messagesWidth, Height: mainHeight},
		input:    canvas.Rect{Y: mainHeight, Width: width, Height: min(inputHeight, height)},
		status:   canvas.Rect{Y: max(height-statusHeight, 0), Width: width, Height: statusHeight},
	}
}

// View renders the panes, then the popup and toasts on top
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if !m.connected {
		return m.renderConnecting()
	}

	c := canvas.New(m.width, m.height)
	l := computeLayout(m.width, m.height)

	m.drawPane(c, l.messages, "Messages", m.messages.Render(), m.mode == ModeNormal && m.slot.IsEmpty())

	roomsInner := l.rooms.Inset(1)
	m.drawPane(c, l.rooms, "Rooms", m.rooms.Render(roomsInner.Width, roomsInner.Height), false)

	m.drawPane(c, l.input, m.inputTitle(), m.input.View(), m.mode == ModeInsert && m.slot.IsEmpty())

	sb := statusbar.New(m.viewMode(), m.width, m.styles).WithInfo(fmt.Sprintf("%s@%s", m.username, m.client.Addr()))
	c.Put(l.status, sb.Render())

	// The popup is centred on the whole terminal, over everything else.
	if p := m.slot.Current(); p != nil {
		m.renderer.Render(c, c.Bounds(), p)
	}

	m.drawToasts(c, l.status.Y)

	return c.String()
}

// drawPane draws a bordered pane with title in its top border
func (m Model) drawPane(c *canvas.Canvas, r canvas.Rect, title, body string, active bool) {
	if r.Width < 2 || r.Height < 2 {
		return
	}
	style := m.styles.Pane
	if active {
		style = m.styles.PaneActive
	}
	c.Put(r, style.Width(r.Width-2).Height(r.Height-2).Render(""))
	c.Put(r.Inset(1), body)

	room := r.Width - 4
	if title == "" || room <= 2 {
		return
	}
	label := " " + title + " "
	if lipgloss.Width(label) > room {
		label = " " + runewidth.Truncate(title, room-2, "…") + " "
	}
	c.Put(canvas.Rect{X: r.X + 2, Y: r.Y, Width: lipgloss.Width(label), Height: 1}, m.styles.PaneTitle.Render(label))
}

// inputTitle names the room a message will go to and who sends it
func (m Model) inputTitle() string {
	title := "[ Send message (" + m.rooms.Current().String() + ") ]"
	if m.username != "" {
		title += " as " + m.username.String()
	}
	return title
}

// drawToasts stacks toasts in the bottom-right corner, above row bottom
func (m Model) drawToasts(c *canvas.Canvas, bottom int) {
	if len(m.toasts) == 0 {
		return
	}
	block := toast.New(m.styles).Render(m.toasts, m.width)
	if block == "" {
		return
	}
	w, h := lipgloss.Width(block), lipgloss.Height(block)
	c.Put(canvas.Rect{X: m.width - w, Y: bottom - h, Width: w, Height: h}, block)
}

// renderConnecting shows a spinner while the first dial is in flight
func (m Model) renderConnecting() string {
	msg := fmt.Sprintf("%s Connecting to %s...", m.spinner.View(), m.client.Addr())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}
