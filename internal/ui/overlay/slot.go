package overlay

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/riordanpawley/chatterm/internal/core/notify"
)

// Slot holds at most one popup
type Slot struct {
	current *Popup
}

// NewSlot creates an empty slot
func NewSlot() *Slot {
	return &Slot{}
}

// Current returns the active popup, or nil when the slot is empty
func (s *Slot) Current() *Popup {
	return s.current
}

// IsEmpty returns true if no popup is active
func (s *Slot) IsEmpty() bool {
	return s.current == nil
}

// Set makes p the active popup and returns the one it replaced. The replaced
// popup's resources are released; a Closed it sends later will not match.
func (s *Slot) Set(p *Popup) *Popup {
	prev := s.current
	s.current = p
	if prev != nil && prev != p {
		prev.release()
	}
	return prev
}

// HandleClosed clears the slot if msg names the active popup. Notifications
// for replaced popups and repeats for an already cleared one are ignored.
func (s *Slot) HandleClosed(msg notify.Closed) bool {
	if s.current == nil || s.current.ID() != msg.ID {
		return false
	}
	s.current.release()
	s.current = nil
	return true
}

// HandleKey routes a key to the active popup
func (s *Slot) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	if s.current == nil {
		return Action{}, nil
	}
	return Route(s.current, msg)
}

// Update forwards a non-key message to the active popup
func (s *Slot) Update(msg tea.Msg) tea.Cmd {
	if s.current == nil {
		return nil
	}
	return s.current.Update(msg)
}
