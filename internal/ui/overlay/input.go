package overlay

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// ActionKind says what the application should do after a key was routed
type ActionKind int

const (
	ActionNone ActionKind = iota
	// ActionPreviewRequested asks for a preview popup of File.
	ActionPreviewRequested
	// ActionError reports a failure surfaced by the popup, in Err.
	ActionError
)

// Action is the domain-level result of routing a key to a popup
type Action struct {
	Kind ActionKind
	File ReceivedFile
	Err  error
}

// Route handles a key for p. Escape closes every variant. The file browser
// passes other keys to its picker; the remaining variants ignore them.
func Route(p *Popup, msg tea.KeyMsg) (Action, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		p.requestClose()
		return Action{}, nil
	}

	switch c := p.content.(type) {
	case *FileBrowser:
		return c.handleKey(msg)
	case *Help, *ImagePreview, *MarkdownPreview:
		return Action{}, nil
	default:
		panic(fmt.Sprintf("overlay: unhandled content %T", c))
	}
}

// HandleKey is Route for p
func (p *Popup) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	return Route(p, msg)
}

// Update forwards non-key messages, such as directory listings and window
// sizes, to variants that consume them.
func (p *Popup) Update(msg tea.Msg) tea.Cmd {
	switch c := p.content.(type) {
	case *FileBrowser:
		return c.update(msg)
	case *Help, *ImagePreview, *MarkdownPreview:
		return nil
	default:
		panic(fmt.Sprintf("overlay: unhandled content %T", c))
	}
}
