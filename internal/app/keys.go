package app

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings outside popups. Popups route their own keys.
type keyMap struct {
	ForceQuit key.Binding
	Redraw    key.Binding
	Quit      key.Binding
	Insert    key.Binding
	Leave     key.Binding
	Send      key.Binding
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Open      key.Binding
	Files     key.Binding
	Help      key.Binding
	Copy      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Redraw:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "redraw")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Insert:    key.NewBinding(key.WithKeys("i", "a"), key.WithHelp("i", "type")),
		Leave:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop typing")),
		Send:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "previous")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "next")),
		Top:       key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
		Bottom:    key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "preview file")),
		Files:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "files")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
	}
}
