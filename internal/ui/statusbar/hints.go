package statusbar

import "github.com/riordanpawley/chatterm/internal/types"

// GetHints returns the keybinding hints for the given mode
func GetHints(mode types.Mode) string {
	switch mode {
	case types.ModeNormal:
		return "i: type  j/k: select  Enter: open  f: files  ?: help  q: quit"
	case types.ModeInsert:
		return "Enter: send  /help: commands  Esc: stop typing"
	case types.ModePopup:
		return "Esc: close"
	default:
		return ""
	}
}
