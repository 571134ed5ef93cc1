// Package types contains shared types used across the application.
package types

// Mode represents which part of the screen receives keys
type Mode int

const (
	// ModeNormal navigates the message list
	ModeNormal Mode = iota
	// ModeInsert types into the input box
	ModeInsert
	// ModePopup routes keys to the open popup
	ModePopup
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	case ModePopup:
		return "POPUP"
	default:
		return "UNKNOWN"
	}
}
