// Package domain contains the chat protocol types shared by the transport and
// the UI.
package domain

import "strings"

// Username identifies a connected user
type Username string

func (u Username) String() string {
	return string(u)
}

// RoomName identifies a chat room
type RoomName string

func (r RoomName) String() string {
	return string(r)
}

// Lobby is the room every user starts in
const Lobby RoomName = "lobby"

// Default server address
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 42069
)

// validName reports whether s can travel as a single command argument
func validName(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \t\r\n")
}
