// Package rooms renders the room sidebar: every known room, with the current
// room expanded to list its users.
package rooms

import (
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/riordanpawley/chatterm/internal/domain"
	"github.com/riordanpawley/chatterm/internal/ui/styles"
)

// List holds the sidebar state
type List struct {
	rooms   []domain.RoomName
	users   []domain.Username
	current domain.RoomName
	styles  *styles.Styles
}

// New creates a sidebar starting in the lobby
func New(st *styles.Styles) *List {
	return &List{
		rooms:   []domain.RoomName{domain.Lobby},
		current: domain.Lobby,
		styles:  st,
	}
}

// Current returns the room we are in
func (l *List) Current() domain.RoomName {
	return l.current
}

// Rooms returns the known rooms
func (l *List) Rooms() []domain.RoomName {
	return l.rooms
}

// Users returns the users of the current room
func (l *List) Users() []domain.Username {
	return l.users
}

// SetRooms replaces the known rooms. The current room is always listed.
func (l *List) SetRooms(rooms []domain.RoomName) {
	l.rooms = slices.Clone(rooms)
	l.AddRoom(l.current)
}

// AddRoom lists room if it is new
func (l *List) AddRoom(room domain.RoomName) {
	if room != "" && !slices.Contains(l.rooms, room) {
		l.rooms = append(l.rooms, room)
	}
}

// RemoveRoom drops room unless it is the current one
func (l *List) RemoveRoom(room domain.RoomName) {
	if room == l.current {
		return
	}
	l.rooms = slices.DeleteFunc(l.rooms, func(r domain.RoomName) bool { return r == room })
}

// SetCurrent moves us into room. Users are cleared until the next listing.
func (l *List) SetCurrent(room domain.RoomName) {
	if room == l.current {
		return
	}
	l.current = room
	l.users = nil
	l.AddRoom(room)
}

// SetUsers replaces the users of the current room
func (l *List) SetUsers(users []domain.Username) {
	l.users = slices.Clone(users)
}

// AddUser lists a user who joined the current room
func (l *List) AddUser(u domain.Username) {
	if u != "" && !slices.Contains(l.users, u) {
		l.users = append(l.users, u)
	}
}

// RemoveUser drops a user who left the current room
func (l *List) RemoveUser(u domain.Username) {
	l.users = slices.DeleteFunc(l.users, func(x domain.Username) bool { return x == u })
}

// RenameUser replaces from with to in the current room
func (l *List) RenameUser(from, to domain.Username) {
	if i := slices.Index(l.users, from); i >= 0 {
		l.users[i] = to
	}
}

// Render draws the rooms within width×height cells
func (l *List) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	var lines []string
	for _, room := range l.rooms {
		if room == l.current {
			lines = append(lines, l.styles.RoomActive.Render(fit("▾ "+room.String(), width)))
			for i, u := range l.users {
				branch := "├ "
				if i == len(l.users)-1 {
					branch = "└ "
				}
				lines = append(lines, l.styles.RoomUser.Render(fit("  "+branch+u.String(), width)))
			}
			continue
		}
		lines = append(lines, l.styles.Room.Render(fit("▸ "+room.String(), width)))
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func fit(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
