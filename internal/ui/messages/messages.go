// Package messages renders the chat history pane.
package messages

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/riordanpawley/chatterm/internal/domain"
	"github.com/riordanpawley/chatterm/internal/ui/styles"
)

// maxAuthorWidth caps the author column
const maxAuthorWidth = 16

// EntryKind identifies how an entry is drawn
type EntryKind int

const (
	EntryMessage EntryKind = iota
	EntryFile
	EntrySystem
	EntryError
)

// Entry is one line of history
type Entry struct {
	Kind   EntryKind
	At     time.Time
	Author domain.Username
	Text   string
	File   *domain.FilePayload
}

// FromEvent converts a server event into a history entry
func FromEvent(ev domain.ServerEvent, at time.Time) Entry {
	switch ev.Kind {
	case domain.EventHelp:
		return Entry{Kind: EntrySystem, At: at, Text: ev.Text}
	case domain.EventRoom:
		return fromRoomEvent(ev.Username, ev.Room, at)
	case domain.EventError:
		return Entry{Kind: EntryError, At: at, Text: ev.Text}
	case domain.EventRooms:
		return Entry{Kind: EntrySystem, At: at, Text: "rooms: " + joinNames(ev.Rooms)}
	case domain.EventUsers:
		return Entry{Kind: EntrySystem, At: at, Text: "users: " + joinNames(ev.Users)}
	case domain.EventRoomCreated:
		return Entry{Kind: EntrySystem, At: at, Text: "room " + ev.RoomName.String() + " created"}
	case domain.EventRoomDeleted:
		return Entry{Kind: EntrySystem, At: at, Text: "room " + ev.RoomName.String() + " deleted"}
	case domain.EventDisconnect:
		return Entry{Kind: EntrySystem, At: at, Text: "disconnected"}
	default:
		return Entry{Kind: EntryError, At: at, Text: fmt.Sprintf("unknown event %v", ev.Kind)}
	}
}

func fromRoomEvent(user domain.Username, ev *domain.RoomEvent, at time.Time) Entry {
	if ev == nil {
		return Entry{Kind: EntryError, At: at, Text: "empty room event from " + user.String()}
	}
	switch ev.Kind {
	case domain.RoomEventMessage:
		return Entry{Kind: EntryMessage, At: at, Author: user, Text: ev.Message}
	case domain.RoomEventFile:
		return Entry{Kind: EntryFile, At: at, Author: user, File: ev.File}
	case domain.RoomEventJoined:
		return Entry{Kind: EntrySystem, At: at, Text: user.String() + " joined " + ev.Room.String()}
	case domain.RoomEventLeft:
		return Entry{Kind: EntrySystem, At: at, Text: user.String() + " left " + ev.Room.String()}
	case domain.RoomEventNameChange:
		return Entry{Kind: EntrySystem, At: at, Text: user.String() + " is now " + ev.Username.String()}
	case domain.RoomEventNudge:
		return Entry{Kind: EntrySystem, At: at, Text: user.String() + " nudged " + ev.Username.String()}
	default:
		return Entry{Kind: EntryError, At: at, Text: fmt.Sprintf("unknown room event %v", ev.Kind)}
	}
}

func joinNames[T ~string](names []T) string {
	if len(names) == 0 {
		return "(none)"
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}

// List is the scrollable message history
type List struct {
	entries []Entry
	cursor  int
	follow  bool
	self    domain.Username
	styles  *styles.Styles
	width   int
	height  int
}

// New creates an empty list that follows new messages
func New(st *styles.Styles) *List {
	return &List{
		follow: true,
		styles: st,
	}
}

// SetSize sets the pane interior size
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// SetSelf sets our username so our own messages are highlighted
func (l *List) SetSelf(u domain.Username) {
	l.self = u
}

// Append adds an entry. The cursor moves with it while following the tail.
func (l *List) Append(e Entry) {
	l.entries = append(l.entries, e)
	if l.follow {
		l.cursor = len(l.entries) - 1
	}
}

// Len returns the number of entries
func (l *List) Len() int {
	return len(l.entries)
}

// Cursor returns the selected index
func (l *List) Cursor() int {
	return l.cursor
}

// SetCursor sets the cursor position. Selecting the last entry resumes
// following new messages.
func (l *List) SetCursor(index int) {
	if index < 0 {
		l.cursor = 0
	} else if index >= len(l.entries) {
		l.cursor = max(0, len(l.entries)-1)
	} else {
		l.cursor = index
	}
	l.follow = l.cursor >= len(l.entries)-1
}

// MoveUp moves the cursor to the previous entry
func (l *List) MoveUp() { l.SetCursor(l.cursor - 1) }

// MoveDown moves the cursor to the next entry
func (l *List) MoveDown() { l.SetCursor(l.cursor + 1) }

// Top jumps to the oldest entry
func (l *List) Top() { l.SetCursor(0) }

// Bottom jumps to the newest entry
func (l *List) Bottom() { l.SetCursor(len(l.entries) - 1) }

// Selected returns the entry under the cursor
func (l *List) Selected() (Entry, bool) {
	if l.cursor < 0 || l.cursor >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[l.cursor], true
}

// SelectedFile returns the file under the cursor, if any
func (l *List) SelectedFile() (*domain.FilePayload, bool) {
	e, ok := l.Selected()
	if !ok || e.Kind != EntryFile || e.File == nil {
		return nil, false
	}
	return e.File, true
}

// LastFile returns the most recently shared file
func (l *List) LastFile() (*domain.FilePayload, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if e := l.entries[i]; e.Kind == EntryFile && e.File != nil {
			return e.File, true
		}
	}
	return nil, false
}

// CopyText returns the text that y copies for e
func CopyText(e Entry) string {
	if e.Kind == EntryFile && e.File != nil {
		return e.File.Name
	}
	return e.Text
}

// Render draws the visible window of history, keeping the cursor in view
func (l *List) Render() string {
	if l.width <= 0 || l.height <= 0 {
		return ""
	}
	if len(l.entries) == 0 {
		return l.styles.MessageSystem.Render(runewidth.Truncate("No messages yet", l.width, "…"))
	}

	// Wrap every entry, remembering where the cursor entry starts and ends.
	var lines []string
	var curStart, curEnd int
	for i, e := range l.entries {
		block := strings.Split(l.renderEntry(e, i == l.cursor), "\n")
		if i == l.cursor {
			curStart = len(lines)
			curEnd = len(lines) + len(block)
		}
		lines = append(lines, block...)
	}

	end := len(lines)
	if !l.follow {
		end = min(len(lines), max(curEnd, l.height))
	}
	start := max(0, end-l.height)
	if curStart < start {
		start = curStart
		end = min(len(lines), start+l.height)
	}

	return strings.Join(lines[start:end], "\n")
}

func (l *List) renderEntry(e Entry, selected bool) string {
	stamp := l.styles.Timestamp.Render(e.At.Format("15:04"))

	var body string
	switch e.Kind {
	case EntryMessage:
		body = l.author(e.Author) + " " + l.styles.MessageText.Render(e.Text)
	case EntryFile:
		name := "(unnamed)"
		if e.File != nil {
			name = e.File.Name
		}
		body = l.author(e.Author) + " " + l.styles.MessageFile.Render(name)
	case EntrySystem:
		body = l.styles.MessageSystem.Render("* " + e.Text)
	case EntryError:
		body = l.styles.MessageError.Render("! " + e.Text)
	}

	style := lipgloss.NewStyle().Width(l.width)
	if selected && !l.follow {
		style = l.styles.MessageSelected.Width(l.width)
	}
	return style.Render(stamp + " " + body)
}

func (l *List) author(name domain.Username) string {
	label := runewidth.Truncate(name.String(), maxAuthorWidth, "…") + ":"
	if name != "" && name == l.self {
		return l.styles.Self.Render(label)
	}
	return l.styles.Author(name.String()).Render(label)
}
