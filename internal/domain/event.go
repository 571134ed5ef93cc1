package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ServerEventKind identifies a ServerEvent variant
type ServerEventKind int

const (
	EventHelp ServerEventKind = iota
	EventRoom
	EventError
	EventRooms
	EventUsers
	EventRoomCreated
	EventRoomDeleted
	EventDisconnect
)

var serverEventNames = [...]string{"Help", "RoomEvent", "Error", "Rooms", "Users", "RoomCreated", "RoomDeleted", "Disconnect"}

func (k ServerEventKind) String() string {
	if k < 0 || int(k) >= len(serverEventNames) {
		return fmt.Sprintf("ServerEventKind(%d)", int(k))
	}
	return serverEventNames[k]
}

// ServerEvent is one line sent by the server. Which fields are set depends on
// Kind:
//
//	EventHelp         Username (ours), Text
//	EventRoom         Username (sender), Room
//	EventError        Text
//	EventRooms        Rooms
//	EventUsers        Users
//	EventRoomCreated  RoomName
//	EventRoomDeleted  RoomName
//	EventDisconnect   nothing
type ServerEvent struct {
	Kind     ServerEventKind
	Username Username
	Text     string
	RoomName RoomName
	Rooms    []RoomName
	Users    []Username
	Room     *RoomEvent
}

// RoomEventKind identifies a RoomEvent variant
type RoomEventKind int

const (
	RoomEventMessage RoomEventKind = iota
	RoomEventFile
	RoomEventJoined
	RoomEventLeft
	RoomEventNameChange
	RoomEventNudge
)

var roomEventNames = [...]string{"Message", "File", "Joined", "Left", "NameChange", "Nudge"}

func (k RoomEventKind) String() string {
	if k < 0 || int(k) >= len(roomEventNames) {
		return fmt.Sprintf("RoomEventKind(%d)", int(k))
	}
	return roomEventNames[k]
}

// FilePayload is a file shared in a room. Contents is base64.
type FilePayload struct {
	Name     string
	Contents string
}

// RoomEvent is something that happened in the sender's current room
type RoomEvent struct {
	Kind    RoomEventKind
	Message string
	File    *FilePayload
	// Room is set for Joined and Left.
	Room RoomName
	// Username is the new name for NameChange and the target for Nudge.
	Username Username
}

// Help builds the greeting the server sends on connect and on /help
func Help(user Username, text string) ServerEvent {
	return ServerEvent{Kind: EventHelp, Username: user, Text: text}
}

// InRoom wraps a room event sent by user
func InRoom(user Username, ev RoomEvent) ServerEvent {
	return ServerEvent{Kind: EventRoom, Username: user, Room: &ev}
}

// Message builds a chat message room event
func Message(text string) RoomEvent {
	return RoomEvent{Kind: RoomEventMessage, Message: text}
}

// File builds a shared file room event
func File(name, contents string) RoomEvent {
	return RoomEvent{Kind: RoomEventFile, File: &FilePayload{Name: name, Contents: contents}}
}

// ParseServerEvent decodes one line received from the server
func ParseServerEvent(line []byte) (ServerEvent, error) {
	var ev ServerEvent
	if err := json.Unmarshal(bytes.TrimSpace(line), &ev); err != nil {
		return ServerEvent{}, &ProtocolError{Op: "decode", Line: clip(string(line)), Err: err}
	}
	return ev, nil
}

// Encode returns the wire form of ev without a trailing newline
func (ev ServerEvent) Encode() ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, &ProtocolError{Op: "encode", Err: err}
	}
	return b, nil
}

// MarshalJSON writes the externally tagged form: {"Variant": payload}, with
// tuple variants as arrays and Disconnect as a bare string.
func (ev ServerEvent) MarshalJSON() ([]byte, error) {
	var payload any
	switch ev.Kind {
	case EventHelp:
		payload = []any{ev.Username, ev.Text}
	case EventRoom:
		if ev.Room == nil {
			return nil, fmt.Errorf("RoomEvent without room event: %w", ErrUnknownEvent)
		}
		payload = []any{ev.Username, ev.Room}
	case EventError:
		payload = ev.Text
	case EventRooms:
		payload = nonNil(ev.Rooms)
	case EventUsers:
		payload = nonNil(ev.Users)
	case EventRoomCreated, EventRoomDeleted:
		payload = ev.RoomName
	case EventDisconnect:
		return json.Marshal(ev.Kind.String())
	default:
		return nil, fmt.Errorf("%v: %w", ev.Kind, ErrUnknownEvent)
	}
	return json.Marshal(map[string]any{ev.Kind.String(): payload})
}

// UnmarshalJSON reads the form written by MarshalJSON
func (ev *ServerEvent) UnmarshalJSON(data []byte) error {
	tag, body, err := splitTagged(data)
	if err != nil {
		return err
	}

	var out ServerEvent
	switch tag {
	case "Help":
		out.Kind = EventHelp
		err = decodePair(body, &out.Username, &out.Text)
	case "RoomEvent":
		out.Kind = EventRoom
		out.Room = &RoomEvent{}
		err = decodePair(body, &out.Username, out.Room)
	case "Error":
		out.Kind = EventError
		err = json.Unmarshal(body, &out.Text)
	case "Rooms":
		out.Kind = EventRooms
		err = json.Unmarshal(body, &out.Rooms)
	case "Users":
		out.Kind = EventUsers
		err = json.Unmarshal(body, &out.Users)
	case "RoomCreated":
		out.Kind = EventRoomCreated
		err = json.Unmarshal(body, &out.RoomName)
	case "RoomDeleted":
		out.Kind = EventRoomDeleted
		err = json.Unmarshal(body, &out.RoomName)
	case "Disconnect":
		out.Kind = EventDisconnect
	default:
		return fmt.Errorf("%q: %w", tag, ErrUnknownEvent)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}
	*ev = out
	return nil
}

// MarshalJSON writes the externally tagged form of a room event
func (ev RoomEvent) MarshalJSON() ([]byte, error) {
	var payload any
	switch ev.Kind {
	case RoomEventMessage:
		payload = ev.Message
	case RoomEventFile:
		if ev.File == nil {
			return nil, fmt.Errorf("File without payload: %w", ErrUnknownEvent)
		}
		payload = []string{ev.File.Name, ev.File.Contents}
	case RoomEventJoined, RoomEventLeft:
		payload = ev.Room
	case RoomEventNameChange, RoomEventNudge:
		payload = ev.Username
	default:
		return nil, fmt.Errorf("%v: %w", ev.Kind, ErrUnknownEvent)
	}
	return json.Marshal(map[string]any{ev.Kind.String(): payload})
}

// UnmarshalJSON reads the form written by MarshalJSON
func (ev *RoomEvent) UnmarshalJSON(data []byte) error {
	tag, body, err := splitTagged(data)
	if err != nil {
		return err
	}

	var out RoomEvent
	switch tag {
	case "Message":
		out.Kind = RoomEventMessage
		err = json.Unmarshal(body, &out.Message)
	case "File":
		out.Kind = RoomEventFile
		out.File = &FilePayload{}
		err = decodePair(body, &out.File.Name, &out.File.Contents)
	case "Joined":
		out.Kind = RoomEventJoined
		err = json.Unmarshal(body, &out.Room)
	case "Left":
		out.Kind = RoomEventLeft
		err = json.Unmarshal(body, &out.Room)
	case "NameChange":
		out.Kind = RoomEventNameChange
		err = json.Unmarshal(body, &out.Username)
	case "Nudge":
		out.Kind = RoomEventNudge
		err = json.Unmarshal(body, &out.Username)
	default:
		return fmt.Errorf("%q: %w", tag, ErrUnknownEvent)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}
	*ev = out
	return nil
}

// splitTagged returns the variant name and its payload. A bare string is a
// unit variant with no payload.
func splitTagged(data []byte) (string, json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return "", nil, err
		}
		return tag, nil, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, err
	}
	if len(obj) != 1 {
		return "", nil, fmt.Errorf("expected one variant, got %d: %w", len(obj), ErrUnknownEvent)
	}
	for tag, body := range obj {
		return tag, body, nil
	}
	panic("unreachable")
}

func decodePair(body json.RawMessage, first, second any) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("expected 2 fields, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], first); err != nil {
		return err
	}
	return json.Unmarshal(parts[1], second)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
