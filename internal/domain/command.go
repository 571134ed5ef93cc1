package domain

import (
	"fmt"
	"strings"
)

// CommandKind identifies a client command
type CommandKind int

const (
	// CommandMessage is plain text sent to the current room
	CommandMessage CommandKind = iota
	CommandHelp
	CommandName
	CommandRooms
	CommandJoin
	CommandUsers
	CommandNudge
	CommandFile
	CommandQuit
)

// Command is one line sent to the server
type Command struct {
	Kind CommandKind
	// Arg is the message text, new username, room name or nudge target.
	Arg  string
	File FilePayload
}

// Commands lists the slash commands with a short description, in the order
// the help popup shows them.
var Commands = []struct {
	Usage       string
	Description string
}{
	{"/help", "show server help"},
	{"/name <name>", "change your username"},
	{"/rooms", "list rooms"},
	{"/join <room>", "join or create a room"},
	{"/users", "list users in the room"},
	{"/nudge <user>", "nudge a user in the room"},
	{"/file <path>", "send a local file"},
	{"/quit", "leave the server"},
}

// String returns the wire form of c
func (c Command) String() string {
	switch c.Kind {
	case CommandMessage:
		return c.Arg
	case CommandHelp:
		return "/help"
	case CommandName:
		return "/name " + c.Arg
	case CommandRooms:
		return "/rooms"
	case CommandJoin:
		return "/join " + c.Arg
	case CommandUsers:
		return "/users"
	case CommandNudge:
		return "/nudge " + c.Arg
	case CommandFile:
		return "/file " + c.File.Name + " " + c.File.Contents
	case CommandQuit:
		return "/quit"
	default:
		return ""
	}
}

// Validate checks that c can be written as one line the server will parse
func (c Command) Validate() error {
	switch c.Kind {
	case CommandMessage:
		if strings.TrimSpace(c.Arg) == "" {
			return &ProtocolError{Op: "encode", Err: ErrMissingArg}
		}
		if strings.HasPrefix(c.Arg, "/") {
			return &ProtocolError{Op: "encode", Line: clip(c.Arg), Err: ErrUnknownCommand}
		}
		if strings.ContainsAny(c.Arg, "\r\n") {
			return &ProtocolError{Op: "encode", Line: clip(c.Arg), Err: fmt.Errorf("message spans lines")}
		}
	case CommandName, CommandJoin, CommandNudge:
		if !validName(c.Arg) {
			return &ProtocolError{Op: "encode", Line: clip(c.String()), Err: ErrMissingArg}
		}
	case CommandFile:
		if !validName(c.File.Name) || !validName(c.File.Contents) {
			return &ProtocolError{Op: "encode", Line: clip(c.String()), Err: ErrMissingArg}
		}
	case CommandHelp, CommandRooms, CommandUsers, CommandQuit:
	default:
		return &ProtocolError{Op: "encode", Err: ErrUnknownCommand}
	}
	return nil
}

// ParseCommand parses a line in wire form. Text not starting with a slash is
// a room message. /file takes a name and base64 contents.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "/") {
		cmd := Command{Kind: CommandMessage, Arg: line}
		if err := cmd.Validate(); err != nil {
			return Command{}, err
		}
		return cmd, nil
	}

	fields := strings.Fields(line)
	arg := func(i int) (string, error) {
		if len(fields) <= i {
			return "", &ProtocolError{Op: "parse", Line: clip(line), Err: fmt.Errorf("%s: %w", fields[0], ErrMissingArg)}
		}
		return fields[i], nil
	}

	var cmd Command
	var err error
	switch fields[0] {
	case "/help":
		cmd.Kind = CommandHelp
	case "/name":
		cmd.Kind = CommandName
		cmd.Arg, err = arg(1)
	case "/rooms":
		cmd.Kind = CommandRooms
	case "/join":
		cmd.Kind = CommandJoin
		cmd.Arg, err = arg(1)
	case "/users":
		cmd.Kind = CommandUsers
	case "/nudge":
		cmd.Kind = CommandNudge
		cmd.Arg, err = arg(1)
	case "/file":
		cmd.Kind = CommandFile
		if cmd.File.Name, err = arg(1); err == nil {
			cmd.File.Contents, err = arg(2)
		}
	case "/quit":
		cmd.Kind = CommandQuit
	default:
		return Command{}, &ProtocolError{Op: "parse", Line: clip(line), Err: fmt.Errorf("%s: %w", fields[0], ErrUnknownCommand)}
	}
	if err != nil {
		return Command{}, err
	}
	return cmd, nil
}
