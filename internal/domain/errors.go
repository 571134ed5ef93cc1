package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Sentinel errors
var (
	ErrDisconnected   = errors.New("disconnected")
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingArg     = errors.New("missing argument")
	ErrUnknownEvent   = errors.New("unknown event")
)

// ProtocolError represents a line that could not be encoded or decoded
type ProtocolError struct {
	Op   string // Operation: "decode", "parse", "encode"
	Line string // Optional: offending input, truncated
	Err  error  // Underlying error
}

func (e *ProtocolError) Error() string {
	if e.Line != "" {
		return fmt.Sprintf("protocol %s [%s]: %v", e.Op, e.Line, e.Err)
	}
	return fmt.Sprintf("protocol %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// TransportError represents a failure talking to the server
type TransportError struct {
	Op   string
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("transport %s [%s]: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

const maxErrorLine = 64

func clip(line string) string {
	if len(line) <= maxErrorLine {
		return line
	}
	cut := maxErrorLine
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut] + "..."
}
