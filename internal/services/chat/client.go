// Package chat connects to a chat server and turns its lines into events on
// a notify channel.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/riordanpawley/chatterm/internal/content"
	"github.com/riordanpawley/chatterm/internal/core/notify"
	"github.com/riordanpawley/chatterm/internal/domain"
)

// EventMsg carries one decoded server event
type EventMsg struct {
	Event domain.ServerEvent
}

// DisconnectedMsg is sent once when the connection ends. Err is nil for a
// clean close.
type DisconnectedMsg struct {
	Err error
}

// Addr joins host and port
func Addr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Client is a connection to one chat server
type Client struct {
	dialer Dialer
	addr   string
	sender notify.Sender
	logger *slog.Logger

	mu     sync.Mutex
	conn   Conn
	closed bool
	done   chan struct{}
}

// NewClient creates a client with dependency injection. Events are posted to
// sender from a reader goroutine started by Connect.
func NewClient(dialer Dialer, addr string, sender notify.Sender, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		dialer: dialer,
		addr:   addr,
		sender: sender,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Addr returns the server address
func (c *Client) Addr() string {
	return c.addr
}

// Connect dials the server and starts reading events
func (c *Client) Connect(ctx context.Context) error {
	c.logger.Debug("connecting", "addr", c.addr)

	conn, err := c.dialer.Dial(ctx, c.addr)
	if err != nil {
		return &domain.TransportError{Op: "dial", Addr: c.addr, Err: err}
	}

	c.mu.Lock()
	if c.conn != nil || c.closed {
		c.mu.Unlock()
		conn.Close()
		return &domain.TransportError{Op: "dial", Addr: c.addr, Err: errors.New("already connected")}
	}
	c.conn = conn
	c.mu.Unlock()

	c.logger.Info("connected", "addr", c.addr)
	go c.readLoop(conn)
	return nil
}

// Done is closed when the reader goroutine exits
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) readLoop(conn Conn) {
	defer close(c.done)

	for {
		line, err := conn.ReadLine()
		if err != nil {
			c.disconnected(err)
			return
		}
		if len(line) == 0 {
			continue
		}

		ev, err := domain.ParseServerEvent(line)
		if err != nil {
			c.logger.Warn("dropping server line", "error", err)
			continue
		}
		c.logger.Debug("server event", "kind", ev.Kind)

		if err := c.sender.Send(EventMsg{Event: ev}); err != nil {
			c.logger.Debug("event channel closed", "error", err)
			return
		}
		if ev.Kind == domain.EventDisconnect {
			c.disconnected(io.EOF)
			return
		}
	}
}

func (c *Client) disconnected(err error) {
	c.mu.Lock()
	closing := c.closed
	c.mu.Unlock()

	if closing || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		err = nil
	}
	if err != nil {
		c.logger.Warn("connection lost", "addr", c.addr, "error", err)
		err = &domain.TransportError{Op: "read", Addr: c.addr, Err: err}
	} else {
		c.logger.Info("disconnected", "addr", c.addr)
	}
	_ = c.sender.Send(DisconnectedMsg{Err: err})
}

// Send writes cmd as one line
func (c *Client) Send(cmd domain.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	closed := c.closed
	c.mu.Unlock()
	if conn == nil || closed {
		return &domain.TransportError{Op: "send", Addr: c.addr, Err: domain.ErrDisconnected}
	}

	c.logger.Debug("sending command", "kind", cmd.Kind)
	if err := conn.WriteLine(cmd.String()); err != nil {
		return &domain.TransportError{Op: "send", Addr: c.addr, Err: err}
	}
	return nil
}

// SendInput sends what the user typed. "/file <path>" reads and encodes a
// local file, and the path may contain spaces. Everything else is parsed as a
// command or message.
func (c *Client) SendInput(input string) error {
	input = strings.TrimSpace(input)
	if input == "/file" || strings.HasPrefix(input, "/file ") {
		path := strings.TrimSpace(strings.TrimPrefix(input, "/file"))
		if path == "" {
			return &domain.ProtocolError{Op: "parse", Line: input, Err: fmt.Errorf("/file: %w", domain.ErrMissingArg)}
		}
		return c.SendFile(path)
	}

	cmd, err := domain.ParseCommand(input)
	if err != nil {
		return err
	}
	return c.Send(cmd)
}

// SendFile shares the file at path with the current room
func (c *Client) SendFile(path string) error {
	cmd, err := FileCommand(path)
	if err != nil {
		return err
	}
	c.logger.Info("sending file", "name", cmd.File.Name, "encoded", len(cmd.File.Contents))
	return c.Send(cmd)
}

// FileCommand reads path and builds the /file command for it
func FileCommand(path string) (domain.Command, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Command{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return domain.Command{}, fmt.Errorf("read %s: file is empty", path)
	}
	return domain.Command{
		Kind: domain.CommandFile,
		File: domain.FilePayload{
			Name:     wireName(filepath.Base(path)),
			Contents: content.Encode(raw),
		},
	}, nil
}

// wireName replaces whitespace in a file name, which the line protocol
// uses as its separator
func wireName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
}

// Close sends /quit when connected and closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	conn := c.conn
	c.closed = true
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.WriteLine(domain.Command{Kind: domain.CommandQuit}.String())
	return conn.Close()
}
