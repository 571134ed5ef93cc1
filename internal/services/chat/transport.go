package chat

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is a line-oriented connection to the server
type Conn interface {
	// ReadLine blocks for the next line, without its terminator
	ReadLine() ([]byte, error)
	WriteLine(line string) error
	Close() error
}

// Dialer opens a Conn to addr (host:port)
type Dialer interface {
	Dial(ctx context.Context, addr string) (Conn, error)
}

// TCPDialer connects over plain TCP with newline-delimited lines
type TCPDialer struct {
	Timeout time.Duration
}

// Dial connects to addr, applying Timeout when ctx has no deadline
func (d TCPDialer) Dial(ctx context.Context, addr string) (Conn, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return &tcpConn{conn: conn, r: bufio.NewReader(conn)}, nil
}

type tcpConn struct {
	conn net.Conn
	r    *bufio.Reader
	mu   sync.Mutex
}

func (c *tcpConn) ReadLine() ([]byte, error) {
	line, err := c.r.ReadBytes('\n')
	if err != nil {
		// A final line without terminator is still delivered.
		if len(bytes.TrimSpace(line)) > 0 {
			return bytes.TrimRight(line, "\r\n"), nil
		}
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

func (c *tcpConn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

// WebSocketDialer connects to ws://addr/Path; each text message is one line
type WebSocketDialer struct {
	Path    string
	Timeout time.Duration
}

// Dial performs the websocket handshake
func (d WebSocketDialer) Dial(ctx context.Context, addr string) (Conn, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: d.Path}
	if u.Path == "" {
		u.Path = "/"
	}

	dialer := *websocket.DefaultDialer
	if d.Timeout > 0 {
		dialer.HandshakeTimeout = d.Timeout
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", u.String(), err)
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) ReadLine() ([]byte, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		if kind == websocket.TextMessage || kind == websocket.BinaryMessage {
			return bytes.TrimRight(data, "\r\n"), nil
		}
	}
}

func (c *wsConn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.mu.Unlock()
	return c.conn.Close()
}

// NewDialer returns the dialer for a transport name: "tcp" (or empty) or
// "websocket".
func NewDialer(transport, path string, timeout time.Duration) (Dialer, error) {
	switch transport {
	case "", "tcp":
		return TCPDialer{Timeout: timeout}, nil
	case "websocket", "ws":
		return WebSocketDialer{Path: path, Timeout: timeout}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}
