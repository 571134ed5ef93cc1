package chat

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/riordanpawley/chatterm/internal/content"
	"github.com/riordanpawley/chatterm/internal/core/notify"
	"github.com/riordanpawley/chatterm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch *notify.Channel) notify.Event {
	t.Helper()
	got := make(chan notify.Event, 1)
	go func() {
		ev, _ := ch.Recv()
		got <- ev
	}()
	select {
	case ev := <-got:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

// lineServer accepts one TCP connection, writes greeting lines and forwards
// every line the client sends to lines.
func lineServer(t *testing.T, greeting ...string) (addr string, lines <-chan string, conns <-chan net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	out := make(chan string, 16)
	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		accepted <- conn
		for _, g := range greeting {
			conn.Write([]byte(g + "\n"))
		}
		sc := bufio.NewScanner(conn)
		sc.Buffer(make([]byte, 64*1024), 1<<20)
		for sc.Scan() {
			out <- sc.Text()
		}
		close(out)
	}()
	return ln.Addr().String(), out, accepted
}

func nextLine(t *testing.T, lines <-chan string) string {
	t.Helper()
	select {
	case l := <-lines:
		return l
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for line")
		return ""
	}
}

func TestClientReceivesEventsOverTCP(t *testing.T) {
	addr, lines, conns := lineServer(t,
		`{"Help":["swift-otter","Commands: /help"]}`,
		`garbage that is not json`,
		`{"RoomEvent":["bob",{"File":["cat.png","aGk="]}]}`,
	)
	ch := notify.New()
	client := NewClient(TCPDialer{Timeout: time.Second}, addr, ch.Sender(), slog.Default())
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	ev := recv(t, ch).(EventMsg)
	assert.Equal(t, domain.Help("swift-otter", "Commands: /help"), ev.Event)

	// The malformed line is dropped; the file arrives next.
	ev = recv(t, ch).(EventMsg)
	require.Equal(t, domain.EventRoom, ev.Event.Kind)
	assert.Equal(t, &domain.FilePayload{Name: "cat.png", Contents: "aGk="}, ev.Event.Room.File)

	require.NoError(t, client.Send(domain.Command{Kind: domain.CommandJoin, Arg: "music"}))
	assert.Equal(t, "/join music", nextLine(t, lines))

	conn := <-conns
	conn.Write([]byte(`"Disconnect"` + "\n"))

	ev = recv(t, ch).(EventMsg)
	assert.Equal(t, domain.EventDisconnect, ev.Event.Kind)
	assert.Equal(t, DisconnectedMsg{}, recv(t, ch))

	select {
	case <-client.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("reader did not stop")
	}
}

func TestClientReportsServerClose(t *testing.T) {
	addr, _, conns := lineServer(t)
	ch := notify.New()
	client := NewClient(TCPDialer{}, addr, ch.Sender(), nil)
	require.NoError(t, client.Connect(context.Background()))

	(<-conns).Close()

	assert.Equal(t, DisconnectedMsg{}, recv(t, ch))
}

func TestClientSendInput(t *testing.T) {
	addr, lines, _ := lineServer(t)
	ch := notify.New()
	client := NewClient(TCPDialer{}, addr, ch.Sender(), nil)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	require.NoError(t, client.SendInput("  hello everyone  "))
	assert.Equal(t, "hello everyone", nextLine(t, lines))

	require.NoError(t, client.SendInput("/nudge bob"))
	assert.Equal(t, "/nudge bob", nextLine(t, lines))

	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes"), 0o644))
	require.NoError(t, client.SendInput("/file "+path))
	assert.Equal(t, "/file notes.md "+content.Encode([]byte("# Notes")), nextLine(t, lines))

	assert.ErrorIs(t, client.SendInput("/bogus"), domain.ErrUnknownCommand)
	assert.ErrorIs(t, client.SendInput("/join"), domain.ErrMissingArg)
}

func TestClientSendInputFilePaths(t *testing.T) {
	addr, lines, _ := lineServer(t)
	ch := notify.New()
	client := NewClient(TCPDialer{}, addr, ch.Sender(), nil)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	dir := filepath.Join(t.TempDir(), "my docs")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "my notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes"), 0o644))

	require.NoError(t, client.SendInput("/file "+path))
	assert.Equal(t, "/file my_notes.md "+content.Encode([]byte("# Notes")), nextLine(t, lines))

	// A name and contents typed by hand is read as a path, never sent raw.
	err := client.SendInput("/file " + dir + " bm90ZXM=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read ")

	assert.ErrorIs(t, client.SendInput("/file"), domain.ErrMissingArg)
	assert.ErrorIs(t, client.SendInput("/file   "), domain.ErrMissingArg)

	require.NoError(t, client.SendInput("/users"))
	assert.Equal(t, "/users", nextLine(t, lines), "nothing else reached the server")
}

func TestClientCloseSendsQuit(t *testing.T) {
	addr, lines, _ := lineServer(t)
	ch := notify.New()
	client := NewClient(TCPDialer{}, addr, ch.Sender(), nil)
	require.NoError(t, client.Connect(context.Background()))

	require.NoError(t, client.Close())
	assert.Equal(t, "/quit", nextLine(t, lines))
	assert.NoError(t, client.Close(), "second close is a no-op")

	assert.Equal(t, DisconnectedMsg{}, recv(t, ch))
	assert.ErrorIs(t, client.Send(domain.Command{Kind: domain.CommandUsers}), domain.ErrDisconnected)
}

func TestClientSendBeforeConnect(t *testing.T) {
	client := NewClient(TCPDialer{}, "127.0.0.1:1", notify.Sender{}, nil)

	err := client.Send(domain.Command{Kind: domain.CommandRooms})
	assert.ErrorIs(t, err, domain.ErrDisconnected)

	var terr *domain.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "send", terr.Op)
}

func TestClientDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	client := NewClient(TCPDialer{Timeout: time.Second}, addr, notify.Sender{}, nil)
	err = client.Connect(context.Background())

	var terr *domain.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "dial", terr.Op)
	assert.Equal(t, addr, terr.Addr)
}

func TestClientOverWebSocket(t *testing.T) {
	lines := make(chan string, 4)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`{"RoomEvent":["al",{"Message":"hi"}]}`))
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			lines <- string(data)
		}
	}))
	defer srv.Close()

	ch := notify.New()
	addr := strings.TrimPrefix(srv.URL, "http://")
	client := NewClient(WebSocketDialer{Path: "/chat"}, addr, ch.Sender(), nil)
	require.NoError(t, client.Connect(context.Background()))

	ev := recv(t, ch).(EventMsg)
	assert.Equal(t, domain.InRoom("al", domain.Message("hi")), ev.Event)

	require.NoError(t, client.Send(domain.Command{Kind: domain.CommandUsers}))
	assert.Equal(t, "/users", nextLine(t, lines))

	require.NoError(t, client.Close())
	assert.Equal(t, DisconnectedMsg{}, recv(t, ch))
}

func TestNewDialer(t *testing.T) {
	d, err := NewDialer("", "", time.Second)
	require.NoError(t, err)
	assert.Equal(t, TCPDialer{Timeout: time.Second}, d)

	d, err = NewDialer("websocket", "/ws", 0)
	require.NoError(t, err)
	assert.Equal(t, WebSocketDialer{Path: "/ws"}, d)

	_, err = NewDialer("carrier-pigeon", "", 0)
	assert.Error(t, err)
}

func TestFileCommand(t *testing.T) {
	dir := t.TempDir()

	_, err := FileCommand(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = FileCommand(empty)
	assert.Error(t, err)

	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))
	cmd, err := FileCommand(path)
	require.NoError(t, err)
	assert.Equal(t, domain.CommandFile, cmd.Kind)
	assert.Equal(t, "a.txt", cmd.File.Name)
	assert.Equal(t, content.Encode([]byte("abc")), cmd.File.Contents)
}

func TestAddr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:42069", Addr(domain.DefaultHost, domain.DefaultPort))
	assert.Equal(t, "[::1]:80", Addr("::1", 80))
}
