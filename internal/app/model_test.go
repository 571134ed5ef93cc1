package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/riordanpawley/chatterm/internal/config"
	"github.com/riordanpawley/chatterm/internal/content"
	"github.com/riordanpawley/chatterm/internal/core/notify"
	"github.com/riordanpawley/chatterm/internal/domain"
	"github.com/riordanpawley/chatterm/internal/services/chat"
	"github.com/riordanpawley/chatterm/internal/ui/overlay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	sent       []domain.Command
	inputs     []string
	sendErr    error
	connectErr error
	closed     bool
}

func (c *fakeClient) Addr() string                      { return "127.0.0.1:42069" }
func (c *fakeClient) Connect(ctx context.Context) error { return c.connectErr }
func (c *fakeClient) Close() error                      { c.closed = true; return nil }

func (c *fakeClient) Send(cmd domain.Command) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, cmd)
	return nil
}

func (c *fakeClient) SendInput(input string) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.inputs = append(c.inputs, input)
	return nil
}

var epoch = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// newTestModel returns a connected 80x24 model
func newTestModel(t *testing.T) (Model, *fakeClient, *notify.Channel) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Files.StartDir = t.TempDir()

	client := &fakeClient{}
	events := notify.New()
	t.Cleanup(events.Close)

	m := New(cfg, client, events, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.now = func() time.Time { return epoch }
	m.copyText = func(string) error { return nil }

	m = update(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = update(m, connectedMsg{})
	m.toasts = nil
	return m, client, events
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func event(ev domain.ServerEvent) chat.EventMsg {
	return chat.EventMsg{Event: ev}
}

func pngPayload(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return content.Encode(buf.Bytes())
}

func TestConnectedSendsConfiguredName(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Username = "al"
	client := &fakeClient{}
	m := New(cfg, client, notify.New(), nil)

	m = update(m, connectedMsg{})

	assert.True(t, m.connected)
	assert.Equal(t, []domain.Command{{Kind: domain.CommandName, Arg: "al"}}, client.sent)
	require.Len(t, m.toasts, 1)
	assert.Equal(t, ToastSuccess, m.toasts[0].Level)
}

func TestConnectCmd(t *testing.T) {
	m, client, _ := newTestModel(t)
	assert.Equal(t, connectedMsg{}, m.connectCmd()())

	client.connectErr = errors.New("refused")
	assert.Equal(t, connectErrorMsg{err: client.connectErr}, m.connectCmd()())
}

func TestConnectErrorQuits(t *testing.T) {
	m := New(config.DefaultConfig(), &fakeClient{}, notify.New(), nil)
	boom := errors.New("refused")

	next, cmd := m.Update(connectErrorMsg{err: boom})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, boom, next.(Model).Err())
}

func TestServerEventsUpdateState(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = update(m, event(domain.Help("swift-otter", "Commands: /help")))
	assert.Equal(t, domain.Username("swift-otter"), m.username)

	m = update(m, event(domain.InRoom("swift-otter", domain.RoomEvent{Kind: domain.RoomEventJoined, Room: "go"})))
	assert.Equal(t, domain.RoomName("go"), m.rooms.Current())
	assert.Equal(t, []domain.Username{"swift-otter"}, m.rooms.Users())

	m = update(m, event(domain.InRoom("bob", domain.RoomEvent{Kind: domain.RoomEventJoined, Room: "go"})))
	assert.Equal(t, []domain.Username{"swift-otter", "bob"}, m.rooms.Users())

	m = update(m, event(domain.InRoom("bob", domain.RoomEvent{Kind: domain.RoomEventNameChange, Username: "rob"})))
	assert.Equal(t, []domain.Username{"swift-otter", "rob"}, m.rooms.Users())

	m = update(m, event(domain.InRoom("rob", domain.RoomEvent{Kind: domain.RoomEventLeft, Room: "go"})))
	assert.Equal(t, []domain.Username{"swift-otter"}, m.rooms.Users())

	m = update(m, event(domain.InRoom("swift-otter", domain.RoomEvent{Kind: domain.RoomEventNameChange, Username: "al"})))
	assert.Equal(t, domain.Username("al"), m.username)
	assert.Equal(t, []domain.Username{"al"}, m.rooms.Users())

	m = update(m, event(domain.ServerEvent{Kind: domain.EventRooms, Rooms: []domain.RoomName{"lobby", "go", "music"}}))
	assert.Equal(t, []domain.RoomName{"lobby", "go", "music"}, m.rooms.Rooms())

	m = update(m, event(domain.ServerEvent{Kind: domain.EventRoomDeleted, RoomName: "music"}))
	m = update(m, event(domain.ServerEvent{Kind: domain.EventRoomCreated, RoomName: "zig"}))
	assert.Equal(t, []domain.RoomName{"lobby", "go", "zig"}, m.rooms.Rooms())

	m = update(m, event(domain.ServerEvent{Kind: domain.EventUsers, Users: []domain.Username{"al", "eve"}}))
	assert.Equal(t, []domain.Username{"al", "eve"}, m.rooms.Users())

	assert.Equal(t, 10, m.messages.Len(), "every event is recorded")
}

func TestEventsRearmTheChannel(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, cmd := m.Update(event(domain.Help("me", "hi")))
	assert.NotNil(t, cmd)

	_, cmd = m.Update(notify.Closed{ID: "nothing"})
	assert.NotNil(t, cmd)
}

func TestNudgeAddressedToUsRaisesToast(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = update(m, event(domain.Help("me", "hi")))

	m = update(m, event(domain.InRoom("bob", domain.RoomEvent{Kind: domain.RoomEventNudge, Username: "eve"})))
	assert.Empty(t, m.toasts)

	m = update(m, event(domain.InRoom("bob", domain.RoomEvent{Kind: domain.RoomEventNudge, Username: "me"})))
	require.Len(t, m.toasts, 1)
	assert.Equal(t, ToastWarning, m.toasts[0].Level)
	assert.Equal(t, "bob nudged you", m.toasts[0].Message)

	// Repeated nudges fold into the same toast
	m = update(m, event(domain.InRoom("bob", domain.RoomEvent{Kind: domain.RoomEventNudge, Username: "me"})))
	require.Len(t, m.toasts, 1)
	assert.Equal(t, 2, m.toasts[0].Count)
}

func TestDisconnectQuits(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, cmd := m.Update(chat.DisconnectedMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.NoError(t, next.(Model).Err())

	lost := &domain.TransportError{Op: "read", Addr: "x", Err: io.ErrUnexpectedEOF}
	next, _ = m.Update(chat.DisconnectedMsg{Err: lost})
	assert.ErrorIs(t, next.(Model).Err(), io.ErrUnexpectedEOF)
}

func TestHelpPopupClosesThroughChannel(t *testing.T) {
	m, _, events := newTestModel(t)

	m = update(m, runes("?"))
	require.False(t, m.slot.IsEmpty())
	assert.Equal(t, overlay.KindHelp, m.slot.Current().Kind())

	// Keys go to the popup, not the message list
	m = update(m, runes("q"))
	assert.False(t, m.slot.IsEmpty())

	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.slot.IsEmpty(), "closing waits for the notification")

	ev, ok := events.TryRecv()
	require.True(t, ok)
	m = update(m, ev)
	assert.True(t, m.slot.IsEmpty())
}

func TestOpenFilePreview(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.slot.IsEmpty())
	require.Len(t, m.toasts, 1)
	assert.Equal(t, "No file to preview", m.toasts[0].Message)

	m = update(m, event(domain.InRoom("bob", domain.File("notes.md", content.Encode([]byte("# Notes"))))))
	m = update(m, event(domain.InRoom("bob", domain.File("cat.PNG", pngPayload(t)))))
	m = update(m, event(domain.InRoom("bob", domain.Message("look"))))

	// Nothing selected: the newest file opens
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.slot.IsEmpty())
	assert.Equal(t, overlay.KindImagePreview, m.slot.Current().Kind())
}

func TestOpenSelectedFile(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = update(m, event(domain.InRoom("bob", domain.File("notes.md", content.Encode([]byte("# Notes"))))))
	m = update(m, event(domain.InRoom("bob", domain.File("cat.png", pngPayload(t)))))

	m = update(m, runes("k"))
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	require.False(t, m.slot.IsEmpty())
	assert.Equal(t, overlay.KindMarkdownPreview, m.slot.Current().Kind())
	assert.Equal(t, "notes.md", m.slot.Current().Title())
}

func TestDecodeFailureLeavesSlotUnchanged(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = update(m, runes("?"))
	help := m.slot.Current()

	m.openPreview(overlay.ReceivedFile{Name: "broken.png", Contents: "@@not base64@@"})
	m.openPreview(overlay.ReceivedFile{Name: "blob.bin", Contents: content.Encode([]byte{0xff, 0xfe, 0x00})})

	assert.Same(t, help, m.slot.Current())
	require.Len(t, m.toasts, 2)
	assert.Equal(t, ToastError, m.toasts[0].Level)
	assert.Contains(t, m.toasts[0].Message, "broken.png")
}

func TestReplacedPopupCloseIsIgnored(t *testing.T) {
	m, _, events := newTestModel(t)
	m = update(m, runes("?"))
	help := m.slot.Current()

	m.openPreview(overlay.ReceivedFile{Name: "a.md", Contents: content.Encode([]byte("hello"))})
	preview := m.slot.Current()
	require.NotSame(t, help, preview)

	m = update(m, notify.Closed{ID: help.ID()})
	assert.Same(t, preview, m.slot.Current())

	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	ev, ok := events.TryRecv()
	require.True(t, ok)
	m = update(m, ev)
	m = update(m, ev)
	assert.True(t, m.slot.IsEmpty())
}

func TestFileBrowserOpens(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, cmd := m.Update(runes("f"))
	m = next.(Model)

	require.False(t, m.slot.IsEmpty())
	assert.Equal(t, overlay.KindFileBrowser, m.slot.Current().Kind())
	assert.NotNil(t, cmd, "directory listing is requested")
	assert.Equal(t, ModePopup, m.viewMode())
}

func TestInsertModeSends(t *testing.T) {
	m, client, _ := newTestModel(t)

	m = update(m, runes("i"))
	assert.Equal(t, ModeInsert, m.mode)

	m = update(m, runes("hello"))
	assert.Equal(t, "hello", m.input.Value())

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"hello"}, client.inputs)
	assert.Empty(t, m.input.Value())

	// Blank input is not sent
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Len(t, client.inputs, 1)

	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeNormal, m.mode)
}

func TestSendErrorKeepsInput(t *testing.T) {
	m, client, _ := newTestModel(t)
	client.sendErr = domain.ErrUnknownCommand

	m = update(m, runes("i"))
	m = update(m, runes("/bogus"))
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "/bogus", m.input.Value())
	require.Len(t, m.toasts, 1)
	assert.Equal(t, ToastError, m.toasts[0].Level)
}

func TestNavigationAndCopy(t *testing.T) {
	m, _, _ := newTestModel(t)
	var copied string
	m.copyText = func(s string) error { copied = s; return nil }

	for _, text := range []string{"one", "two", "three"} {
		m = update(m, event(domain.InRoom("bob", domain.Message(text))))
	}

	m = update(m, runes("g"))
	assert.Equal(t, 0, m.messages.Cursor())
	m = update(m, runes("j"))
	m = update(m, runes("y"))
	assert.Equal(t, "two", copied)

	m = update(m, runes("G"))
	assert.Equal(t, 2, m.messages.Cursor())

	m.copyText = func(string) error { return errors.New("no clipboard") }
	m.toasts = nil
	m = update(m, runes("y"))
	require.Len(t, m.toasts, 1)
	assert.Equal(t, ToastError, m.toasts[0].Level)
}

func TestQuitClosesClient(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		m, client, _ := newTestModel(t)

		_, cmd := m.Update(k)
		require.NotNil(t, cmd, k.String())
		assert.Equal(t, tea.QuitMsg{}, cmd())
		assert.True(t, client.closed)
	}
}

func TestTickPrunesToasts(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.addToast(ToastInfo, "hello")

	m = update(m, tickMsg(epoch))
	assert.Len(t, m.toasts, 1)

	m.now = func() time.Time { return epoch.Add(toastTTL) }
	m = update(m, tickMsg(epoch))
	assert.Empty(t, m.toasts)
}
