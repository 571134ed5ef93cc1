// Package app contains the main application model and TEA implementation.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/chatterm/internal/config"
	"github.com/riordanpawley/chatterm/internal/content"
	"github.com/riordanpawley/chatterm/internal/core/notify"
	"github.com/riordanpawley/chatterm/internal/domain"
	"github.com/riordanpawley/chatterm/internal/services/chat"
	"github.com/riordanpawley/chatterm/internal/types"
	"github.com/riordanpawley/chatterm/internal/ui/messages"
	"github.com/riordanpawley/chatterm/internal/ui/overlay"
	"github.com/riordanpawley/chatterm/internal/ui/rooms"
	"github.com/riordanpawley/chatterm/internal/ui/styles"
)

// Re-export Mode type and constants for convenience
type Mode = types.Mode

const (
	ModeNormal = types.ModeNormal
	ModeInsert = types.ModeInsert
	ModePopup  = types.ModePopup
)

// Re-export Toast type and constants for convenience
type Toast = types.Toast
type ToastLevel = types.ToastLevel

const (
	ToastInfo    = types.ToastInfo
	ToastSuccess = types.ToastSuccess
	ToastWarning = types.ToastWarning
	ToastError   = types.ToastError
)

// toastTTL is how long a toast stays on screen
const toastTTL = 3 * time.Second

// ChatClient is the connection the model drives
type ChatClient interface {
	Addr() string
	Connect(ctx context.Context) error
	Send(cmd domain.Command) error
	SendInput(input string) error
	Close() error
}

// Model is the main application state
type Model struct {
	// Chat state
	client    ChatClient
	connected bool
	username  domain.Username
	messages  *messages.List
	rooms     *rooms.List

	// Input box
	input textarea.Model
	mode  Mode
	keys  keyMap

	// Popup slot, its renderer and the channel popups and the transport
	// post to.
	events    *notify.Channel
	slot      *overlay.Slot
	renderer  *overlay.Renderer
	popupOpts overlay.Options

	// Toasts
	toasts []Toast

	// Terminal size
	width  int
	height int

	// Styles
	styles *styles.Styles

	// Configuration
	config *config.Config

	// Connecting state
	spinner spinner.Model

	// err is the reason the program stopped, if it was not a clean exit
	err error

	copyText func(string) error
	now      func() time.Time

	// Logger
	logger *slog.Logger
}

// New creates the application model. client must post its events to events.
func New(cfg *config.Config, client ChatClient, events *notify.Channel, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	st := styles.New()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	input := textarea.New()
	input.Prompt = ""
	input.Placeholder = "Press i to type, /help for commands"
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetHeight(1)
	input.KeyMap.InsertNewline.SetEnabled(false)

	opts := overlay.Options{
		WidthPercent:  cfg.Popup.WidthPercent,
		HeightPercent: cfg.Popup.HeightPercent,
		MarkdownStyle: cfg.Preview.MarkdownStyle,
		HighlightCode: cfg.Preview.HighlightCode,
		ShowHidden:    cfg.Files.ShowHidden,
		Decoder:       content.NewDecoder(cfg.Preview.ImageSuffixes),
	}

	msgs := messages.New(st)
	username := domain.Username(cfg.Server.Username)
	msgs.SetSelf(username)

	return Model{
		client:    client,
		username:  username,
		messages:  msgs,
		rooms:     rooms.New(st),
		input:     input,
		mode:      ModeNormal,
		keys:      defaultKeyMap(),
		events:    events,
		slot:      overlay.NewSlot(),
		renderer:  overlay.NewRenderer(opts, logger),
		popupOpts: opts,
		styles:    st,
		config:    cfg,
		spinner:   s,
		copyText:  clipboard.WriteAll,
		now:       time.Now,
		logger:    logger,
	}
}

// Err returns why the program stopped, or nil after a clean exit
func (m Model) Err() error {
	return m.err
}

// Init starts the event loop, the connection and the toast ticker
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.events.Next(),
		m.connectCmd(),
		m.spinner.Tick,
		tickEvery(time.Second),
	)
}

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, m.slot.Update(msg)

	case spinner.TickMsg:
		if m.connected {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case connectedMsg:
		return m.handleConnected()

	case connectErrorMsg:
		m.logger.Error("connect failed", "addr", m.client.Addr(), "error", msg.err)
		m.err = msg.err
		return m, tea.Quit

	case tickMsg:
		m.toasts = types.PruneToasts(m.toasts, m.now())
		return m, tickEvery(time.Second)

	// Everything below arrives through the notify channel, so each case
	// re-arms the wait for the next event.
	case notify.Closed:
		if m.slot.HandleClosed(msg) {
			m.logger.Debug("popup closed", "id", msg.ID)
		}
		return m, m.events.Next()

	case chat.EventMsg:
		m.handleServerEvent(msg.Event)
		return m, m.events.Next()

	case chat.DisconnectedMsg:
		m.connected = false
		if msg.Err != nil {
			m.err = msg.Err
		}
		return m, tea.Quit
	}

	// Remaining messages (directory listings, cursor blinks) go to the popup
	// and the input box.
	var cmds []tea.Cmd
	cmds = append(cmds, m.slot.Update(msg))
	if m.mode == ModeInsert {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleConnected() (tea.Model, tea.Cmd) {
	m.connected = true
	m.addToast(ToastSuccess, "Connected to "+m.client.Addr())

	if m.username != "" {
		if err := m.client.Send(domain.Command{Kind: domain.CommandName, Arg: m.username.String()}); err != nil {
			m.logger.Warn("set username failed", "username", m.username, "error", err)
			m.addToast(ToastError, err.Error())
		}
	}
	return m, nil
}

// handleServerEvent records ev in the history and applies its side effects
func (m *Model) handleServerEvent(ev domain.ServerEvent) {
	m.messages.Append(messages.FromEvent(ev, m.now()))

	switch ev.Kind {
	case domain.EventHelp:
		m.setUsername(ev.Username)
	case domain.EventRoom:
		if ev.Room != nil {
			m.handleRoomEvent(ev.Username, *ev.Room)
		}
	case domain.EventRooms:
		m.rooms.SetRooms(ev.Rooms)
	case domain.EventUsers:
		m.rooms.SetUsers(ev.Users)
	case domain.EventRoomCreated:
		m.rooms.AddRoom(ev.RoomName)
	case domain.EventRoomDeleted:
		m.rooms.RemoveRoom(ev.RoomName)
	case domain.EventError:
		m.logger.Debug("server error", "text", ev.Text)
	case domain.EventDisconnect:
		m.logger.Info("server closed the session")
	}
}

func (m *Model) handleRoomEvent(from domain.Username, ev domain.RoomEvent) {
	switch ev.Kind {
	case domain.RoomEventJoined:
		if from == m.username {
			m.rooms.SetCurrent(ev.Room)
		}
		m.rooms.AddUser(from)
	case domain.RoomEventLeft:
		if from != m.username {
			m.rooms.RemoveUser(from)
		}
	case domain.RoomEventNameChange:
		m.rooms.RenameUser(from, ev.Username)
		if from == m.username {
			m.setUsername(ev.Username)
		}
	case domain.RoomEventNudge:
		if ev.Username == m.username {
			m.addToast(ToastWarning, from.String()+" nudged you")
		}
	case domain.RoomEventFile:
		if ev.File != nil {
			m.logger.Debug("file received", "from", from, "name", ev.File.Name, "encoded", len(ev.File.Contents))
		}
	case domain.RoomEventMessage:
	}
}

func (m *Model) setUsername(u domain.Username) {
	if u == "" || u == m.username {
		return
	}
	m.username = u
	m.messages.SetSelf(u)
}

// handleKey processes keyboard input based on current mode
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (work in any mode)
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m, m.quitCmd()
	case key.Matches(msg, m.keys.Redraw):
		return m, tea.ClearScreen
	}

	if !m.slot.IsEmpty() {
		return m.handlePopupKey(msg)
	}

	switch m.mode {
	case ModeInsert:
		return m.handleInsertMode(msg)
	default:
		return m.handleNormalMode(msg)
	}
}

// handlePopupKey routes a key to the popup and acts on what it asks for
func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, cmd := m.slot.HandleKey(msg)

	switch action.Kind {
	case overlay.ActionPreviewRequested:
		m.openPreview(action.File)
	case overlay.ActionError:
		m.logger.Warn("popup action failed", "error", action.Err)
		m.addToast(ToastError, action.Err.Error())
	case overlay.ActionNone:
	}
	return m, cmd
}

// handleNormalMode processes keyboard input in normal mode
func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quitCmd()

	case key.Matches(msg, m.keys.Insert):
		m.mode = ModeInsert
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Up):
		m.messages.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.messages.MoveDown()
	case key.Matches(msg, m.keys.Top):
		m.messages.Top()
	case key.Matches(msg, m.keys.Bottom):
		m.messages.Bottom()

	case key.Matches(msg, m.keys.Open):
		file, ok := m.messages.SelectedFile()
		if !ok {
			file, ok = m.messages.LastFile()
		}
		if !ok {
			m.addToast(ToastInfo, "No file to preview")
			return m, nil
		}
		m.openPreview(overlay.ReceivedFile{Name: file.Name, Contents: file.Contents})

	case key.Matches(msg, m.keys.Files):
		return m, m.openFileBrowser()

	case key.Matches(msg, m.keys.Help):
		m.slot.Set(overlay.NewHelp(m.events.Sender(), overlay.DefaultKeyCategories()))

	case key.Matches(msg, m.keys.Copy):
		e, ok := m.messages.Selected()
		if !ok {
			return m, nil
		}
		if err := m.copyText(messages.CopyText(e)); err != nil {
			m.logger.Warn("copy failed", "error", err)
			m.addToast(ToastError, fmt.Sprintf("Copy failed: %v", err))
			return m, nil
		}
		m.addToast(ToastSuccess, "Copied to clipboard")
	}
	return m, nil
}

// handleInsertMode sends on enter and passes other keys to the input box
func (m Model) handleInsertMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Leave):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Send):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		if err := m.client.SendInput(text); err != nil {
			m.logger.Warn("send failed", "error", err)
			m.addToast(ToastError, err.Error())
			return m, nil
		}
		m.input.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// openPreview replaces the active popup with a preview of file. A file that
// cannot be decoded leaves the slot as it was.
func (m *Model) openPreview(file overlay.ReceivedFile) {
	p, err := overlay.Open(m.events.Sender(), file, m.popupOpts)
	if err != nil {
		m.logger.Warn("preview failed", "file", file.Name, "error", err)
		m.addToast(ToastError, fmt.Sprintf("Cannot preview %s: %v", file.Name, err))
		return
	}
	m.slot.Set(p)
	m.logger.Debug("popup opened", "kind", p.Kind(), "id", p.ID())
}

// openFileBrowser shows the file browser and returns the commands that list
// its directory and size it
func (m *Model) openFileBrowser() tea.Cmd {
	p, cmd := overlay.NewFileBrowser(m.events.Sender(), m.config.Files.StartDir, m.popupOpts)
	m.slot.Set(p)
	return tea.Batch(cmd, m.slot.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height}))
}

// viewMode is the mode shown in the status bar
func (m Model) viewMode() Mode {
	if !m.slot.IsEmpty() {
		return ModePopup
	}
	return m.mode
}

// addToast adds a toast notification to the list
func (m *Model) addToast(level ToastLevel, message string) {
	m.toasts = types.PushToast(m.toasts, types.NewToast(level, message, m.now(), toastTTL))
}

// resize passes pane interiors to the components that lay out text
func (m *Model) resize() {
	l := computeLayout(m.width, m.height)
	inner := l.messages.Inset(1)
	m.messages.SetSize(inner.Width, inner.Height)
	m.input.SetWidth(max(l.input.Inset(1).Width, 1))
}

// Message types for async operations

type connectedMsg struct{}

type connectErrorMsg struct {
	err error
}

type tickMsg time.Time

// Commands

// connectCmd dials the server off the UI goroutine
func (m Model) connectCmd() tea.Cmd {
	client := m.client
	timeout := m.config.DialTimeout()
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := client.Connect(ctx); err != nil {
			return connectErrorMsg{err: err}
		}
		return connectedMsg{}
	}
}

// quitCmd says goodbye to the server and stops the program
func (m Model) quitCmd() tea.Cmd {
	client := m.client
	logger := m.logger
	return func() tea.Msg {
		if err := client.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
		return tea.QuitMsg{}
	}
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
