package overlay

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/riordanpawley/chatterm/internal/content"
	"github.com/riordanpawley/chatterm/internal/core/notify"
	"github.com/riordanpawley/chatterm/internal/ui/canvas"
)

// filepicker subtracts this many rows from the height of a WindowSizeMsg
// when AutoHeight is set.
const pickerMarginBottom = 5

// FileBrowser lets the user pick a local file to preview
type FileBrowser struct {
	picker        filepicker.Model
	widthPercent  int
	heightPercent int
}

func (f *FileBrowser) kind() Kind { return KindFileBrowser }

// NewFileBrowser creates a file browser rooted at dir. The returned command
// reads the first directory listing and must be run by the caller.
func NewFileBrowser(sender notify.Sender, dir string, opts Options) (*Popup, tea.Cmd) {
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	picker := filepicker.New()
	picker.CurrentDirectory = dir
	picker.ShowHidden = opts.ShowHidden
	picker.ShowPermissions = false
	picker.AutoHeight = true

	browser := &FileBrowser{
		picker:        picker,
		widthPercent:  opts.WidthPercent,
		heightPercent: opts.HeightPercent,
	}
	return newPopup(sender, "Files", browser), browser.picker.Init()
}

// Dir returns the directory currently listed
func (f *FileBrowser) Dir() string {
	return f.picker.CurrentDirectory
}

// View renders the directory line above the picker
func (f *FileBrowser) View() string {
	return New().Path.Render(f.picker.CurrentDirectory) + "\n" + f.picker.View()
}

func (f *FileBrowser) update(msg tea.Msg) tea.Cmd {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		// Size the list to the popup interior, less the directory line.
		inner := canvas.Centered(canvas.Rect{Width: size.Width, Height: size.Height}, f.widthPercent, f.heightPercent).Inset(canvas.Border)
		msg = tea.WindowSizeMsg{Width: inner.Width, Height: max(inner.Height-1, 1) + pickerMarginBottom}
	}

	var cmd tea.Cmd
	f.picker, cmd = f.picker.Update(msg)
	return cmd
}

func (f *FileBrowser) handleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	var cmd tea.Cmd
	f.picker, cmd = f.picker.Update(msg)

	if didSelect, path := f.picker.DidSelectFile(msg); didSelect {
		return selectFile(path), cmd
	}
	return Action{}, cmd
}

// selectFile reads path into the same shape a received file has, so the
// application opens local and remote files the same way.
func selectFile(path string) Action {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Action{Kind: ActionError, Err: fmt.Errorf("read %s: %w", path, err)}
	}
	return Action{
		Kind: ActionPreviewRequested,
		File: ReceivedFile{
			Name:     filepath.Base(path),
			Contents: content.Encode(raw),
		},
	}
}
