// Package overlay implements the modal popups drawn above the chat view.
//
// A Popup holds exactly one Content variant (help, file browser, image
// preview or markdown preview) and a Sender on the application's event
// channel. Popups never remove themselves: escape posts a notify.Closed and
// the owner of the Slot clears it when that notification arrives.
package overlay

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/riordanpawley/chatterm/internal/content"
	"github.com/riordanpawley/chatterm/internal/core/notify"
)

// Kind identifies a popup variant
type Kind int

const (
	KindHelp Kind = iota
	KindFileBrowser
	KindImagePreview
	KindMarkdownPreview
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindHelp:
		return "help"
	case KindFileBrowser:
		return "file browser"
	case KindImagePreview:
		return "image preview"
	case KindMarkdownPreview:
		return "markdown preview"
	default:
		return "unknown"
	}
}

// Content is the per-variant payload of a popup. The set of implementations
// is closed: Help, FileBrowser, ImagePreview and MarkdownPreview.
type Content interface {
	kind() Kind
}

// ReceivedFile is a file as it arrives from the chat transport
type ReceivedFile struct {
	Name     string
	Contents string // base64
}

// Options tunes popup construction and rendering
type Options struct {
	// WidthPercent and HeightPercent size the popup relative to the screen.
	WidthPercent  int
	HeightPercent int
	// MarkdownStyle is a glamour standard style name, or "auto".
	MarkdownStyle string
	// HighlightCode wraps source files in a fenced block so they are
	// syntax highlighted instead of rendered as prose.
	HighlightCode bool
	// ShowHidden lists dotfiles in the file browser.
	ShowHidden bool
	Decoder    *content.Decoder
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		WidthPercent:  80,
		HeightPercent: 80,
		MarkdownStyle: "dark",
		HighlightCode: true,
		Decoder:       content.NewDecoder(nil),
	}
}

// Popup is the single active overlay
type Popup struct {
	id      string
	title   string
	sender  notify.Sender
	content Content
}

func newPopup(sender notify.Sender, title string, c Content) *Popup {
	return &Popup{
		id:      uuid.NewString(),
		title:   title,
		sender:  sender,
		content: c,
	}
}

// ID uniquely identifies this popup instance
func (p *Popup) ID() string {
	return p.id
}

// Kind returns the variant held by the popup
func (p *Popup) Kind() Kind {
	return p.content.kind()
}

// Title is drawn in the popup's top border
func (p *Popup) Title() string {
	return p.title
}

// Content returns the variant payload
func (p *Popup) Content() Content {
	return p.content
}

// requestClose posts a Closed notification. Repeated calls post again; the
// owner ignores notifications for popups it no longer holds.
func (p *Popup) requestClose() {
	_ = p.sender.Send(notify.Closed{ID: p.id})
}

// release drops resources held by the variant once the popup leaves the slot
func (p *Popup) release() {
	switch c := p.content.(type) {
	case *ImagePreview:
		c.protocol.Release()
	case *Help, *FileBrowser, *MarkdownPreview:
	default:
		panic(fmt.Sprintf("overlay: unhandled content %T", c))
	}
}

// Open builds a preview popup for a received file. The decode path is chosen
// from the filename; decode failures return an error and no popup.
func Open(sender notify.Sender, file ReceivedFile, opts Options) (*Popup, error) {
	switch opts.Decoder.KindFor(file.Name) {
	case content.KindImage:
		return NewImagePreview(sender, file, opts)
	default:
		return NewMarkdownPreview(sender, file, opts)
	}
}
