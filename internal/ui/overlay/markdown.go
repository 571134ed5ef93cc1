package overlay

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"github.com/riordanpawley/chatterm/internal/content"
	"github.com/riordanpawley/chatterm/internal/core/notify"
)

// MarkdownPreview shows a received text file rendered as markdown. Its
// fields never change after construction.
type MarkdownPreview struct {
	filename string
	source   string
	document string
	style    string
}

func (m *MarkdownPreview) kind() Kind { return KindMarkdownPreview }

// NewMarkdownPreview decodes file and builds a markdown popup. A payload that
// is not base64 or not UTF-8 returns the decode error and no popup.
func NewMarkdownPreview(sender notify.Sender, file ReceivedFile, opts Options) (*Popup, error) {
	native, err := opts.Decoder.Decode(content.KindMarkdown, file.Name, file.Contents)
	if err != nil {
		return nil, err
	}

	preview := &MarkdownPreview{
		filename: file.Name,
		source:   native.Text,
		document: native.Text,
		style:    opts.MarkdownStyle,
	}
	if opts.HighlightCode {
		preview.document = fenceSource(file.Name, native.Text)
	}
	return newPopup(sender, file.Name, preview), nil
}

// Filename returns the name the file was received under
func (m *MarkdownPreview) Filename() string {
	return m.filename
}

// Source returns the decoded text
func (m *MarkdownPreview) Source() string {
	return m.source
}

// Document returns the markdown handed to the renderer
func (m *MarkdownPreview) Document() string {
	return m.document
}

// Render renders the document wrapped at width columns
func (m *MarkdownPreview) Render(width int) (string, error) {
	// "auto" is resolved before the program starts. Never query the
	// terminal from here.
	style := m.style
	if style == "" || style == "auto" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(glamour.WithWordWrap(width), glamour.WithStandardStyle(style))
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(m.document)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", m.filename, err)
	}
	return out, nil
}

// fenceSource wraps recognised source files in a fenced code block tagged
// with the lexer name. Markdown and unrecognised files pass through.
func fenceSource(filename, text string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".md" || ext == ".markdown" {
		return text
	}
	lexer := lexers.Match(filepath.Base(filename))
	if lexer == nil {
		return text
	}
	cfg := lexer.Config()
	switch strings.ToLower(cfg.Name) {
	case "markdown", "plaintext":
		return text
	}
	lang := strings.ToLower(cfg.Name)
	if len(cfg.Aliases) > 0 {
		lang = cfg.Aliases[0]
	}

	fence := "```"
	for strings.Contains(text, fence) {
		fence += "`"
	}
	return fence + lang + "\n" + strings.TrimRight(text, "\n") + "\n" + fence + "\n"
}

// naturalSize measures rendered output: the widest visible line without
// trailing padding, and the line count without blank lines at either end.
// The trimmed lines are returned for drawing.
func naturalSize(rendered string) (lines []string, width, height int) {
	lines = strings.Split(rendered, "\n")

	blank := func(s string) bool {
		return strings.TrimSpace(ansi.Strip(s)) == ""
	}
	for len(lines) > 0 && blank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && blank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}

	for _, line := range lines {
		visible := strings.TrimRight(ansi.Strip(line), " ")
		width = max(width, ansi.StringWidth(visible))
	}
	return lines, width, len(lines)
}
