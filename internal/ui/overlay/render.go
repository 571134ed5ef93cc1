package overlay

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/riordanpawley/chatterm/internal/ui/canvas"
)

// Renderer draws the active popup onto a canvas
type Renderer struct {
	opts   Options
	styles *Styles
	logger *slog.Logger

	// Rendered markdown for the last popup/width pair drawn.
	mdID    string
	mdWidth int
	mdLines []string
	mdW     int
	mdH     int
}

// NewRenderer creates a renderer using opts for geometry and markdown style
func NewRenderer(opts Options, logger *slog.Logger) *Renderer {
	if opts.WidthPercent <= 0 {
		opts.WidthPercent = DefaultOptions().WidthPercent
	}
	if opts.HeightPercent <= 0 {
		opts.HeightPercent = DefaultOptions().HeightPercent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		opts:   opts,
		styles: New(),
		logger: logger,
	}
}

// Base returns the centred percentage rectangle for area
func (r *Renderer) Base(area canvas.Rect) canvas.Rect {
	return canvas.Centered(area, r.opts.WidthPercent, r.opts.HeightPercent)
}

// Rect returns where p will be drawn inside area. Markdown previews shrink to
// their content; every other variant uses the base rectangle.
func (r *Renderer) Rect(area canvas.Rect, p *Popup) canvas.Rect {
	rect, _ := r.layout(area, p)
	return rect
}

// layout computes the popup rectangle and, for markdown, the rendered lines.
// Markdown is wrapped to the base interior so shrinking never rewraps it.
func (r *Renderer) layout(area canvas.Rect, p *Popup) (canvas.Rect, []string) {
	base := r.Base(area)
	if md, ok := p.content.(*MarkdownPreview); ok {
		if lines, w, h, ok := r.markdown(p.id, md, base.Width-2*canvas.Border); ok {
			return canvas.FitContent(base, w, h), lines
		}
	}
	return base, nil
}

// Render clears the popup rectangle, draws the border and then the variant
// content one cell inside it.
func (r *Renderer) Render(c *canvas.Canvas, area canvas.Rect, p *Popup) canvas.Rect {
	rect, mdLines := r.layout(area, p)
	if rect.Empty() {
		return rect
	}

	c.Clear(rect)
	r.drawFrame(c, rect, p.title)

	inner := rect.Inset(canvas.Border)
	if inner.Empty() {
		return rect
	}
	c.Put(inner, r.body(p, inner, mdLines))
	return rect
}

func (r *Renderer) drawFrame(c *canvas.Canvas, rect canvas.Rect, title string) {
	if rect.Width < 2 || rect.Height < 2 {
		return
	}
	frame := r.styles.Frame.
		Width(rect.Width - 2).
		Height(rect.Height - 2).
		Render("")
	c.Put(rect, frame)

	// Title sits in the top border, two cells from the corner.
	room := rect.Width - 4
	if title == "" || room <= 2 {
		return
	}
	label := " " + title + " "
	if lipgloss.Width(label) > room {
		label = " " + runewidth.Truncate(title, room-2, "…") + " "
	}
	c.Put(canvas.Rect{X: rect.X + 2, Y: rect.Y, Width: lipgloss.Width(label), Height: 1}, r.styles.Title.Render(label))
}

func (r *Renderer) body(p *Popup, inner canvas.Rect, mdLines []string) string {
	switch c := p.content.(type) {
	case *Help:
		return c.View(inner.Width, inner.Height)

	case *FileBrowser:
		return c.View()

	case *ImagePreview:
		// Encoding may rescale and cache, so the protocol is used mutably here.
		return c.protocol.Encode(inner.Width, inner.Height)

	case *MarkdownPreview:
		if mdLines == nil {
			return r.styles.Error.Render("Could not render " + c.filename)
		}
		return strings.Join(mdLines, "\n")

	default:
		panic(fmt.Sprintf("overlay: unhandled content %T", c))
	}
}

// markdown renders md at wrap width, reusing the previous result when the
// popup and width are unchanged.
func (r *Renderer) markdown(id string, md *MarkdownPreview, width int) (lines []string, w, h int, ok bool) {
	if width <= 0 {
		return nil, 0, 0, false
	}
	if r.mdID == id && r.mdWidth == width && r.mdLines != nil {
		return r.mdLines, r.mdW, r.mdH, true
	}

	out, err := md.Render(width)
	if err != nil {
		r.logger.Warn("markdown render failed", "file", md.filename, "error", err)
		return nil, 0, 0, false
	}
	lines, w, h = naturalSize(out)
	if lines == nil {
		lines = []string{}
	}

	r.mdID, r.mdWidth = id, width
	r.mdLines, r.mdW, r.mdH = lines, w, h
	return lines, w, h, true
}
