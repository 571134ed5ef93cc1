// Package canvas is the frame buffer views are composited onto.
//
// A Canvas is a fixed grid of terminal cells stored as one styled string per
// row. Writes are ANSI-aware: existing cells left and right of a write keep
// their styling.
package canvas

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Rect is a cell rectangle anchored at its top-left corner
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the rectangle covers no cells
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Inset shrinks r by n cells on every side
func (r Rect) Inset(n int) Rect {
	out := Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// Contains reports whether o lies entirely inside r
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.Width <= r.X+r.Width &&
		o.Y+o.Height <= r.Y+r.Height
}

// Intersect returns the overlap of r and o
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.Width, o.X+o.Width)
	y1 := min(r.Y+r.Height, o.Y+o.Height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Centered returns a rectangle of percentX by percentY of area, centred on
// both axes. Percentages are clamped to 0..100.
func Centered(area Rect, percentX, percentY int) Rect {
	percentX = clamp(percentX, 0, 100)
	percentY = clamp(percentY, 0, 100)

	w := area.Width * percentX / 100
	h := area.Height * percentY / 100
	return Rect{
		X:      area.X + (area.Width-w)/2,
		Y:      area.Y + (area.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// Border is the cell padding a bordered frame adds on each side
const Border = 1

// FitContent shrinks base to the natural content size plus the border,
// keeping base's top-left corner. It never grows base. When the padded size
// is not representable as a 16-bit cell count the base is returned as is.
func FitContent(base Rect, contentWidth, contentHeight int) Rect {
	if contentWidth < 0 || contentHeight < 0 {
		return base
	}
	if contentWidth > math.MaxUint16-2*Border || contentHeight > math.MaxUint16-2*Border {
		return base
	}
	return Rect{
		X:      base.X,
		Y:      base.Y,
		Width:  min(base.Width, contentWidth+2*Border),
		Height: min(base.Height, contentHeight+2*Border),
	}
}

// Canvas is a width×height grid of cells
type Canvas struct {
	width  int
	height int
	rows   []string
}

// New creates a blank canvas
func New(width, height int) *Canvas {
	c := &Canvas{width: max(width, 0), height: max(height, 0)}
	c.rows = make([]string, c.height)
	blank := strings.Repeat(" ", c.width)
	for i := range c.rows {
		c.rows[i] = blank
	}
	return c
}

// FromString creates a canvas holding view, padded or cut to width×height
func FromString(view string, width, height int) *Canvas {
	c := New(width, height)
	c.Put(c.Bounds(), view)
	return c
}

// Bounds returns the rectangle covering the whole canvas
func (c *Canvas) Bounds() Rect {
	return Rect{Width: c.width, Height: c.height}
}

// Clear blanks every cell in r
func (c *Canvas) Clear(r Rect) {
	r = r.Intersect(c.Bounds())
	if r.Empty() {
		return
	}
	blank := strings.Repeat(" ", r.Width)
	for y := r.Y; y < r.Y+r.Height; y++ {
		c.rows[y] = c.splice(c.rows[y], r.X, r.Width, blank)
	}
}

// Put writes block into r row by row. Rows are cut or space-padded to r's
// width and rows beyond r's height are dropped.
func (c *Canvas) Put(r Rect, block string) {
	clip := r.Intersect(c.Bounds())
	if clip.Empty() {
		return
	}

	lines := strings.Split(block, "\n")
	for i := 0; i < r.Height; i++ {
		y := r.Y + i
		if y < clip.Y || y >= clip.Y+clip.Height {
			continue
		}
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		line = fit(line, r.Width)
		// Drop columns that fall off the left or right edge.
		if clip.X > r.X || clip.Width < r.Width {
			line = ansi.Cut(line, clip.X-r.X, clip.X-r.X+clip.Width)
		}
		c.rows[y] = c.splice(c.rows[y], clip.X, clip.Width, line)
	}
}

// Cell returns the visible content of a row segment with styling stripped
func (c *Canvas) Cell(x, y, width int) string {
	if y < 0 || y >= c.height {
		return ""
	}
	return ansi.Strip(ansi.Cut(c.rows[y], x, x+width))
}

// Row returns row y with styling stripped
func (c *Canvas) Row(y int) string {
	return c.Cell(0, y, c.width)
}

// String joins the rows into a view
func (c *Canvas) String() string {
	return strings.Join(c.rows, "\n")
}

// splice replaces width cells of row starting at column x. A wide rune cut
// by either edge of the write is replaced by a space on its surviving side.
func (c *Canvas) splice(row string, x, width int, segment string) string {
	left := ansi.Cut(row, 0, x)
	if pad := x - ansi.StringWidth(left); pad > 0 {
		left += strings.Repeat(" ", pad)
	}

	right := ansi.Cut(row, x+width, c.width)
	want := max(c.width-x-width, 0)
	if excess := ansi.StringWidth(right) - want; excess > 0 {
		// TruncateLeft keeps a cluster that straddles the cut, so drop it.
		right = strings.Repeat(" ", max(wideCell-excess, 0)) + ansi.TruncateLeft(right, wideCell, "")
	}
	return left + segment + right
}

// wideCell is the width of the widest terminal cluster
const wideCell = 2

// fit cuts or pads s to exactly width cells
func fit(s string, width int) string {
	w := ansi.StringWidth(s)
	switch {
	case w > width:
		// A wide rune straddling the edge is dropped, so pad back out.
		s = ansi.Cut(s, 0, width)
		return s + strings.Repeat(" ", max(width-ansi.StringWidth(s), 0))
	case w < width:
		return s + strings.Repeat(" ", width-w)
	default:
		return s
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
