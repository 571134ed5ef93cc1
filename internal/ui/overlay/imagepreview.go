package overlay

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/chatterm/internal/content"
	"github.com/riordanpawley/chatterm/internal/core/notify"
	"golang.org/x/image/draw"
)

// ImagePreview shows a received image
type ImagePreview struct {
	filename string
	format   string
	protocol *ImageProtocol
}

func (i *ImagePreview) kind() Kind { return KindImagePreview }

// NewImagePreview decodes file and builds an image popup. A payload that is
// not base64 or not a supported image returns the decode error and no popup.
func NewImagePreview(sender notify.Sender, file ReceivedFile, opts Options) (*Popup, error) {
	native, err := opts.Decoder.Decode(content.KindImage, file.Name, file.Contents)
	if err != nil {
		return nil, err
	}

	preview := &ImagePreview{
		filename: file.Name,
		format:   native.Format,
		protocol: NewImageProtocol(native.Image),
	}
	title := fmt.Sprintf("%s (%s)", file.Name, native.Format)
	return newPopup(sender, title, preview), nil
}

// Filename returns the name the image was received under
func (i *ImagePreview) Filename() string {
	return i.filename
}

// Protocol returns the encoder drawing the image
func (i *ImagePreview) Protocol() *ImageProtocol {
	return i.protocol
}

// ImageProtocol encodes an image as terminal cells using upper half blocks:
// each cell shows two vertical pixels, the top as foreground and the bottom
// as background. The last encoding is kept and reused until the size changes.
type ImageProtocol struct {
	src image.Image

	cacheWidth  int
	cacheHeight int
	cached      string
	encodes     int
	released    bool
}

// NewImageProtocol wraps a decoded image. Nothing is scaled until Encode.
func NewImageProtocol(src image.Image) *ImageProtocol {
	return &ImageProtocol{src: src}
}

// Encode returns the image scaled to fit width×height cells, centred
func (p *ImageProtocol) Encode(width, height int) string {
	if p.released || p.src == nil || width <= 0 || height <= 0 {
		return ""
	}
	if p.cached != "" && p.cacheWidth == width && p.cacheHeight == height {
		return p.cached
	}

	p.cached = p.encode(width, height)
	p.cacheWidth = width
	p.cacheHeight = height
	p.encodes++
	return p.cached
}

// Encodes counts how many times the image was rescaled
func (p *ImageProtocol) Encodes() int {
	return p.encodes
}

// Released reports whether Release has been called
func (p *ImageProtocol) Released() bool {
	return p.released
}

// Release drops the decoded image and cached encoding
func (p *ImageProtocol) Release() {
	p.src = nil
	p.cached = ""
	p.cacheWidth, p.cacheHeight = 0, 0
	p.released = true
}

func (p *ImageProtocol) encode(width, height int) string {
	b := p.src.Bounds()
	if b.Empty() {
		return ""
	}

	// Pixel box available: width columns, two pixels per row.
	maxW, maxH := width, height*2
	w, h := b.Dx(), b.Dy()
	if w*maxH > h*maxW {
		h = max(1, h*maxW/w)
		w = maxW
	} else {
		w = max(1, w*maxH/h)
		h = maxH
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), p.src, b, draw.Src, nil)

	rows := (h + 1) / 2
	padLeft := strings.Repeat(" ", (width-w)/2)
	padTop := (height - rows) / 2

	var sb strings.Builder
	for i := 0; i < padTop; i++ {
		sb.WriteString("\n")
	}
	for row := 0; row < rows; row++ {
		if row > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(padLeft)
		for x := 0; x < w; x++ {
			top := dst.RGBAAt(x, row*2)
			style := lipgloss.NewStyle().Foreground(hexColor(top))
			if row*2+1 < h {
				style = style.Background(hexColor(dst.RGBAAt(x, row*2+1)))
			}
			sb.WriteString(style.Render("▀"))
		}
	}
	return sb.String()
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
