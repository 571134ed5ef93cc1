// Package content turns transport payloads into the native form a preview needs.
//
// Files travel over the chat protocol as base64 text because the line-based
// transport cannot carry raw bytes. Decoding is pure: it never touches the UI
// and a failure leaves nothing half-built behind.
package content

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"unicode/utf8"

	// Decoders register themselves with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Kind selects which decode path a payload takes.
type Kind int

const (
	KindMarkdown Kind = iota
	KindImage
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindMarkdown:
		return "markdown"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// MaxImagePixels caps the declared size of an image before its pixels are
// decoded. A preview is downscaled to the terminal anyway.
const MaxImagePixels = 40_000_000

// Sentinel errors
var (
	ErrEncoding    = errors.New("payload is not valid base64")
	ErrInvalidText = errors.New("decoded bytes are not valid UTF-8")
	ErrImageFormat = errors.New("decoded bytes are not a supported image")
)

// DecodeError reports which payload failed and why
type DecodeError struct {
	Kind     Kind
	Filename string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("decode %s [%s]: %v", e.Kind, e.Filename, e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DefaultImageSuffixes is the suffix set used when none is configured
var DefaultImageSuffixes = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tif", ".tiff"}

// Native is the decoded form of a payload. Exactly one field is set,
// matching Kind.
type Native struct {
	Kind  Kind
	Text  string
	Image image.Image
	// Format is the image format name reported by image.Decode.
	Format string
}

// Decoder holds the dispatch policy. The zero value uses DefaultImageSuffixes.
type Decoder struct {
	imageSuffixes []string
}

// NewDecoder creates a decoder that treats the given suffixes as images.
// Suffixes are compared case-insensitively; a missing leading dot is added.
func NewDecoder(imageSuffixes []string) *Decoder {
	d := &Decoder{}
	for _, s := range imageSuffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		d.imageSuffixes = append(d.imageSuffixes, s)
	}
	return d
}

func (d *Decoder) suffixes() []string {
	if d == nil || len(d.imageSuffixes) == 0 {
		return DefaultImageSuffixes
	}
	return d.imageSuffixes
}

// KindFor picks the decode path from the declared filename alone. Names with
// an image suffix go to the image path; everything else, including names with
// no extension at all, goes to markdown. Binaries that are neither therefore
// fail later with ErrInvalidText.
func (d *Decoder) KindFor(filename string) Kind {
	name := strings.ToLower(filepath.Base(filename))
	for _, suffix := range d.suffixes() {
		if strings.HasSuffix(name, suffix) {
			return KindImage
		}
	}
	return KindMarkdown
}

// Decode reverses the transport encoding and validates the result for kind.
func (d *Decoder) Decode(kind Kind, filename, payload string) (Native, error) {
	raw, err := decodeBase64(payload)
	if err != nil {
		return Native{}, &DecodeError{Kind: kind, Filename: filename, Err: fmt.Errorf("%w: %v", ErrEncoding, err)}
	}

	switch kind {
	case KindMarkdown:
		if !utf8.Valid(raw) {
			return Native{}, &DecodeError{Kind: kind, Filename: filename, Err: ErrInvalidText}
		}
		return Native{Kind: KindMarkdown, Text: string(raw)}, nil

	case KindImage:
		cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
		if err != nil {
			return Native{}, &DecodeError{Kind: kind, Filename: filename, Err: fmt.Errorf("%w: %v", ErrImageFormat, err)}
		}
		if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > MaxImagePixels {
			return Native{}, &DecodeError{Kind: kind, Filename: filename,
				Err: fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageFormat, cfg.Width, cfg.Height, MaxImagePixels)}
		}
		img, format, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return Native{}, &DecodeError{Kind: kind, Filename: filename, Err: fmt.Errorf("%w: %v", ErrImageFormat, err)}
		}
		return Native{Kind: KindImage, Image: img, Format: format}, nil

	default:
		return Native{}, &DecodeError{Kind: kind, Filename: filename, Err: fmt.Errorf("unknown kind %d", kind)}
	}
}

// DecodeFile dispatches on filename and decodes in one step.
func (d *Decoder) DecodeFile(filename, payload string) (Native, error) {
	return d.Decode(d.KindFor(filename), filename, payload)
}

// Encode produces the transport form of raw file bytes.
func Encode(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// decodeBase64 accepts padded standard base64 and falls back to the unpadded
// alphabet, which some senders emit.
func decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return raw, nil
	}
	if alt, altErr := base64.RawStdEncoding.DecodeString(payload); altErr == nil {
		return alt, nil
	}
	return nil, err
}
