// Package debug dumps render targets to image files.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"github.com/Faultbox/planar-reflections/internal/engine/rendertarget"
)

// Format is an output image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat accepts "png" or "webp", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPNG, FormatWebP:
		return f, nil
	default:
		return "", fmt.Errorf("unknown capture format %q", s)
	}
}

// PixelSource is a render target whose color can be read back.
type PixelSource interface {
	Size() rendertarget.Size
	// ReadPixels returns 8-bit RGBA rows, bottom row first.
	ReadPixels() []byte
}

// Capture writes render target snapshots to a directory.
type Capture struct {
	dir    string
	prefix string
	format Format
	now    func() time.Time
}

// NewCapture creates a capture writing prefix_<timestamp>.<format> files
// into dir.
func NewCapture(dir, prefix string, format Format) *Capture {
	return &Capture{dir: dir, prefix: prefix, format: format, now: time.Now}
}

// Filename returns the path the next capture named label is written to.
func (c *Capture) Filename(label string) string {
	name := fmt.Sprintf("%s_%s_%s.%s", c.prefix, label, c.now().Format("2006-01-02_15-04-05.000"), c.format)
	if c.dir != "" {
		name = filepath.Join(c.dir, name)
	}
	return name
}

// Target reads src back and saves it. It returns the written path.
func (c *Capture) Target(src PixelSource, label string) (string, error) {
	size := src.Size()
	img, err := FlipRGBA(src.ReadPixels(), size.Width, size.Height)
	if err != nil {
		return "", err
	}
	return c.Image(img, label)
}

// Image saves img. It returns the written path.
func (c *Capture) Image(img image.Image, label string) (string, error) {
	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := c.Filename(label)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := Encode(file, img, c.format); err != nil {
		return "", err
	}
	return filename, nil
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("encoding WebP: %w", err)
		}
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
	default:
		return fmt.Errorf("unknown capture format %q", f)
	}
	return nil
}

// FlipRGBA converts bottom-up GL pixel rows into a top-down image.
func FlipRGBA(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}
