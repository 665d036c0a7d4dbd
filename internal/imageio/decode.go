package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"

	"golang.org/x/image/draw"
	"k8s.io/klog/v2"
)

var (
	// ErrFileNotFound is returned when the image file does not exist.
	ErrFileNotFound = errors.New("image file not found")
	// ErrDecodeFailed is returned when the file cannot be read or is not a valid PNG.
	ErrDecodeFailed = errors.New("image decode failed")
	// ErrInvalidPixels is returned when a RawPixelBuffer's sample count does not match its extent.
	ErrInvalidPixels = errors.New("invalid pixel buffer")
)

// RawPixelBuffer holds interleaved 8-bit RGBA samples in row-major order.
// Alpha is not premultiplied.
type RawPixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// Validate checks that Pix holds exactly Width*Height RGBA samples.
func (p *RawPixelBuffer) Validate() error {
	if p == nil || p.Width < 1 || p.Height < 1 {
		return fmt.Errorf("%w: empty image", ErrInvalidPixels)
	}
	if want := p.Width * p.Height * 4; len(p.Pix) != want {
		return fmt.Errorf("%w: %dx%d image needs %d samples, got %d",
			ErrInvalidPixels, p.Width, p.Height, want, len(p.Pix))
	}
	return nil
}

// At returns the RGBA samples of pixel (x, y).
func (p *RawPixelBuffer) At(x, y int) (r, g, b, a uint8) {
	i := (y*p.Width + x) * 4
	return p.Pix[i], p.Pix[i+1], p.Pix[i+2], p.Pix[i+3]
}

// DecodeFile reads and decodes the PNG file at path.
//
//nolint:gosec // G304: Path is provided by user, reading it is the point.
func DecodeFile(path string) (*RawPixelBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	klog.V(3).InfoS("Read image file", "path", path, "bytes", len(data))

	px, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return px, nil
}

// Decode decodes a PNG stream.
func Decode(r io.Reader) (*RawPixelBuffer, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	return FromImage(img), nil
}

// FromImage converts any image to non-premultiplied RGBA samples.
func FromImage(img image.Image) *RawPixelBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if n, ok := img.(*image.NRGBA); ok && n.Stride == w*4 && b.Min == (image.Point{}) {
		return &RawPixelBuffer{Width: w, Height: h, Pix: append([]uint8(nil), n.Pix[:w*h*4]...)}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &RawPixelBuffer{Width: w, Height: h, Pix: dst.Pix}
}

// Image wraps the buffer as an *image.NRGBA without copying.
func (p *RawPixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    p.Pix,
		Stride: p.Width * 4,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}
