package imageio

import (
	"fmt"
	"strings"

	"github.com/born-ml/nnebind/internal/parallel"
	"github.com/born-ml/nnebind/internal/tensor"
)

// Layout is the channel ordering of a normalized image tensor.
type Layout int

const (
	// LayoutHWC interleaves channels per pixel: [H, W, 3].
	LayoutHWC Layout = iota
	// LayoutCHW stores one plane per channel with a batch axis: [1, 3, H, W].
	LayoutCHW
)

func (l Layout) String() string {
	switch l {
	case LayoutHWC:
		return "hwc"
	case LayoutCHW:
		return "chw"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout parses "hwc" or "chw" (case-insensitive).
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "hwc":
		return LayoutHWC, nil
	case "chw", "nchw":
		return LayoutCHW, nil
	default:
		return 0, fmt.Errorf("unknown image layout %q", s)
	}
}

// Shape returns the tensor shape of a width x height image in this layout.
func (l Layout) Shape(width, height int) tensor.Shape {
	if l == LayoutCHW {
		return tensor.Shape{1, 3, height, width}
	}
	return tensor.Shape{height, width, 3}
}

// ToTensor converts RGBA samples into a float32 tensor in [0, 1], dropping alpha.
// It does not modify px.
func ToTensor(px *RawPixelBuffer, layout Layout) (*tensor.Buffer, error) {
	return toTensor(px, layout, parallel.DefaultConfig())
}

func toTensor(px *RawPixelBuffer, layout Layout, cfg parallel.Config) (*tensor.Buffer, error) {
	if err := px.Validate(); err != nil {
		return nil, err
	}
	if layout != LayoutHWC && layout != LayoutCHW {
		return nil, fmt.Errorf("unsupported layout %s", layout)
	}

	out, err := tensor.New(layout.Shape(px.Width, px.Height))
	if err != nil {
		return nil, err
	}
	dst := out.Data()
	w := px.Width
	plane := px.Width * px.Height

	parallel.Range(px.Height, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < w; x++ {
				p := y*w + x
				src := px.Pix[p*4 : p*4+3 : p*4+3]
				if layout == LayoutCHW {
					dst[p] = float32(src[0]) / 255
					dst[plane+p] = float32(src[1]) / 255
					dst[2*plane+p] = float32(src[2]) / 255
					continue
				}
				dst[p*3] = float32(src[0]) / 255
				dst[p*3+1] = float32(src[1]) / 255
				dst[p*3+2] = float32(src[2]) / 255
			}
		}
	}, cfg)

	return out, nil
}
