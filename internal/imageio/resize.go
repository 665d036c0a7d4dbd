package imageio

import (
	"image"

	"golang.org/x/image/draw"
)

// Resize scales px to width x height with bilinear filtering.
// The input is returned unchanged when it already has that extent.
func Resize(px *RawPixelBuffer, width, height int) *RawPixelBuffer {
	if px.Width == width && px.Height == height {
		return px
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	src := px.Image()
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return &RawPixelBuffer{Width: width, Height: height, Pix: dst.Pix}
}
