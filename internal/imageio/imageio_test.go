package imageio

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nnebind/internal/parallel"
	"github.com/born-ml/nnebind/internal/tensor"
)

// writeQuad writes a 2x2 PNG: red, green / blue, white.
func writeQuad(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 255, 0, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 1, color.NRGBA{255, 255, 255, 255})

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

var quadPix = []uint8{
	255, 0, 0, 255,
	0, 255, 0, 255,
	0, 0, 255, 255,
	255, 255, 255, 255,
}

func TestDecodeFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.png")
	writeQuad(t, path)

	px, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, px.Width)
	assert.Equal(t, 2, px.Height)
	assert.Equal(t, quadPix, px.Pix)

	r, g, b, a := px.At(1, 1)
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, [4]uint8{r, g, b, a})
}

func TestDecodeFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := DecodeFile(filepath.Join(dir, "missing.png"))
	require.ErrorIs(t, err, ErrFileNotFound)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o600))
	_, err = DecodeFile(bad)
	require.ErrorIs(t, err, ErrDecodeFailed)
	assert.NotErrorIs(t, err, ErrFileNotFound)
}

func TestFromImage_Converts(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 12, 11))
	src.Set(10, 10, color.RGBA{10, 20, 30, 255})
	src.Set(11, 10, color.RGBA{0, 0, 0, 0})

	px := FromImage(src)
	assert.Equal(t, 2, px.Width)
	assert.Equal(t, 1, px.Height)
	assert.Equal(t, []uint8{10, 20, 30, 255, 0, 0, 0, 0}, px.Pix)
}

func TestToTensor(t *testing.T) {
	px := &RawPixelBuffer{Width: 2, Height: 2, Pix: append([]uint8(nil), quadPix...)}

	tests := []struct {
		name   string
		layout Layout
		shape  tensor.Shape
		want   []float32
	}{
		{
			name:   "hwc",
			layout: LayoutHWC,
			shape:  tensor.Shape{2, 2, 3},
			want:   []float32{1, 0, 0, 0, 1, 0, 0, 0, 1, 1, 1, 1},
		},
		{
			name:   "chw",
			layout: LayoutCHW,
			shape:  tensor.Shape{1, 3, 2, 2},
			want:   []float32{1, 0, 0, 1, 0, 1, 0, 1, 0, 0, 1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToTensor(px, tt.layout)
			require.NoError(t, err)
			assert.Equal(t, tt.shape, out.Shape())
			assert.Equal(t, tt.want, out.Data())
		})
	}

	assert.Equal(t, quadPix, px.Pix, "input must not be modified")
}

func TestToTensor_ParallelMatchesSequential(t *testing.T) {
	const w, h = 37, 41
	px := &RawPixelBuffer{Width: w, Height: h, Pix: make([]uint8, w*h*4)}
	for i := range px.Pix {
		px.Pix[i] = uint8(i * 7)
	}
	cfg := parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2}

	for _, layout := range []Layout{LayoutHWC, LayoutCHW} {
		seq, err := toTensor(px, layout, parallel.Sequential())
		require.NoError(t, err)
		par, err := toTensor(px, layout, cfg)
		require.NoError(t, err)
		assert.Equal(t, seq.Data(), par.Data(), layout.String())
	}
}

func TestToTensor_Invalid(t *testing.T) {
	tests := []struct {
		name string
		px   *RawPixelBuffer
	}{
		{"nil", nil},
		{"zero width", &RawPixelBuffer{Width: 0, Height: 2}},
		{"short pix", &RawPixelBuffer{Width: 2, Height: 2, Pix: make([]uint8, 15)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToTensor(tt.px, LayoutHWC)
			require.ErrorIs(t, err, ErrInvalidPixels)
		})
	}

	_, err := ToTensor(&RawPixelBuffer{Width: 1, Height: 1, Pix: make([]uint8, 4)}, Layout(9))
	require.Error(t, err)
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("CHW")
	require.NoError(t, err)
	assert.Equal(t, LayoutCHW, l)

	l, err = ParseLayout("hwc")
	require.NoError(t, err)
	assert.Equal(t, LayoutHWC, l)

	_, err = ParseLayout("rgb")
	require.Error(t, err)
	assert.Equal(t, "Layout(7)", Layout(7).String())
}

func TestResize(t *testing.T) {
	px := &RawPixelBuffer{Width: 2, Height: 2, Pix: make([]uint8, 16)}
	for i := range px.Pix {
		px.Pix[i] = 200
		if i%4 == 3 {
			px.Pix[i] = 255
		}
	}

	same := Resize(px, 2, 2)
	assert.Same(t, px, same)

	big := Resize(px, 8, 6)
	require.NoError(t, big.Validate())
	assert.Equal(t, 8, big.Width)
	assert.Equal(t, 6, big.Height)
	for i := 0; i < len(big.Pix); i += 4 {
		assert.Equal(t, []uint8{200, 200, 200, 255}, big.Pix[i:i+4])
	}
}

func TestScreenshotPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("Saved", "Screenshots", "MacEditor", "HighresScreenshot00001.png"),
		ScreenshotPath("Saved", "MacEditor"))
	assert.Equal(t,
		filepath.Join("Saved", "Screenshots", DefaultPlatform(), ScreenshotName),
		ScreenshotPath("Saved", ""))
}

func TestLoadScreenshot(t *testing.T) {
	saved := t.TempDir()
	writeQuad(t, ScreenshotPath(saved, "LinuxEditor"))

	px, err := LoadScreenshot(saved, "LinuxEditor")
	require.NoError(t, err)
	assert.Equal(t, quadPix, px.Pix)

	_, err = LoadScreenshot(saved, "MacEditor")
	require.ErrorIs(t, err, ErrFileNotFound)
}
