package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nnebind/internal/engine"
	"github.com/born-ml/nnebind/internal/imageio"
	"github.com/born-ml/nnebind/internal/tensor"
)

const fullConfig = `
runtime: NNERuntimeORTCpu
model: gs://weights/yolov8n.onnx
cacheDir: /tmp/models
sharedLibrary: /usr/lib/libonnxruntime.so
threads: 4
shapes:
  source: fixed
  inputs: [[1, 3, 640, 640]]
  outputs: [[1, 84, 8400]]
enforceDeclaredShape: true
screenshot:
  savedDir: Game/Saved
  platform: MacEditor
  layout: chw
  width: 640
  height: 640
`

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "NNERuntimeORTCpu", cfg.Runtime)
	assert.Equal(t, "gs://weights/yolov8n.onnx", cfg.Model)
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, imageio.LayoutCHW, cfg.Layout())
	assert.Equal(t,
		filepath.Join("Game/Saved", "Screenshots", "MacEditor", imageio.ScreenshotName),
		cfg.ScreenshotPath())

	opts, err := cfg.SessionOptions()
	require.NoError(t, err)
	assert.Equal(t, engine.ShapeSourceFixed, opts.Shapes.Source)
	assert.Equal(t, []tensor.Shape{{1, 3, 640, 640}}, opts.Shapes.Inputs)
	assert.Equal(t, []tensor.Shape{{1, 84, 8400}}, opts.Shapes.Outputs)
	assert.True(t, opts.EnforceDeclaredShape)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("model: yolov8n.onnx\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultRuntime, cfg.Runtime)
	assert.Equal(t, "Saved", cfg.Screenshot.SavedDir)
	assert.Equal(t, imageio.LayoutCHW, cfg.Layout())

	opts, err := cfg.SessionOptions()
	require.NoError(t, err)
	assert.Equal(t, engine.ShapeSourceIntrospected, opts.Shapes.Source)
	assert.Nil(t, opts.Shapes.Inputs)
	assert.False(t, opts.EnforceDeclaredShape, "lax validation by default")
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty", "", "model is required"},
		{"unknown key", "model: m.onnx\nbogus: 1\n", "bogus"},
		{"bad source", "model: m.onnx\nshapes:\n  source: guessed\n", "unknown shape source"},
		{"bad fixed shape", "model: m.onnx\nshapes:\n  source: fixed\n  inputs: [[1, 0, 3]]\n", "fixed input shape 0"},
		{"bad layout", "model: m.onnx\nscreenshot:\n  layout: rgb\n", "unknown image layout"},
		{"half size", "model: m.onnx\nscreenshot:\n  width: 640\n", "set together"},
		{"negative threads", "model: m.onnx\nthreads: -2\n", "threads"},
		{"no runtime", "model: m.onnx\nruntime: \"\"\n", "runtime is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nnebind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/usr/lib/libonnxruntime.so", cfg.SharedLibrary)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestScreenshotPath_Explicit(t *testing.T) {
	cfg := Default()
	cfg.Screenshot.Path = "frame.png"
	assert.Equal(t, "frame.png", cfg.ScreenshotPath())
}
