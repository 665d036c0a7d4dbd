package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nnebind/inference"
	"github.com/born-ml/nnebind/internal/engine"
	"github.com/born-ml/nnebind/internal/engine/enginetest"
	"github.com/born-ml/nnebind/internal/onnx/onnxtest"
)

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"version"}, &out))
	assert.Equal(t, "nnebind "+version+"\n", out.String())
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), nil, &out))
	assert.Contains(t, out.String(), "Commands:")

	out.Reset()
	err := run(context.Background(), []string{"train"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"train"`)
}

func TestRun_ModelHelp(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"run", "-h"}, &out))
	assert.Contains(t, out.String(), "-config")

	out.Reset()
	err := run(context.Background(), []string{"run", "-no-such-flag"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-flag")
}

func TestRun_Runtimes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"runtimes"}, &out))
	assert.Contains(t, out.String(), inference.DefaultRuntime)
}

func TestRun_Inspect(t *testing.T) {
	path := onnxtest.YOLOv8().WriteFile(t, t.TempDir(), "yolov8n.onnx")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"inspect", path}, &out))
	assert.Contains(t, out.String(), "Opset: 17")
	assert.Contains(t, out.String(), "images float32 [1x3x640x640]")
	assert.Contains(t, out.String(), "output0 float32 [1x84x8400]")

	err := run(context.Background(), []string{"inspect"}, &out)
	require.Error(t, err)
}

func TestRun_Model(t *testing.T) {
	inference.RegisterRuntime(&enginetest.Runtime{
		RuntimeName: "CLIMock",
		NewInstance: func() *enginetest.Instance {
			return enginetest.NewInstance(
				[]engine.TensorDesc{enginetest.Desc("images", 1, 3, 2, 2)},
				[]engine.TensorDesc{enginetest.Desc("scores", 1, 3)})
		},
	})

	dir := t.TempDir()
	model := filepath.Join(dir, "model.onnx")
	require.NoError(t, os.WriteFile(model, []byte("stub"), 0o600))

	shot := filepath.Join(dir, "frame.png")
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		img.Set(i%2, i/2, color.NRGBA{0, 0, 0, 255})
	}
	f, err := os.Create(shot)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	cfgPath := filepath.Join(dir, "nnebind.yaml")
	cfg := "runtime: CLIMock\nmodel: " + model + "\ncacheDir: " + filepath.Join(dir, "cache") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(),
		[]string{"run", "-config", cfgPath, "-screenshot", shot}, &out))

	// Black image: inputs sum to zero, outputs are k+1.
	assert.Equal(t, "output 0 [1x3]: min=1 max=3 mean=2 argmax=2\n", out.String())
}
