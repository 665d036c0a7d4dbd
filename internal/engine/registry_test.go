package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nnebind/internal/engine"
	"github.com/born-ml/nnebind/internal/engine/enginetest"
	"github.com/born-ml/nnebind/internal/tensor"
)

func mockRuntime(name string) *enginetest.Runtime {
	return &enginetest.Runtime{
		RuntimeName: name,
		NewInstance: singleIO,
	}
}

func TestRegistry(t *testing.T) {
	r := engine.NewRegistry()
	assert.Empty(t, r.Names())

	r.Register(mockRuntime("b"))
	r.Register(mockRuntime("a"))
	assert.Equal(t, []string{"a", "b"}, r.Names())

	rt, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", rt.Name())

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, engine.ErrUnknownRuntime)
}

func TestDefaultRegistry(t *testing.T) {
	engine.Register(mockRuntime("enginetest-default"))
	assert.Contains(t, engine.RuntimeNames(), "enginetest-default")

	rt, err := engine.GetRuntime("enginetest-default")
	require.NoError(t, err)
	assert.Equal(t, "enginetest-default", rt.Name())
}

func TestLoad(t *testing.T) {
	rt := mockRuntime("mock")
	h, err := engine.Load(context.Background(), rt, "models/yolov8n.onnx", engine.Options{})
	require.NoError(t, err)
	assert.Equal(t, "mock", h.Runtime)
	assert.Equal(t, []string{"models/yolov8n.onnx"}, rt.Paths)

	in, err := tensor.New(tensor.Shape{1, 3, 4, 4})
	require.NoError(t, err)
	out, err := tensor.New(tensor.Shape{1, 6, 5})
	require.NoError(t, err)
	require.NoError(t, h.Session.SetInputs([]*tensor.Buffer{in}))
	require.NoError(t, h.Session.RunSync([]*tensor.Buffer{out}))

	require.NoError(t, h.Close())
	require.Len(t, rt.Models, 1)
	assert.True(t, rt.Models[0].Closed())
	assert.True(t, rt.Models[0].Instances[0].Closed())
}

func TestLoad_Failures(t *testing.T) {
	rt := mockRuntime("mock")
	rt.LoadErr = errors.New("no such asset")

	_, err := engine.Load(context.Background(), rt, "missing.onnx", engine.Options{})
	require.ErrorIs(t, err, engine.ErrModelLoad)
	assert.ErrorContains(t, err, "no such asset")

	rt = mockRuntime("mock")
	_, err = engine.Load(context.Background(), rt, "m.onnx", engine.Options{
		Shapes: engine.ShapePolicy{Inputs: []tensor.Shape{{}}},
	})
	require.ErrorIs(t, err, engine.ErrModelLoad)
	require.ErrorIs(t, err, tensor.ErrInvalidShape)
	assert.True(t, rt.Models[0].Closed())
	assert.True(t, rt.Models[0].Instances[0].Closed())
}

func TestLoadByName_Unknown(t *testing.T) {
	_, err := engine.LoadByName(context.Background(), "NoSuchRuntime", "m.onnx", engine.Options{})
	assert.ErrorIs(t, err, engine.ErrUnknownRuntime)
}
