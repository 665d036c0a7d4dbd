package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nnebind/internal/engine"
	"github.com/born-ml/nnebind/internal/engine/enginetest"
	"github.com/born-ml/nnebind/internal/tensor"
)

func yoloInstance() *enginetest.Instance {
	return enginetest.NewInstance(
		[]engine.TensorDesc{enginetest.Desc("images", engine.DynamicDim, 3, 640, 640)},
		[]engine.TensorDesc{enginetest.Desc("output0", 1, 84, 8400)},
	)
}

func TestDescriptor_Introspected(t *testing.T) {
	d := engine.NewDescriptor(yoloInstance(), engine.ShapePolicy{})
	assert.Equal(t, engine.ShapeSourceIntrospected, d.Source())

	n, err := d.InputCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = d.OutputCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	in, err := d.DeclaredInputShape(0)
	require.NoError(t, err)
	assert.Equal(t, engine.SymbolicShape{-1, 3, 640, 640}, in)

	out, err := d.DeclaredOutputShape(0)
	require.NoError(t, err)
	assert.Equal(t, engine.SymbolicShape{1, 84, 8400}, out)
}

func TestDescriptor_FixedOverridesIntrospection(t *testing.T) {
	d := engine.NewDescriptor(yoloInstance(), engine.ShapePolicy{
		Source:  engine.ShapeSourceFixed,
		Inputs:  []tensor.Shape{{1, 3, 640, 640}},
		Outputs: []tensor.Shape{{1, 84, 5}},
	})

	in, err := d.DeclaredInputShape(0)
	require.NoError(t, err)
	assert.Equal(t, engine.SymbolicShape{1, 3, 640, 640}, in)

	out, err := d.DeclaredOutputShape(0)
	require.NoError(t, err)
	assert.Equal(t, engine.SymbolicShape{1, 84, 5}, out)
}

func TestDescriptor_FixedWithoutOutputsFallsBack(t *testing.T) {
	d := engine.NewDescriptor(yoloInstance(), engine.ShapePolicy{
		Source: engine.ShapeSourceFixed,
		Inputs: []tensor.Shape{{1, 3, 640, 640}},
	})

	out, err := d.DeclaredOutputShape(0)
	require.NoError(t, err)
	assert.Equal(t, engine.SymbolicShape{1, 84, 8400}, out)
}

func TestDescriptor_IndexOutOfRange(t *testing.T) {
	for _, source := range []engine.ShapeSource{engine.ShapeSourceIntrospected, engine.ShapeSourceFixed} {
		d := engine.NewDescriptor(yoloInstance(), engine.ShapePolicy{
			Source: source,
			Inputs: []tensor.Shape{{1, 3, 640, 640}},
		})
		for _, idx := range []int{-1, 1, 5} {
			_, err := d.DeclaredInputShape(idx)
			assert.ErrorIs(t, err, engine.ErrIndexOutOfRange, "source %v index %d", source, idx)
			_, err = d.DeclaredOutputShape(idx)
			assert.ErrorIs(t, err, engine.ErrIndexOutOfRange, "source %v index %d", source, idx)
		}
	}
}

func TestDescriptor_ModelInvalid(t *testing.T) {
	inst := yoloInstance()
	d := engine.NewDescriptor(inst, engine.ShapePolicy{})
	require.NoError(t, inst.Close())

	_, err := d.InputCount()
	assert.ErrorIs(t, err, engine.ErrModelInvalid)
	_, err = d.OutputCount()
	assert.ErrorIs(t, err, engine.ErrModelInvalid)
	_, err = d.DeclaredInputShape(0)
	assert.ErrorIs(t, err, engine.ErrModelInvalid)
}

func TestDescriptor_DeclaredShapeIsCopy(t *testing.T) {
	inst := yoloInstance()
	d := engine.NewDescriptor(inst, engine.ShapePolicy{})

	in, err := d.DeclaredInputShape(0)
	require.NoError(t, err)
	in[1] = 99
	assert.Equal(t, 3, inst.Inputs[0].Dims[1])
}

func TestSymbolicShape(t *testing.T) {
	s := engine.SymbolicShape{-1, 3, 640, 640}
	_, ok := s.Concrete()
	assert.False(t, ok)
	assert.True(t, s.Matches(tensor.Shape{2, 3, 640, 640}))
	assert.False(t, s.Matches(tensor.Shape{2, 4, 640, 640}))
	assert.False(t, s.Matches(tensor.Shape{3, 640, 640}))
	assert.Equal(t, "?x3x640x640", s.String())

	c, ok := engine.Symbolic(tensor.Shape{1, 84, 5}).Concrete()
	require.True(t, ok)
	assert.Equal(t, tensor.Shape{1, 84, 5}, c)

	_, ok = engine.SymbolicShape{}.Concrete()
	assert.False(t, ok)
}

func TestParseShapeSource(t *testing.T) {
	tests := []struct {
		in      string
		want    engine.ShapeSource
		wantErr bool
	}{
		{in: "", want: engine.ShapeSourceIntrospected},
		{in: "introspected", want: engine.ShapeSourceIntrospected},
		{in: "fixed", want: engine.ShapeSourceFixed},
		{in: "hardcoded", wantErr: true},
	}
	for _, tt := range tests {
		got, err := engine.ParseShapeSource(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want, mustParse(t, got.String()))
	}
}

func mustParse(t *testing.T, s string) engine.ShapeSource {
	t.Helper()
	src, err := engine.ParseShapeSource(s)
	require.NoError(t, err)
	return src
}

func TestElemType_String(t *testing.T) {
	assert.Equal(t, "float32", engine.ElemFloat32.String())
	assert.Equal(t, "int64", engine.ElemInt64.String())
	assert.Equal(t, "elem(14)", engine.ElemType(14).String())
}
