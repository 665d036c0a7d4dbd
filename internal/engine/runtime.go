package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/born-ml/nnebind/internal/tensor"
)

// Runtime is an inference backend able to create models from an asset.
//
// Implementations:
//   - ort: ONNX Runtime CPU via github.com/yalue/onnxruntime_go
//   - enginetest: in-memory mock used by tests
type Runtime interface {
	// Name identifies the backend, e.g. "NNERuntimeORTCpu".
	Name() string

	// CreateModel loads the model stored at path.
	CreateModel(ctx context.Context, path string) (Model, error)
}

// Model is a loaded model from which execution instances are created.
type Model interface {
	CreateInstance() (ModelInstance, error)
	Close() error
}

// ModelInstance is the opaque capability that executes a model.
//
// Every method returns an error matching ErrModelInvalid once Close has been
// called. Implementations are not required to be safe for concurrent use.
type ModelInstance interface {
	// InputDescs returns the runtime-reported descriptors of the model inputs.
	InputDescs() ([]TensorDesc, error)

	// OutputDescs returns the runtime-reported descriptors of the model outputs.
	OutputDescs() ([]TensorDesc, error)

	// SetInputShapes prepares the instance for inputs of the given shapes.
	SetInputShapes(shapes []tensor.Shape) error

	// RunSync executes the model, reading inputs and writing outputs in place.
	// Both binding slices borrow caller memory for the duration of the call.
	RunSync(inputs, outputs []tensor.Binding) error

	Close() error
}

// ElemType is the element type of a tensor slot, numbered as in ONNX
// TensorProto.DataType.
type ElemType int32

// Element types reported by runtimes. Only ElemFloat32 can be bound.
const (
	ElemUndefined ElemType = 0
	ElemFloat32   ElemType = 1
	ElemUint8     ElemType = 2
	ElemInt8      ElemType = 3
	ElemInt32     ElemType = 6
	ElemInt64     ElemType = 7
	ElemBool      ElemType = 9
	ElemFloat16   ElemType = 10
	ElemFloat64   ElemType = 11
)

// String returns a human-readable name for the element type.
func (e ElemType) String() string {
	switch e {
	case ElemFloat32:
		return "float32"
	case ElemUint8:
		return "uint8"
	case ElemInt8:
		return "int8"
	case ElemInt32:
		return "int32"
	case ElemInt64:
		return "int64"
	case ElemBool:
		return "bool"
	case ElemFloat16:
		return "float16"
	case ElemFloat64:
		return "float64"
	default:
		return "elem(" + strconv.Itoa(int(e)) + ")"
	}
}

// TensorDesc describes one input or output slot of a model.
type TensorDesc struct {
	Name     string
	ElemType ElemType
	Dims     SymbolicShape
}

// DynamicDim marks a dimension whose extent is only known at bind time.
const DynamicDim = -1

// SymbolicShape is a declared shape whose dimensions may be DynamicDim.
type SymbolicShape []int

// Symbolic converts a concrete shape into a SymbolicShape.
func Symbolic(s tensor.Shape) SymbolicShape {
	out := make(SymbolicShape, len(s))
	copy(out, s)
	return out
}

// Concrete returns the shape as a tensor.Shape when every dimension is known.
func (s SymbolicShape) Concrete() (tensor.Shape, bool) {
	if len(s) == 0 {
		return nil, false
	}
	out := make(tensor.Shape, len(s))
	for i, d := range s {
		if d < 1 {
			return nil, false
		}
		out[i] = d
	}
	return out, true
}

// Matches reports whether shape has the same rank and agrees on every
// known dimension. A nil SymbolicShape has unknown rank and matches any shape.
func (s SymbolicShape) Matches(shape tensor.Shape) bool {
	if s == nil {
		return true
	}
	if len(s) != len(shape) {
		return false
	}
	for i, d := range s {
		if d >= 1 && d != shape[i] {
			return false
		}
	}
	return true
}

// String formats the shape as "?x3x640x640".
func (s SymbolicShape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		if d < 1 {
			parts[i] = "?"
			continue
		}
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, "x")
}
