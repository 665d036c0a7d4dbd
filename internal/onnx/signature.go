package onnx

import (
	"errors"

	"github.com/born-ml/nnebind/internal/engine"
)

// Signature lists the tensor slots a caller binds to run a model.
type Signature struct {
	Inputs  []engine.TensorDesc
	Outputs []engine.TensorDesc
}

// InputNames returns the input slot names in order.
func (s *Signature) InputNames() []string {
	return descNames(s.Inputs)
}

// OutputNames returns the output slot names in order.
func (s *Signature) OutputNames() []string {
	return descNames(s.Outputs)
}

func descNames(descs []engine.TensorDesc) []string {
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}
	return names
}

// Signature extracts the model's inputs and outputs.
// Graph inputs that are initializers are weights, not slots, and are
// skipped. Symbolic or zero dimensions become engine.DynamicDim.
func (m *ModelProto) Signature() (*Signature, error) {
	if m.Graph == nil {
		return nil, errors.New("model has no graph")
	}

	initNames := make(map[string]bool, len(m.Graph.InitializerNames))
	for _, name := range m.Graph.InitializerNames {
		initNames[name] = true
	}

	sig := &Signature{}
	for i := range m.Graph.Inputs {
		if initNames[m.Graph.Inputs[i].Name] {
			continue
		}
		sig.Inputs = append(sig.Inputs, valueInfoToDesc(&m.Graph.Inputs[i]))
	}
	for i := range m.Graph.Outputs {
		sig.Outputs = append(sig.Outputs, valueInfoToDesc(&m.Graph.Outputs[i]))
	}
	return sig, nil
}

func valueInfoToDesc(vi *ValueInfoProto) engine.TensorDesc {
	desc := engine.TensorDesc{Name: vi.Name}
	if vi.Type == nil || vi.Type.TensorType == nil {
		return desc
	}

	tt := vi.Type.TensorType
	desc.ElemType = engine.ElemType(tt.ElemType)
	if tt.Shape == nil {
		return desc
	}

	desc.Dims = make(engine.SymbolicShape, len(tt.Shape.Dims))
	for i, dim := range tt.Shape.Dims {
		if dim.DimValue > 0 && dim.DimParam == "" {
			desc.Dims[i] = int(dim.DimValue)
			continue
		}
		desc.Dims[i] = engine.DynamicDim
	}
	return desc
}

// ReadSignature parses the model file at path and returns its signature.
func ReadSignature(path string) (*Signature, error) {
	model, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return model.Signature()
}
