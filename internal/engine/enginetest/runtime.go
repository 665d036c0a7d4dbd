// Package enginetest provides an in-memory runtime for testing code built on
// package engine.
package enginetest

import (
	"context"
	"fmt"

	"github.com/born-ml/nnebind/internal/engine"
	"github.com/born-ml/nnebind/internal/tensor"
)

// Verify that the mocks implement the engine interfaces.
var (
	_ engine.Runtime       = (*Runtime)(nil)
	_ engine.Model         = (*Model)(nil)
	_ engine.ModelInstance = (*Instance)(nil)
)

// Desc builds a float32 tensor descriptor.
func Desc(name string, dims ...int) engine.TensorDesc {
	return engine.TensorDesc{
		Name:     name,
		ElemType: engine.ElemFloat32,
		Dims:     engine.SymbolicShape(dims),
	}
}

// Instance is a ModelInstance whose behaviour is set by its fields.
type Instance struct {
	Inputs  []engine.TensorDesc
	Outputs []engine.TensorDesc

	// RejectShapes, when set, is returned by SetInputShapes.
	RejectShapes error
	// RunErr, when set, is returned by RunSync before touching outputs.
	RunErr error
	// Forward computes outputs; Sum is used when nil.
	Forward func(inputs, outputs []tensor.Binding)

	SetShapesCalls int
	RunCalls       int
	LastShapes     []tensor.Shape

	closed bool
}

// NewInstance creates an instance with the given slots.
func NewInstance(inputs, outputs []engine.TensorDesc) *Instance {
	return &Instance{
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// InputDescs returns the configured input descriptors.
func (m *Instance) InputDescs() ([]engine.TensorDesc, error) {
	if m.closed {
		return nil, engine.ErrModelInvalid
	}
	return m.Inputs, nil
}

// OutputDescs returns the configured output descriptors.
func (m *Instance) OutputDescs() ([]engine.TensorDesc, error) {
	if m.closed {
		return nil, engine.ErrModelInvalid
	}
	return m.Outputs, nil
}

// SetInputShapes records shapes, or fails with RejectShapes.
func (m *Instance) SetInputShapes(shapes []tensor.Shape) error {
	if m.closed {
		return engine.ErrModelInvalid
	}
	m.SetShapesCalls++
	if m.RejectShapes != nil {
		return m.RejectShapes
	}
	m.LastShapes = shapes
	return nil
}

// RunSync runs Forward over the bindings.
func (m *Instance) RunSync(inputs, outputs []tensor.Binding) error {
	if m.closed {
		return engine.ErrModelInvalid
	}
	m.RunCalls++
	if m.RunErr != nil {
		return m.RunErr
	}
	if len(inputs) != len(m.Inputs) || len(outputs) != len(m.Outputs) {
		return fmt.Errorf("mock: got %d/%d bindings, want %d/%d", len(inputs), len(outputs), len(m.Inputs), len(m.Outputs))
	}
	forward := m.Forward
	if forward == nil {
		forward = Sum
	}
	forward(inputs, outputs)
	return nil
}

// Close invalidates the instance.
func (m *Instance) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Instance) Closed() bool {
	return m.closed
}

// Sum writes, for every output element k, the sum of all input elements
// plus k+1. The result depends on every input value and is never all zero.
func Sum(inputs, outputs []tensor.Binding) {
	var total float32
	for _, in := range inputs {
		for _, v := range in.Data {
			total += v
		}
	}
	for _, out := range outputs {
		for k := range out.Data {
			out.Data[k] = total + float32(k+1)
		}
	}
}

// Runtime creates Models backed by Instances from NewInstance.
type Runtime struct {
	RuntimeName string
	NewInstance func() *Instance
	// LoadErr, when set, is returned by CreateModel.
	LoadErr error

	Paths  []string
	Models []*Model
}

// Name returns RuntimeName.
func (r *Runtime) Name() string {
	return r.RuntimeName
}

// CreateModel records path and returns a new Model.
func (r *Runtime) CreateModel(_ context.Context, path string) (engine.Model, error) {
	r.Paths = append(r.Paths, path)
	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	m := &Model{newInstance: r.NewInstance}
	r.Models = append(r.Models, m)
	return m, nil
}

// Model hands out instances.
type Model struct {
	newInstance func() *Instance
	Instances   []*Instance
	closed      bool
}

// CreateInstance returns a fresh Instance.
func (m *Model) CreateInstance() (engine.ModelInstance, error) {
	if m.closed {
		return nil, engine.ErrModelInvalid
	}
	inst := m.newInstance()
	m.Instances = append(m.Instances, inst)
	return inst, nil
}

// Close marks the model closed.
func (m *Model) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Model) Closed() bool {
	return m.closed
}
