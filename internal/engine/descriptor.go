package engine

import (
	"fmt"

	"github.com/born-ml/nnebind/internal/tensor"
)

// ShapeSource selects where declared tensor shapes come from.
type ShapeSource int

const (
	// ShapeSourceIntrospected trusts the shapes reported by the runtime.
	ShapeSourceIntrospected ShapeSource = iota

	// ShapeSourceFixed overrides the runtime with shapes from a ShapePolicy.
	ShapeSourceFixed
)

// String returns the configuration name of the source.
func (s ShapeSource) String() string {
	switch s {
	case ShapeSourceIntrospected:
		return "introspected"
	case ShapeSourceFixed:
		return "fixed"
	default:
		return fmt.Sprintf("ShapeSource(%d)", int(s))
	}
}

// ParseShapeSource parses "introspected" or "fixed". The empty string
// selects ShapeSourceIntrospected.
func ParseShapeSource(s string) (ShapeSource, error) {
	switch s {
	case "", "introspected":
		return ShapeSourceIntrospected, nil
	case "fixed":
		return ShapeSourceFixed, nil
	default:
		return 0, fmt.Errorf("unknown shape source %q", s)
	}
}

// ShapePolicy configures declared shapes for one model.
//
// With ShapeSourceFixed, Inputs and Outputs hold caller-fixed shapes. A
// single shape applies to every index; otherwise shapes are index-aligned.
// A direction with no fixed shapes falls back to the runtime descriptor.
type ShapePolicy struct {
	Source  ShapeSource
	Inputs  []tensor.Shape
	Outputs []tensor.Shape
}

// Validate checks every fixed shape.
func (p ShapePolicy) Validate() error {
	for i, s := range p.Inputs {
		if _, err := s.Volume(); err != nil {
			return fmt.Errorf("fixed input shape %d: %w", i, err)
		}
	}
	for i, s := range p.Outputs {
		if _, err := s.Volume(); err != nil {
			return fmt.Errorf("fixed output shape %d: %w", i, err)
		}
	}
	return nil
}

// Descriptor is a read-only view of a model instance's tensor slots.
// It becomes invalid when the instance is closed.
type Descriptor struct {
	instance ModelInstance
	policy   ShapePolicy
}

// NewDescriptor creates a descriptor over instance using policy.
func NewDescriptor(instance ModelInstance, policy ShapePolicy) *Descriptor {
	return &Descriptor{
		instance: instance,
		policy:   policy,
	}
}

// Source returns the configured shape source.
func (d *Descriptor) Source() ShapeSource {
	return d.policy.Source
}

// InputDescs returns the runtime-reported input descriptors.
func (d *Descriptor) InputDescs() ([]TensorDesc, error) {
	descs, err := d.instance.InputDescs()
	if err != nil {
		return nil, modelInvalid("InputDescs", err)
	}
	return descs, nil
}

// OutputDescs returns the runtime-reported output descriptors.
func (d *Descriptor) OutputDescs() ([]TensorDesc, error) {
	descs, err := d.instance.OutputDescs()
	if err != nil {
		return nil, modelInvalid("OutputDescs", err)
	}
	return descs, nil
}

// InputCount returns the number of model inputs.
func (d *Descriptor) InputCount() (int, error) {
	descs, err := d.InputDescs()
	if err != nil {
		return 0, err
	}
	return len(descs), nil
}

// OutputCount returns the number of model outputs.
func (d *Descriptor) OutputCount() (int, error) {
	descs, err := d.OutputDescs()
	if err != nil {
		return 0, err
	}
	return len(descs), nil
}

// DeclaredInputShape returns the shape expected for input index.
func (d *Descriptor) DeclaredInputShape(index int) (SymbolicShape, error) {
	descs, err := d.InputDescs()
	if err != nil {
		return nil, err
	}
	return d.declared("DeclaredInputShape", descs, d.policy.Inputs, index)
}

// DeclaredOutputShape returns the shape expected for output index.
func (d *Descriptor) DeclaredOutputShape(index int) (SymbolicShape, error) {
	descs, err := d.OutputDescs()
	if err != nil {
		return nil, err
	}
	return d.declared("DeclaredOutputShape", descs, d.policy.Outputs, index)
}

func (d *Descriptor) declared(op string, descs []TensorDesc, fixed []tensor.Shape, index int) (SymbolicShape, error) {
	if index < 0 || index >= len(descs) {
		return nil, newError(op, ErrIndexOutOfRange, index, "model has %d tensors", len(descs))
	}
	if d.policy.Source != ShapeSourceFixed || len(fixed) == 0 {
		out := make(SymbolicShape, len(descs[index].Dims))
		copy(out, descs[index].Dims)
		return out, nil
	}
	if len(fixed) == 1 {
		return Symbolic(fixed[0]), nil
	}
	if index >= len(fixed) {
		return nil, newError(op, ErrIndexOutOfRange, index, "policy fixes %d shapes", len(fixed))
	}
	return Symbolic(fixed[index]), nil
}
