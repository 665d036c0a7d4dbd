package ort

import (
	"errors"
	"fmt"
	"slices"

	onnxruntime "github.com/yalue/onnxruntime_go"
	"k8s.io/klog/v2"

	"github.com/born-ml/nnebind/internal/engine"
	"github.com/born-ml/nnebind/internal/onnx"
	"github.com/born-ml/nnebind/internal/tensor"
)

// runner is the part of *onnxruntime.DynamicAdvancedSession an instance uses.
type runner interface {
	Run(inputs, outputs []onnxruntime.Value) error
	Destroy() error
}

// Instance executes one ONNX Runtime session. Not safe for concurrent use.
type Instance struct {
	session runner
	inputs  []engine.TensorDesc
	outputs []engine.TensorDesc
	shapes  []tensor.Shape
	closed  bool
}

func newInstance(session runner, sig *onnx.Signature) *Instance {
	return &Instance{
		session: session,
		inputs:  slices.Clone(sig.Inputs),
		outputs: slices.Clone(sig.Outputs),
	}
}

var errClosed = fmt.Errorf("%w: instance closed", engine.ErrModelInvalid)

// InputDescs implements engine.ModelInstance.
func (i *Instance) InputDescs() ([]engine.TensorDesc, error) {
	if i.closed {
		return nil, errClosed
	}
	return slices.Clone(i.inputs), nil
}

// OutputDescs implements engine.ModelInstance.
func (i *Instance) OutputDescs() ([]engine.TensorDesc, error) {
	if i.closed {
		return nil, errClosed
	}
	return slices.Clone(i.outputs), nil
}

// SetInputShapes checks the shapes against the model's declared inputs.
// Dynamic dimensions accept any extent.
func (i *Instance) SetInputShapes(shapes []tensor.Shape) error {
	if i.closed {
		return errClosed
	}
	if err := checkShapes(i.inputs, shapes); err != nil {
		return err
	}
	i.shapes = make([]tensor.Shape, len(shapes))
	for k, s := range shapes {
		i.shapes[k] = s.Clone()
	}
	return nil
}

func checkShapes(descs []engine.TensorDesc, shapes []tensor.Shape) error {
	if len(shapes) != len(descs) {
		return fmt.Errorf("expected %d input shapes, got %d", len(descs), len(shapes))
	}
	for k, s := range shapes {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("input %q: %w", descs[k].Name, err)
		}
		if !descs[k].Dims.Matches(s) {
			return fmt.Errorf("input %q: shape %s does not match model shape %s",
				descs[k].Name, s, descs[k].Dims)
		}
	}
	return nil
}

// RunSync wraps the bindings as ONNX Runtime tensors over the caller's
// memory and runs the session. Outputs are written in place.
func (i *Instance) RunSync(inputs, outputs []tensor.Binding) error {
	if i.closed {
		return errClosed
	}
	if i.shapes == nil {
		return errors.New("input shapes not set")
	}
	if len(inputs) != len(i.inputs) || len(outputs) != len(i.outputs) {
		return fmt.Errorf("expected %d inputs and %d outputs, got %d and %d",
			len(i.inputs), len(i.outputs), len(inputs), len(outputs))
	}

	values := make([]onnxruntime.Value, 0, len(inputs)+len(outputs))
	defer func() {
		for _, v := range values {
			v.Destroy() //nolint:errcheck,gosec // Release is best effort.
		}
	}()

	for k, b := range inputs {
		shape := b.Shape
		if shape == nil {
			shape = i.shapes[k]
		}
		v, err := onnxruntime.NewTensor(onnxruntime.NewShape(shape.Int64()...), b.Data)
		if err != nil {
			return fmt.Errorf("input %q: %w", i.inputs[k].Name, err)
		}
		values = append(values, v)
	}
	for k, b := range outputs {
		shape := b.Shape
		if shape == nil {
			shape = tensor.Shape{len(b.Data)}
		}
		v, err := onnxruntime.NewTensor(onnxruntime.NewShape(shape.Int64()...), b.Data)
		if err != nil {
			return fmt.Errorf("output %q: %w", i.outputs[k].Name, err)
		}
		values = append(values, v)
	}

	klog.V(3).InfoS("Running ONNX Runtime session", "inputs", len(inputs), "outputs", len(outputs))
	return i.session.Run(values[:len(inputs)], values[len(inputs):])
}

// Close destroys the session.
func (i *Instance) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true
	i.shapes = nil
	if i.session == nil {
		return nil
	}
	return i.session.Destroy()
}
