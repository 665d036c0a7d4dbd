package engine

import (
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/born-ml/nnebind/internal/tensor"
)

// State is the lifecycle state of a Session.
type State int

// Session states. StateReady is implicit: a session with bound inputs is
// ready to run.
const (
	StateCreated State = iota
	StateInputsBound
	StateReady
	StateExecuted
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateInputsBound:
		return "InputsBound"
	case StateReady:
		return "Ready"
	case StateExecuted:
		return "Executed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Session.
type Options struct {
	// Shapes selects introspected or fixed declared shapes.
	Shapes ShapePolicy

	// EnforceDeclaredShape requires bound buffers to carry exactly the
	// declared shape instead of only its element count.
	EnforceDeclaredShape bool
}

// Session binds caller buffers to one model instance and runs it
// synchronously.
//
// A Session is not safe for concurrent use. Callers running inference from
// several goroutines must use one session per goroutine or serialise access.
type Session struct {
	instance   ModelInstance
	descriptor *Descriptor
	validator  Validator
	shapes     ShapePolicy

	inputs []tensor.Binding
	state  State
}

// NewSession creates a session over instance.
// It panics if instance is nil.
func NewSession(instance ModelInstance, opts Options) (*Session, error) {
	if instance == nil {
		panic("engine: NewSession called with nil model instance")
	}
	if err := opts.Shapes.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		instance:   instance,
		descriptor: NewDescriptor(instance, opts.Shapes),
		validator:  Validator{EnforceDeclaredShape: opts.EnforceDeclaredShape},
		shapes:     opts.Shapes,
		state:      StateCreated,
	}

	if opts.Shapes.Source == ShapeSourceFixed {
		if err := s.checkFixedArity(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) checkFixedArity() error {
	const op = "NewSession"

	inputs, err := s.descriptor.InputCount()
	if err != nil {
		return err
	}
	if n := len(s.shapes.Inputs); n > 1 && n != inputs {
		return newError(op, ErrArityMismatch, -1, "policy fixes %d input shapes, model has %d inputs", n, inputs)
	}

	outputs, err := s.descriptor.OutputCount()
	if err != nil {
		return err
	}
	if n := len(s.shapes.Outputs); n > 1 && n != outputs {
		return newError(op, ErrArityMismatch, -1, "policy fixes %d output shapes, model has %d outputs", n, outputs)
	}
	return nil
}

// Descriptor returns the session's view of the model's tensor slots.
func (s *Session) Descriptor() *Descriptor {
	return s.descriptor
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// SetInputs validates inputs and binds them for the next RunSync.
//
// Each input is bound without copying. When the declared shape is fully
// known it is presented to the runtime in place of the buffer's own shape.
// On failure the session keeps its previous bindings and state.
func (s *Session) SetInputs(inputs []*tensor.Buffer) error {
	const op = "SetInputs"

	klog.V(2).InfoS("SetInputs called", "inputs", len(inputs), "state", s.state)

	if err := s.validator.ValidateInputs(inputs, s.descriptor); err != nil {
		return err
	}

	bindings := make([]tensor.Binding, len(inputs))
	shapes := make([]tensor.Shape, len(inputs))
	for i, in := range inputs {
		shape, err := s.presentedShape(i, in)
		if err != nil {
			return err
		}
		bindings[i] = in.Binding().WithShape(shape)
		shapes[i] = shape

		klog.V(2).InfoS("Binding input", "index", i, "shape", shape.String(), "bytes", bindings[i].SizeInBytes())
	}

	if err := s.instance.SetInputShapes(shapes); err != nil {
		if errors.Is(err, ErrModelInvalid) {
			return err
		}
		return &Error{Op: op, Kind: ErrRuntimeRejectedShapes, Index: -1, Err: err}
	}

	s.inputs = bindings
	s.state = StateInputsBound
	return nil
}

// presentedShape is the shape the runtime sees for input index. A concrete
// declared shape wins whenever its volume matches the buffer; the buffer's
// own shape is used only when the declared one has dynamic dimensions.
func (s *Session) presentedShape(index int, in *tensor.Buffer) (tensor.Shape, error) {
	declared, err := s.descriptor.DeclaredInputShape(index)
	if err != nil {
		return nil, err
	}
	shape, ok := declared.Concrete()
	if !ok {
		return in.Shape(), nil
	}
	if v, err := shape.Volume(); err != nil || v != in.Len() {
		return in.Shape(), nil
	}
	return shape, nil
}

// RunSync executes the model on the bound inputs, writing into outputs.
//
// The runtime writes directly into the outputs' memory. It is called at
// most once per RunSync; failures are returned without retry.
func (s *Session) RunSync(outputs []*tensor.Buffer) error {
	const op = "RunSync"

	klog.V(2).InfoS("RunSync called", "outputs", len(outputs), "state", s.state)

	if s.state == StateCreated {
		return newError(op, ErrSessionNotReady, -1, "call SetInputs first")
	}
	if err := s.validator.ValidateOutputs(outputs, s.descriptor); err != nil {
		return err
	}

	bindings := make([]tensor.Binding, len(outputs))
	for i, out := range outputs {
		bindings[i] = out.Binding()
		if declared, err := s.descriptor.DeclaredOutputShape(i); err == nil {
			if shape, ok := declared.Concrete(); ok {
				if v, err := shape.Volume(); err == nil && v == out.Len() {
					bindings[i] = bindings[i].WithShape(shape)
				}
			}
		}
		klog.V(2).InfoS("Binding output", "index", i, "shape", bindings[i].Shape.String(), "bytes", bindings[i].SizeInBytes())
	}

	s.state = StateReady
	if err := s.instance.RunSync(s.inputs, bindings); err != nil {
		s.state = StateInputsBound
		if errors.Is(err, ErrModelInvalid) {
			return err
		}
		return &Error{Op: op, Kind: ErrEngineExecutionError, Index: -1, Err: err}
	}

	klog.V(2).InfoS("RunSync succeeded")
	s.state = StateExecuted
	return nil
}

// Close releases the model instance. The session is unusable afterwards.
func (s *Session) Close() error {
	s.inputs = nil
	return s.instance.Close()
}
