package engine

import (
	"github.com/born-ml/nnebind/internal/tensor"
)

// Validator matches caller-supplied buffers against a model's declared
// tensor slots.
//
// By default a candidate only has to carry as many elements as the declared
// shape when that shape is fully known. With EnforceDeclaredShape set the
// candidate's shape must equal the declared one, dynamic dimensions aside.
type Validator struct {
	EnforceDeclaredShape bool
}

// ValidateInputs checks the input candidates against d.
func (v Validator) ValidateInputs(candidates []*tensor.Buffer, d *Descriptor) error {
	const op = "ValidateInputs"

	count, err := d.InputCount()
	if err != nil {
		return err
	}
	if len(candidates) != count {
		return newError(op, ErrArityMismatch, -1, "expected %d input tensors, got %d", count, len(candidates))
	}

	for i, c := range candidates {
		if c.Len() == 0 {
			return newError(op, ErrShapeMismatch, i, "input buffer is empty")
		}
		declared, err := d.DeclaredInputShape(i)
		if err != nil {
			return err
		}
		if err := v.checkShape(op, i, c, declared); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOutputs checks the output candidates against d.
func (v Validator) ValidateOutputs(candidates []*tensor.Buffer, d *Descriptor) error {
	const op = "ValidateOutputs"

	count, err := d.OutputCount()
	if err != nil {
		return err
	}
	if len(candidates) != count {
		return newError(op, ErrArityMismatch, -1, "expected %d output tensors, got %d", count, len(candidates))
	}

	for i, c := range candidates {
		if c.Len() == 0 {
			return newError(op, ErrEmptyOutputBuffer, i, "output tensor has no elements")
		}
		if !v.EnforceDeclaredShape {
			continue
		}
		declared, err := d.DeclaredOutputShape(i)
		if err != nil {
			return err
		}
		if err := v.checkShape(op, i, c, declared); err != nil {
			return err
		}
	}
	return nil
}

func (v Validator) checkShape(op string, index int, c *tensor.Buffer, declared SymbolicShape) error {
	if v.EnforceDeclaredShape {
		if !declared.Matches(c.Shape()) {
			return newError(op, ErrShapeMismatch, index, "got %v, declared %v", c.Shape(), declared)
		}
		return nil
	}

	concrete, ok := declared.Concrete()
	if !ok {
		return nil
	}
	volume, err := concrete.Volume()
	if err != nil {
		return newError(op, ErrShapeMismatch, index, "declared shape %v: %v", declared, err)
	}
	if volume != c.Len() {
		return newError(op, ErrShapeMismatch, index, "got %d elements (%d bytes), declared %v needs %d",
			c.Len(), c.SizeInBytes(), declared, volume)
	}
	return nil
}
