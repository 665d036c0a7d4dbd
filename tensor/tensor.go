// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/nnebind/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{1, 3, 640, 640} is a batch of one 3-channel 640×640 image.
type Shape = tensor.Shape

// Buffer is a float32 tensor with a validated shape.
type Buffer = tensor.Buffer

// Binding is a non-owning view of a buffer's memory and shape.
type Binding = tensor.Binding

// ElementSize is the size in bytes of one tensor element.
const ElementSize = tensor.ElementSize

// Errors returned by shape validation and buffer construction.
var (
	ErrInvalidShape  = tensor.ErrInvalidShape
	ErrShapeOverflow = tensor.ErrShapeOverflow
	ErrDataLength    = tensor.ErrDataLength
)

// New creates a zero-filled buffer.
//
// Fails with ErrInvalidShape if the shape is empty or has a dimension below 1,
// and with ErrShapeOverflow if its byte size does not fit in an int.
//
// Example:
//
//	out, err := tensor.New(tensor.Shape{1, 84, 8400})
func New(shape Shape) (*Buffer, error) {
	return tensor.New(shape)
}

// FromSlice wraps data without copying. len(data) must equal the shape's volume.
//
// Example:
//
//	data := []float32{1, 2, 3, 4, 5, 6}
//	b, err := tensor.FromSlice(data, tensor.Shape{2, 3})
func FromSlice(data []float32, shape Shape) (*Buffer, error) {
	return tensor.FromSlice(data, shape)
}
