package tensor

import (
	"fmt"

	"k8s.io/klog/v2"
)

// Buffer is a flat float32 tensor with a fixed shape.
//
// The invariant len(Data()) == Shape().Volume() holds for every Buffer
// returned by New or FromSlice. The zero value is an empty buffer with no
// shape; it is only useful as a placeholder and is rejected wherever data
// is required.
type Buffer struct {
	shape Shape
	data  []float32
}

// New allocates a zero-filled buffer for the given shape.
//
// It fails with ErrInvalidShape when the shape is empty or has a dimension
// below 1, and with ErrShapeOverflow when the volume is not addressable.
func New(shape Shape) (*Buffer, error) {
	volume, err := shape.Volume()
	if err != nil {
		return nil, err
	}

	klog.V(2).InfoS("Allocating tensor", "shape", shape.String(), "volume", volume)

	return &Buffer{
		shape: shape.Clone(),
		data:  make([]float32, volume),
	}, nil
}

// FromSlice wraps data in a Buffer without copying it.
// The caller keeps ownership of the backing array.
func FromSlice(data []float32, shape Shape) (*Buffer, error) {
	volume, err := shape.Volume()
	if err != nil {
		return nil, err
	}
	if volume != len(data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, got %d", ErrDataLength, shape, volume, len(data))
	}
	return &Buffer{
		shape: shape.Clone(),
		data:  data,
	}, nil
}

// Shape returns a copy of the buffer's shape.
func (b *Buffer) Shape() Shape {
	return b.shape.Clone()
}

// Data returns the underlying elements. The slice is NOT a copy.
func (b *Buffer) Data() []float32 {
	return b.data
}

// Len returns the number of elements. A nil buffer has length 0.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// SizeInBytes returns Len() * ElementSize.
func (b *Buffer) SizeInBytes() int {
	return b.Len() * ElementSize
}

// Fill sets every element to v.
func (b *Buffer) Fill(v float32) {
	for i := range b.data {
		b.data[i] = v
	}
}

// Binding returns a non-owning view over the buffer.
func (b *Buffer) Binding() Binding {
	return Binding{
		Data:  b.data,
		Shape: b.shape.Clone(),
	}
}
