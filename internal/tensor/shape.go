package tensor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ElementSize is the byte size of a float32 element, the only element type
// exchanged with inference runtimes.
const ElementSize = 4

// maxVolume bounds the element count so that the byte size of a buffer is
// still representable as an int.
const maxVolume = math.MaxInt / ElementSize

// Shape represents the dimensions of a tensor.
// A valid shape has at least one dimension and every extent is >= 1.
type Shape []int

// Validate checks that the shape is non-empty and every dimension is >= 1.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: shape is empty", ErrInvalidShape)
	}
	for i, dim := range s {
		if dim < 1 {
			return fmt.Errorf("%w: dimension %d is %d (must be >= 1)", ErrInvalidShape, i, dim)
		}
	}
	return nil
}

// Volume returns the number of elements described by the shape.
// The product is accumulated with overflow checks.
func (s Shape) Volume() (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	volume := 1
	for _, dim := range s {
		v, err := checkedMul(volume, dim)
		if err != nil {
			return 0, fmt.Errorf("%w: %v: %v", ErrShapeOverflow, s, err)
		}
		volume = v
	}
	return volume, nil
}

// SizeInBytes returns Volume() * ElementSize.
func (s Shape) SizeInBytes() (int, error) {
	v, err := s.Volume()
	if err != nil {
		return 0, err
	}
	return v * ElementSize, nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Int64 returns the shape as int64 extents, the form runtimes expect.
func (s Shape) Int64() []int64 {
	dims := make([]int64, len(s))
	for i, d := range s {
		dims[i] = int64(d)
	}
	return dims
}

// String formats the shape as "1x3x640x640".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, "x")
}

// checkedMul multiplies two positive extents, failing when the product
// leaves the addressable buffer domain.
func checkedMul(a, b int) (int, error) {
	if a > 0 && b > maxVolume/a {
		return 0, fmt.Errorf("multiplication overflow: %d * %d", a, b)
	}
	return a * b, nil
}
