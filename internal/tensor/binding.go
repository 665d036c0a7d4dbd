package tensor

// Binding associates caller-owned memory with one tensor slot for a single
// execution call.
//
// Data shares its backing array with the Buffer it was taken from: a runtime
// that writes into Data writes into the caller's buffer. The Buffer must
// outlive the call and must not be mutated concurrently while bound.
type Binding struct {
	Data  []float32
	Shape Shape
}

// SizeInBytes returns the byte length of the bound memory.
func (b Binding) SizeInBytes() int {
	return len(b.Data) * ElementSize
}

// WithShape returns a copy of the binding presenting a different shape over
// the same memory.
func (b Binding) WithShape(shape Shape) Binding {
	return Binding{
		Data:  b.Data,
		Shape: shape.Clone(),
	}
}
