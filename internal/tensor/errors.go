package tensor

import "errors"

// Common errors.
var (
	ErrInvalidShape  = errors.New("invalid shape")
	ErrShapeOverflow = errors.New("shape volume overflows buffer size")
	ErrDataLength    = errors.New("data length does not match shape volume")
)
