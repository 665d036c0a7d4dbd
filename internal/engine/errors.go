package engine

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrModelInvalid          = errors.New("model instance is not valid")
	ErrIndexOutOfRange       = errors.New("tensor index out of range")
	ErrArityMismatch         = errors.New("tensor count does not match model")
	ErrShapeMismatch         = errors.New("tensor shape does not match declared shape")
	ErrEmptyOutputBuffer     = errors.New("output buffer is empty")
	ErrRuntimeRejectedShapes = errors.New("runtime rejected input shapes")
	ErrSessionNotReady       = errors.New("session has no bound inputs")
	ErrEngineExecutionError  = errors.New("runtime execution failed")
	ErrUnknownRuntime        = errors.New("unknown runtime")
	ErrModelLoad             = errors.New("model load failed")
)

// Error provides detailed information about a failed operation.
// It matches its Kind sentinel and its underlying cause with errors.Is.
type Error struct {
	Op      string // Operation (e.g. "SetInputs", "RunSync")
	Kind    error  // One of the sentinel errors above
	Index   int    // Tensor index involved, -1 when not applicable
	Details string // Additional details
	Err     error  // Underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.Index >= 0 {
		msg += fmt.Sprintf(" (tensor %d)", e.Index)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op string, kind error, index int, format string, args ...any) *Error {
	return &Error{
		Op:      op,
		Kind:    kind,
		Index:   index,
		Details: fmt.Sprintf(format, args...),
	}
}

// modelInvalid normalises an error returned by a model instance so that it
// always matches ErrModelInvalid.
func modelInvalid(op string, err error) error {
	if errors.Is(err, ErrModelInvalid) {
		return err
	}
	return &Error{Op: op, Kind: ErrModelInvalid, Index: -1, Err: err}
}
