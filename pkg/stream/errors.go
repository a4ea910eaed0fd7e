package stream

import (
	"errors"
	"fmt"
)

// Stream errors.
var (
	// ErrInvalidArgument indicates a malformed connection string or setting.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange indicates a setting outside its permitted range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrResourceNotFound indicates the named resource does not exist.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrIO indicates an open, seek or read failure on the resource.
	ErrIO = errors.New("i/o failure")

	// ErrAborted indicates a connection cycle was cancelled.
	ErrAborted = errors.New("connection aborted")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("client closed")
)

// ArgumentError reports a malformed connection string or argument.
type ArgumentError struct {
	Arg string
	Msg string
}

func (e *ArgumentError) Error() string {
	if e.Arg == "" {
		return fmt.Sprintf("%v: %s", ErrInvalidArgument, e.Msg)
	}
	return fmt.Sprintf("%v %q: %s", ErrInvalidArgument, e.Arg, e.Msg)
}

// Unwrap returns ErrInvalidArgument.
func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

// RangeError reports a setting outside its permitted range.
type RangeError struct {
	Setting string
	Value   any
	Allowed string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %v %v: must be %s", e.Setting, e.Value, ErrOutOfRange, e.Allowed)
}

// Unwrap returns ErrOutOfRange.
func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// ResourceNotFoundError reports a resource that does not exist.
type ResourceNotFoundError struct {
	Source string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", ErrResourceNotFound, e.Source)
}

// Unwrap returns ErrResourceNotFound.
func (e *ResourceNotFoundError) Unwrap() error { return ErrResourceNotFound }

// IOError reports a failed operation on a resource.
type IOError struct {
	Op     string
	Source string
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error { return e.Err }

// Is reports ErrIO as well as the underlying error.
func (e *IOError) Is(target error) bool { return target == ErrIO }
