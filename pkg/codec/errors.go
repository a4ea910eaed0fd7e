package codec

import (
	"errors"
	"fmt"
)

// Parse errors.
var (
	// ErrParse matches every *ParseError.
	ErrParse = errors.New("parse error")

	// ErrShortBuffer indicates fewer bytes than the element declares.
	ErrShortBuffer = errors.New("buffer too short")

	// ErrChecksumMismatch indicates a checksum that does not match its data.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrLengthMismatch indicates a parser that consumed a different number
	// of bytes than the element's declared length.
	ErrLengthMismatch = errors.New("length mismatch")
)

// ParseError describes a failure to decode an element from a buffer.
type ParseError struct {
	// Element names the element being decoded (e.g. "frame", "FNOM").
	Element string

	// Offset is the buffer index at which decoding of the element started.
	Offset int

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s at offset %d: %v", e.Element, e.Offset, e.Err)
}

// Unwrap returns the cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes every ParseError match ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// NewParseError returns a ParseError for element at offset.
func NewParseError(element string, offset int, err error) *ParseError {
	return &ParseError{Element: element, Offset: offset, Err: err}
}
