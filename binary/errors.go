package binary

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEOF indicates a read past the end of the buffer
	ErrUnexpectedEOF = errors.New("unexpected end of data")
	// ErrInvalidToken indicates an unknown or unassigned token code
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidListSize indicates a list size marker outside the three size classes
	ErrInvalidListSize = errors.New("invalid list size marker")
	// ErrInvalidUTF8 indicates a string that is not valid UTF-8
	ErrInvalidUTF8 = errors.New("invalid utf-8 string")
	// ErrInvalidPacked indicates a malformed nibble or hex packed string
	ErrInvalidPacked = errors.New("invalid packed string")
	// ErrMaxDepthExceeded indicates children nested deeper than the decoder allows
	ErrMaxDepthExceeded = errors.New("maximum node depth exceeded")
	// ErrTrailingData indicates bytes left over after the root node
	ErrTrailingData = errors.New("trailing data after node")
	// ErrValueTooLarge indicates a list or payload too large for its size class
	ErrValueTooLarge = errors.New("value too large to encode")
	// ErrInvalidFrameFlags indicates an unsupported frame payload flag byte
	ErrInvalidFrameFlags = errors.New("invalid frame flags")
)

// DecodeError reports where in the input a decode failed.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("binary: decode failed at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
