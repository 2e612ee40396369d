package limits

import (
	"errors"
	"fmt"
)

const (
	// FrameHeaderSize is the size of the big-endian frame length prefix.
	FrameHeaderSize = 3

	// MaxFrameSize is the largest frame the 3-byte length prefix can describe.
	MaxFrameSize = 1<<24 - 1

	// EncryptionOverhead is the AES-GCM authentication tag appended to every
	// encrypted frame.
	EncryptionOverhead = 16

	// MaxPlaintextFrame is the largest payload that still fits in one frame
	// after encryption.
	MaxPlaintextFrame = MaxFrameSize - EncryptionOverhead

	// MaxListSize is the largest attribute or child count (16-bit size class).
	MaxListSize = 1<<16 - 1

	// DefaultMaxNodeDepth is the default nesting limit used when decoding nodes.
	DefaultMaxNodeDepth = 64

	// MaxNodeDepth is the largest nesting limit a caller may configure.
	MaxNodeDepth = 4096
)

var (
	// ErrMessageEmpty indicates an empty message was provided
	ErrMessageEmpty = errors.New("empty message")

	// ErrMessageTooLarge indicates message exceeds maximum size
	ErrMessageTooLarge = errors.New("message too large")

	// ErrInvalidDepth indicates a nesting limit outside the supported range
	ErrInvalidDepth = errors.New("invalid nesting depth")
)

// ValidateMessageSize validates a message against the specified maximum size.
// Returns an error with context including the actual and maximum sizes.
func ValidateMessageSize(message []byte, maxSize int) error {
	if len(message) == 0 {
		return ErrMessageEmpty
	}
	if len(message) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMessageTooLarge, len(message), maxSize)
	}
	return nil
}

// ValidateFrame validates a wire frame against MaxFrameSize.
func ValidateFrame(frame []byte) error {
	return ValidateMessageSize(frame, MaxFrameSize)
}

// ValidatePlaintextFrame validates a payload that is about to be encrypted.
// Empty payloads are allowed: they still produce an authentication tag.
func ValidatePlaintextFrame(payload []byte) error {
	if len(payload) > MaxPlaintextFrame {
		return fmt.Errorf("%w: plaintext size %d exceeds limit %d", ErrMessageTooLarge, len(payload), MaxPlaintextFrame)
	}
	return nil
}

// ValidateDepth checks a configured nesting limit.
func ValidateDepth(depth int) error {
	if depth < 1 || depth > MaxNodeDepth {
		return fmt.Errorf("%w: %d not in 1..%d", ErrInvalidDepth, depth, MaxNodeDepth)
	}
	return nil
}
