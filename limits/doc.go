// Package limits provides centralized size and depth limits for the binary
// node format and the framed transport. Keeping them in one place ensures the
// codec, the socket and the configuration layer enforce the same bounds.
//
// # Size Hierarchy
//
//   - MaxFrameSize (16 MiB - 1): the largest frame a 3-byte length prefix can
//     describe. Frames read from or written to the wire are validated against it.
//
//   - MaxPlaintextFrame: MaxFrameSize minus the AEAD tag (16 bytes). This is
//     the largest encoded node that still fits in one encrypted frame.
//
//   - MaxListSize (65535): the largest attribute or child count the 16-bit
//     list size class can carry.
//
//   - DefaultMaxNodeDepth (64): the default nesting limit for decoding. The
//     limit is configurable; decoding attacker-controlled input without one
//     could exhaust the goroutine stack.
//
// # Validation Functions
//
//	if err := limits.ValidateFrame(frame); err != nil {
//	    // ErrMessageEmpty or ErrMessageTooLarge
//	}
//
//	if err := limits.ValidateDepth(depth); err != nil {
//	    // ErrInvalidDepth
//	}
//
// # Error Types
//
//   - ErrMessageEmpty: an empty frame was provided where one is required
//   - ErrMessageTooLarge: a frame or payload exceeds its limit
//   - ErrInvalidDepth: a nesting limit outside 1..MaxNodeDepth
package limits
