package binary

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/opd-ai/wacore/limits"
)

// FlagCompressed marks a frame payload whose body is zlib-compressed.
const FlagCompressed = 0x02

// Pack prefixes an encoded node with the frame flag byte, compressing the
// body when compress is set.
func Pack(data []byte, compress bool) ([]byte, error) {
	if !compress {
		out := make([]byte, 1+len(data))
		copy(out[1:], data)
		return out, nil
	}

	var buf bytes.Buffer
	buf.WriteByte(FlagCompressed)
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	return buf.Bytes(), nil
}

// Unpack strips the frame flag byte and inflates compressed bodies.
func Unpack(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrUnexpectedEOF
	}
	flags, body := data[0], data[1:]
	if flags&^FlagCompressed != 0 {
		return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidFrameFlags, flags)
	}
	if flags&FlagCompressed == 0 {
		return body, nil
	}

	r, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, limits.MaxFrameSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	if len(out) > limits.MaxFrameSize {
		return nil, fmt.Errorf("%w: decompressed payload exceeds %d bytes", limits.ErrMessageTooLarge, limits.MaxFrameSize)
	}
	return out, nil
}
