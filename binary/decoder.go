package binary

import (
	"fmt"
	"unicode/utf8"

	"github.com/opd-ai/wacore/binary/token"
	"github.com/opd-ai/wacore/limits"
	"github.com/sirupsen/logrus"
)

// Decoder reads nodes from a byte buffer. A Decoder is not safe for
// concurrent use.
type Decoder struct {
	data     []byte
	pos      int
	maxDepth int
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMaxDepth sets the maximum nesting depth accepted by the decoder. The
// root node is depth 1. Values outside 1..limits.MaxNodeDepth are clamped.
func WithMaxDepth(depth int) DecoderOption {
	return func(d *Decoder) {
		switch {
		case depth < 1:
			d.maxDepth = 1
		case depth > limits.MaxNodeDepth:
			d.maxDepth = limits.MaxNodeDepth
		default:
			d.maxDepth = depth
		}
	}
}

// NewDecoder returns a decoder positioned at the start of data.
func NewDecoder(data []byte, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		data:     data,
		maxDepth: limits.DefaultMaxNodeDepth,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Unmarshal decodes exactly one node from data. Bytes left over after the
// root node are an error.
func Unmarshal(data []byte, opts ...DecoderOption) (Node, error) {
	d := NewDecoder(data, opts...)
	node, err := d.Decode()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Unmarshal",
			"size":     len(data),
			"error":    err.Error(),
		}).Debug("Failed to decode node")
		return Node{}, err
	}
	if rest := d.Remaining(); rest != 0 {
		return Node{}, &DecodeError{
			Offset: d.pos,
			Err:    fmt.Errorf("%w: %d bytes", ErrTrailingData, rest),
		}
	}
	return node, nil
}

// Decode reads the next node. On failure the cursor is left where it was
// before the call and the error is a *DecodeError.
func (d *Decoder) Decode() (Node, error) {
	start := d.pos
	node, err := d.readNode(1)
	if err != nil {
		offset := d.pos
		d.pos = start
		return Node{}, &DecodeError{Offset: offset, Err: err}
	}
	return node, nil
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

func (d *Decoder) readNode(depth int) (Node, error) {
	if depth > d.maxDepth {
		return Node{}, fmt.Errorf("%w: limit %d", ErrMaxDepthExceeded, d.maxDepth)
	}

	tag, err := d.readString(true)
	if err != nil {
		return Node{}, fmt.Errorf("tag: %w", err)
	}

	attrs, err := d.readAttributes()
	if err != nil {
		return Node{}, fmt.Errorf("attributes of <%s>: %w", tag, err)
	}

	content, err := d.readContent(depth)
	if err != nil {
		return Node{}, fmt.Errorf("content of <%s>: %w", tag, err)
	}

	return Node{Tag: tag, Attrs: attrs, Content: content}, nil
}

func (d *Decoder) readAttributes() (Attrs, error) {
	count, err := d.readListSize()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	attrs := make(Attrs, count)
	for i := 0; i < count; i++ {
		key, err := d.readString(true)
		if err != nil {
			return nil, err
		}
		value, err := d.readString(true)
		if err != nil {
			return nil, err
		}
		attrs[key] = value
	}
	return attrs, nil
}

func (d *Decoder) readContent(depth int) (Content, error) {
	marker, err := d.peekByte()
	if err != nil {
		return nil, err
	}

	switch marker {
	case token.ListEmpty:
		d.pos++
		return nil, nil
	case token.List8, token.List16:
		return d.readChildren(depth)
	case token.Binary8, token.Binary20, token.Binary32:
		d.pos++
		length, err := d.readLength(marker)
		if err != nil {
			return nil, err
		}
		data, err := d.readBytes(length)
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(data))
		copy(out, data)
		return Binary(out), nil
	case token.TextMarker:
		d.pos++
	}

	text, err := d.readString(true)
	if err != nil {
		return nil, err
	}
	return Text(text), nil
}

func (d *Decoder) readChildren(depth int) (Content, error) {
	count, err := d.readListSize()
	if err != nil {
		return nil, err
	}

	// Every child needs at least three bytes, so the remaining input bounds
	// the allocation.
	capacity := count
	if rest := d.Remaining() / 3; capacity > rest {
		capacity = rest
	}
	children := make(Children, 0, capacity)
	for i := 0; i < count; i++ {
		child, err := d.readNode(depth + 1)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func (d *Decoder) readListSize() (int, error) {
	marker, err := d.readByte()
	if err != nil {
		return 0, err
	}

	switch marker {
	case token.ListEmpty:
		return 0, nil
	case token.List8:
		n, err := d.readByte()
		return int(n), err
	case token.List16:
		n, err := d.readInt16()
		return int(n), err
	default:
		d.pos--
		return 0, fmt.Errorf("%w: %d", ErrInvalidListSize, marker)
	}
}

// readString reads a string in any of its encodings. JID pairs may not nest.
func (d *Decoder) readString(allowJID bool) (string, error) {
	b, err := d.readByte()
	if err != nil {
		return "", err
	}

	switch {
	case b == token.ListEmpty:
		return "", nil
	case b <= token.PackedMax:
		return d.readUTF8(uint32(b))
	case token.IsSingleByte(b):
		tok, ok := token.DecodeSingle(b)
		if !ok {
			return "", fmt.Errorf("%w: single-byte code %d", ErrInvalidToken, b)
		}
		return tok, nil
	case token.IsDictionary(b):
		index, err := d.readByte()
		if err != nil {
			return "", err
		}
		dict := b - token.Dictionary0
		tok, ok := token.DecodeDouble(dict, index)
		if !ok {
			return "", fmt.Errorf("%w: double-byte code %d:%d", ErrInvalidToken, dict, index)
		}
		return tok, nil
	case b == token.Binary8 || b == token.Binary20 || b == token.Binary32:
		length, err := d.readLength(b)
		if err != nil {
			return "", err
		}
		return d.readUTF8(length)
	case b == token.JIDPair && allowJID:
		return d.readJIDPair()
	case b == token.Nibble8 || b == token.Hex8:
		return d.readPacked(b)
	default:
		return "", fmt.Errorf("%w: unsupported string type %d", ErrInvalidToken, b)
	}
}

func (d *Decoder) readJIDPair() (string, error) {
	user, err := d.readString(false)
	if err != nil {
		return "", err
	}
	server, err := d.readString(false)
	if err != nil {
		return "", err
	}
	return user + "@" + server, nil
}

func (d *Decoder) readPacked(kind byte) (string, error) {
	start, err := d.readByte()
	if err != nil {
		return "", err
	}
	odd := start&0x80 != 0
	size := uint32(start & 0x7F)
	if odd && size == 0 {
		return "", fmt.Errorf("%w: odd flag on empty string", ErrInvalidPacked)
	}

	data, err := d.readBytes(size)
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, len(data)*2)
	for i, b := range data {
		hi, err := unpackNibble(kind, b>>4)
		if err != nil {
			return "", err
		}
		out = append(out, hi)

		if odd && i == len(data)-1 {
			if b&0x0F != 0x0F {
				return "", fmt.Errorf("%w: bad padding nibble %d", ErrInvalidPacked, b&0x0F)
			}
			break
		}
		lo, err := unpackNibble(kind, b&0x0F)
		if err != nil {
			return "", err
		}
		out = append(out, lo)
	}
	return string(out), nil
}

func unpackNibble(kind, v byte) (byte, error) {
	if kind == token.Hex8 {
		switch {
		case v < 10:
			return '0' + v, nil
		default:
			return 'A' + v - 10, nil
		}
	}
	switch {
	case v < 10:
		return '0' + v, nil
	case v == 10:
		return '-', nil
	case v == 11:
		return '.', nil
	default:
		return 0, fmt.Errorf("%w: nibble %d", ErrInvalidPacked, v)
	}
}

// readLength reads the length that follows a Binary8/20/32 marker.
func (d *Decoder) readLength(marker byte) (uint32, error) {
	switch marker {
	case token.Binary8:
		n, err := d.readByte()
		return uint32(n), err
	case token.Binary20:
		return d.readInt20()
	default:
		return d.readInt32()
	}
}

func (d *Decoder) readUTF8(length uint32) (string, error) {
	data, err := d.readBytes(length)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

func (d *Decoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, ErrUnexpectedEOF
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *Decoder) peekByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, ErrUnexpectedEOF
	}
	return d.data[d.pos], nil
}

// readBytes returns a view into the buffer; callers copy what they keep.
func (d *Decoder) readBytes(n uint32) ([]byte, error) {
	if uint64(n) > uint64(d.Remaining()) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEOF, n, d.Remaining())
	}
	end := d.pos + int(n)
	data := d.data[d.pos:end]
	d.pos = end
	return data, nil
}

func (d *Decoder) readInt16() (uint16, error) {
	b, err := d.readBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (d *Decoder) readInt20() (uint32, error) {
	b, err := d.readBytes(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]&0x0F)<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

func (d *Decoder) readInt32() (uint32, error) {
	b, err := d.readBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}
