package binary

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/opd-ai/wacore/binary/token"
	"github.com/opd-ai/wacore/limits"
)

// Encoder writes nodes in the binary format. The zero value is ready to use.
// An Encoder reuses its internal buffer between calls and is not safe for
// concurrent use.
type Encoder struct {
	buf []byte
}

// Marshal encodes n. It is the inverse of Unmarshal.
func Marshal(n Node) ([]byte, error) {
	var e Encoder
	return e.Encode(n)
}

// Encode encodes n and returns a newly allocated byte slice.
func (e *Encoder) Encode(n Node) ([]byte, error) {
	e.buf = e.buf[:0]
	if err := e.writeNode(n, 1); err != nil {
		return nil, err
	}
	out := make([]byte, len(e.buf))
	copy(out, e.buf)
	return out, nil
}

func (e *Encoder) writeNode(n Node, depth int) error {
	if depth > limits.MaxNodeDepth {
		return fmt.Errorf("%w: limit %d", ErrMaxDepthExceeded, limits.MaxNodeDepth)
	}
	if err := e.writeString(n.Tag, true); err != nil {
		return fmt.Errorf("tag: %w", err)
	}
	if err := e.writeAttributes(n.Attrs); err != nil {
		return fmt.Errorf("attributes of <%s>: %w", n.Tag, err)
	}
	if err := e.writeContent(n.Content, depth); err != nil {
		return fmt.Errorf("content of <%s>: %w", n.Tag, err)
	}
	return nil
}

// writeAttributes writes attributes in sorted key order so equal nodes
// always produce equal bytes.
func (e *Encoder) writeAttributes(attrs Attrs) error {
	if err := e.writeListSize(len(attrs), false); err != nil {
		return err
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := e.writeString(k, true); err != nil {
			return err
		}
		if err := e.writeString(attrs[k], true); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeContent(content Content, depth int) error {
	switch c := content.(type) {
	case nil:
		e.buf = append(e.buf, token.ListEmpty)
	case Children:
		if err := e.writeListSize(len(c), true); err != nil {
			return err
		}
		for _, child := range c {
			if err := e.writeNode(child, depth+1); err != nil {
				return err
			}
		}
	case Binary:
		if err := e.writeByteLength(len(c)); err != nil {
			return err
		}
		e.buf = append(e.buf, c...)
	case Text:
		start := len(e.buf)
		if err := e.writeString(string(c), true); err != nil {
			return err
		}
		// Text whose first byte reads as a None or Binary marker needs an
		// explicit TextMarker in front of it.
		switch e.buf[start] {
		case token.ListEmpty, token.Binary8, token.Binary20, token.Binary32:
			e.buf = append(e.buf, 0)
			copy(e.buf[start+1:], e.buf[start:])
			e.buf[start] = token.TextMarker
		}
	default:
		return fmt.Errorf("unsupported content type %T", content)
	}
	return nil
}

// writeListSize writes a count using the ListEmpty/List8/List16 size
// classes. Child lists never use ListEmpty, which would read as no content.
func (e *Encoder) writeListSize(n int, children bool) error {
	switch {
	case n == 0 && !children:
		e.buf = append(e.buf, token.ListEmpty)
	case n < 256:
		e.buf = append(e.buf, token.List8, byte(n))
	case n <= limits.MaxListSize:
		e.buf = append(e.buf, token.List16, byte(n>>8), byte(n))
	default:
		return fmt.Errorf("%w: list of %d entries", ErrValueTooLarge, n)
	}
	return nil
}

func (e *Encoder) writeByteLength(n int) error {
	switch {
	case n < 256:
		e.buf = append(e.buf, token.Binary8, byte(n))
	case n < 1<<20:
		e.buf = append(e.buf, token.Binary20, byte(n>>16), byte(n>>8), byte(n))
	case uint64(n) <= math.MaxUint32:
		e.buf = append(e.buf, token.Binary32, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	default:
		return fmt.Errorf("%w: %d bytes", ErrValueTooLarge, n)
	}
	return nil
}

// writeString writes s in its most compact form: single-byte token,
// double-byte token, JID pair, nibble or hex packing, then a literal.
func (e *Encoder) writeString(s string, allowJID bool) error {
	if !utf8.ValidString(s) {
		return ErrInvalidUTF8
	}
	if s == "" {
		e.buf = append(e.buf, token.ListEmpty)
		return nil
	}

	code := token.Encode(s)
	switch code.Kind {
	case token.KindSingle:
		e.buf = append(e.buf, code.Single)
		return nil
	case token.KindDouble:
		e.buf = append(e.buf, token.Dictionary0+code.Dictionary, code.Index)
		return nil
	}

	if allowJID {
		if user, server, ok := splitJID(s); ok {
			e.buf = append(e.buf, token.JIDPair)
			if err := e.writeString(user, false); err != nil {
				return err
			}
			return e.writeString(server, false)
		}
	}

	switch {
	case canPack(s, token.Nibble8):
		e.writePacked(s, token.Nibble8)
		return nil
	case canPack(s, token.Hex8):
		e.writePacked(s, token.Hex8)
		return nil
	}

	if len(s) <= token.PackedMax {
		e.buf = append(e.buf, byte(len(s)))
	} else if err := e.writeByteLength(len(s)); err != nil {
		return err
	}
	e.buf = append(e.buf, s...)
	return nil
}

func splitJID(s string) (user, server string, ok bool) {
	if strings.Count(s, "@") != 1 {
		return "", "", false
	}
	user, server, _ = strings.Cut(s, "@")
	return user, server, user != "" && server != ""
}

func canPack(s string, kind byte) bool {
	if len(s) == 0 || len(s) > token.PackedMax {
		return false
	}
	for i := 0; i < len(s); i++ {
		if _, ok := packNibble(kind, s[i]); !ok {
			return false
		}
	}
	return true
}

func packNibble(kind, c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case kind == token.Nibble8 && c == '-':
		return 10, true
	case kind == token.Nibble8 && c == '.':
		return 11, true
	case kind == token.Hex8 && c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// writePacked stores two characters per byte. An odd length sets the high
// bit of the size byte and pads the last byte with 0x0F.
func (e *Encoder) writePacked(s string, kind byte) {
	size := byte((len(s) + 1) / 2)
	if len(s)%2 == 1 {
		size |= 0x80
	}
	e.buf = append(e.buf, kind, size)
	for i := 0; i < len(s); i += 2 {
		hi, _ := packNibble(kind, s[i])
		lo := byte(0x0F)
		if i+1 < len(s) {
			lo, _ = packNibble(kind, s[i+1])
		}
		e.buf = append(e.buf, hi<<4|lo)
	}
}
