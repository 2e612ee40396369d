package binary

import (
	"bytes"
	"encoding/hex"
	"html"
	"sort"
	"strings"
)

// Attrs holds the attributes of a Node. Keys are unique and unordered.
type Attrs map[string]string

// ContentKind identifies which of the four content shapes a Node carries.
type ContentKind uint8

const (
	// ContentNone means the node has no content.
	ContentNone ContentKind = iota
	// ContentText means the node carries a string.
	ContentText
	// ContentBinary means the node carries opaque bytes.
	ContentBinary
	// ContentChildren means the node carries an ordered list of child nodes.
	ContentChildren
)

func (k ContentKind) String() string {
	switch k {
	case ContentNone:
		return "none"
	case ContentText:
		return "text"
	case ContentBinary:
		return "binary"
	case ContentChildren:
		return "children"
	default:
		return "unknown"
	}
}

// Content is the payload of a Node: nil, Text, Binary or Children. The
// interface is closed; no other implementations exist.
type Content interface {
	Kind() ContentKind
	isContent()
}

// Text is string content.
type Text string

// Binary is opaque byte content.
type Binary []byte

// Children is an ordered list of child nodes.
type Children []Node

// Kind implements Content.
func (Text) Kind() ContentKind { return ContentText }

// Kind implements Content.
func (Binary) Kind() ContentKind { return ContentBinary }

// Kind implements Content.
func (Children) Kind() ContentKind { return ContentChildren }

func (Text) isContent()     {}
func (Binary) isContent()   {}
func (Children) isContent() {}

// Node is one element of the binary protocol tree.
type Node struct {
	Tag     string
	Attrs   Attrs
	Content Content
}

// NewNode returns a node with the given tag, no attributes and no content.
func NewNode(tag string) Node {
	return Node{Tag: tag}
}

// WithAttr returns a copy of n with key set to value.
func (n Node) WithAttr(key, value string) Node {
	attrs := make(Attrs, len(n.Attrs)+1)
	for k, v := range n.Attrs {
		attrs[k] = v
	}
	attrs[key] = value
	n.Attrs = attrs
	return n
}

// WithAttrs returns a copy of n with all of attrs added.
func (n Node) WithAttrs(attrs Attrs) Node {
	merged := make(Attrs, len(n.Attrs)+len(attrs))
	for k, v := range n.Attrs {
		merged[k] = v
	}
	for k, v := range attrs {
		merged[k] = v
	}
	n.Attrs = merged
	return n
}

// WithText returns a copy of n whose content is text.
func (n Node) WithText(text string) Node {
	n.Content = Text(text)
	return n
}

// WithBinary returns a copy of n whose content is data.
func (n Node) WithBinary(data []byte) Node {
	n.Content = Binary(data)
	return n
}

// WithChildren returns a copy of n whose content is children, in order.
func (n Node) WithChildren(children ...Node) Node {
	n.Content = Children(children)
	return n
}

// ContentKind returns the shape of the node's content.
func (n Node) ContentKind() ContentKind {
	if n.Content == nil {
		return ContentNone
	}
	return n.Content.Kind()
}

// GetAttr returns the value of the attribute key.
func (n Node) GetAttr(key string) (string, bool) {
	v, ok := n.Attrs[key]
	return v, ok
}

// GetChildren returns the child nodes when the content is Children.
func (n Node) GetChildren() ([]Node, bool) {
	c, ok := n.Content.(Children)
	return c, ok
}

// GetText returns the string content when the content is Text.
func (n Node) GetText() (string, bool) {
	t, ok := n.Content.(Text)
	return string(t), ok
}

// GetBinary returns the byte content when the content is Binary.
func (n Node) GetBinary() ([]byte, bool) {
	b, ok := n.Content.(Binary)
	return b, ok
}

// FindChild returns the first child with the given tag.
func (n Node) FindChild(tag string) (Node, bool) {
	children, _ := n.GetChildren()
	for _, child := range children {
		if child.Tag == tag {
			return child, true
		}
	}
	return Node{}, false
}

// Equal reports whether n and other have the same tag, attributes and
// content. A nil attribute map equals an empty one.
func (n Node) Equal(other Node) bool {
	if n.Tag != other.Tag || len(n.Attrs) != len(other.Attrs) {
		return false
	}
	for k, v := range n.Attrs {
		if ov, ok := other.Attrs[k]; !ok || ov != v {
			return false
		}
	}
	if n.ContentKind() != other.ContentKind() {
		return false
	}

	switch c := n.Content.(type) {
	case Text:
		oc, ok := other.Content.(Text)
		return ok && c == oc
	case Binary:
		oc, ok := other.Content.(Binary)
		return ok && bytes.Equal(c, oc)
	case Children:
		oc, ok := other.Content.(Children)
		if !ok || len(c) != len(oc) {
			return false
		}
		for i := range c {
			if !c[i].Equal(oc[i]) {
				return false
			}
		}
	}
	return true
}

// String renders the node in an XML-like form for logs and debugging.
func (n Node) String() string {
	var sb strings.Builder
	n.writeXML(&sb)
	return sb.String()
}

func (n Node) writeXML(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(n.Tag)

	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(n.Attrs[k]))
		sb.WriteByte('"')
	}

	switch c := n.Content.(type) {
	case nil:
		sb.WriteString("/>")
		return
	case Text:
		sb.WriteByte('>')
		sb.WriteString(html.EscapeString(string(c)))
	case Binary:
		sb.WriteByte('>')
		sb.WriteString("<!-- ")
		sb.WriteString(hex.EncodeToString(c))
		sb.WriteString(" -->")
	case Children:
		sb.WriteByte('>')
		for _, child := range c {
			child.writeXML(sb)
		}
	}

	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
}
