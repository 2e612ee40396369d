// Package binary implements the compact binary node format: a tree of
// elements, each with a tag, a set of string attributes and one content
// value (nothing, text, opaque bytes or an ordered list of children).
//
// Strings are compressed through the token dictionaries in binary/token.
// Every string is written in the first form that applies:
//
//	single-byte token   1 byte   (128..235)
//	double-byte token   2 bytes  (236..239, index)
//	JID pair            250, user, server
//	nibble packed       255, size, digits/'-'/'.' two per byte
//	hex packed          251, size, 0-9A-F two per byte
//	literal             length 1..127 then bytes, or 252/253/254 + 8/20/32-bit length
//
// Attribute and child counts use three size classes: 0 (empty), 248 + 8-bit
// count and 249 + 16-bit big-endian count. Content is dispatched on its first
// byte: 0 is no content, 248/249 start a child list, 252..254 start opaque
// bytes, 240 marks text explicitly and anything else is read as text.
//
// Marshal and Unmarshal are exact inverses:
//
//	data, err := binary.Marshal(binary.NewNode("iq").WithAttr("id", "1"))
//	if err != nil {
//	    return err
//	}
//	node, err := binary.Unmarshal(data)
//
// Decoding is bounds-checked throughout and nesting is limited (see
// WithMaxDepth); malformed input yields a *DecodeError, never a panic.
package binary
