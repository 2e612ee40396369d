// Package token contains the static string dictionaries used to compress
// strings in the binary node format.
//
// Frequently used strings are written as a single byte (a code in the
// SingleByteBase..Dictionary0-1 range) or as two bytes (one of four
// dictionary selectors followed by an index). Everything else falls back to
// a literal. The tables are ordered and the position of every entry is its
// wire code, so entries must never be reordered or removed.
package token

// DictVersion is the dictionary revision advertised in the connection header.
const DictVersion = 3

// Byte values with a fixed meaning in the binary node format.
const (
	ListEmpty      = 0
	PackedMax      = 127
	SingleByteBase = 128
	Dictionary0    = 236
	Dictionary1    = 237
	Dictionary2    = 238
	Dictionary3    = 239
	TextMarker     = 240
	InteropJID     = 245
	FBJID          = 246
	ADJID          = 247
	List8          = 248
	List16         = 249
	JIDPair        = 250
	Hex8           = 251
	Binary8        = 252
	Binary20       = 253
	Binary32       = 254
	Nibble8        = 255
)

// DictionaryCount is the number of double-byte dictionaries.
const DictionaryCount = Dictionary3 - Dictionary0 + 1

// Kind tells which compact form a string has.
type Kind uint8

const (
	// KindNone means the string has no compact form and must be written as a literal.
	KindNone Kind = iota
	// KindSingle means the string is a single-byte token.
	KindSingle
	// KindDouble means the string is a double-byte token.
	KindDouble
)

// Code is the result of a dictionary lookup.
type Code struct {
	Kind       Kind
	Single     byte
	Dictionary byte
	Index      byte
}

type doubleCode struct {
	dict  byte
	index byte
}

var (
	singleByteIndex = buildSingleByteIndex()
	doubleByteIndex = buildDoubleByteIndex()
)

func buildSingleByteIndex() map[string]byte {
	index := make(map[string]byte, len(singleByteTokens))
	for code, tok := range singleByteTokens {
		if tok == "" {
			continue
		}
		index[tok] = byte(code)
	}
	return index
}

func buildDoubleByteIndex() map[string]doubleCode {
	index := make(map[string]doubleCode)
	for dict, tokens := range doubleByteTokens {
		for i, tok := range tokens {
			index[tok] = doubleCode{dict: byte(dict), index: byte(i)}
		}
	}
	return index
}

// Encode returns the most compact code for s: a single-byte token first,
// then a double-byte token. Code.Kind is KindNone when neither table has s.
func Encode(s string) Code {
	if code, ok := singleByteIndex[s]; ok {
		return Code{Kind: KindSingle, Single: code}
	}
	if dc, ok := doubleByteIndex[s]; ok {
		return Code{Kind: KindDouble, Dictionary: dc.dict, Index: dc.index}
	}
	return Code{Kind: KindNone}
}

// IndexOfSingle returns the single-byte code for s.
func IndexOfSingle(s string) (byte, bool) {
	code, ok := singleByteIndex[s]
	return code, ok
}

// IndexOfDouble returns the dictionary number (0-3) and index for s.
func IndexOfDouble(s string) (dict, index byte, ok bool) {
	dc, ok := doubleByteIndex[s]
	return dc.dict, dc.index, ok
}

// DecodeSingle returns the string for a single-byte code. Empty slots and
// codes outside the token range report false.
func DecodeSingle(code byte) (string, bool) {
	if int(code) >= len(singleByteTokens) {
		return "", false
	}
	tok := singleByteTokens[code]
	return tok, tok != ""
}

// DecodeDouble returns the string stored at index in dictionary dict (0-3).
func DecodeDouble(dict, index byte) (string, bool) {
	if int(dict) >= len(doubleByteTokens) {
		return "", false
	}
	tokens := doubleByteTokens[dict]
	if int(index) >= len(tokens) {
		return "", false
	}
	return tokens[index], true
}

// IsSingleByte reports whether b falls in the single-byte token range.
func IsSingleByte(b byte) bool {
	return b >= SingleByteBase && b < Dictionary0
}

// IsDictionary reports whether b selects one of the double-byte dictionaries.
func IsDictionary(b byte) bool {
	return b >= Dictionary0 && b <= Dictionary3
}

// SingleByteCount returns the number of populated single-byte tokens.
func SingleByteCount() int {
	return len(singleByteIndex)
}

// DictionarySize returns the number of entries in dictionary dict.
func DictionarySize(dict byte) int {
	if int(dict) >= len(doubleByteTokens) {
		return 0
	}
	return len(doubleByteTokens[dict])
}
