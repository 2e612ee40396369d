package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleByteRoundTrip(t *testing.T) {
	for code, tok := range singleByteTokens {
		if tok == "" {
			continue
		}
		got, ok := DecodeSingle(byte(code))
		require.True(t, ok, "code %d", code)
		assert.Equal(t, tok, got)

		c := Encode(tok)
		assert.Equal(t, KindSingle, c.Kind, "token %q", tok)
		assert.Equal(t, byte(code), c.Single, "token %q", tok)
	}
}

func TestDoubleByteRoundTrip(t *testing.T) {
	for dict, tokens := range doubleByteTokens {
		for i, tok := range tokens {
			got, ok := DecodeDouble(byte(dict), byte(i))
			require.True(t, ok)
			assert.Equal(t, tok, got)

			c := Encode(tok)
			assert.Equal(t, KindDouble, c.Kind, "token %q", tok)
			assert.Equal(t, byte(dict), c.Dictionary)
			assert.Equal(t, byte(i), c.Index)
		}
	}
}

func TestKnownPositions(t *testing.T) {
	// Wire codes are load-bearing; these must never move.
	cases := map[string]byte{
		"xmlstreamstart": 128,
		"s.whatsapp.net": 130,
		"type":           131,
		"id":             135,
		"to":             144,
		"message":        146,
		"iq":             152,
		"g.us":           155,
	}
	for tok, code := range cases {
		got, ok := IndexOfSingle(tok)
		require.True(t, ok, tok)
		assert.Equal(t, code, got, tok)
	}

	dict, index, ok := IndexOfDouble("query")
	require.True(t, ok)
	assert.Equal(t, byte(0), dict)
	assert.Equal(t, byte(0), index)

	dict, index, ok = IndexOfDouble("reject")
	require.True(t, ok)
	assert.Equal(t, byte(1), dict)
	assert.Equal(t, byte(0), index)
}

func TestUnknownCodes(t *testing.T) {
	for code := 0; code < SingleByteBase; code++ {
		_, ok := DecodeSingle(byte(code))
		assert.False(t, ok, "code %d", code)
	}
	for code := Dictionary0; code <= 255; code++ {
		_, ok := DecodeSingle(byte(code))
		assert.False(t, ok, "code %d", code)
	}

	_, ok := DecodeDouble(4, 0)
	assert.False(t, ok)
	_, ok = DecodeDouble(255, 255)
	assert.False(t, ok)
	_, ok = DecodeDouble(3, 255)
	assert.False(t, ok)
}

func TestEncodePriority(t *testing.T) {
	assert.Equal(t, Code{Kind: KindNone}, Encode("definitely not a token"))
	assert.Equal(t, KindNone, Encode("").Kind)
	assert.Equal(t, KindSingle, Encode("message").Kind)
	assert.Equal(t, KindDouble, Encode("read-self").Kind)
}

func TestTokensUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, tok := range singleByteTokens {
		if tok == "" {
			continue
		}
		assert.False(t, seen[tok], "duplicate token %q", tok)
		seen[tok] = true
	}
	for _, tokens := range doubleByteTokens {
		for _, tok := range tokens {
			assert.NotEmpty(t, tok)
			assert.False(t, seen[tok], "duplicate token %q", tok)
			seen[tok] = true
		}
	}
}

func TestTableShape(t *testing.T) {
	assert.Equal(t, Dictionary0-SingleByteBase, SingleByteCount())
	for dict := byte(0); dict < DictionaryCount; dict++ {
		size := DictionarySize(dict)
		assert.Greater(t, size, 0)
		assert.LessOrEqual(t, size, 256)
	}
	assert.Zero(t, DictionarySize(DictionaryCount))
}

func TestRanges(t *testing.T) {
	assert.True(t, IsSingleByte(SingleByteBase))
	assert.True(t, IsSingleByte(Dictionary0-1))
	assert.False(t, IsSingleByte(PackedMax))
	assert.False(t, IsSingleByte(Dictionary0))
	assert.True(t, IsDictionary(Dictionary2))
	assert.False(t, IsDictionary(TextMarker))
}
