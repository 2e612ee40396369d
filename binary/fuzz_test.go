package binary

import (
	"testing"

	"github.com/opd-ai/wacore/binary/token"
)

// FuzzUnmarshal checks that arbitrary input never panics and that anything
// the decoder accepts survives a re-encode.
func FuzzUnmarshal(f *testing.F) {
	seeds := []Node{
		NewNode("iq").WithAttr("id", "1"),
		NewNode("message").WithAttr("to", "123@s.whatsapp.net").WithText("hi"),
		NewNode("enc").WithBinary([]byte{0, 1, 2}),
		NewNode("list").WithChildren(NewNode("item"), NewNode("item").WithText("")),
	}
	for _, n := range seeds {
		data, err := Marshal(n)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(data)
	}
	f.Add([]byte{})
	f.Add([]byte{token.JIDPair, token.JIDPair})
	f.Add([]byte{token.Nibble8, 0xFF})
	f.Add([]byte{1, 'x', token.List16, 0xFF, 0xFF})

	f.Fuzz(func(t *testing.T, data []byte) {
		n, err := Unmarshal(data)
		if err != nil {
			return
		}
		out, err := Marshal(n)
		if err != nil {
			t.Fatalf("re-encode of decoded node failed: %v", err)
		}
		again, err := Unmarshal(out)
		if err != nil {
			t.Fatalf("decode of re-encoded node failed: %v", err)
		}
		if !n.Equal(again) {
			t.Fatalf("round trip mismatch:\n%s\n%s", n, again)
		}
	})
}
