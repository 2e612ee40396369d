package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/flynn/noise"
	"golang.org/x/crypto/hkdf"
)

// SHA256 hashes data with the handshake's hash function.
func SHA256(data ...[]byte) [32]byte {
	h := noise.HashSHA256.Hash()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// ExtractAndExpand runs HKDF-SHA256 over ikm with the given salt and an
// empty info string, returning n bytes of output.
func ExtractAndExpand(ikm, salt []byte, n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, nil), out); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return out, nil
}
