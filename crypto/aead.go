package crypto

import (
	"errors"
	"fmt"

	"github.com/flynn/noise"
)

var (
	// ErrInvalidKeyLength is returned when a key is not 32 bytes long.
	ErrInvalidKeyLength = errors.New("invalid key length")
	// ErrDecryptionFailed is returned when a ciphertext fails authentication.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// AEAD is AES-256-GCM keyed with a 32-byte key. The 96-bit nonce is four
// zero bytes followed by the 64-bit big-endian counter, so any counter
// below 2^32 produces eight zero bytes and the 32-bit big-endian value.
type AEAD struct {
	cipher noise.Cipher
}

// NewAEAD builds an AEAD from a 32-byte key.
func NewAEAD(key []byte) (*AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeyLength, len(key), KeySize)
	}
	var k [KeySize]byte
	copy(k[:], key)
	defer ZeroBytes(k[:])
	return &AEAD{cipher: noise.CipherAESGCM.Cipher(k)}, nil
}

// Seal encrypts and authenticates plaintext, returning ciphertext with the
// 16-byte tag appended.
func (a *AEAD) Seal(counter uint64, ad, plaintext []byte) []byte {
	return a.cipher.Encrypt(nil, counter, ad, plaintext)
}

// Open authenticates and decrypts ciphertext.
func (a *AEAD) Open(counter uint64, ad, ciphertext []byte) ([]byte, error) {
	out, err := a.cipher.Decrypt(nil, counter, ad, ciphertext)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return out, nil
}
