package crypto

import (
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// DeriveSharedSecret computes the X25519 shared secret between a local
// private key and a peer's public key. Low-order peer keys that would yield
// an all-zero secret are rejected.
func DeriveSharedSecret(peerPublicKey, privateKey [KeySize]byte) ([KeySize]byte, error) {
	log := NewLogger("DeriveSharedSecret").WithFields(SecureFieldHash(peerPublicKey[:], "peer_key"))
	log.Debug("Computing shared secret")

	privateKeyCopy := privateKey
	defer ZeroBytes(privateKeyCopy[:])

	sharedSecret, err := curve25519.X25519(privateKeyCopy[:], peerPublicKey[:])
	if err != nil {
		log.WithError(err, "x25519", "dh").Error("X25519 computation failed")
		return [KeySize]byte{}, fmt.Errorf("failed to compute shared secret: %w", err)
	}

	var result [KeySize]byte
	copy(result[:], sharedSecret)
	ZeroBytes(sharedSecret)

	return result, nil
}
