// Package crypto holds the primitives behind the Noise handshake: Curve25519
// key pairs and Diffie-Hellman, AES-256-GCM with counter nonces, SHA-256 and
// HKDF-SHA256, plus helpers for wiping key material and logging it safely.
//
// Example:
//
//	keys, err := crypto.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer crypto.WipeKeyPair(keys)
//
//	aead, err := crypto.NewAEAD(sessionKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ciphertext := aead.Seal(0, nil, plaintext)
package crypto
