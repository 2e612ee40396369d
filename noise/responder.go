package noise

import (
	"bytes"
	"fmt"

	"github.com/opd-ai/wacore/crypto"
)

// ResponderConfig configures the server side of the handshake.
type ResponderConfig struct {
	Pattern string
	Header  []byte
	// Payload, when non-empty, is encrypted into the server hello.
	Payload []byte
	// MixEphemeral must match ClientConfig.MixEphemeral.
	MixEphemeral bool
}

// Responder is the server side of the exchange driven by Client. It backs
// loopback servers and tests.
type Responder struct {
	hs     *Handshake
	config ResponderConfig

	ephemeral    *crypto.KeyPair
	clientStatic [32]byte
}

// NewResponder returns a responder waiting for a client init message.
func NewResponder(config ResponderConfig) *Responder {
	if config.Pattern == "" {
		config.Pattern = DefaultPattern
	}
	if config.Header == nil {
		config.Header = DefaultHeader
	}
	return &Responder{hs: NewHandshake(), config: config}
}

// Handshake exposes the underlying symmetric state.
func (r *Responder) Handshake() *Handshake {
	return r.hs
}

// ProcessClientInit consumes header ‖ client ephemeral and returns the
// server hello.
func (r *Responder) ProcessClientInit(msg []byte) ([]byte, error) {
	if r.hs.State() != StateUninitialized {
		return nil, fmt.Errorf("%w: init already processed", ErrInvalidState)
	}
	header := r.config.Header
	if len(msg) != len(header)+crypto.KeySize || !bytes.Equal(msg[:len(header)], header) {
		return nil, fmt.Errorf("%w: malformed client init", ErrInvalidMessage)
	}
	var clientEphemeral [32]byte
	copy(clientEphemeral[:], msg[len(header):])

	if err := r.hs.Start(r.config.Pattern, header); err != nil {
		return nil, err
	}
	if r.config.MixEphemeral {
		r.hs.Authenticate(clientEphemeral[:])
	}

	ephemeral, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	r.ephemeral = ephemeral
	r.hs.Authenticate(ephemeral.Public[:])
	if r.config.MixEphemeral {
		if err := r.hs.MixSharedSecretIntoKey(ephemeral.Private, clientEphemeral); err != nil {
			return nil, fmt.Errorf("mix ephemeral secret: %w", err)
		}
	}

	resp := append([]byte{}, ephemeral.Public[:]...)
	if len(r.config.Payload) > 0 {
		ciphertext, err := r.hs.Encrypt(r.config.Payload)
		if err != nil {
			return nil, err
		}
		resp = append(resp, ciphertext...)
	}
	return resp, nil
}

// ProcessClientFinish decrypts the client's static key and completes the
// handshake.
func (r *Responder) ProcessClientFinish(msg []byte) ([32]byte, error) {
	switch r.hs.State() {
	case StateStarted, StateKeyMixed:
	default:
		return [32]byte{}, fmt.Errorf("%w: finish before init", ErrInvalidState)
	}
	plaintext, err := r.hs.Decrypt(msg)
	if err != nil {
		return [32]byte{}, fmt.Errorf("decrypt client finish: %w", err)
	}
	if len(plaintext) != crypto.KeySize {
		return [32]byte{}, fmt.Errorf("%w: static key of %d bytes", ErrInvalidMessage, len(plaintext))
	}
	copy(r.clientStatic[:], plaintext)
	r.hs.complete()
	crypto.ZeroBytes(r.ephemeral.Private[:])
	return r.clientStatic, nil
}

// ClientStatic returns the client's static public key once the handshake
// has completed.
func (r *Responder) ClientStatic() [32]byte {
	return r.clientStatic
}
