package noise

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/wacore/crypto"
)

var (
	// ErrHandshakeNotStarted indicates an operation that needs a key ran before Start.
	ErrHandshakeNotStarted = errors.New("handshake not started")
	// ErrHandshakeNotComplete indicates handshake is still in progress
	ErrHandshakeNotComplete = errors.New("handshake not complete")
	// ErrHandshakeComplete indicates handshake is already complete
	ErrHandshakeComplete = errors.New("handshake already complete")
	// ErrInvalidState indicates an operation that is not allowed in the current state
	ErrInvalidState = errors.New("invalid handshake state")
	// ErrNonceExhausted indicates the 32-bit nonce counter would wrap
	ErrNonceExhausted = errors.New("nonce counter exhausted")
)

// State is the position of a Handshake in its lifecycle.
type State uint8

const (
	// StateUninitialized is a fresh handshake; only Start is allowed.
	StateUninitialized State = iota
	// StateStarted follows Start.
	StateStarted
	// StateKeyMixed follows at least one MixIntoKey.
	StateKeyMixed
	// StateCompleted is terminal.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarted:
		return "started"
	case StateKeyMixed:
		return "key-mixed"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// HandshakeRole selects the key orientation when a finished handshake is
// split into transport keys.
type HandshakeRole uint8

const (
	// RoleInitiator sends the first handshake message.
	RoleInitiator HandshakeRole = iota
	// RoleResponder answers it.
	RoleResponder
)

// Handshake holds the symmetric state of one handshake: the running
// transcript hash, the chaining salt and the current AES-GCM key. Encrypt
// and Decrypt share one nonce counter, so messages must be processed in the
// order both peers agree on.
//
// A Handshake belongs to a single connection and is not safe for concurrent
// use. It is never reset; a new connection needs a new Handshake.
type Handshake struct {
	hash    [32]byte
	salt    [32]byte
	key     *crypto.AEAD
	counter uint64
	state   State
}

// NewHandshake returns an uninitialized handshake.
func NewHandshake() *Handshake {
	return &Handshake{}
}

// State reports the current lifecycle state.
func (h *Handshake) State() State {
	return h.state
}

// Completed reports whether the handshake has reached StateCompleted.
func (h *Handshake) Completed() bool {
	return h.state == StateCompleted
}

// Hash returns a copy of the transcript hash.
func (h *Handshake) Hash() [32]byte {
	return h.hash
}

// Counter returns the next nonce counter value.
func (h *Handshake) Counter() uint64 {
	return h.counter
}

// Start seeds the transcript from pattern and binds header into it. A
// 32-byte pattern is used as the initial hash directly, anything else is
// hashed first. The initial key is the initial hash.
func (h *Handshake) Start(pattern string, header []byte) error {
	if h.state != StateUninitialized {
		return fmt.Errorf("%w: start in state %s", ErrInvalidState, h.state)
	}

	if len(pattern) == len(h.hash) {
		copy(h.hash[:], pattern)
	} else {
		h.hash = crypto.SHA256([]byte(pattern))
	}
	h.salt = h.hash

	key, err := crypto.NewAEAD(h.hash[:])
	if err != nil {
		return err
	}
	h.key = key
	h.state = StateStarted
	h.Authenticate(header)

	crypto.NewPackageLogger("noise", "Start").
		WithField("pattern", pattern).
		WithField("header_size", len(header)).
		Debug("Handshake started")
	return nil
}

// Authenticate folds data into the transcript hash.
func (h *Handshake) Authenticate(data []byte) {
	h.hash = crypto.SHA256(h.hash[:], data)
}

func (h *Handshake) nextCounter() (uint64, error) {
	if h.key == nil {
		return 0, ErrHandshakeNotStarted
	}
	if h.counter > math.MaxUint32 {
		return 0, ErrNonceExhausted
	}
	n := h.counter
	h.counter++
	return n, nil
}

// Encrypt seals plaintext under the current key and the next nonce, then
// authenticates the ciphertext. The transcript hash is not used as
// associated data.
func (h *Handshake) Encrypt(plaintext []byte) ([]byte, error) {
	n, err := h.nextCounter()
	if err != nil {
		return nil, err
	}
	ciphertext := h.key.Seal(n, nil, plaintext)
	h.Authenticate(ciphertext)
	return ciphertext, nil
}

// Decrypt opens ciphertext under the current key and the next nonce, then
// authenticates the ciphertext. The counter advances even when
// authentication fails, so a failed Decrypt ends the handshake.
func (h *Handshake) Decrypt(ciphertext []byte) ([]byte, error) {
	n, err := h.nextCounter()
	if err != nil {
		return nil, err
	}
	plaintext, err := h.key.Open(n, nil, ciphertext)
	if err != nil {
		crypto.NewPackageLogger("noise", "Decrypt").
			WithField("counter", n).
			WithFields(crypto.SecureFieldHash(ciphertext, "ciphertext")).
			Debug("Handshake decryption failed")
		return nil, err
	}
	h.Authenticate(ciphertext)
	return plaintext, nil
}

// MixSharedSecretIntoKey runs X25519 between the local private key and the
// remote public key and mixes the result into the key.
func (h *Handshake) MixSharedSecretIntoKey(localPrivate, remotePublic [32]byte) error {
	secret, err := crypto.DeriveSharedSecret(remotePublic, localPrivate)
	if err != nil {
		return err
	}
	defer crypto.ZeroBytes(secret[:])
	return h.MixIntoKey(secret[:])
}

// MixIntoKey derives a new salt and key from the current salt and data and
// resets the nonce counter.
func (h *Handshake) MixIntoKey(data []byte) error {
	switch h.state {
	case StateStarted, StateKeyMixed:
	case StateCompleted:
		return ErrHandshakeComplete
	default:
		return fmt.Errorf("%w: mix in state %s", ErrInvalidState, h.state)
	}

	write, read, err := h.extractAndExpand(data)
	if err != nil {
		return err
	}
	defer crypto.ZeroBytes(read)

	key, err := crypto.NewAEAD(read)
	if err != nil {
		return err
	}
	copy(h.salt[:], write)
	h.key = key
	h.counter = 0
	h.state = StateKeyMixed
	return nil
}

// Finish derives the final (write, read) key pair from the salt with no
// further input and marks the handshake completed. It may be called again
// once completed and returns the same keys.
func (h *Handshake) Finish() (write, read []byte, err error) {
	if h.state == StateUninitialized {
		return nil, nil, ErrHandshakeNotStarted
	}
	write, read, err = h.extractAndExpand(nil)
	if err != nil {
		return nil, nil, err
	}
	h.state = StateCompleted
	return write, read, nil
}

// Split finishes the handshake and returns the transport session for role.
// The initiator writes with the first key; the responder with the second.
func (h *Handshake) Split(role HandshakeRole) (*Session, error) {
	write, read, err := h.Finish()
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroBytes(write)
	defer crypto.ZeroBytes(read)

	if role == RoleResponder {
		write, read = read, write
	}
	return newSession(write, read)
}

func (h *Handshake) complete() {
	h.state = StateCompleted
}

// extractAndExpand runs HKDF with data as input keying material and the
// current salt, and splits the 64 output bytes in half.
func (h *Handshake) extractAndExpand(data []byte) (write, read []byte, err error) {
	out, err := crypto.ExtractAndExpand(data, h.salt[:], 64)
	if err != nil {
		return nil, nil, err
	}
	return out[:32], out[32:], nil
}
