package noise

import (
	"math"

	"github.com/opd-ai/wacore/crypto"
)

// Session is the transport cipher pair of a completed handshake. Each
// direction has its own key and counter, so one goroutine may send while
// another receives; each direction on its own is not safe for concurrent
// use.
type Session struct {
	send      *crypto.AEAD
	recv      *crypto.AEAD
	sendCount uint64
	recvCount uint64
}

func newSession(write, read []byte) (*Session, error) {
	send, err := crypto.NewAEAD(write)
	if err != nil {
		return nil, err
	}
	recv, err := crypto.NewAEAD(read)
	if err != nil {
		return nil, err
	}
	return &Session{send: send, recv: recv}, nil
}

// Encrypt seals an outbound frame.
func (s *Session) Encrypt(plaintext []byte) ([]byte, error) {
	if s.sendCount > math.MaxUint32 {
		return nil, ErrNonceExhausted
	}
	out := s.send.Seal(s.sendCount, nil, plaintext)
	s.sendCount++
	return out, nil
}

// Decrypt opens an inbound frame. A frame that fails authentication still
// consumes its nonce.
func (s *Session) Decrypt(ciphertext []byte) ([]byte, error) {
	if s.recvCount > math.MaxUint32 {
		return nil, ErrNonceExhausted
	}
	n := s.recvCount
	s.recvCount++
	return s.recv.Open(n, nil, ciphertext)
}
