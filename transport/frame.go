package transport

import (
	"context"
	"errors"
)

var (
	// ErrNotConnected indicates the socket has no open connection.
	ErrNotConnected = errors.New("socket not connected")
	// ErrDisconnected indicates the peer closed the connection.
	ErrDisconnected = errors.New("connection closed by peer")
	// ErrNoHandshakeResponse indicates the peer closed before answering the client hello.
	ErrNoHandshakeResponse = errors.New("no handshake response from server")
	// ErrSocketBroken indicates an earlier handshake or decryption failure;
	// the connection must be replaced.
	ErrSocketBroken = errors.New("socket unusable after failed handshake or decryption")
	// ErrUnsupportedScheme indicates a dial address with an unknown scheme.
	ErrUnsupportedScheme = errors.New("unsupported address scheme")
	// ErrNonBinaryMessage indicates a websocket data message that is not binary.
	ErrNonBinaryMessage = errors.New("websocket message is not binary")
)

// FrameConn is a duplex connection carrying whole frames. ReadFrame returns
// io.EOF once the peer has closed cleanly. One reader and one writer may use
// a FrameConn concurrently.
type FrameConn interface {
	ReadFrame(ctx context.Context) ([]byte, error)
	WriteFrame(ctx context.Context, frame []byte) error
	Close() error
}
