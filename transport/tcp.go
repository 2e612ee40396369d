package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/opd-ai/wacore/limits"
	"github.com/sirupsen/logrus"
)

// TCPConn frames a stream connection with a 3-byte big-endian length prefix.
type TCPConn struct {
	conn    net.Conn
	writeMu sync.Mutex
	header  [limits.FrameHeaderSize]byte
}

// NewTCPConn wraps an established stream connection.
func NewTCPConn(conn net.Conn) *TCPConn {
	return &TCPConn{conn: conn}
}

// DialTCP connects to addr and returns a framed connection.
func DialTCP(ctx context.Context, addr string) (*TCPConn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "DialTCP",
			"addr":     addr,
			"error":    err.Error(),
		}).Debug("Dial failed")
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewTCPConn(conn), nil
}

// WriteFrame writes one length-prefixed frame.
func (t *TCPConn) WriteFrame(ctx context.Context, frame []byte) error {
	if err := limits.ValidateFrame(frame); err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	stop := watchContext(ctx, t.conn.SetWriteDeadline)
	defer stop()

	buf := make([]byte, 0, limits.FrameHeaderSize+len(frame))
	buf = append(buf, createLengthPrefix(len(frame))...)
	buf = append(buf, frame...)
	if _, err := t.conn.Write(buf); err != nil {
		return contextError(ctx, err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame.
func (t *TCPConn) ReadFrame(ctx context.Context) ([]byte, error) {
	stop := watchContext(ctx, t.conn.SetReadDeadline)
	defer stop()

	length, err := t.readPacketLength()
	if err != nil {
		return nil, contextError(ctx, err)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(t.conn, data); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, contextError(ctx, err)
	}
	return data, nil
}

// Close closes the underlying connection.
func (t *TCPConn) Close() error {
	return t.conn.Close()
}

// LocalAddr returns the local address of the connection.
func (t *TCPConn) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

func createLengthPrefix(n int) []byte {
	return []byte{byte(n >> 16), byte(n >> 8), byte(n)}
}

// readPacketLength reads the frame header. A clean close before the first
// header byte is io.EOF; a close inside it is io.ErrUnexpectedEOF.
func (t *TCPConn) readPacketLength() (uint32, error) {
	if _, err := io.ReadFull(t.conn, t.header[:]); err != nil {
		return 0, err
	}
	return uint32(t.header[0])<<16 | uint32(t.header[1])<<8 | uint32(t.header[2]), nil
}

// watchContext applies ctx's deadline to the connection and interrupts
// blocked I/O when ctx is cancelled. The returned func undoes both.
func watchContext(ctx context.Context, setDeadline func(time.Time) error) func() {
	if deadline, ok := ctx.Deadline(); ok {
		_ = setDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = setDeadline(time.Now())
	})
	return func() {
		stop()
		_ = setDeadline(time.Time{})
	}
}

func contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
