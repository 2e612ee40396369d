package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/opd-ai/wacore/limits"
	"github.com/opd-ai/wacore/noise"
	watesting "github.com/opd-ai/wacore/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPConnFrames(t *testing.T) {
	ctx := testContext(t)
	a, b := net.Pipe()
	client, server := NewTCPConn(a), NewTCPConn(b)
	defer client.Close()
	defer server.Close()

	frames := [][]byte{{1}, []byte("hello"), make([]byte, 70000)}
	go func() {
		for _, f := range frames {
			if err := client.WriteFrame(ctx, f); err != nil {
				return
			}
		}
	}()

	for _, want := range frames {
		got, err := server.ReadFrame(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestTCPConnLengthPrefix(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 5}, createLengthPrefix(5))
	assert.Equal(t, []byte{0x01, 0x11, 0x70}, createLengthPrefix(70000))
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, createLengthPrefix(limits.MaxFrameSize))
}

func TestTCPConnEOF(t *testing.T) {
	ctx := testContext(t)
	a, b := net.Pipe()
	server := NewTCPConn(b)

	require.NoError(t, a.Close())
	_, err := server.ReadFrame(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestTCPConnTruncatedFrame(t *testing.T) {
	ctx := testContext(t)
	a, b := net.Pipe()
	server := NewTCPConn(b)

	go func() {
		_, _ = a.Write([]byte{0, 0, 10, 'a', 'b'})
		_ = a.Close()
	}()
	_, err := server.ReadFrame(ctx)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestTCPConnCancelledRead(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	server := NewTCPConn(b)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := server.ReadFrame(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTCPConnRejectsEmptyFrame(t *testing.T) {
	a, _ := net.Pipe()
	conn := NewTCPConn(a)
	assert.ErrorIs(t, conn.WriteFrame(context.Background(), nil), limits.ErrMessageEmpty)
}

func TestDialTCPHandshake(t *testing.T) {
	ctx := testContext(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	errc := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			errc <- err
			return
		}
		server := watesting.NewServer(NewTCPConn(conn), noise.ResponderConfig{})
		if err := server.Handshake(ctx); err != nil {
			errc <- err
			return
		}
		msg, err := server.Receive(ctx)
		if err != nil {
			errc <- err
			return
		}
		errc <- server.Send(ctx, append([]byte("echo:"), msg...))
	}()

	sock, err := Dial(ctx, "tcp://"+ln.Addr().String())
	require.NoError(t, err)
	defer sock.Close()

	require.NoError(t, sock.PerformHandshake(ctx))
	require.NoError(t, sock.Send(ctx, []byte("ping")))
	got, err := sock.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("echo:ping"), got)
	require.NoError(t, <-errc)
}

func TestDialTCPRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = Dial(testContext(t), "tcp://"+addr)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedScheme))
}
