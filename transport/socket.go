package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/opd-ai/wacore/limits"
	"github.com/opd-ai/wacore/noise"
	"github.com/sirupsen/logrus"
)

// SocketOption configures a Socket.
type SocketOption func(*socketOptions)

type socketOptions struct {
	handshake noise.ClientConfig
	websocket WebSocketConfig
	metrics   *Metrics
}

// WithHandshakeConfig sets the client handshake parameters.
func WithHandshakeConfig(config noise.ClientConfig) SocketOption {
	return func(o *socketOptions) {
		o.handshake = config
	}
}

// WithWebSocketConfig sets the upgrade request used by Dial for ws and wss
// addresses.
func WithWebSocketConfig(config WebSocketConfig) SocketOption {
	return func(o *socketOptions) {
		o.websocket = config
	}
}

// WithMetrics records socket activity in m.
func WithMetrics(m *Metrics) SocketOption {
	return func(o *socketOptions) {
		o.metrics = m
	}
}

// Socket carries frames over a FrameConn and encrypts them once the
// handshake has completed.
//
// PerformHandshake must not run concurrently with Send or Receive. After
// it returns, one goroutine may Send while another Receives.
type Socket struct {
	conn    FrameConn
	opts    socketOptions
	client  *noise.Client
	session *noise.Session
	closed  atomic.Bool
	broken  atomic.Bool
}

// NewSocket wraps an open frame connection.
func NewSocket(conn FrameConn, opts ...SocketOption) *Socket {
	s := &Socket{conn: conn}
	s.opts.websocket = DefaultWebSocketConfig()
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// Dial connects to addr and returns a socket ready for PerformHandshake.
// ws:// and wss:// addresses use a websocket; tcp://host:port uses
// length-prefixed frames over TCP.
func Dial(ctx context.Context, addr string, opts ...SocketOption) (*Socket, error) {
	var o socketOptions
	o.websocket = DefaultWebSocketConfig()
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}

	var conn FrameConn
	switch u.Scheme {
	case "ws", "wss":
		conn, err = DialWebSocket(ctx, addr, o.websocket)
	case "tcp":
		conn, err = DialTCP(ctx, u.Host)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if err != nil {
		o.metrics.fail("dial")
		return nil, err
	}
	return NewSocket(conn, opts...), nil
}

// IsConnected reports whether the socket is open and usable.
func (s *Socket) IsConnected() bool {
	return s.usable() == nil
}

// IsHandshakeCompleted reports whether frames are now encrypted.
func (s *Socket) IsHandshakeCompleted() bool {
	return s.session != nil
}

// HandshakePayload returns the decrypted payload of the server hello.
func (s *Socket) HandshakePayload() []byte {
	if s.client == nil {
		return nil
	}
	return s.client.ServerPayload()
}

func (s *Socket) usable() error {
	if s.conn == nil || s.closed.Load() {
		return ErrNotConnected
	}
	if s.broken.Load() {
		return ErrSocketBroken
	}
	return nil
}

// abandon marks the socket broken when ctx ended mid-frame; the stream
// position is unknown afterwards.
func (s *Socket) abandon(ctx context.Context) {
	if ctx.Err() != nil {
		s.broken.Store(true)
	}
}

// Send writes data as one frame, encrypting it when the handshake has
// completed.
func (s *Socket) Send(ctx context.Context, data []byte) error {
	if err := s.usable(); err != nil {
		return err
	}

	frame := data
	if s.session != nil {
		if err := limits.ValidatePlaintextFrame(data); err != nil {
			return err
		}
		var err error
		if frame, err = s.session.Encrypt(data); err != nil {
			s.broken.Store(true)
			return err
		}
	}

	if err := s.conn.WriteFrame(ctx, frame); err != nil {
		s.abandon(ctx)
		s.opts.metrics.fail("send")
		return fmt.Errorf("send frame: %w", err)
	}
	s.opts.metrics.frame("out", len(frame))
	return nil
}

// Receive reads one frame and decrypts it when the handshake has
// completed. An empty frame is a keep-alive and yields nil, nil.
func (s *Socket) Receive(ctx context.Context) ([]byte, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}

	frame, err := s.conn.ReadFrame(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.broken.Store(true)
			return nil, ErrDisconnected
		}
		s.abandon(ctx)
		s.opts.metrics.fail("receive")
		return nil, fmt.Errorf("receive frame: %w", err)
	}
	s.opts.metrics.frame("in", len(frame))

	if len(frame) == 0 {
		return nil, nil
	}
	if s.session == nil {
		return frame, nil
	}

	plaintext, err := s.session.Decrypt(frame)
	if err != nil {
		s.broken.Store(true)
		s.opts.metrics.fail("decrypt")
		logrus.WithFields(logrus.Fields{
			"function": "Socket.Receive",
			"size":     len(frame),
			"error":    err.Error(),
		}).Warn("Frame failed authentication")
		return nil, err
	}
	return plaintext, nil
}

// PerformHandshake runs the three-message handshake on a fresh handshake
// state. The socket only switches to encrypted frames when every step
// succeeds; any failure, including cancellation, leaves the socket broken.
func (s *Socket) PerformHandshake(ctx context.Context) error {
	if err := s.usable(); err != nil {
		return err
	}
	if s.session != nil {
		return noise.ErrHandshakeComplete
	}

	start := time.Now()
	client, session, err := s.handshake(ctx)
	if err != nil {
		s.broken.Store(true)
		s.opts.metrics.handshake("failure", time.Since(start).Seconds())
		logrus.WithFields(logrus.Fields{
			"function": "Socket.PerformHandshake",
			"error":    err.Error(),
		}).Error("Noise handshake failed")
		return fmt.Errorf("noise handshake: %w", err)
	}

	s.client = client
	s.session = session
	s.opts.metrics.handshake("success", time.Since(start).Seconds())
	logrus.WithFields(logrus.Fields{
		"function": "Socket.PerformHandshake",
		"duration": time.Since(start).String(),
	}).Info("Noise handshake completed")
	return nil
}

func (s *Socket) handshake(ctx context.Context) (*noise.Client, *noise.Session, error) {
	client := noise.NewClient(s.opts.handshake)

	hello, err := client.Init()
	if err != nil {
		return nil, nil, err
	}
	if err := s.conn.WriteFrame(ctx, hello); err != nil {
		return nil, nil, fmt.Errorf("send client hello: %w", err)
	}
	s.opts.metrics.frame("out", len(hello))

	resp, err := s.conn.ReadFrame(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrNoHandshakeResponse
		}
		return nil, nil, fmt.Errorf("read server hello: %w", err)
	}
	s.opts.metrics.frame("in", len(resp))
	if err := client.ProcessServerResponse(resp); err != nil {
		return nil, nil, err
	}

	finish, err := client.Finish()
	if err != nil {
		return nil, nil, err
	}
	if err := s.conn.WriteFrame(ctx, finish); err != nil {
		return nil, nil, fmt.Errorf("send client finish: %w", err)
	}
	s.opts.metrics.frame("out", len(finish))

	session, err := client.Handshake().Split(noise.RoleInitiator)
	if err != nil {
		return nil, nil, err
	}
	return client, session, nil
}

// Close closes the connection. Later calls return ErrNotConnected.
func (s *Socket) Close() error {
	if s.conn == nil || s.closed.Swap(true) {
		return ErrNotConnected
	}
	return s.conn.Close()
}
