package wacore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/wacore/binary"
	"github.com/opd-ai/wacore/transport"
	"github.com/sirupsen/logrus"
)

// ErrAlreadyConnected is returned by Connect on a client that has a socket.
var ErrAlreadyConnected = errors.New("client already connected")

// Client exchanges binary nodes with a server over a handshaken socket.
//
// SendNode and ReceiveNode may run on separate goroutines. Concurrent
// calls to the same one are serialized.
type Client struct {
	options *Options

	connMu sync.Mutex
	socket *transport.Socket

	sendMu sync.Mutex
	recvMu sync.Mutex
}

// New creates a client. A nil options uses NewOptions.
func New(options *Options) (*Client, error) {
	if options == nil {
		options = NewOptions()
	}
	if err := options.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &Client{options: options}, nil
}

// Connect dials Options.URL and performs the handshake. DialTimeout bounds
// both steps.
func (c *Client) Connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.socket != nil {
		return ErrAlreadyConnected
	}

	if c.options.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.options.DialTimeout)
		defer cancel()
	}

	sock, err := transport.Dial(ctx, c.options.URL, c.options.socketOptions()...)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Client.Connect",
			"url":      c.options.URL,
			"error":    err.Error(),
		}).Error("Dial failed")
		return fmt.Errorf("dial %s: %w", c.options.URL, err)
	}
	return c.install(ctx, sock)
}

// ConnectConn performs the handshake over an already open frame connection.
func (c *Client) ConnectConn(ctx context.Context, conn transport.FrameConn) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.socket != nil {
		return ErrAlreadyConnected
	}
	return c.install(ctx, transport.NewSocket(conn, c.options.socketOptions()...))
}

func (c *Client) install(ctx context.Context, sock *transport.Socket) error {
	if err := sock.PerformHandshake(ctx); err != nil {
		if cerr := sock.Close(); cerr != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Client.Connect",
				"error":    cerr.Error(),
			}).Debug("Close after failed handshake")
		}
		return err
	}
	c.socket = sock
	logrus.WithFields(logrus.Fields{
		"function": "Client.Connect",
		"url":      c.options.URL,
	}).Info("Client connected")
	return nil
}

func (c *Client) current() (*transport.Socket, error) {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.socket == nil {
		return nil, transport.ErrNotConnected
	}
	return c.socket, nil
}

// IsConnected reports whether the client has a usable socket.
func (c *Client) IsConnected() bool {
	sock, err := c.current()
	return err == nil && sock.IsConnected()
}

// ServerPayload returns the payload the server sent during the handshake.
func (c *Client) ServerPayload() []byte {
	sock, err := c.current()
	if err != nil {
		return nil
	}
	return sock.HandshakePayload()
}

func (c *Client) frameContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.options.FrameTimeout > 0 {
		return context.WithTimeout(ctx, c.options.FrameTimeout)
	}
	return ctx, func() {}
}

// SendNode encodes n and sends it as one frame. Payloads larger than
// CompressThreshold are compressed when the threshold is non-zero.
func (c *Client) SendNode(ctx context.Context, n binary.Node) error {
	sock, err := c.current()
	if err != nil {
		return err
	}

	data, err := binary.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode %s: %w", n.Tag, err)
	}
	compress := c.options.CompressThreshold > 0 && len(data) > c.options.CompressThreshold
	payload, err := binary.Pack(data, compress)
	if err != nil {
		return err
	}

	ctx, cancel := c.frameContext(ctx)
	defer cancel()

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := sock.Send(ctx, payload); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"function":   "Client.SendNode",
		"tag":        n.Tag,
		"size":       len(payload),
		"compressed": compress,
	}).Debug("Node sent")
	return nil
}

// ReceiveNode waits for the next node, skipping keep-alive frames.
func (c *Client) ReceiveNode(ctx context.Context) (binary.Node, error) {
	sock, err := c.current()
	if err != nil {
		return binary.Node{}, err
	}

	c.recvMu.Lock()
	defer c.recvMu.Unlock()
	for {
		fctx, cancel := c.frameContext(ctx)
		start := time.Now()
		frame, err := sock.Receive(fctx)
		cancel()
		if err != nil {
			return binary.Node{}, err
		}
		if frame == nil {
			logrus.WithFields(logrus.Fields{
				"function": "Client.ReceiveNode",
				"waited":   time.Since(start).String(),
			}).Debug("Keep-alive frame")
			continue
		}

		data, err := binary.Unpack(frame)
		if err != nil {
			return binary.Node{}, err
		}
		n, err := binary.Unmarshal(data, binary.WithMaxDepth(c.options.MaxDepth))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Client.ReceiveNode",
				"size":     len(data),
				"error":    err.Error(),
			}).Warn("Received undecodable node")
			return binary.Node{}, err
		}
		return n, nil
	}
}

// Close closes the socket. The client may Connect again afterwards.
func (c *Client) Close() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.socket == nil {
		return transport.ErrNotConnected
	}
	err := c.socket.Close()
	c.socket = nil
	return err
}
