package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/opd-ai/wacore/limits"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultURL is the chat endpoint dialled when no address is configured.
	DefaultURL = "wss://web.whatsapp.com/ws/chat"
	// DefaultOrigin is sent as the Origin header of the upgrade request.
	DefaultOrigin = "https://web.whatsapp.com"
	// DefaultUserAgent is sent as the User-Agent header of the upgrade request.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// WebSocketConfig controls the upgrade request.
type WebSocketConfig struct {
	Origin           string
	UserAgent        string
	Subprotocols     []string
	HandshakeTimeout time.Duration
	// Query is merged into the URL's query string.
	Query url.Values
}

// DefaultWebSocketConfig returns the headers and query the chat endpoint
// expects.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		Origin:           DefaultOrigin,
		UserAgent:        DefaultUserAgent,
		Subprotocols:     []string{"chat", "binary"},
		HandshakeTimeout: 20 * time.Second,
		Query:            url.Values{"ed": {"25519"}, "agent": {"web"}},
	}
}

// WebSocketConn carries one frame per binary message.
type WebSocketConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewWebSocketConn wraps an established websocket connection.
func NewWebSocketConn(conn *websocket.Conn) *WebSocketConn {
	conn.SetReadLimit(limits.MaxFrameSize)
	return &WebSocketConn{conn: conn}
}

// DialWebSocket opens a websocket connection to rawURL.
func DialWebSocket(ctx context.Context, rawURL string, config WebSocketConfig) (*WebSocketConn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse websocket url: %w", err)
	}
	if len(config.Query) > 0 {
		q := u.Query()
		for k, vs := range config.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	header := http.Header{}
	if config.Origin != "" {
		header.Set("Origin", config.Origin)
	}
	if config.UserAgent != "" {
		header.Set("User-Agent", config.UserAgent)
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: config.HandshakeTimeout,
		Subprotocols:     config.Subprotocols,
	}

	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		fields := logrus.Fields{
			"function": "DialWebSocket",
			"url":      u.Redacted(),
			"error":    err.Error(),
		}
		if resp != nil {
			fields["status"] = resp.StatusCode
		}
		logrus.WithFields(fields).Debug("WebSocket dial failed")
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "DialWebSocket",
		"url":      u.Redacted(),
		"status":   resp.StatusCode,
	}).Info("WebSocket connected")
	return NewWebSocketConn(conn), nil
}

// WriteFrame sends frame as a single binary message.
func (w *WebSocketConn) WriteFrame(ctx context.Context, frame []byte) error {
	if err := limits.ValidateFrame(frame); err != nil {
		return err
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	stop := watchContext(ctx, w.conn.SetWriteDeadline)
	defer stop()

	if err := w.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return contextError(ctx, err)
	}
	return nil
}

// ReadFrame returns the next binary message. A close frame from the peer
// surfaces as io.EOF. Text messages are rejected with ErrNonBinaryMessage.
func (w *WebSocketConn) ReadFrame(ctx context.Context) ([]byte, error) {
	stop := watchContext(ctx, w.conn.SetReadDeadline)
	defer stop()

	messageType, data, err := w.conn.ReadMessage()
	if err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return nil, io.EOF
		}
		return nil, contextError(ctx, err)
	}
	if messageType != websocket.BinaryMessage {
		logrus.WithFields(logrus.Fields{
			"function":     "WebSocketConn.ReadFrame",
			"message_type": messageType,
			"size":         len(data),
		}).Warn("Rejected non-binary websocket message")
		return nil, fmt.Errorf("%w: type %d", ErrNonBinaryMessage, messageType)
	}
	return data, nil
}

// Ping sends a ping control message. The peer's pong is handled by the
// next ReadFrame.
func (w *WebSocketConn) Ping(ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(10 * time.Second)
	}
	if err := w.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
		return contextError(ctx, err)
	}
	return nil
}

// Close sends a close message and closes the connection.
func (w *WebSocketConn) Close() error {
	w.writeMu.Lock()
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	w.writeMu.Unlock()
	return w.conn.Close()
}
