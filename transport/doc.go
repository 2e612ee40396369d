// Package transport carries encoded nodes between client and server.
//
// A FrameConn moves whole frames: WebSocketConn sends one binary message per
// frame, TCPConn prefixes each frame with a 3-byte big-endian length. Socket
// sits on top of either one, runs the Noise handshake from package noise and
// then encrypts every frame with the resulting session:
//
//	sock, err := transport.Dial(ctx, transport.DefaultURL)
//	if err != nil {
//	    return err
//	}
//	defer sock.Close()
//
//	if err := sock.PerformHandshake(ctx); err != nil {
//	    return err
//	}
//	err = sock.Send(ctx, payload)
//	reply, err := sock.Receive(ctx)
//
// A failed or cancelled handshake, or a frame that fails authentication,
// leaves the socket unusable (ErrSocketBroken); callers reconnect with a new
// Socket. Nothing in this package retries.
//
// Socket metrics are optional; see NewMetrics and WithMetrics.
package transport
