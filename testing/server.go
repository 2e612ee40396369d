package testing

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/wacore/binary"
	"github.com/opd-ai/wacore/noise"
	"github.com/sirupsen/logrus"
)

// FrameConn is the subset of a frame connection the server needs.
type FrameConn interface {
	ReadFrame(ctx context.Context) ([]byte, error)
	WriteFrame(ctx context.Context, frame []byte) error
	Close() error
}

// Server is a scripted peer: it answers the client handshake with a
// noise.Responder and then exchanges encrypted nodes.
type Server struct {
	conn      FrameConn
	responder *noise.Responder
	session   *noise.Session
}

// NewServer returns a server speaking over conn.
func NewServer(conn FrameConn, config noise.ResponderConfig) *Server {
	return &Server{
		conn:      conn,
		responder: noise.NewResponder(config),
	}
}

// Responder exposes the handshake state for assertions.
func (s *Server) Responder() *noise.Responder {
	return s.responder
}

// Handshake reads the client hello, answers it and reads the client finish.
func (s *Server) Handshake(ctx context.Context) error {
	hello, err := s.conn.ReadFrame(ctx)
	if err != nil {
		return fmt.Errorf("read client hello: %w", err)
	}
	resp, err := s.responder.ProcessClientInit(hello)
	if err != nil {
		return err
	}
	if err := s.conn.WriteFrame(ctx, resp); err != nil {
		return fmt.Errorf("write server hello: %w", err)
	}

	finish, err := s.conn.ReadFrame(ctx)
	if err != nil {
		return fmt.Errorf("read client finish: %w", err)
	}
	if _, err := s.responder.ProcessClientFinish(finish); err != nil {
		return err
	}

	session, err := s.responder.Handshake().Split(noise.RoleResponder)
	if err != nil {
		return err
	}
	s.session = session
	return nil
}

// Send encrypts and writes one frame.
func (s *Server) Send(ctx context.Context, data []byte) error {
	if s.session == nil {
		return noise.ErrHandshakeNotComplete
	}
	frame, err := s.session.Encrypt(data)
	if err != nil {
		return err
	}
	return s.conn.WriteFrame(ctx, frame)
}

// Receive reads and decrypts one frame.
func (s *Server) Receive(ctx context.Context) ([]byte, error) {
	if s.session == nil {
		return nil, noise.ErrHandshakeNotComplete
	}
	frame, err := s.conn.ReadFrame(ctx)
	if err != nil {
		return nil, err
	}
	return s.session.Decrypt(frame)
}

// SendNode marshals, packs and sends n.
func (s *Server) SendNode(ctx context.Context, n binary.Node, compress bool) error {
	data, err := binary.Marshal(n)
	if err != nil {
		return err
	}
	packed, err := binary.Pack(data, compress)
	if err != nil {
		return err
	}
	return s.Send(ctx, packed)
}

// ReceiveNode receives, unpacks and unmarshals one node.
func (s *Server) ReceiveNode(ctx context.Context) (binary.Node, error) {
	data, err := s.Receive(ctx)
	if err != nil {
		return binary.Node{}, err
	}
	payload, err := binary.Unpack(data)
	if err != nil {
		return binary.Node{}, err
	}
	return binary.Unmarshal(payload)
}

// Handler answers a received node. Returning false sends nothing.
type Handler func(binary.Node) (binary.Node, bool)

// Serve runs the handshake and then answers nodes with handler until the
// connection closes or ctx ends. A clean close returns nil.
func (s *Server) Serve(ctx context.Context, handler Handler) error {
	if err := s.Handshake(ctx); err != nil {
		return err
	}
	for {
		n, err := s.ReceiveNode(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		logrus.WithFields(logrus.Fields{
			"function": "Server.Serve",
			"tag":      n.Tag,
		}).Debug("Scripted server received node")

		reply, ok := handler(n)
		if !ok {
			continue
		}
		if err := s.SendNode(ctx, reply, false); err != nil {
			return err
		}
	}
}

// EchoPing answers <iq type="get"><ping/></iq> with a result iq carrying
// the same id and ignores everything else.
func EchoPing(n binary.Node) (binary.Node, bool) {
	if n.Tag != "iq" {
		return binary.Node{}, false
	}
	if _, ok := n.FindChild("ping"); !ok {
		return binary.Node{}, false
	}
	id, _ := n.GetAttr("id")
	return binary.NewNode("iq").WithAttrs(binary.Attrs{"id": id, "type": "result"}), true
}
