// Package testing provides in-memory infrastructure for exercising sockets
// and clients without a network.
//
// Pipe returns two connected SimulatedConn ends that satisfy the frame
// connection interface used by package transport and keep a log of every
// frame written. Server plays the remote peer: it answers the client
// handshake with a noise.Responder and exchanges encrypted nodes.
//
//	clientConn, serverConn := testing.Pipe()
//	server := testing.NewServer(serverConn, noise.ResponderConfig{})
//	go server.Serve(ctx, testing.EchoPing)
//
//	sock := transport.NewSocket(clientConn)
//	err := sock.PerformHandshake(ctx)
package testing
