// Package wacore implements a client for the binary node chat protocol.
//
// A client dials a websocket or TCP endpoint and runs a Noise handshake.
// It then exchanges binary nodes (tag, attributes and content) that are
// encrypted frame by frame. This package ties those layers together.
//
// # Getting Started
//
//	options := wacore.NewOptions()
//	options.CompressThreshold = 4096
//
//	client, err := wacore.New(options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	ping := binary.NewNode("iq").
//	    WithAttrs(binary.Attrs{"id": "1", "type": "get", "xmlns": "w:p"}).
//	    WithChildren(binary.NewNode("ping"))
//	if err := client.SendNode(ctx, ping); err != nil {
//	    log.Fatal(err)
//	}
//	reply, err := client.ReceiveNode(ctx)
//
// # Configuration
//
// Options can be built directly or loaded from a TOML file:
//
//	cfg, err := config.Load("wacore.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Log.Apply()
//	options, err := wacore.OptionsFromConfig(cfg, prometheus.DefaultRegisterer)
//
// # Thread Safety
//
// One goroutine may call SendNode while another calls ReceiveNode.
// Connect and Close must not race with either.
//
// # Integration Architecture
//
//   - [binary]: node model, encoder and decoder
//   - [binary/token]: the token dictionaries
//   - [noise]: handshake and transport session
//   - [transport]: frame connections and the socket
//   - [config]: TOML configuration
//   - [limits]: frame and nesting limits
package wacore
