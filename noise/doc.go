// Package noise implements the connection handshake: a Noise XX style
// exchange over Curve25519, AES-256-GCM and SHA-256.
//
// Handshake is the symmetric state shared by both roles. It keeps a running
// transcript hash, a chaining salt and the current key, and advances through
// Uninitialized, Started, KeyMixed and Completed:
//
//	hs := noise.NewHandshake()
//	hs.Start(noise.DefaultPattern, noise.DefaultHeader)
//	hs.MixSharedSecretIntoKey(ephemeral.Private, peerEphemeral)
//	ct, _ := hs.Encrypt(payload)
//
// Client and Responder drive the three handshake messages on top of it:
//
//	client := noise.NewClient(noise.ClientConfig{})
//	hello, _ := client.Init()                  // header ‖ e
//	client.ProcessServerResponse(serverHello)  // e, payload
//	finish, _ := client.Finish()               // encrypted s
//
// ClientConfig.MixEphemeral and ResponderConfig.MixEphemeral add an ee mix
// before the server payload. Both peers must set it.
//
// Once completed, Split derives a Session with independent send and receive
// keys for application frames.
package noise
