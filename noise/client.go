package noise

import (
	"errors"
	"fmt"

	"github.com/opd-ai/wacore/binary/token"
	"github.com/opd-ai/wacore/crypto"
)

// DefaultPattern is the protocol name that seeds the transcript.
const DefaultPattern = "Noise_XX_25519_AESGCM_SHA256"

// DefaultHeader is sent in front of the first handshake message: the magic
// "WA", the protocol major version and the token dictionary version.
var DefaultHeader = []byte{'W', 'A', 6, token.DictVersion}

var (
	// ErrShortServerResponse indicates a server hello without an ephemeral key
	ErrShortServerResponse = errors.New("server response shorter than ephemeral key")
	// ErrInvalidMessage indicates received message is invalid for current state
	ErrInvalidMessage = errors.New("invalid message for current handshake state")
)

// ClientConfig configures the initiator side of the handshake.
type ClientConfig struct {
	// Pattern seeds the transcript. Defaults to DefaultPattern.
	Pattern string
	// Header is bound into the transcript and prefixed to the first
	// message. Defaults to DefaultHeader.
	Header []byte
	// StaticKey is the long-term key sent in the finish message. A fresh
	// key is generated when nil.
	StaticKey *crypto.KeyPair
	// MixEphemeral also authenticates the client ephemeral key and mixes
	// the ephemeral-ephemeral shared secret into the key before the server
	// payload is decrypted. Both peers must agree on it.
	MixEphemeral bool
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.Pattern == "" {
		c.Pattern = DefaultPattern
	}
	if c.Header == nil {
		c.Header = DefaultHeader
	}
	return c
}

type clientStep uint8

const (
	clientNew clientStep = iota
	clientSentInit
	clientGotResponse
	clientDone
)

// Client drives the initiator side of the three-message exchange:
//
//	-> header, e
//	<- e, [payload]
//	-> encrypted s
//
// With MixEphemeral the server hello becomes e, ee, [payload].
//
// Each Client owns a fresh Handshake and a fresh ephemeral key.
type Client struct {
	hs     *Handshake
	config ClientConfig
	step   clientStep

	ephemeral       *crypto.KeyPair
	static          *crypto.KeyPair
	serverEphemeral [32]byte
	serverPayload   []byte
}

// NewClient returns a client ready to produce its first message.
func NewClient(config ClientConfig) *Client {
	return &Client{
		hs:     NewHandshake(),
		config: config.withDefaults(),
	}
}

// Handshake exposes the underlying symmetric state.
func (c *Client) Handshake() *Handshake {
	return c.hs
}

// Init starts the handshake and returns header ‖ ephemeral public key.
func (c *Client) Init() ([]byte, error) {
	if c.step != clientNew {
		return nil, fmt.Errorf("%w: init already sent", ErrInvalidState)
	}
	if err := c.hs.Start(c.config.Pattern, c.config.Header); err != nil {
		return nil, err
	}

	ephemeral, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	c.ephemeral = ephemeral
	if c.config.MixEphemeral {
		c.hs.Authenticate(ephemeral.Public[:])
	}

	msg := make([]byte, 0, len(c.config.Header)+crypto.KeySize)
	msg = append(msg, c.config.Header...)
	msg = append(msg, ephemeral.Public[:]...)
	c.step = clientSentInit

	crypto.NewPackageLogger("noise", "Client.Init").
		WithField("size", len(msg)).
		Debug("Created client init message")
	return msg, nil
}

// ProcessServerResponse consumes the server hello: its ephemeral key,
// followed by an optional payload encrypted under the current key.
func (c *Client) ProcessServerResponse(response []byte) error {
	if c.step != clientSentInit {
		return fmt.Errorf("%w: unexpected server response", ErrInvalidState)
	}
	if len(response) < crypto.KeySize {
		return fmt.Errorf("%w: got %d bytes", ErrShortServerResponse, len(response))
	}

	copy(c.serverEphemeral[:], response[:crypto.KeySize])
	c.hs.Authenticate(c.serverEphemeral[:])
	if c.config.MixEphemeral {
		if err := c.hs.MixSharedSecretIntoKey(c.ephemeral.Private, c.serverEphemeral); err != nil {
			return fmt.Errorf("mix ephemeral secret: %w", err)
		}
	}

	if payload := response[crypto.KeySize:]; len(payload) > 0 {
		plaintext, err := c.hs.Decrypt(payload)
		if err != nil {
			return fmt.Errorf("decrypt server payload: %w", err)
		}
		c.serverPayload = plaintext
	}
	c.step = clientGotResponse

	crypto.NewPackageLogger("noise", "Client.ProcessServerResponse").
		WithField("size", len(response)).
		WithField("payload_size", len(c.serverPayload)).
		Debug("Processed server response")
	return nil
}

// Finish encrypts the static public key, marks the handshake completed and
// returns the message to send.
func (c *Client) Finish() ([]byte, error) {
	if c.step != clientGotResponse {
		return nil, fmt.Errorf("%w: finish before server response", ErrInvalidState)
	}

	static := c.config.StaticKey
	if static == nil {
		var err error
		if static, err = crypto.GenerateKeyPair(); err != nil {
			return nil, err
		}
	}

	ciphertext, err := c.hs.Encrypt(static.Public[:])
	if err != nil {
		return nil, err
	}
	c.static = static
	c.hs.complete()
	c.step = clientDone
	crypto.ZeroBytes(c.ephemeral.Private[:])

	crypto.NewPackageLogger("noise", "Client.Finish").
		WithField("size", len(ciphertext)).
		Debug("Created client finish message")
	return ciphertext, nil
}

// ServerPayload returns the decrypted payload of the server hello, if any.
func (c *Client) ServerPayload() []byte {
	return c.serverPayload
}

// ServerEphemeral returns the server's ephemeral public key.
func (c *Client) ServerEphemeral() [32]byte {
	return c.serverEphemeral
}

// StaticKey returns the key pair sent in the finish message, or nil before
// Finish.
func (c *Client) StaticKey() *crypto.KeyPair {
	return c.static
}
