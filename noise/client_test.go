package noise

import (
	"testing"

	"github.com/opd-ai/wacore/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runExchange(t *testing.T, client *Client, responder *Responder) {
	t.Helper()
	hello, err := client.Init()
	require.NoError(t, err)

	resp, err := responder.ProcessClientInit(hello)
	require.NoError(t, err)

	require.NoError(t, client.ProcessServerResponse(resp))

	finish, err := client.Finish()
	require.NoError(t, err)

	_, err = responder.ProcessClientFinish(finish)
	require.NoError(t, err)
}

func TestClientResponderExchange(t *testing.T) {
	static, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	client := NewClient(ClientConfig{StaticKey: static})
	responder := NewResponder(ResponderConfig{Payload: []byte("server certificate")})
	runExchange(t, client, responder)

	assert.True(t, client.Handshake().Completed())
	assert.True(t, responder.Handshake().Completed())
	assert.Equal(t, client.Handshake().Hash(), responder.Handshake().Hash())
	assert.Equal(t, []byte("server certificate"), client.ServerPayload())
	assert.Equal(t, static.Public, responder.ClientStatic())
	assert.Same(t, static, client.StaticKey())
}

func TestClientInitMessage(t *testing.T) {
	client := NewClient(ClientConfig{})
	hello, err := client.Init()
	require.NoError(t, err)

	require.Len(t, hello, len(DefaultHeader)+32)
	assert.Equal(t, DefaultHeader, hello[:len(DefaultHeader)])
	assert.Equal(t, StateStarted, client.Handshake().State())

	_, err = client.Init()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestClientWithoutServerPayload(t *testing.T) {
	client := NewClient(ClientConfig{})
	runExchange(t, client, NewResponder(ResponderConfig{}))
	assert.Nil(t, client.ServerPayload())
	assert.NotNil(t, client.StaticKey())
}

func TestClientCustomHeader(t *testing.T) {
	header := []byte("WA")
	client := NewClient(ClientConfig{Header: header})
	runExchange(t, client, NewResponder(ResponderConfig{Header: header}))
	assert.True(t, client.Handshake().Completed())

	mismatched := NewClient(ClientConfig{Header: header})
	hello, err := mismatched.Init()
	require.NoError(t, err)
	_, err = NewResponder(ResponderConfig{}).ProcessClientInit(hello)
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestSessionSplit(t *testing.T) {
	client := NewClient(ClientConfig{})
	responder := NewResponder(ResponderConfig{})
	runExchange(t, client, responder)

	cs, err := client.Handshake().Split(RoleInitiator)
	require.NoError(t, err)
	rs, err := responder.Handshake().Split(RoleResponder)
	require.NoError(t, err)

	// Directions are independent: neither side has to wait for the other.
	c1, err := cs.Encrypt([]byte("c1"))
	require.NoError(t, err)
	c2, err := cs.Encrypt([]byte("c2"))
	require.NoError(t, err)
	r1, err := rs.Encrypt([]byte("r1"))
	require.NoError(t, err)

	pt, err := cs.Decrypt(r1)
	require.NoError(t, err)
	assert.Equal(t, []byte("r1"), pt)

	pt, err = rs.Decrypt(c1)
	require.NoError(t, err)
	assert.Equal(t, []byte("c1"), pt)
	pt, err = rs.Decrypt(c2)
	require.NoError(t, err)
	assert.Equal(t, []byte("c2"), pt)

	// A session cannot read its own frames.
	own, err := cs.Encrypt([]byte("own"))
	require.NoError(t, err)
	_, err = cs.Decrypt(own)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}

func TestProcessServerResponseErrors(t *testing.T) {
	client := NewClient(ClientConfig{})
	assert.ErrorIs(t, client.ProcessServerResponse(make([]byte, 32)), ErrInvalidState)

	_, err := client.Init()
	require.NoError(t, err)
	assert.ErrorIs(t, client.ProcessServerResponse(make([]byte, 31)), ErrShortServerResponse)

	_, err = client.Finish()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.False(t, client.Handshake().Completed())
}

func TestTamperedServerPayload(t *testing.T) {
	client := NewClient(ClientConfig{})
	responder := NewResponder(ResponderConfig{Payload: []byte("payload")})

	hello, err := client.Init()
	require.NoError(t, err)
	resp, err := responder.ProcessClientInit(hello)
	require.NoError(t, err)

	resp[len(resp)-1] ^= 0xFF
	err = client.ProcessServerResponse(resp)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}

func TestTamperedClientFinish(t *testing.T) {
	client := NewClient(ClientConfig{})
	responder := NewResponder(ResponderConfig{})

	hello, err := client.Init()
	require.NoError(t, err)
	resp, err := responder.ProcessClientInit(hello)
	require.NoError(t, err)
	require.NoError(t, client.ProcessServerResponse(resp))
	finish, err := client.Finish()
	require.NoError(t, err)

	finish[0] ^= 1
	_, err = responder.ProcessClientFinish(finish)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
	assert.False(t, responder.Handshake().Completed())
}

func TestResponderOrdering(t *testing.T) {
	r := NewResponder(ResponderConfig{})
	_, err := r.ProcessClientFinish(make([]byte, 48))
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = r.ProcessClientInit([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

// TestClientAgainstPlainHandshakePeer drives the server side with bare
// Handshake calls and checks the client follows the same transcript.
func TestClientAgainstPlainHandshakePeer(t *testing.T) {
	client := NewClient(ClientConfig{})
	hello, err := client.Init()
	require.NoError(t, err)
	require.Len(t, hello, len(DefaultHeader)+crypto.KeySize)

	initial := crypto.SHA256([]byte(DefaultPattern))
	afterStart := crypto.SHA256(initial[:], DefaultHeader)
	assert.Equal(t, afterStart, client.Handshake().Hash(), "init only starts the transcript")

	server := NewHandshake()
	require.NoError(t, server.Start(DefaultPattern, DefaultHeader))
	ephemeral, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	server.Authenticate(ephemeral.Public[:])
	ct, err := server.Encrypt([]byte("hello"))
	require.NoError(t, err)

	resp := append(append([]byte{}, ephemeral.Public[:]...), ct...)
	require.NoError(t, client.ProcessServerResponse(resp))
	assert.Equal(t, []byte("hello"), client.ServerPayload())
	assert.Equal(t, ephemeral.Public, client.ServerEphemeral())

	afterEphemeral := crypto.SHA256(afterStart[:], ephemeral.Public[:])
	want := crypto.SHA256(afterEphemeral[:], ct)
	assert.Equal(t, want, client.Handshake().Hash())
	assert.Equal(t, server.Hash(), client.Handshake().Hash())

	finish, err := client.Finish()
	require.NoError(t, err)
	static, err := server.Decrypt(finish)
	require.NoError(t, err)
	assert.Equal(t, client.StaticKey().Public[:], static)
	assert.Equal(t, server.Hash(), client.Handshake().Hash())

	cs, err := client.Handshake().Split(RoleInitiator)
	require.NoError(t, err)
	ss, err := server.Split(RoleResponder)
	require.NoError(t, err)
	frame, err := cs.Encrypt([]byte("node"))
	require.NoError(t, err)
	pt, err := ss.Decrypt(frame)
	require.NoError(t, err)
	assert.Equal(t, []byte("node"), pt)
}

func TestResponderAgainstPlainHandshakePeer(t *testing.T) {
	responder := NewResponder(ResponderConfig{Payload: []byte("cert")})

	client := NewHandshake()
	require.NoError(t, client.Start(DefaultPattern, DefaultHeader))
	ephemeral, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	hello := append(append([]byte{}, DefaultHeader...), ephemeral.Public[:]...)

	resp, err := responder.ProcessClientInit(hello)
	require.NoError(t, err)
	require.Len(t, resp, crypto.KeySize+len("cert")+16)

	client.Authenticate(resp[:crypto.KeySize])
	payload, err := client.Decrypt(resp[crypto.KeySize:])
	require.NoError(t, err)
	assert.Equal(t, []byte("cert"), payload)

	static, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	finish, err := client.Encrypt(static.Public[:])
	require.NoError(t, err)
	got, err := responder.ProcessClientFinish(finish)
	require.NoError(t, err)
	assert.Equal(t, static.Public, got)
	assert.Equal(t, client.Hash(), responder.Handshake().Hash())
}

func TestMixEphemeralExchange(t *testing.T) {
	client := NewClient(ClientConfig{MixEphemeral: true})
	responder := NewResponder(ResponderConfig{MixEphemeral: true, Payload: []byte("cert")})
	runExchange(t, client, responder)

	assert.Equal(t, []byte("cert"), client.ServerPayload())
	assert.Equal(t, client.Handshake().Hash(), responder.Handshake().Hash())

	plain := NewClient(ClientConfig{})
	runExchange(t, plain, NewResponder(ResponderConfig{Payload: []byte("cert")}))
	assert.NotEqual(t, plain.Handshake().Hash(), client.Handshake().Hash())
}

func TestMixEphemeralMismatch(t *testing.T) {
	client := NewClient(ClientConfig{MixEphemeral: true})
	responder := NewResponder(ResponderConfig{Payload: []byte("cert")})

	hello, err := client.Init()
	require.NoError(t, err)
	resp, err := responder.ProcessClientInit(hello)
	require.NoError(t, err)
	assert.ErrorIs(t, client.ProcessServerResponse(resp), crypto.ErrDecryptionFailed)
}

func TestEphemeralKeysWipedAfterFinish(t *testing.T) {
	client := NewClient(ClientConfig{})
	responder := NewResponder(ResponderConfig{})
	runExchange(t, client, responder)

	assert.Equal(t, [32]byte{}, client.ephemeral.Private)
	assert.Equal(t, [32]byte{}, responder.ephemeral.Private)
}
