package noise

import (
	"math"
	"strings"
	"testing"

	"github.com/opd-ai/wacore/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedPair(t *testing.T, pattern string, header []byte) (*Handshake, *Handshake) {
	t.Helper()
	a, b := NewHandshake(), NewHandshake()
	require.NoError(t, a.Start(pattern, header))
	require.NoError(t, b.Start(pattern, header))
	return a, b
}

func TestStartFinishDeterministic(t *testing.T) {
	a, b := startedPair(t, DefaultPattern, []byte("WA"))

	aw, ar, err := a.Finish()
	require.NoError(t, err)
	bw, br, err := b.Finish()
	require.NoError(t, err)

	assert.Equal(t, aw, bw)
	assert.Equal(t, ar, br)
	assert.Len(t, aw, 32)
	assert.Len(t, ar, 32)
	assert.NotEqual(t, aw, ar)
	assert.True(t, a.Completed())
}

func TestStartTranscript(t *testing.T) {
	header := []byte("WA")

	h := NewHandshake()
	require.NoError(t, h.Start(DefaultPattern, header))
	initial := crypto.SHA256([]byte(DefaultPattern))
	assert.Equal(t, crypto.SHA256(initial[:], header), h.Hash())
	assert.Equal(t, StateStarted, h.State())

	// A pattern of exactly 32 bytes is the initial hash itself.
	pattern := strings.Repeat("p", 32)
	h = NewHandshake()
	require.NoError(t, h.Start(pattern, header))
	assert.Equal(t, crypto.SHA256([]byte(pattern), header), h.Hash())
}

func TestEncryptZeroKey(t *testing.T) {
	zero := string(make([]byte, 32))
	a, b := startedPair(t, zero, nil)

	ct, err := a.Encrypt([]byte("abc"))
	require.NoError(t, err)
	assert.Len(t, ct, 3+16)

	pt, err := b.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), pt)
	assert.Equal(t, a.Hash(), b.Hash())

	// Same result as sealing directly with a zero key at counter 0.
	aead, err := crypto.NewAEAD(make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, aead.Seal(0, nil, []byte("abc")), ct)
}

func TestNonceMonotonic(t *testing.T) {
	a, b := startedPair(t, DefaultPattern, DefaultHeader)

	const n = 50
	cts := make([][]byte, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, uint64(i), a.Counter())
		ct, err := a.Encrypt([]byte{byte(i)})
		require.NoError(t, err)
		cts[i] = ct
	}
	assert.Equal(t, uint64(n), a.Counter())

	for i, ct := range cts {
		assert.Equal(t, uint64(i), b.Counter())
		pt, err := b.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(i)}, pt)
	}
}

func TestDecryptOutOfOrderFails(t *testing.T) {
	a, b := startedPair(t, DefaultPattern, DefaultHeader)

	_, err := a.Encrypt([]byte("first"))
	require.NoError(t, err)
	second, err := a.Encrypt([]byte("second"))
	require.NoError(t, err)

	_, err = b.Decrypt(second)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}

func TestMixIntoKeyDeterministic(t *testing.T) {
	a, b := startedPair(t, DefaultPattern, DefaultHeader)
	require.NoError(t, a.MixIntoKey([]byte("shared")))
	require.NoError(t, b.MixIntoKey([]byte("shared")))
	assert.Equal(t, StateKeyMixed, a.State())

	aw, ar, err := a.Finish()
	require.NoError(t, err)
	bw, br, err := b.Finish()
	require.NoError(t, err)
	assert.Equal(t, aw, bw)
	assert.Equal(t, ar, br)

	c, _ := startedPair(t, DefaultPattern, DefaultHeader)
	require.NoError(t, c.MixIntoKey([]byte("other")))
	cw, _, err := c.Finish()
	require.NoError(t, err)
	assert.NotEqual(t, aw, cw)
}

func TestMixIntoKeyResetsCounter(t *testing.T) {
	h := NewHandshake()
	require.NoError(t, h.Start(DefaultPattern, DefaultHeader))
	_, err := h.Encrypt([]byte("x"))
	require.NoError(t, err)
	require.Equal(t, uint64(1), h.Counter())

	require.NoError(t, h.MixIntoKey([]byte("k")))
	assert.Zero(t, h.Counter())
}

func TestMismatchedKeyFails(t *testing.T) {
	a, _ := startedPair(t, DefaultPattern, DefaultHeader)
	b := NewHandshake()
	require.NoError(t, b.Start(DefaultPattern, DefaultHeader))

	alice, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	bob, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	mallory, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	require.NoError(t, a.MixSharedSecretIntoKey(alice.Private, bob.Public))
	require.NoError(t, b.MixSharedSecretIntoKey(mallory.Private, bob.Public))

	ct, err := a.Encrypt([]byte("secret"))
	require.NoError(t, err)
	_, err = b.Decrypt(ct)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}

func TestMixSharedSecretAgrees(t *testing.T) {
	a, b := startedPair(t, DefaultPattern, DefaultHeader)
	alice, _ := crypto.GenerateKeyPair()
	bob, _ := crypto.GenerateKeyPair()

	require.NoError(t, a.MixSharedSecretIntoKey(alice.Private, bob.Public))
	require.NoError(t, b.MixSharedSecretIntoKey(bob.Private, alice.Public))

	ct, err := a.Encrypt([]byte("hello"))
	require.NoError(t, err)
	pt, err := b.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), pt)
}

func TestStateErrors(t *testing.T) {
	h := NewHandshake()
	assert.Equal(t, StateUninitialized, h.State())

	_, err := h.Encrypt([]byte("x"))
	assert.ErrorIs(t, err, ErrHandshakeNotStarted)
	_, err = h.Decrypt([]byte("x"))
	assert.ErrorIs(t, err, ErrHandshakeNotStarted)
	assert.ErrorIs(t, h.MixIntoKey([]byte("x")), ErrInvalidState)
	_, _, err = h.Finish()
	assert.ErrorIs(t, err, ErrHandshakeNotStarted)

	require.NoError(t, h.Start(DefaultPattern, DefaultHeader))
	assert.ErrorIs(t, h.Start(DefaultPattern, DefaultHeader), ErrInvalidState)

	_, _, err = h.Finish()
	require.NoError(t, err)
	assert.ErrorIs(t, h.MixIntoKey([]byte("x")), ErrHandshakeComplete)
	assert.Equal(t, StateCompleted, h.State())
}

func TestNonceExhausted(t *testing.T) {
	h := NewHandshake()
	require.NoError(t, h.Start(DefaultPattern, DefaultHeader))

	h.counter = math.MaxUint32
	_, err := h.Encrypt([]byte("last"))
	require.NoError(t, err)

	_, err = h.Encrypt([]byte("wrapped"))
	assert.ErrorIs(t, err, ErrNonceExhausted)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "started", StateStarted.String())
	assert.Equal(t, "key-mixed", StateKeyMixed.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "state(9)", State(9).String())
}
