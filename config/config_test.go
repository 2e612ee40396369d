package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opd-ai/wacore/noise"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.False(t, c.Noise.MixEphemeral)

	header, err := c.Noise.HeaderBytes()
	require.NoError(t, err)
	assert.Equal(t, noise.DefaultHeader, header)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wacore.toml")
	data := `
[socket]
url = "tcp://127.0.0.1:5222"
dial_timeout = "3s"

[noise]
header = "5741"
mix_ephemeral = true

[codec]
max_depth = 16
compress_threshold = 1024

[log]
level = "debug"
format = "json"

[metrics]
enabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:5222", c.Socket.URL)
	assert.Equal(t, 3*time.Second, c.Socket.DialTimeout.Duration)
	assert.Zero(t, c.Socket.FrameTimeout.Duration)
	assert.Equal(t, "https://web.whatsapp.com", c.Socket.Origin, "unset keys keep defaults")
	assert.Equal(t, noise.DefaultPattern, c.Noise.Pattern)
	assert.True(t, c.Noise.MixEphemeral)
	assert.Equal(t, 16, c.Codec.MaxDepth)
	assert.Equal(t, 1024, c.Codec.CompressThreshold)
	assert.True(t, c.Metrics.Enabled)
	assert.Equal(t, "wacore", c.Metrics.Namespace)

	header, err := c.Noise.HeaderBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("WA"), header)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[socket\nurl ="},
		{"bad duration", "[socket]\ndial_timeout = \"soon\""},
		{"bad scheme", "[socket]\nurl = \"http://example.com\""},
		{"bad header", "[noise]\nheader = \"zz\""},
		{"empty pattern", "[noise]\npattern = \"\""},
		{"depth too large", "[codec]\nmax_depth = 100000"},
		{"depth zero", "[codec]\nmax_depth = 0"},
		{"negative threshold", "[codec]\ncompress_threshold = -1"},
		{"bad level", "[log]\nlevel = \"loud\""},
		{"bad format", "[log]\nformat = \"xml\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "test.toml")
			assert.Error(t, err)
		})
	}
}

func TestValidateWrapsSentinel(t *testing.T) {
	c := Default()
	c.Log.Format = "xml"
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}

func TestDurationText(t *testing.T) {
	d := Duration{90 * time.Second}
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	var back Duration
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, d, back)
}

func TestLogConfigApply(t *testing.T) {
	origLevel := logrus.GetLevel()
	origFormatter := logrus.StandardLogger().Formatter
	defer func() {
		logrus.SetLevel(origLevel)
		logrus.SetFormatter(origFormatter)
	}()

	require.NoError(t, LogConfig{Level: "warn", Format: "json"}.Apply())
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
	_, ok := logrus.StandardLogger().Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)

	assert.Error(t, LogConfig{Level: "nope"}.Apply())
}
