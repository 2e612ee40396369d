// Package config handles wacore.toml client configuration.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/opd-ai/wacore/limits"
	"github.com/opd-ai/wacore/noise"
	"github.com/opd-ai/wacore/transport"
	"github.com/sirupsen/logrus"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full client configuration.
type Config struct {
	Socket  SocketConfig  `toml:"socket"`
	Noise   NoiseConfig   `toml:"noise"`
	Codec   CodecConfig   `toml:"codec"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
}

// SocketConfig configures the connection.
type SocketConfig struct {
	URL         string   `toml:"url"`
	Origin      string   `toml:"origin"`
	UserAgent   string   `toml:"user_agent"`
	DialTimeout Duration `toml:"dial_timeout"`
	// FrameTimeout bounds each frame read or write. Zero means no limit.
	// An expired frame leaves the connection unusable.
	FrameTimeout Duration `toml:"frame_timeout"`
}

// NoiseConfig configures the handshake.
type NoiseConfig struct {
	Pattern string `toml:"pattern"`
	// Header is hex encoded.
	Header string `toml:"header"`
	// MixEphemeral adds an ephemeral-ephemeral mix to the handshake. The
	// server must do the same.
	MixEphemeral bool `toml:"mix_ephemeral"`
}

// CodecConfig configures node encoding.
type CodecConfig struct {
	MaxDepth int `toml:"max_depth"`
	// CompressThreshold is the encoded size above which outgoing payloads
	// are zlib-compressed. Zero disables compression.
	CompressThreshold int `toml:"compress_threshold"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig configures socket metrics.
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Namespace string `toml:"namespace"`
}

// Duration is a time.Duration written as a string such as "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Socket: SocketConfig{
			URL:          transport.DefaultURL,
			Origin:       transport.DefaultOrigin,
			UserAgent:    transport.DefaultUserAgent,
			DialTimeout:  Duration{20 * time.Second},
			FrameTimeout: Duration{},
		},
		Noise: NoiseConfig{
			Pattern: noise.DefaultPattern,
			Header:  hex.EncodeToString(noise.DefaultHeader),
		},
		Codec: CodecConfig{
			MaxDepth:          limits.DefaultMaxNodeDepth,
			CompressThreshold: 0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Namespace: "wacore",
		},
	}
}

// Load reads a TOML file on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML data on top of the defaults. name is used in errors.
func Parse(data []byte, name string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", name, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logrus.WithFields(logrus.Fields{
			"function": "config.Parse",
			"file":     name,
			"keys":     strings.Join(keys, ","),
		}).Warn("Ignoring unknown configuration keys")
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// Validate checks the configuration for values the client cannot use.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Socket.URL)
	if err != nil {
		return fmt.Errorf("%w: socket.url: %v", ErrInvalidConfig, err)
	}
	switch u.Scheme {
	case "ws", "wss", "tcp":
	default:
		return fmt.Errorf("%w: socket.url scheme %q must be ws, wss or tcp", ErrInvalidConfig, u.Scheme)
	}
	if c.Socket.DialTimeout.Duration < 0 || c.Socket.FrameTimeout.Duration < 0 {
		return fmt.Errorf("%w: socket timeouts must not be negative", ErrInvalidConfig)
	}
	if c.Noise.Pattern == "" {
		return fmt.Errorf("%w: noise.pattern is empty", ErrInvalidConfig)
	}
	if _, err := c.Noise.HeaderBytes(); err != nil {
		return fmt.Errorf("%w: noise.header: %v", ErrInvalidConfig, err)
	}
	if err := limits.ValidateDepth(c.Codec.MaxDepth); err != nil {
		return fmt.Errorf("%w: codec.max_depth: %v", ErrInvalidConfig, err)
	}
	if c.Codec.CompressThreshold < 0 {
		return fmt.Errorf("%w: codec.compress_threshold must not be negative", ErrInvalidConfig)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q must be text or json", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// HeaderBytes decodes the hex handshake header.
func (n NoiseConfig) HeaderBytes() ([]byte, error) {
	return hex.DecodeString(n.Header)
}

// Apply configures the standard logrus logger.
func (l LogConfig) Apply() error {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	switch l.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
