package wacore

import (
	"fmt"
	"time"

	"github.com/opd-ai/wacore/config"
	"github.com/opd-ai/wacore/limits"
	"github.com/opd-ai/wacore/noise"
	"github.com/opd-ai/wacore/transport"
	"github.com/prometheus/client_golang/prometheus"
)

// Options contains client configuration.
type Options struct {
	URL               string
	Handshake         noise.ClientConfig
	WebSocket         transport.WebSocketConfig
	DialTimeout       time.Duration
	FrameTimeout      time.Duration
	MaxDepth          int
	CompressThreshold int
	Metrics           *transport.Metrics
}

// NewOptions creates a new default Options.
func NewOptions() *Options {
	return &Options{
		URL: transport.DefaultURL,
		Handshake: noise.ClientConfig{
			Pattern: noise.DefaultPattern,
			Header:  noise.DefaultHeader,
		},
		WebSocket:    transport.DefaultWebSocketConfig(),
		DialTimeout:  20 * time.Second,
		FrameTimeout: 0, // no per-frame deadline
		MaxDepth:     limits.DefaultMaxNodeDepth,
	}
}

// OptionsFromConfig builds Options from a loaded configuration. Metrics are
// registered with reg when enabled; a nil reg uses the default registerer.
func OptionsFromConfig(c *config.Config, reg prometheus.Registerer) (*Options, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	header, err := c.Noise.HeaderBytes()
	if err != nil {
		return nil, fmt.Errorf("noise header: %w", err)
	}

	opts := NewOptions()
	opts.URL = c.Socket.URL
	opts.Handshake.Pattern = c.Noise.Pattern
	opts.Handshake.Header = header
	opts.Handshake.MixEphemeral = c.Noise.MixEphemeral
	opts.WebSocket.Origin = c.Socket.Origin
	opts.WebSocket.UserAgent = c.Socket.UserAgent
	opts.DialTimeout = c.Socket.DialTimeout.Duration
	opts.FrameTimeout = c.Socket.FrameTimeout.Duration
	opts.MaxDepth = c.Codec.MaxDepth
	opts.CompressThreshold = c.Codec.CompressThreshold

	if c.Metrics.Enabled {
		opts.Metrics = transport.NewMetrics(transport.MetricsConfig{
			Namespace: c.Metrics.Namespace,
			Registry:  reg,
		})
	}
	return opts, nil
}

func (o *Options) validate() error {
	if err := limits.ValidateDepth(o.MaxDepth); err != nil {
		return err
	}
	if o.CompressThreshold < 0 {
		return fmt.Errorf("compress threshold %d is negative", o.CompressThreshold)
	}
	return nil
}

func (o *Options) socketOptions() []transport.SocketOption {
	return []transport.SocketOption{
		transport.WithHandshakeConfig(o.Handshake),
		transport.WithWebSocketConfig(o.WebSocket),
		transport.WithMetrics(o.Metrics),
	}
}
