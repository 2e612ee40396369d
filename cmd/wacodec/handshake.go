package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/opd-ai/wacore"
	"github.com/opd-ai/wacore/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func handshakeCmd() *cobra.Command {
	var (
		configPath string
		url        string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "handshake",
		Short: "Connect and run the Noise handshake",
		Long: `Dial the configured endpoint, complete the Noise handshake and
print the server payload. The connection is closed afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if url != "" {
				cfg.Socket.URL = url
			}
			if err := cfg.Log.Apply(); err != nil {
				return err
			}

			opts, err := wacore.OptionsFromConfig(cfg, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			client, err := wacore.New(opts)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			start := time.Now()
			if err := client.Connect(ctx); err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			payload := client.ServerPayload()
			fmt.Fprintf(out, "handshake completed in %s\n", time.Since(start).Round(time.Millisecond))
			fmt.Fprintf(out, "server payload: %d bytes\n", len(payload))
			if len(payload) > 0 {
				fmt.Fprintln(out, hex.EncodeToString(payload))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a wacore.toml file")
	cmd.Flags().StringVar(&url, "url", "", "Override socket.url")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
