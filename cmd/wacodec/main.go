// Command wacodec inspects binary nodes and tests handshakes against a
// chat endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wacodec",
		Short: "Binary node codec and handshake tool",
		Long: `wacodec decodes binary nodes, looks up dictionary tokens and
runs a Noise handshake against a configured endpoint.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		decodeCmd(),
		tokensCmd(),
		handshakeCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
