package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/opd-ai/wacore/binary"
	"github.com/opd-ai/wacore/limits"
	"github.com/spf13/cobra"
)

func decodeCmd() *cobra.Command {
	var (
		packed   bool
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "decode [hex]",
		Short: "Decode a hex-encoded node",
		Long: `Decode a hex-encoded binary node and print it in XML form.
The hex is read from standard input when no argument is given.
Whitespace in the input is ignored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				input = string(data)
			}

			data, err := hex.DecodeString(strings.Join(strings.Fields(input), ""))
			if err != nil {
				return fmt.Errorf("invalid hex: %w", err)
			}
			if packed {
				if data, err = binary.Unpack(data); err != nil {
					return err
				}
			}

			n, err := binary.Unmarshal(data, binary.WithMaxDepth(maxDepth))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.String())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&packed, "packed", "p", false, "Input starts with a frame flag byte")
	cmd.Flags().IntVar(&maxDepth, "max-depth", limits.DefaultMaxNodeDepth, "Maximum node nesting depth")

	return cmd
}
