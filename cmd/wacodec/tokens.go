package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opd-ai/wacore/binary/token"
	"github.com/spf13/cobra"
)

func tokensCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "tokens [string | code | dict:index]",
		Short: "Look up dictionary tokens",
		Long: `Look up a token in the dictionaries.

A decimal code prints the single-byte token, dict:index (dict 0-3)
prints a double-byte token, and anything else prints the code the
string encodes to. --list prints every single-byte token.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for code := token.SingleByteBase; code < token.Dictionary0; code++ {
					if s, ok := token.DecodeSingle(byte(code)); ok {
						fmt.Fprintf(out, "%d\t%s\n", code, s)
					}
				}
				return nil
			}

			s, err := lookupToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, s)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List all single-byte tokens")

	return cmd
}

func lookupToken(arg string) (string, error) {
	if dict, index, ok := strings.Cut(arg, ":"); ok {
		d, errD := strconv.ParseUint(dict, 10, 8)
		i, errI := strconv.ParseUint(index, 10, 8)
		if errD == nil && errI == nil {
			s, ok := token.DecodeDouble(byte(d), byte(i))
			if !ok {
				return "", fmt.Errorf("no token at dictionary %d index %d", d, i)
			}
			return s, nil
		}
	}

	if code, err := strconv.ParseUint(arg, 10, 8); err == nil {
		s, ok := token.DecodeSingle(byte(code))
		if !ok {
			return "", fmt.Errorf("no single-byte token with code %d", code)
		}
		return s, nil
	}

	c := token.Encode(arg)
	switch c.Kind {
	case token.KindSingle:
		return fmt.Sprintf("single %d", c.Single), nil
	case token.KindDouble:
		return fmt.Sprintf("double %d:%d (wire %d %d)", c.Dictionary, c.Index, token.Dictionary0+int(c.Dictionary), c.Index), nil
	default:
		return "", fmt.Errorf("%q is not a token", arg)
	}
}
