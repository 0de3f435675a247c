package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/sui-tokengen/internal/rpc"
	"github.com/Klingon-tech/sui-tokengen/internal/source"
)

func newVerifyCmd(g *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <path|url>",
		Short: "Verify the .move files of a local package or git repository",
		Long: `Verify that every coin module in a package is exactly what create would
generate for the parameters it declares.

A local directory is searched in its sources/ folder, or directly when it
has none. A repository URL must be https on an allowed host and contain a
sources/ folder.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackend(g)
			if err != nil {
				return &usageError{err}
			}
			ctx, cancel := commandContext(cmd, g)
			defer cancel()

			res, err := b.VerifyLocation(ctx, args[0])
			if err != nil {
				return err
			}
			printVerifyResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newVerifyContentCmd(g *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-content <file|->",
		Short: "Verify a single coin module file (- reads stdin)",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args[0])
			if err != nil {
				return err
			}
			b, err := newBackend(g)
			if err != nil {
				return &usageError{err}
			}
			ctx, cancel := commandContext(cmd, g)
			defer cancel()

			res, err := b.VerifyContent(ctx, content)
			if err != nil {
				return err
			}
			res.Files = []string{args[0]}
			printVerifyResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func readContent(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", &source.IOError{Op: "read", Path: "stdin", Err: err}
		}
		return string(data), nil
	}
	return source.ReadFile(path)
}

func printVerifyResult(w io.Writer, res *rpc.VerifyResult) {
	fmt.Fprintf(w, "Authentic: %d file(s) verified\n", len(res.Files))
	for _, f := range res.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	if res.Fingerprint != "" {
		fmt.Fprintf(w, "Fingerprint: %s\n", res.Fingerprint)
	}
}
