// suitoken-cli generates Sui coin packages and verifies existing ones,
// either locally or through a suitokend daemon.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/sui-tokengen/config"
	klog "github.com/Klingon-tech/sui-tokengen/internal/log"
	"github.com/Klingon-tech/sui-tokengen/internal/rpcclient"
	"github.com/Klingon-tech/sui-tokengen/internal/service"
	"github.com/Klingon-tech/sui-tokengen/internal/source"
)

// Exit codes.
const (
	exitOK       = 0
	exitError    = 1
	exitUsage    = 2
	exitTampered = 3
)

// globalOpts holds the persistent flags.
type globalOpts struct {
	rpcURL     string
	logLevel   string
	timeout    time.Duration
	verifyMode string
	hosts      []string
	git        string
}

// usageError marks errors caused by bad command-line input.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitOK
	}
	kind, code := classify(err)
	fmt.Fprintf(stderr, "Error: [%s] %v\n", kind, err)
	return code
}

// classify returns the error classification shown to the user and the exit
// code for err.
func classify(err error) (string, int) {
	var uerr *usageError
	if errors.As(err, &uerr) {
		return "usage", exitUsage
	}
	var rerr *rpcclient.RPCError
	if errors.As(err, &rerr) {
		kind := rerr.Kind
		if kind == "" {
			kind = "rpc"
		}
		if rerr.IsTampered() {
			return kind, exitTampered
		}
		return kind, exitError
	}
	kind := service.Classify(err)
	if kind == service.KindTampered {
		return kind.String(), exitTampered
	}
	return kind.String(), exitError
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	opts := &globalOpts{}

	root := &cobra.Command{
		Use:           "suitoken-cli",
		Short:         "Generate and verify Sui Move coin packages",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := klog.Init(opts.logLevel, false, ""); err != nil {
				return &usageError{err}
			}
			if _, err := service.ParseMode(opts.verifyMode); err != nil {
				return &usageError{err}
			}
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.rpcURL, "rpc", "", "suitokend endpoint (empty = run locally)")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	pf.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall deadline for the command")
	pf.StringVar(&opts.verifyMode, "verify-mode", "all", "verify all .move files or only the first (all, first)")
	pf.StringSliceVar(&opts.hosts, "git-hosts", source.DefaultHosts, "allowed git hosts for repository URLs")
	pf.StringVar(&opts.git, "git", "", "git executable (default: from PATH)")

	root.AddCommand(
		newCreateCmd(opts, stdin),
		newVerifyCmd(opts),
		newVerifyContentCmd(opts),
		newInitConfigCmd(),
	)
	return root
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

// commandContext returns a context bounded by --timeout.
func commandContext(cmd *cobra.Command, opts *globalOpts) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		return context.WithTimeout(ctx, opts.timeout)
	}
	return context.WithCancel(ctx)
}
