// Sui token generator daemon.
//
// Usage:
//
//	suitokend [--rpc-port=8645 --ws --metrics ...] Run daemon
//	suitokend --help                               Show help
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Klingon-tech/sui-tokengen/config"
	"github.com/Klingon-tech/sui-tokengen/internal/daemon"
)

func main() {
	cfg := config.LoadOrExit()

	d, err := daemon.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := d.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		d.Stop()
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	d.Stop()
}
