//go:build unix

package main

import (
	"os"
	"syscall"
)

// SIGHUP too: hosts close the terminal or pipe on exit.
func shutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}
}
