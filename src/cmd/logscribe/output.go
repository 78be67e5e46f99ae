// FILE: logscribe/src/cmd/logscribe/output.go
package main

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// console carries the messages meant for the person running logscribe:
// banners, endpoints and start-up failures. Diagnostics go to the logger.
type console struct {
	quiet  atomic.Bool
	stdout io.Writer
	stderr io.Writer
}

var term = newConsole(os.Stdout, os.Stderr)

func newConsole(stdout, stderr io.Writer) *console {
	return &console{stdout: stdout, stderr: stderr}
}

func (c *console) write(w io.Writer, format string, args ...any) {
	if c.quiet.Load() {
		return
	}
	fmt.Fprintf(w, format, args...)
}

// Print writes to stdout unless quiet
func Print(format string, args ...any) {
	term.write(term.stdout, format, args...)
}

// Error writes to stderr unless quiet
func Error(format string, args ...any) {
	term.write(term.stderr, format, args...)
}

// FatalError reports through Error and exits with code
func FatalError(code int, format string, args ...any) {
	Error(format, args...)
	os.Exit(code)
}
