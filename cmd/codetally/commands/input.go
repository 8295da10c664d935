// Package commands implements CLI command handlers for codetally.
package commands

import (
	"fmt"
	"io"
	"os"
)

const stdinArg = "-"

// openInput opens the scan named by arg, "-" meaning stdin.
func openInput(arg string, stdin io.Reader) (io.ReadCloser, string, error) {
	if arg == stdinArg {
		return io.NopCloser(stdin), "stdin", nil
	}

	f, err := os.Open(arg)
	if err != nil {
		return nil, arg, fmt.Errorf("open scan: %w", err)
	}

	return f, arg, nil
}
