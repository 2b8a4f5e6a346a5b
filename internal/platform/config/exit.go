package config

import (
	"fmt"
	"io"
	"os"
)

// osExit is swapped by tests.
var osExit = os.Exit

// Exitf writes a formatted error message to stderr and exits with code 1.
// It provides a consistent fatal-exit pattern for CLI entry points.
func Exitf(format string, args ...any) {
	exitf(os.Stderr, format, args...)
}

// ExitOnError calls Exitf with "prefix: err" when err is non-nil.
func ExitOnError(prefix string, err error) {
	if err == nil {
		return
	}
	exitf(os.Stderr, "%s: %v", prefix, err)
}

func exitf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
	osExit(1)
}
