// Package tac writes the separator-terminated segments of an input in
// reverse order, the way the classic tac(1) does for lines.
//
// The scan itself runs over a contiguous view of the whole input: named
// files are memory mapped, and streamed input is buffered in memory or
// staged in a temp file once it outgrows its budget. Scanning dispatches
// to the widest CPU-suitable kernel through the scan package.
//
// Basic usage:
//
//	// Reverse a log file to stdout, newest entries first.
//	w := bufio.NewWriter(os.Stdout)
//	if err := tac.Reverse(w, "app.log"); err != nil {
//	    log.Fatal(err)
//	}
//
// Custom separator:
//
//	// NUL-terminated records, stdin to stdout.
//	err := tac.Reverse(os.Stdout, "-", tac.WithSeparator(0))
//
// A segment keeps its trailing separator, so reversing twice restores the
// input whenever the final segment is terminated. An unterminated final
// segment is emitted first, without a separator, matching tac(1).
package tac

import (
	"fmt"
	"io"

	"github.com/bytescan/tac/internal/input"
	"github.com/bytescan/tac/scan"
)

// flusher is the optional sink capability Reverse drains after scanning.
// *bufio.Writer satisfies it.
type flusher interface {
	Flush() error
}

// Reverse reads the named input, writes its segments to w in reverse
// order, and releases everything it acquired before returning. The name
// "-" (or the empty string) reads standard input.
//
// The error, when non-nil, is the acquisition or write failure that
// stopped the reversal; bytes already written stay with the sink. Cleanup
// failures never surface as errors, they go to the configured logger.
// A zero-length input succeeds without writing anything.
func Reverse(w io.Writer, name string, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return err
		}
	}
	if name == "" {
		name = "-"
	}

	src, err := acquire(name, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := src.Release(); rerr != nil {
			// Cleanup stays out of the error contract: output is already
			// complete (or already failed) by the time release runs.
			cfg.logger.Warn("input release failed", "input", name, "error", rerr)
		}
	}()

	view := src.Bytes()
	if len(view) == 0 {
		return nil
	}
	cfg.logger.Debug("scanning input",
		"input", name, "kernel", scan.Kernel(), "size", len(view))

	scanErr := scan.Reverse(w, view, cfg.separator)

	// Flush sits between the scan and the deferred release. A failed scan
	// still flushes whatever was emitted, but keeps its own error.
	if f, ok := w.(flusher); ok {
		if ferr := f.Flush(); ferr != nil && scanErr == nil {
			scanErr = fmt.Errorf("flush: %w", ferr)
		}
	}
	return scanErr
}

func acquire(name string, cfg config) (*input.Source, error) {
	if name == "-" {
		return input.Stdin(cfg.stdin, cfg.inputOptions()...)
	}
	return input.Open(name)
}
