package tac

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bytescan/tac/internal/input"
)

var (
	// ErrInvalidThreshold is returned when the spill threshold is not positive.
	ErrInvalidThreshold = errors.New("spill threshold must be greater than 0")

	// ErrNilLogger is returned when a nil logger is supplied.
	ErrNilLogger = errors.New("logger must not be nil")

	// ErrNilStdin is returned when a nil stdin file is supplied.
	ErrNilStdin = errors.New("stdin must not be nil")
)

// DefaultSeparator terminates segments unless overridden.
const DefaultSeparator byte = '\n'

// DefaultSpillThreshold is the in-memory budget for streamed input before
// it spills to a temp file (4 MiB).
const DefaultSpillThreshold = input.DefaultSpillThreshold

// Option configures a reversal.
type Option func(*config) error

// config holds the per-reversal configuration.
type config struct {
	separator      byte
	spillThreshold int
	tempDir        string
	stdin          *os.File
	logger         *slog.Logger
}

func defaultConfig() config {
	return config{
		separator:      DefaultSeparator,
		spillThreshold: DefaultSpillThreshold,
		stdin:          os.Stdin,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// inputOptions translates the reversal configuration for the acquisition
// layer.
func (c config) inputOptions() []input.Option {
	opts := []input.Option{
		input.WithSpillThreshold(c.spillThreshold),
		input.WithLogger(c.logger),
	}
	if c.tempDir != "" {
		opts = append(opts, input.WithTempDir(c.tempDir))
	}
	return opts
}

// WithSeparator sets the byte that terminates segments.
func WithSeparator(sep byte) Option {
	return func(c *config) error {
		c.separator = sep
		return nil
	}
}

// WithSpillThreshold sets the in-memory budget for streamed input before
// it spills to a temp file.
func WithSpillThreshold(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidThreshold, n)
		}
		c.spillThreshold = n
		return nil
	}
}

// WithTempDir sets the directory spill files are created in. The empty
// default delegates to the operating system's temp directory.
func WithTempDir(dir string) Option {
	return func(c *config) error {
		c.tempDir = dir
		return nil
	}
}

// WithStdin sets the file read when the input name is "-". The default is
// os.Stdin.
func WithStdin(f *os.File) Option {
	return func(c *config) error {
		if f == nil {
			return ErrNilStdin
		}
		c.stdin = f
		return nil
	}
}

// WithLogger routes diagnostics (kernel selection, spill events, cleanup
// failures) to l. The default logger discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return ErrNilLogger
		}
		c.logger = l
		return nil
	}
}
