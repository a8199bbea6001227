package input

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

var (
	// ErrInvalidThreshold is returned when the spill threshold is not positive.
	ErrInvalidThreshold = errors.New("spill threshold must be greater than 0")

	// ErrNilLogger is returned when a nil logger is supplied.
	ErrNilLogger = errors.New("logger must not be nil")
)

// DefaultSpillThreshold is the in-memory budget for streamed input before
// it spills to a temp file (4 MiB).
const DefaultSpillThreshold = 4 << 20

// spillPattern names spill files. The random suffix filled in by
// os.CreateTemp keeps concurrent invocations apart.
const spillPattern = ".tac-*"

// Option configures stream acquisition.
type Option func(*config) error

// config holds the acquisition configuration.
type config struct {
	spillThreshold int
	tempDir        string
	logger         *slog.Logger
}

func defaultConfig() config {
	return config{
		spillThreshold: DefaultSpillThreshold,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithSpillThreshold sets the in-memory budget for streamed input.
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

// WithLogger routes acquisition diagnostics to l. The default logger
// discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return ErrNilLogger
		}
		c.logger = l
		return nil
	}
}
