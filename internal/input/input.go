// Package input acquires the contiguous byte view a reversal scans.
// Three backing stores exist: a read-only mapping of a named file, a heap
// buffer for streamed input small enough to hold, and a read-only mapping
// of a spill file for streamed input that outgrows its in-memory budget.
// A Source owns exactly one of them at a time and tears it down on
// Release.
package input

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/edsrzf/mmap-go"
)

// errIsDirectory is returned by Open for directories; mapping one is never
// meaningful. The caller prefixes the input name.
var errIsDirectory = errors.New("is a directory")

// Source owns one acquired byte view and the resource backing it.
type Source struct {
	view     []byte
	mm       mmap.MMap // non-nil when view is a mapping
	spill    string    // path to delete on Release, set for spilled input
	released bool
}

// Bytes returns the acquired view. The slice is only valid until Release.
func (s *Source) Bytes() []byte { return s.view }

// Release unmaps and deletes whatever backs the view. It is idempotent;
// calls after the first return nil. Partial failures are joined so neither
// the unmap nor the delete outcome is lost.
func (s *Source) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	s.view = nil

	var errs []error
	if s.mm != nil {
		if err := s.mm.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap: %w", err))
		}
		s.mm = nil
	}
	if s.spill != "" {
		if err := os.Remove(s.spill); err != nil {
			errs = append(errs, fmt.Errorf("remove spill file: %w", err))
		}
		s.spill = ""
	}
	return errors.Join(errs...)
}

// Open maps the named file read-only. A zero-length file acquires an empty
// view without mapping, since zero-length mappings are not portable.
func Open(name string) (*Source, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, errIsDirectory
	}
	if st.Size() == 0 {
		return &Source{}, nil
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return &Source{view: mm, mm: mm}, nil
}

// Stdin acquires the byte view for streamed input. A descriptor that maps
// cleanly (standard input redirected from a regular file) is used in
// place, exactly like a named file. Anything else, pipes included, is read
// into memory until the spill threshold, then staged in a temp file and
// mapped from there.
func Stdin(f *os.File, opts ...Option) (*Source, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if mm, err := mmap.Map(f, mmap.RDONLY, 0); err == nil {
		return &Source{view: mm, mm: mm}, nil
	}

	return buffer(f, cfg)
}

// buffer reads r until EOF or until the in-memory budget fills, whichever
// comes first. Hitting the budget hands off to spill; the budget check
// runs before the EOF check so the boundary case behaves the same whether
// or not the reader delivers EOF together with the final bytes.
func buffer(r io.Reader, cfg config) (*Source, error) {
	buf := make([]byte, 0, 64*1024)
	chunk := make([]byte, 64*1024)
	for {
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if len(buf) >= cfg.spillThreshold {
			return spill(r, buf, cfg)
		}
		if err == io.EOF {
			return &Source{view: buf}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
	}
}

// spill stages the buffered prefix plus the stream remainder in a temp
// file and maps it. The file is unlinked on Release, or right here when
// staging fails part way.
func spill(r io.Reader, buf []byte, cfg config) (*Source, error) {
	tmp, err := os.CreateTemp(cfg.tempDir, spillPattern)
	if err != nil {
		return nil, fmt.Errorf("create spill file: %w", err)
	}
	path := tmp.Name()

	cfg.logger.Debug("input exceeds the in-memory budget, spilling to disk",
		"threshold", humanize.IBytes(uint64(cfg.spillThreshold)),
		"path", path)

	mm, err := stage(tmp, r, buf)
	if cerr := tmp.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close spill file: %w", cerr)
	}
	if err != nil {
		if mm != nil {
			_ = mm.Unmap()
		}
		_ = os.Remove(path)
		return nil, err
	}
	return &Source{view: mm, mm: mm, spill: path}, nil
}

// stage writes the buffered prefix, copies the rest of the stream, and
// maps the result read-only.
func stage(tmp *os.File, r io.Reader, buf []byte) (mmap.MMap, error) {
	if _, err := tmp.Write(buf); err != nil {
		return nil, fmt.Errorf("write spill file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		return nil, fmt.Errorf("copy to spill file: %w", err)
	}
	mm, err := mmap.Map(tmp, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap spill file: %w", err)
	}
	return mm, nil
}
