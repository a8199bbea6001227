package tac

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// pipeWith returns the read end of a pipe preloaded with data, simulating
// piped stdin. The payload must stay below the kernel pipe buffer.
func pipeWith(t *testing.T, data []byte) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// countWriter counts Write calls and keeps nothing.
type countWriter struct {
	writes int
}

func (w *countWriter) Write(p []byte) (int, error) {
	w.writes++
	return len(p), nil
}

// flushCounter is a buffer that counts how often it is flushed.
type flushCounter struct {
	bytes.Buffer
	flushes int
}

func (w *flushCounter) Flush() error {
	w.flushes++
	return nil
}

// TestReverseFile tests reversing a named file
func TestReverseFile(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"terminated", "a\nb\nc\n", "c\nb\na\n"},
		{"unterminated", "a\nb\nc", "cb\na\n"},
		{"single_segment", "only\n", "only\n"},
		{"no_separator", "solid", "solid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := Reverse(&out, writeFile(t, []byte(tt.input))); err != nil {
				t.Fatalf("Reverse failed: %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("got %q, want %q", out.String(), tt.want)
			}
		})
	}
}

// TestReverseEmptyFile tests that empty input writes nothing at all
func TestReverseEmptyFile(t *testing.T) {
	w := &countWriter{}
	if err := Reverse(w, writeFile(t, nil)); err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if w.writes != 0 {
		t.Errorf("%d writes for empty input, want 0", w.writes)
	}
}

// TestReverseSeparator tests the separator option end to end
func TestReverseSeparator(t *testing.T) {
	var out bytes.Buffer
	err := Reverse(&out, writeFile(t, []byte("a,b,c,")), WithSeparator(','))
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if out.String() != "c,b,a," {
		t.Errorf("got %q, want %q", out.String(), "c,b,a,")
	}
}

// TestReverseStdin tests the stdin path, including the empty name alias
func TestReverseStdin(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"dash", "-"},
		{"empty_name", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := Reverse(&out, tt.input, WithStdin(pipeWith(t, []byte("x\ny\n"))))
			if err != nil {
				t.Fatalf("Reverse failed: %v", err)
			}
			if out.String() != "y\nx\n" {
				t.Errorf("got %q, want %q", out.String(), "y\nx\n")
			}
		})
	}
}

// TestReverseSpillParity tests that file, buffered and spilled input all
// produce identical output
func TestReverseSpillParity(t *testing.T) {
	var content bytes.Buffer
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&content, "record %03d\n", i)
	}
	var want bytes.Buffer
	for i := 99; i >= 0; i-- {
		fmt.Fprintf(&want, "record %03d\n", i)
	}

	path := writeFile(t, content.Bytes())
	spillDir := t.TempDir()

	var fromFile, fromPipe, fromSpill bytes.Buffer
	if err := Reverse(&fromFile, path); err != nil {
		t.Fatalf("file path failed: %v", err)
	}
	if err := Reverse(&fromPipe, "-", WithStdin(pipeWith(t, content.Bytes()))); err != nil {
		t.Fatalf("buffered path failed: %v", err)
	}
	err := Reverse(&fromSpill, "-",
		WithStdin(pipeWith(t, content.Bytes())),
		WithSpillThreshold(64),
		WithTempDir(spillDir))
	if err != nil {
		t.Fatalf("spilled path failed: %v", err)
	}

	for label, got := range map[string]*bytes.Buffer{
		"file": &fromFile, "pipe": &fromPipe, "spill": &fromSpill,
	} {
		if !bytes.Equal(got.Bytes(), want.Bytes()) {
			t.Errorf("%s output diverges from expected reversal", label)
		}
	}

	// The spill file is gone once the reversal returns.
	left, err := os.ReadDir(spillDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("%d files left in spill dir, want 0", len(left))
	}
}

// TestReverseFlushOnce tests that a flushable sink is drained exactly once
func TestReverseFlushOnce(t *testing.T) {
	w := &flushCounter{}
	if err := Reverse(w, writeFile(t, []byte("a\nb\n"))); err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if w.flushes != 1 {
		t.Errorf("%d flushes, want 1", w.flushes)
	}
	if w.String() != "b\na\n" {
		t.Errorf("got %q, want %q", w.String(), "b\na\n")
	}
}

type flushErrWriter struct {
	err error
}

func (w *flushErrWriter) Write(p []byte) (int, error) { return len(p), nil }
func (w *flushErrWriter) Flush() error                { return w.err }

// TestReverseFlushError tests that a flush failure surfaces as the error
func TestReverseFlushError(t *testing.T) {
	sinkErr := errors.New("flush sink full")
	err := Reverse(&flushErrWriter{err: sinkErr}, writeFile(t, []byte("a\nb\n")))
	if !errors.Is(err, sinkErr) {
		t.Fatalf("got %v, want the flush error", err)
	}
}

type errWriter struct {
	err     error
	flushes int
}

func (w *errWriter) Write(p []byte) (int, error) { return 0, w.err }
func (w *errWriter) Flush() error                { w.flushes++; return nil }

// TestReverseWriteError tests that a write failure wins over the flush,
// which still runs
func TestReverseWriteError(t *testing.T) {
	sinkErr := errors.New("sink refused")
	w := &errWriter{err: sinkErr}
	err := Reverse(w, writeFile(t, []byte("a\nb\n")))
	if !errors.Is(err, sinkErr) {
		t.Fatalf("got %v, want the write error", err)
	}
	if w.flushes != 1 {
		t.Errorf("%d flushes after failed scan, want 1", w.flushes)
	}
}

// TestReverseMissingFile tests the acquisition error path
func TestReverseMissingFile(t *testing.T) {
	var out bytes.Buffer
	if err := Reverse(&out, filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("Reverse of a missing file should fail")
	}
	if out.Len() != 0 {
		t.Errorf("output written despite acquisition failure: %q", out.Bytes())
	}
}

// TestReverseOptionErrors tests option validation
func TestReverseOptionErrors(t *testing.T) {
	var out bytes.Buffer
	if err := Reverse(&out, "x", WithSpillThreshold(0)); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("threshold 0: got %v, want ErrInvalidThreshold", err)
	}
	if err := Reverse(&out, "x", WithLogger(nil)); !errors.Is(err, ErrNilLogger) {
		t.Errorf("nil logger: got %v, want ErrNilLogger", err)
	}
	if err := Reverse(&out, "x", WithStdin(nil)); !errors.Is(err, ErrNilStdin) {
		t.Errorf("nil stdin: got %v, want ErrNilStdin", err)
	}
}

// BenchmarkReverseFile benchmarks the whole per-input pipeline over a
// mapped file
func BenchmarkReverseFile(b *testing.B) {
	b.ReportAllocs()

	var content bytes.Buffer
	for content.Len() < 1<<20 {
		fmt.Fprintf(&content, "%064d\n", content.Len())
	}
	path := filepath.Join(b.TempDir(), "bench.txt")
	if err := os.WriteFile(path, content.Bytes(), 0o644); err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(content.Len()))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var out bytes.Buffer
		if err := Reverse(&out, path); err != nil {
			b.Fatal(err)
		}
	}
}
