// Package scan reverses the order of separator-terminated segments in a
// byte view. The package automatically selects the widest scan kernel the
// CPU supports (32-byte windows on x86-64 with AVX2, 16-byte windows under
// SSE2 or Advanced SIMD) and falls back to a portable scalar implementation
// on other platforms.
//
// Every kernel honors one contract: walk the view from the last byte toward
// the first, and each time the separator appears, emit the bytes between
// that separator (exclusive) and the previous emission point. The head of
// the view, up to and including the first separator, is emitted last. The
// output therefore contains exactly the input's segments, each with its
// trailing separator in place, in reverse order of appearance. A final
// segment with no trailing separator stays unterminated in the output.
package scan

import "io"

// Reverse writes the separator-terminated segments of view to w in reverse
// order. The kernel is chosen once per process from CPU features; kernel
// choice never changes the output, only the throughput.
//
// A zero-length view produces no writes and no error. A write error aborts
// the emission immediately; bytes already emitted stay with the sink.
//
// Example:
//
//	var buf bytes.Buffer
//	scan.Reverse(&buf, []byte("alpha\nbeta\ngamma\n"), '\n')
//	fmt.Print(buf.String()) // gamma, beta, alpha, one per line
func Reverse(w io.Writer, view []byte, sep byte) error {
	if len(view) == 0 {
		return nil
	}
	return dispatch(w, view, sep)
}

// scanScalar is the reference kernel: one byte per step, high address to
// low. The wide kernels must produce byte-identical output for every view.
func scanScalar(w io.Writer, view []byte, sep byte) error {
	if len(view) == 0 {
		return nil
	}

	stop := len(view)
	if err := scanRange(w, view, 0, len(view), &stop, sep); err != nil {
		return err
	}

	// Head segment: everything before the last separator found, or the
	// whole view when no separator exists.
	_, err := w.Write(view[:stop])
	return err
}

// scanRange walks view indices [start, end) from high to low and writes one
// segment per separator found. *stop is the exclusive end of the next
// segment to emit; it only ever moves down. The caller owns the final
// [0, *stop) write once every index of the view has been examined.
//
// The wide kernels reuse this for the unaligned tail and the sub-window
// head, so all three kernels share one emission rule.
func scanRange(w io.Writer, view []byte, start, end int, stop *int, sep byte) error {
	for i := end - 1; i >= start; i-- {
		if view[i] != sep {
			continue
		}
		if _, err := w.Write(view[i+1 : *stop]); err != nil {
			return err
		}
		*stop = i + 1
	}
	return nil
}
