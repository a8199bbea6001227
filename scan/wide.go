package scan

import (
	"encoding/binary"
	"io"
	"math/bits"
	"unsafe"
)

// Window widths of the two wide kernels, in bytes.
const (
	wide16Width = 16
	wide32Width = 32
)

// Below these lengths a wide kernel hands the whole view to the scalar
// kernel. The bound guarantees at least two aligned windows remain after a
// worst-case unaligned tail of width-1 bytes, so the window loop always
// has work worth its setup.
const (
	minWide16 = 3*wide16Width - 1
	minWide32 = 3*wide32Width - 1
)

// SWAR constants: lo8 replicates 0x01 into every byte of a uint64, hi8
// replicates 0x80, and mmGather is the multiplier that collects the eight
// per-byte match flags into the top byte of the product.
const (
	lo8      = 0x0101010101010101
	hi8      = 0x8080808080808080
	mmGather = 0x0102040810204080
)

// movemask8 compares one 8-byte lane against the broadcast separator and
// returns an 8-bit mask with bit k set when lane byte k matched.
//
// The zero detection is the exact form, not the borrow shortcut: after
// x := lane ^ sepMask,
//
//	t := x | ((x | hi8) - lo8)
//
// every byte of (x | hi8) has its high bit set, so the subtraction never
// borrows across bytes and a byte of t has a clear high bit only when that
// byte of x was zero. The shortcut (x-lo8) & ^x & hi8 can flag a 0x01 byte
// sitting above a true zero; that is harmless when only the first match
// matters, but here every separator in the lane must be visible because
// segments resolve from the highest match downward.
func movemask8(lane, sepMask uint64) uint32 {
	x := lane ^ sepMask
	t := x | ((x | hi8) - lo8)
	zeros := ^t & hi8

	// 0x80 markers -> 0x01 markers, then one multiply lines bit 8k up on
	// bit 56+k. All partial products hit distinct bits, so no carries.
	return uint32(((zeros >> 7) * mmGather) >> 56)
}

// alignedEnd returns len(view) rounded down to the closest index whose
// byte sits on a width-aligned address. Windows stepping down from that
// index load from aligned addresses only. The arithmetic stays in
// integers; no pointer is ever reconstructed from it.
func alignedEnd(view []byte, width int) int {
	end := uintptr(unsafe.Pointer(unsafe.SliceData(view))) + uintptr(len(view))
	return len(view) - int(end%uintptr(width))
}

// scanWide16 emits segments using 16-byte windows, two SWAR lanes per
// window. Output is byte-identical to scanScalar for every view.
func scanWide16(w io.Writer, view []byte, sep byte) error {
	if len(view) < minWide16 {
		return scanScalar(w, view, sep)
	}

	stop := len(view)
	sepMask := uint64(sep) * lo8

	// Unaligned tail first, so every window load below starts aligned.
	idx := alignedEnd(view, wide16Width)
	if idx < len(view) {
		if err := scanRange(w, view, idx, len(view), &stop, sep); err != nil {
			return err
		}
	}

	for idx >= wide16Width {
		idx -= wide16Width
		m0 := movemask8(binary.LittleEndian.Uint64(view[idx:]), sepMask)
		m1 := movemask8(binary.LittleEndian.Uint64(view[idx+8:]), sepMask)
		mask := uint16(m0 | m1<<8)

		// Resolve matches from the highest address down. The write covers
		// the bytes after the matched separator up to the previous stop;
		// clearing exactly the resolved bit keeps multiple separators in
		// one window distinct.
		for mask != 0 {
			lz := bits.LeadingZeros16(mask)
			next := idx + wide16Width - lz
			if _, err := w.Write(view[next:stop]); err != nil {
				return err
			}
			stop = next
			mask &^= 1 << (15 - lz)
		}
	}

	// Sub-window head, then the final segment ending at stop.
	if idx > 0 {
		if err := scanRange(w, view, 0, idx, &stop, sep); err != nil {
			return err
		}
	}
	_, err := w.Write(view[:stop])
	return err
}

// scanWide32 emits segments using 32-byte windows, four SWAR lanes per
// window. Output is byte-identical to scanScalar for every view.
func scanWide32(w io.Writer, view []byte, sep byte) error {
	if len(view) < minWide32 {
		return scanScalar(w, view, sep)
	}

	stop := len(view)
	sepMask := uint64(sep) * lo8

	idx := alignedEnd(view, wide32Width)
	if idx < len(view) {
		if err := scanRange(w, view, idx, len(view), &stop, sep); err != nil {
			return err
		}
	}

	for idx >= wide32Width {
		idx -= wide32Width
		m0 := movemask8(binary.LittleEndian.Uint64(view[idx:]), sepMask)
		m1 := movemask8(binary.LittleEndian.Uint64(view[idx+8:]), sepMask)
		m2 := movemask8(binary.LittleEndian.Uint64(view[idx+16:]), sepMask)
		m3 := movemask8(binary.LittleEndian.Uint64(view[idx+24:]), sepMask)
		mask := m0 | m1<<8 | m2<<16 | m3<<24

		for mask != 0 {
			lz := bits.LeadingZeros32(mask)
			next := idx + wide32Width - lz
			if _, err := w.Write(view[next:stop]); err != nil {
				return err
			}
			stop = next
			mask &^= 1 << (31 - lz)
		}
	}

	if idx > 0 {
		if err := scanRange(w, view, 0, idx, &stop, sep); err != nil {
			return err
		}
	}
	_, err := w.Write(view[:stop])
	return err
}
