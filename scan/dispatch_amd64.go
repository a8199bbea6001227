//go:build amd64

package scan

import (
	"io"

	"golang.org/x/sys/cpu"
)

// CPU feature detection flags set at package initialization.
// The dispatcher consults these once; kernels never probe on their own.
var (
	// useWide32 gates the 32-byte window kernel. AVX2 supplies the wide
	// compare class; BMI1/BMI2 cover the bit-scan and bit-extract work the
	// mask resolution loop leans on.
	useWide32 = cpu.X86.HasAVX2 && cpu.X86.HasBMI1 && cpu.X86.HasBMI2

	// useWide16 gates the 16-byte window kernel. SSE2 is architecturally
	// guaranteed on x86-64; probing keeps the selection explicit anyway.
	useWide16 = cpu.X86.HasSSE2
)

// dispatch routes one non-empty view through the widest kernel this CPU
// supports.
func dispatch(w io.Writer, view []byte, sep byte) error {
	switch {
	case useWide32:
		return scanWide32(w, view, sep)
	case useWide16:
		return scanWide16(w, view, sep)
	default:
		return scanScalar(w, view, sep)
	}
}

// Kernel reports the name of the scan kernel the dispatcher selects on
// this CPU: "wide32", "wide16", or "scalar". The name is diagnostic only
// and carries no behavioral promise.
func Kernel() string {
	switch {
	case useWide32:
		return "wide32"
	case useWide16:
		return "wide16"
	default:
		return "scalar"
	}
}
