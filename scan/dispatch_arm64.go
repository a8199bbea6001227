//go:build arm64

package scan

import (
	"io"

	"golang.org/x/sys/cpu"
)

// useWide16 gates the 16-byte window kernel behind the Advanced SIMD
// probe. There is no 32-byte integer vector class common enough on arm64
// to justify a third kernel here.
var useWide16 = cpu.ARM64.HasASIMD

// dispatch routes one non-empty view through the widest kernel this CPU
// supports.
func dispatch(w io.Writer, view []byte, sep byte) error {
	if useWide16 {
		return scanWide16(w, view, sep)
	}
	return scanScalar(w, view, sep)
}

// Kernel reports the name of the scan kernel the dispatcher selects on
// this CPU: "wide16" or "scalar". The name is diagnostic only and carries
// no behavioral promise.
func Kernel() string {
	if useWide16 {
		return "wide16"
	}
	return "scalar"
}
