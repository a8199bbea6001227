//go:build !amd64 && !arm64

package scan

import "io"

// dispatch always selects the scalar kernel: no wide-kernel gate has been
// vetted for this architecture.
func dispatch(w io.Writer, view []byte, sep byte) error {
	return scanScalar(w, view, sep)
}

// Kernel reports the name of the scan kernel the dispatcher selects on
// this CPU. Without a vetted wide gate that is always "scalar". The name
// is diagnostic only and carries no behavioral promise.
func Kernel() string {
	return "scalar"
}
