// Package assert holds the tracker's contract-violation panics.
//
// These are not user errors: they fire only when a caller violates the
// narrow preconditions documented on the exported API - pressure
// underflow, re-discovering an already-live register, closing a
// non-empty snapshot, bad init. There is no recoverable error path for
// any of them.
package assert

import "fmt"

// That panics with a formatted message if cond is false.
func That(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
