package bridge

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks user-facing argument errors reported at forward
// time: unknown gradient parameters, disagreeing systems, or a calculator
// that can not support the requested gradients. Test with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// invalidArgumentf wraps ErrInvalidArgument with a description.
func invalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// assertf panics when an internal invariant between the calculator output
// and the captured backward state is broken. These are collaborator
// contract violations, not user errors: they abort the current call before
// any partial gradient is visible and are never retried.
func assertf(condition bool, format string, args ...any) {
	if !condition {
		panic("schema inconsistency: " + fmt.Sprintf(format, args...))
	}
}
