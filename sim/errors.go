package sim

import "fmt"

// invariantViolation marks a panic raised by the engine itself when it
// detects corrupt input that no recoverable error path can fix (duplicate
// Section.StartTick, negative TotalOps, a dangling DependencyID, ...).
// main recovers from this distinctly from an ordinary Go runtime panic so it
// can log a corruption report before re-raising and exiting non-zero.
type invariantViolation struct {
	msg string
}

func (e invariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.msg)
}

// AsInvariantViolation reports whether err (or a recovered panic value) is
// an invariant violation raised by this package, returning its message.
func AsInvariantViolation(v any) (string, bool) {
	iv, ok := v.(invariantViolation)
	if !ok {
		return "", false
	}
	return iv.msg, true
}

// PanicInvariant raises an invariant violation. Exported so sibling packages
// (storage/sqlite when validating a loaded row, sim/policy when validating a
// scheduler's inputs) can participate in the same fatal-panic contract
// without depending on this package's unexported type.
func PanicInvariant(format string, args ...any) {
	panic(invariantViolation{msg: fmt.Sprintf(format, args...)})
}
