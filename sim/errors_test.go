package sim

import "testing"

func TestPanicInvariant_RecoversAsInvariantViolation(t *testing.T) {
	defer func() {
		v := recover()
		msg, ok := AsInvariantViolation(v)
		if !ok {
			t.Fatalf("expected recovered value to be an invariant violation, got %v", v)
		}
		if msg != "task 7 is broken" {
			t.Errorf("message = %q, want %q", msg, "task 7 is broken")
		}
	}()
	PanicInvariant("task %d is broken", 7)
}

func TestAsInvariantViolation_FalseForOrdinaryPanic(t *testing.T) {
	_, ok := AsInvariantViolation("some ordinary panic value")
	if ok {
		t.Errorf("expected AsInvariantViolation to reject a non-invariantViolation value")
	}
}
