package policy

import "testing"

func TestNew_ResolvesKnownSchedulerNames(t *testing.T) {
	cases := []string{"FIFO", "DEFAULT", "SRTF"}
	for _, name := range cases {
		sched, err := New(name)
		if err != nil {
			t.Errorf("New(%q) returned error: %v", name, err)
		}
		if sched == nil {
			t.Errorf("New(%q) returned a nil scheduler", name)
		}
	}
}

func TestNew_UnknownNameReturnsError(t *testing.T) {
	_, err := New("NOT_A_REAL_SCHEDULER")
	if err == nil {
		t.Fatalf("expected New to return an error for an unknown scheduler name")
	}
}
