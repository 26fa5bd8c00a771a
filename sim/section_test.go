package sim

import "testing"

func TestNewPath_PanicsOnDuplicateStartTick(t *testing.T) {
	defer func() {
		v := recover()
		if v == nil {
			t.Fatalf("expected NewPath to panic on duplicate StartTick")
		}
		if _, ok := AsInvariantViolation(v); !ok {
			t.Errorf("expected an invariant violation panic, got %v", v)
		}
	}()
	NewPath([]*Section{
		{StartTick: 0, Datacenter: NewDatacenter(1, nil)},
		{StartTick: 0, Datacenter: NewDatacenter(2, nil)},
	})
}

func TestPath_ActiveAt_PicksGreatestStartTickBelowTick(t *testing.T) {
	dc0 := NewDatacenter(1, nil)
	dc10 := NewDatacenter(2, nil)
	path := NewPath([]*Section{
		{StartTick: 0, Datacenter: dc0},
		{StartTick: 10, Datacenter: dc10},
	})

	if got := path.ActiveAt(5).Datacenter; got != dc0 {
		t.Errorf("ActiveAt(5) = dc%d, want dc0", got.ID)
	}
	if got := path.ActiveAt(10).Datacenter; got != dc0 {
		t.Errorf("ActiveAt(10) = dc%d, want dc0 (a section becomes active only strictly after its own StartTick)", got.ID)
	}
	if got := path.ActiveAt(11).Datacenter; got != dc10 {
		t.Errorf("ActiveAt(11) = dc%d, want dc10", got.ID)
	}
}

func TestPath_ActiveAt_FallsBackToSmallestWhenTickPrecedesAllSections(t *testing.T) {
	dc5 := NewDatacenter(1, nil)
	path := NewPath([]*Section{{StartTick: 5, Datacenter: dc5}})

	if got := path.ActiveAt(0).Datacenter; got != dc5 {
		t.Errorf("ActiveAt(0) = dc%d, want fallback dc5", got.ID)
	}
}

func TestPath_ActiveAt_PanicsOnEmptyPath(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected ActiveAt on an empty Path to panic")
		}
	}()
	path := NewPath(nil)
	path.ActiveAt(0)
}
