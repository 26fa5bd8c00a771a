package sim

import "testing"

func TestSnapshotBuffer_SizeCountsTaskSnapshotsOnly(t *testing.T) {
	b := NewSnapshotBuffer()
	b.RecordTask(1, TaskSnapshot{TaskID: 1})
	b.RecordTask(1, TaskSnapshot{TaskID: 2})
	b.RecordMachine(1, MachineSnapshot{MachineID: 1})

	if got := b.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2 (machine snapshots don't count)", got)
	}
}

func TestSnapshotBuffer_Ticks_SortedAscendingAndDeduped(t *testing.T) {
	b := NewSnapshotBuffer()
	b.RecordTask(5, TaskSnapshot{})
	b.RecordMachine(5, MachineSnapshot{})
	b.RecordTask(2, TaskSnapshot{})
	b.RecordTask(8, TaskSnapshot{})

	ticks := b.Ticks()
	want := []int64{2, 5, 8}
	if len(ticks) != len(want) {
		t.Fatalf("Ticks() = %v, want %v", ticks, want)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Fatalf("Ticks() = %v, want %v", ticks, want)
		}
	}
}

func TestSnapshotBuffer_Clear_EmptiesEverything(t *testing.T) {
	b := NewSnapshotBuffer()
	b.RecordTask(1, TaskSnapshot{})
	b.RecordMachine(1, MachineSnapshot{})

	b.Clear()

	if b.Size() != 0 {
		t.Errorf("Size() = %d after Clear, want 0", b.Size())
	}
	if len(b.Ticks()) != 0 {
		t.Errorf("Ticks() = %v after Clear, want empty", b.Ticks())
	}
}
