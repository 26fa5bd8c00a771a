package sim

// TaskSnapshot is one tick's recorded state of one runnable task.
type TaskSnapshot struct {
	TaskID       TaskID
	RemainingOps int64
	CoresUsed    int64
}

// MachineSnapshot is one tick's recorded state of one machine.
type MachineSnapshot struct {
	MachineID         MachineID
	CurrentWorkloadID TaskID // 0 if idle
	TemperatureC      float64
	Load              float64
	MemoryMB          int64
}

// SnapshotBuffer is the in-memory, per-experiment tick history: two logical
// multimaps tick -> TaskSnapshot and tick -> MachineSnapshot. It is bounded
// by the caller (the driver flushes once Size() crosses a threshold) and
// cleared atomically after a successful flush.
type SnapshotBuffer struct {
	taskSnapshots    map[int64][]TaskSnapshot
	machineSnapshots map[int64][]MachineSnapshot
	taskCount        int
}

// NewSnapshotBuffer constructs an empty buffer.
func NewSnapshotBuffer() *SnapshotBuffer {
	return &SnapshotBuffer{
		taskSnapshots:    make(map[int64][]TaskSnapshot),
		machineSnapshots: make(map[int64][]MachineSnapshot),
	}
}

// RecordTask appends a task snapshot at tick.
func (b *SnapshotBuffer) RecordTask(tick int64, s TaskSnapshot) {
	b.taskSnapshots[tick] = append(b.taskSnapshots[tick], s)
	b.taskCount++
}

// RecordMachine appends a machine snapshot at tick.
func (b *SnapshotBuffer) RecordMachine(tick int64, s MachineSnapshot) {
	b.machineSnapshots[tick] = append(b.machineSnapshots[tick], s)
}

// Size returns the count of task snapshots buffered — the quantity the
// driver compares against FLUSH_THRESHOLD.
func (b *SnapshotBuffer) Size() int { return b.taskCount }

// Ticks returns every tick that has at least one buffered snapshot, in
// ascending order, for a flush to iterate over.
func (b *SnapshotBuffer) Ticks() []int64 {
	seen := make(map[int64]bool)
	for tick := range b.taskSnapshots {
		seen[tick] = true
	}
	for tick := range b.machineSnapshots {
		seen[tick] = true
	}
	ticks := make([]int64, 0, len(seen))
	for tick := range seen {
		ticks = append(ticks, tick)
	}
	for i := 1; i < len(ticks); i++ {
		for j := i; j > 0 && ticks[j-1] > ticks[j]; j-- {
			ticks[j-1], ticks[j] = ticks[j], ticks[j-1]
		}
	}
	return ticks
}

// TasksAt returns the task snapshots recorded at tick.
func (b *SnapshotBuffer) TasksAt(tick int64) []TaskSnapshot { return b.taskSnapshots[tick] }

// MachinesAt returns the machine snapshots recorded at tick.
func (b *SnapshotBuffer) MachinesAt(tick int64) []MachineSnapshot { return b.machineSnapshots[tick] }

// Clear empties the buffer. Called only after a flush's transaction commits;
// a failed flush must never call this (the driver retries with the buffer
// intact).
func (b *SnapshotBuffer) Clear() {
	b.taskSnapshots = make(map[int64][]TaskSnapshot)
	b.machineSnapshots = make(map[int64][]MachineSnapshot)
	b.taskCount = 0
}
