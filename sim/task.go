package sim

// TaskID identifies a Task within a TaskPool. Uses a distinct type (not an
// alias) to prevent accidental mixing with MachineID or ExperimentID.
type TaskID int64

// Task is a unit of work with a FLOP budget, an optional dependency on
// another task in the same pool, and a parallelizability flag.
//
// Invariants:
//   - RemainingOps == 0 iff Finished
//   - Finished is monotonic: once true, never set back to false
//   - a task with DependencyReady == false is never assigned by a Scheduler
type Task struct {
	ID              TaskID
	TraceID         int64
	StartTick       int64
	TotalOps        int64
	RemainingOps    int64
	DependencyID    TaskID // 0 means no dependency
	DependencyReady bool
	Parallel        bool
	Finished        bool

	coresUsed int64 // transient, reset every tick by the scheduler's pre-step
}

// NewTask constructs a Task. dependencyID of 0 means no dependency, and the
// task starts DependencyReady. totalOps of 0 is legal: such a task starts
// Finished, so the pool's next Reap removes it.
func NewTask(id TaskID, traceID, startTick, totalOps int64, dependencyID TaskID, parallel bool) *Task {
	t := &Task{
		ID:           id,
		TraceID:      traceID,
		StartTick:    startTick,
		TotalOps:     totalOps,
		RemainingOps: totalOps,
		DependencyID: dependencyID,
		Parallel:     parallel,
	}
	t.DependencyReady = dependencyID == 0
	if totalOps == 0 {
		t.Finished = true
	}
	return t
}

// ApplyWork subtracts delivered FLOPs from RemainingOps. A no-op if ops <= 0
// or the task is already finished. Setting RemainingOps to exactly 0 marks
// the task Finished.
func (t *Task) ApplyWork(ops int64) {
	if ops <= 0 || t.Finished {
		return
	}
	if ops >= t.RemainingOps {
		t.RemainingOps = 0
		t.Finished = true
		return
	}
	t.RemainingOps -= ops
}

// SetCoresUsed records how many cores were committed to this task this tick.
// Schedulers reset this to 0 before assigning machines.
func (t *Task) SetCoresUsed(n int64) { t.coresUsed = n }

// CoresUsed returns the cores committed to this task this tick.
func (t *Task) CoresUsed() int64 { return t.coresUsed }

// Runnable reports whether the task is eligible for scheduling consideration
// at tick: its start tick has passed and it has not finished. Dependency
// readiness is a separate, scheduler-enforced concern (see §4.3).
func (t *Task) Runnable(tick int64) bool {
	return t.StartTick < tick && !t.Finished
}
