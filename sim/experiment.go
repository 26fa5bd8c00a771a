package sim

// Experiment composes a Path, a Scheduler and a TaskPool, and advances the
// simulation one tick at a time. An Experiment is owned exclusively by one
// goroutine at a time: its Topology, TaskPool and SnapshotBuffer are never
// shared across experiments, so the driver is free to tick many experiments
// concurrently as long as each one stays single-threaded internally.
type Experiment struct {
	ID          ExperimentID
	Path        *Path
	Scheduler   Scheduler
	Pool        *TaskPool
	CurrentTick int64
	Finished    bool
	Buffer      *SnapshotBuffer
}

// NewExperiment constructs an Experiment starting at tick 0 with an empty
// snapshot buffer.
func NewExperiment(id ExperimentID, path *Path, scheduler Scheduler, pool *TaskPool) *Experiment {
	return &Experiment{
		ID:        id,
		Path:      path,
		Scheduler: scheduler,
		Pool:      pool,
		Buffer:    NewSnapshotBuffer(),
	}
}

// Tick advances the experiment by exactly one logical tick. A no-op once
// Finished. CurrentTick is incremented first: a task with StartTick==0 must
// already be runnable during the very first call to Tick (scenario S1), so
// every subsequent step in this method reads CurrentTick as the tick number
// being processed, not the count of ticks already completed.
//
// The remaining step order is load-bearing (§4.4, §4.7 of the design):
// clearing every machine's assignment must happen before Reap, since Reap
// deletes finished tasks from the pool and a machine must never be left
// holding a pointer to a task about to be deleted.
func (e *Experiment) Tick() {
	if e.Finished {
		return
	}

	e.CurrentTick++

	section := e.Path.ActiveAt(e.CurrentTick)
	machines := section.FlatMachines()

	for _, m := range machines {
		m.ClearAssignment()
	}

	e.Pool.Reap()

	candidates := e.Pool.RunnableAt(e.CurrentTick)

	e.Scheduler.Schedule(machines, candidates)

	for _, m := range machines {
		m.Work()
	}

	if e.Pool.Empty() {
		e.Finished = true
	}
}

// SaveState snapshots every runnable (not finished) task and every machine
// in the currently active section at CurrentTick, appending them to Buffer.
// Ordering within a tick is irrelevant; across ticks snapshots are appended
// monotonically by virtue of being called once per Tick.
func (e *Experiment) SaveState() {
	section := e.Path.ActiveAt(e.CurrentTick)

	for _, t := range e.Pool.RunnableAt(e.CurrentTick) {
		e.Buffer.RecordTask(e.CurrentTick, TaskSnapshot{
			TaskID:       t.ID,
			RemainingOps: t.RemainingOps,
			CoresUsed:    t.CoresUsed(),
		})
	}

	for _, m := range section.FlatMachines() {
		e.Buffer.RecordMachine(e.CurrentTick, MachineSnapshot{
			MachineID:         m.ID,
			CurrentWorkloadID: m.CurrentWorkloadID(),
			TemperatureC:      m.TemperatureC,
			Load:              m.Load,
			MemoryMB:          m.MemoryMB,
		})
	}
}
