package sim

// TaskPool owns the Tasks of one experiment and drives dependency-completion
// propagation. Reap's complexity is O(n) per finished task (an O(n) scan to
// release dependents), which is acceptable for the thousands-of-tasks trace
// sizes this simulator targets.
//
// order retains the input order tasks were constructed with, since map
// iteration order is randomized and RunnableAt's output feeds Scheduler.Schedule,
// which must be deterministic given the same inputs (ties broken by input
// order, per Scheduler's contract).
type TaskPool struct {
	tasks map[TaskID]*Task
	order []TaskID
}

// NewTaskPool builds a TaskPool from a loaded task list. Tasks whose
// DependencyID does not refer to another task in the same slice (and isn't
// 0) are a dangling reference: an internal invariant violation.
func NewTaskPool(tasks []*Task) *TaskPool {
	byID := make(map[TaskID]*Task, len(tasks))
	order := make([]TaskID, 0, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		order = append(order, t.ID)
	}
	for _, t := range tasks {
		if t.DependencyID != 0 {
			if _, ok := byID[t.DependencyID]; !ok {
				PanicInvariant("task %d has dangling dependency %d", t.ID, t.DependencyID)
			}
		}
		if t.TotalOps < 0 {
			PanicInvariant("task %d has negative totalOps %d", t.ID, t.TotalOps)
		}
	}
	return &TaskPool{tasks: byID, order: order}
}

// RunnableAt returns the tasks eligible for scheduling consideration at
// tick: StartTick < tick and not finished. Dependency readiness is left to
// the caller (the Scheduler enforces it per §4.3). The result is ordered by
// original task input order, not map iteration order, so that Scheduler
// implementations see a stable, deterministic candidate order tick to tick.
func (p *TaskPool) RunnableAt(tick int64) []*Task {
	var out []*Task
	for _, id := range p.order {
		t, ok := p.tasks[id]
		if !ok {
			continue
		}
		if t.Runnable(tick) {
			out = append(out, t)
		}
	}
	return out
}

// Reap removes every finished task from the pool and, for each removed
// task, marks DependencyReady=true on every remaining task whose
// DependencyID equals the reaped task's ID.
//
// Callers MUST call Machine.ClearAssignment on every machine in the active
// section before calling Reap, so that no machine is left holding a
// pointer to a task this call is about to delete from the pool (see
// Experiment.Tick, which does exactly that, in that order).
func (p *TaskPool) Reap() {
	var finished []TaskID
	for id, t := range p.tasks {
		if t.Finished {
			finished = append(finished, id)
		}
	}
	for _, id := range finished {
		delete(p.tasks, id)
		for _, t := range p.tasks {
			if t.DependencyID == id {
				t.DependencyReady = true
			}
		}
	}
}

// Empty reports whether every task has been reaped.
func (p *TaskPool) Empty() bool { return len(p.tasks) == 0 }

// TotalOps sums TotalOps over the tasks still resident in the pool — used by
// tests to check the conservation-of-work invariant. Finished tasks' TotalOps
// must be tracked by the caller since Reap deletes them.
func (p *TaskPool) TotalOps() int64 {
	var total int64
	for _, t := range p.tasks {
		total += t.TotalOps
	}
	return total
}

// RemainingOps sums RemainingOps over the tasks still resident in the pool.
func (p *TaskPool) RemainingOps() int64 {
	var total int64
	for _, t := range p.tasks {
		total += t.RemainingOps
	}
	return total
}
