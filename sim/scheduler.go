package sim

// Scheduler maps runnable tasks to machines for one tick. Implementations
// (sim/policy.FIFO, sim/policy.SRTF) live in a separate package so that the
// engine depends only on this interface — the same split the teacher
// codebase uses for its LoadBalancer/AdmissionPolicy extension points.
//
// Schedule must be deterministic given the same inputs, with ties broken by
// input order. It has no return value: its effect is entirely through
// Machine.Assign and Task.SetCoresUsed side effects.
type Scheduler interface {
	Schedule(machines []*Machine, candidates []*Task)
}
