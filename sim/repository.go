package sim

import "context"

// ExperimentID identifies an experiment row in the store.
type ExperimentID int64

// ExperimentState mirrors the state column of the experiments table.
type ExperimentState string

const (
	StateQueued     ExperimentState = "QUEUED"
	StateSimulating ExperimentState = "SIMULATING"
	StateFinished   ExperimentState = "FINISHED"
)

// Repository is the narrow contract the engine and driver use to talk to
// the persistent store. The engine itself never imports database/sql or any
// driver; only an implementation of this interface (storage/sqlite) does.
type Repository interface {
	// PollQueued returns the id of any experiment currently in state
	// QUEUED excluding the given ids, or ok=false if no such experiment
	// exists. Idempotent: does not change state. excludeIDs lets a caller
	// skip over ids it already knows it can't load this pass, without
	// changing their QUEUED state, so one malformed row can't starve the
	// rest of the queue.
	PollQueued(ctx context.Context, excludeIDs []ExperimentID) (id ExperimentID, ok bool, err error)

	// Dequeue sets an experiment's state to SIMULATING.
	Dequeue(ctx context.Context, id ExperimentID) error

	// Finish sets an experiment's state to FINISHED.
	Finish(ctx context.Context, id ExperimentID) error

	// LoadExperiment assembles a fully-formed Experiment (Path, Sections,
	// Datacenters, Scheduler, TaskPool) from the store. A schema mismatch,
	// unknown scheduler name, or malformed row is returned as an error —
	// fatal for this one experiment, not the process — and the caller must
	// not have called Dequeue yet when this fails.
	LoadExperiment(ctx context.Context, id ExperimentID) (*Experiment, error)

	// BeginFlush opens a transaction-scoped Flush for writing buffered
	// snapshots plus the last-simulated-tick marker.
	BeginFlush(ctx context.Context) (Flush, error)
}

// Flush is a transaction-scoped batch of writes: every per-tick snapshot
// write plus the last-simulated-tick update for exactly one experiment's
// flush, never spanning multiple experiments.
type Flush interface {
	WriteTaskSnapshot(ctx context.Context, expID ExperimentID, tick int64, s TaskSnapshot) error
	WriteMachineSnapshot(ctx context.Context, expID ExperimentID, tick int64, s MachineSnapshot) error
	WriteLastSimulatedTick(ctx context.Context, expID ExperimentID, tick int64) error

	// Commit finalizes the transaction. On error the caller must not have
	// cleared its SnapshotBuffer.
	Commit(ctx context.Context) error

	// Rollback aborts the transaction. Safe to call after Commit has
	// already failed; a no-op after a successful Commit.
	Rollback() error
}
