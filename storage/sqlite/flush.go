package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atlarge-research/opendc-go/sim"
)

// flush implements sim.Flush as one SQLite transaction. writeMu is held for
// the flush's entire lifetime (BeginFlush through Commit/Rollback), since
// SQLite serializes writers anyway and the design calls for one flush to
// never interleave with another experiment's.
type flush struct {
	store    *Store
	tx       *sql.Tx
	unlocked bool
}

// unlock releases the store's write semaphore exactly once, since callers
// may call both Commit (on failure) and then Rollback for the same flush.
func (f *flush) unlock() {
	if !f.unlocked {
		f.unlocked = true
		f.store.writeMu.Unlock()
	}
}

// BeginFlush implements sim.Repository.
func (s *Store) BeginFlush(ctx context.Context) (sim.Flush, error) {
	s.writeMu.Lock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.writeMu.Unlock()
		return nil, fmt.Errorf("beginning flush transaction: %w", err)
	}
	return &flush{store: s, tx: tx}, nil
}

// WriteTaskSnapshot implements sim.Flush. The flops_left column name is a
// compatibility alias kept from the original schema; the Go-side field is
// TaskSnapshot.RemainingOps.
func (f *flush) WriteTaskSnapshot(ctx context.Context, expID sim.ExperimentID, tick int64, snap sim.TaskSnapshot) error {
	_, err := f.tx.ExecContext(ctx,
		`INSERT INTO task_states (task_id, experiment_id, tick, flops_left, cores_used) VALUES (?, ?, ?, ?, ?)`,
		int64(snap.TaskID), int64(expID), tick, snap.RemainingOps, snap.CoresUsed)
	if err != nil {
		return fmt.Errorf("writing task snapshot (task=%d, tick=%d): %w", snap.TaskID, tick, err)
	}
	return nil
}

// WriteMachineSnapshot implements sim.Flush.
func (f *flush) WriteMachineSnapshot(ctx context.Context, expID sim.ExperimentID, tick int64, snap sim.MachineSnapshot) error {
	_, err := f.tx.ExecContext(ctx,
		`INSERT INTO machine_states (task_id, machine_id, experiment_id, tick, temperature_c, in_use_memory_mb, load_fraction) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		int64(snap.CurrentWorkloadID), int64(snap.MachineID), int64(expID), tick, snap.TemperatureC, snap.MemoryMB, snap.Load)
	if err != nil {
		return fmt.Errorf("writing machine snapshot (machine=%d, tick=%d): %w", snap.MachineID, tick, err)
	}
	return nil
}

// WriteLastSimulatedTick implements sim.Flush: an idempotent upsert of the
// experiment's last_simulated_tick marker, including the tick==0 case (the
// column already defaults to 0, but an explicit write keeps the semantics
// visible rather than relying on the schema default).
func (f *flush) WriteLastSimulatedTick(ctx context.Context, expID sim.ExperimentID, tick int64) error {
	_, err := f.tx.ExecContext(ctx, `UPDATE experiments SET last_simulated_tick = ? WHERE id = ?`, tick, int64(expID))
	if err != nil {
		return fmt.Errorf("writing last_simulated_tick=%d for experiment %d: %w", tick, expID, err)
	}
	return nil
}

// Commit implements sim.Flush.
func (f *flush) Commit(ctx context.Context) error {
	defer f.unlock()
	if err := f.tx.Commit(); err != nil {
		return fmt.Errorf("committing flush: %w", err)
	}
	return nil
}

// Rollback implements sim.Flush. Safe to call after a failed Commit, since
// sql.Tx.Rollback on an already-finished transaction returns sql.ErrTxDone,
// which this treats as success.
func (f *flush) Rollback() error {
	defer f.unlock()
	if err := f.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("rolling back flush: %w", err)
	}
	return nil
}
