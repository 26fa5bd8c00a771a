// Package sqlite implements sim.Repository and sim.Flush against a SQLite
// database file, matching what Database.cpp in the original implementation
// opens with sqlite3_open_v2: the CLI's positional argument is the exact
// path handed to Open, not a DSN.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/atlarge-research/opendc-go/sim"
	"github.com/atlarge-research/opendc-go/sim/policy"
	"github.com/atlarge-research/opendc-go/storage/sqlite/migrations"
)

// Store is a sim.Repository and sim.Flush factory backed by one *sql.DB.
// SQLite serializes writers regardless of connection pool size, so writeMu
// enforces the single-writer discipline the design calls for explicitly
// rather than relying on SQLite's own lock contention (which would surface
// as SQLITE_BUSY errors instead of clean backpressure).
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// Open opens (creating if absent) the SQLite database file at path, enables
// WAL mode, and applies any migration not yet recorded in schema_migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL on %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys on %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		return err
	}
	files, err := listMigrationFiles(migrations.Files)
	if err != nil {
		return err
	}
	for _, file := range files {
		applied, err := s.isMigrationApplied(ctx, file)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := s.applyMigration(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)`, version).Scan(&exists)
	return exists, err
}

func (s *Store) applyMigration(ctx context.Context, file string) error {
	sqlBytes, err := migrations.Files.ReadFile(file)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("apply migration %s: %w", file, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`, file, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("record migration %s: %w", file, err)
	}
	return tx.Commit()
}

func listMigrationFiles(migFS fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(migFS, ".")
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

// PollQueued implements sim.Repository.
func (s *Store) PollQueued(ctx context.Context, excludeIDs []sim.ExperimentID) (sim.ExperimentID, bool, error) {
	query := `SELECT id FROM experiments WHERE state = ?`
	args := []any{string(sim.StateQueued)}
	if len(excludeIDs) > 0 {
		placeholders := make([]string, len(excludeIDs))
		for i, id := range excludeIDs {
			placeholders[i] = "?"
			args = append(args, int64(id))
		}
		query += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(placeholders, ", "))
	}
	query += ` ORDER BY id LIMIT 1`

	var id int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("polling queued experiments: %w", err)
	}
	return sim.ExperimentID(id), true, nil
}

// Dequeue implements sim.Repository.
func (s *Store) Dequeue(ctx context.Context, id sim.ExperimentID) error {
	return s.setState(ctx, id, sim.StateSimulating)
}

// Finish implements sim.Repository.
func (s *Store) Finish(ctx context.Context, id sim.ExperimentID) error {
	return s.setState(ctx, id, sim.StateFinished)
}

func (s *Store) setState(ctx context.Context, id sim.ExperimentID, state sim.ExperimentState) error {
	_, err := s.db.ExecContext(ctx, `UPDATE experiments SET state = ? WHERE id = ?`, string(state), int64(id))
	if err != nil {
		return fmt.Errorf("setting experiment %d to %s: %w", id, state, err)
	}
	return nil
}

// LoadExperiment implements sim.Repository. It assembles a fully-formed
// sim.Experiment from the experiments/paths/sections/rooms/racks/machines/
// cpus/gpus/tasks rows. Any malformed row or unknown scheduler name returns
// an error without mutating the experiment's state (the caller must not
// have dequeued yet — see sim.Repository.LoadExperiment's contract).
func (s *Store) LoadExperiment(ctx context.Context, id sim.ExperimentID) (*sim.Experiment, error) {
	var pathID, traceID int64
	var schedulerName string
	err := s.db.QueryRowContext(ctx, `SELECT path_id, trace_id, scheduler_name FROM experiments WHERE id = ?`, int64(id)).
		Scan(&pathID, &traceID, &schedulerName)
	if err != nil {
		return nil, fmt.Errorf("loading experiment %d: %w", id, err)
	}

	sched, err := policy.New(schedulerName)
	if err != nil {
		return nil, fmt.Errorf("experiment %d: %w", id, err)
	}

	path, err := s.loadPath(ctx, pathID)
	if err != nil {
		return nil, fmt.Errorf("experiment %d: %w", id, err)
	}

	tasks, err := s.loadTasks(ctx, traceID)
	if err != nil {
		return nil, fmt.Errorf("experiment %d: %w", id, err)
	}
	pool := sim.NewTaskPool(tasks)

	return sim.NewExperiment(id, path, sched, pool), nil
}

func (s *Store) loadPath(ctx context.Context, pathID int64) (*sim.Path, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, datacenter_id, start_tick FROM sections WHERE path_id = ?`, pathID)
	if err != nil {
		return nil, fmt.Errorf("loading sections for path %d: %w", pathID, err)
	}
	defer rows.Close()

	var sections []*sim.Section
	for rows.Next() {
		var sectionID, datacenterID, startTick int64
		if err := rows.Scan(&sectionID, &datacenterID, &startTick); err != nil {
			return nil, err
		}
		dc, err := s.loadDatacenter(ctx, datacenterID)
		if err != nil {
			return nil, err
		}
		sections = append(sections, &sim.Section{Datacenter: dc, StartTick: startTick})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sim.NewPath(sections), nil
}

func (s *Store) loadDatacenter(ctx context.Context, datacenterID int64) (*sim.Datacenter, error) {
	roomRows, err := s.db.QueryContext(ctx, `SELECT id, name, type FROM rooms WHERE datacenter_id = ?`, datacenterID)
	if err != nil {
		return nil, fmt.Errorf("loading rooms for datacenter %d: %w", datacenterID, err)
	}
	defer roomRows.Close()

	var rooms []*sim.Room
	for roomRows.Next() {
		var roomID int64
		var name, kindStr string
		if err := roomRows.Scan(&roomID, &name, &kindStr); err != nil {
			return nil, err
		}
		kind := parseRoomKind(kindStr)
		room := &sim.Room{ID: roomID, Name: name, Kind: kind}
		if kind == sim.ServerRoom {
			racks, err := s.loadRacks(ctx, roomID)
			if err != nil {
				return nil, err
			}
			room.Racks = racks
		}
		rooms = append(rooms, room)
	}
	if err := roomRows.Err(); err != nil {
		return nil, err
	}
	return sim.NewDatacenter(datacenterID, rooms), nil
}

func (s *Store) loadRacks(ctx context.Context, roomID int64) ([]*sim.Rack, error) {
	rackRows, err := s.db.QueryContext(ctx, `SELECT id FROM racks WHERE room_id = ?`, roomID)
	if err != nil {
		return nil, fmt.Errorf("loading racks for room %d: %w", roomID, err)
	}
	defer rackRows.Close()

	var racks []*sim.Rack
	for rackRows.Next() {
		var rackID int64
		if err := rackRows.Scan(&rackID); err != nil {
			return nil, err
		}
		machines, err := s.loadMachines(ctx, rackID)
		if err != nil {
			return nil, err
		}
		racks = append(racks, &sim.Rack{ID: rackID, Machines: machines})
	}
	return racks, rackRows.Err()
}

func (s *Store) loadMachines(ctx context.Context, rackID int64) (map[int64]*sim.Machine, error) {
	machineRows, err := s.db.QueryContext(ctx, `SELECT id, position FROM machines WHERE rack_id = ?`, rackID)
	if err != nil {
		return nil, fmt.Errorf("loading machines for rack %d: %w", rackID, err)
	}
	defer machineRows.Close()

	out := make(map[int64]*sim.Machine)
	for machineRows.Next() {
		var machineID, position int64
		if err := machineRows.Scan(&machineID, &position); err != nil {
			return nil, err
		}
		cpus, err := s.loadCPUs(ctx, machineID)
		if err != nil {
			return nil, err
		}
		gpus, err := s.loadGPUs(ctx, machineID)
		if err != nil {
			return nil, err
		}
		out[position] = sim.NewMachine(sim.MachineID(machineID), cpus, gpus)
	}
	return out, machineRows.Err()
}

func (s *Store) loadCPUs(ctx context.Context, machineID int64) ([]sim.CPU, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.clock_rate_mhz, c.number_of_cores, c.energy_consumption_w, c.failure_model_id
		FROM machine_cpus mc JOIN cpus c ON c.id = mc.cpu_id
		WHERE mc.machine_id = ?`, machineID)
	if err != nil {
		return nil, fmt.Errorf("loading cpus for machine %d: %w", machineID, err)
	}
	defer rows.Close()

	var cpus []sim.CPU
	for rows.Next() {
		var c sim.CPU
		if err := rows.Scan(&c.SpeedMHz, &c.Cores, &c.EnergyWatts, &c.FailureModelID); err != nil {
			return nil, err
		}
		cpus = append(cpus, c)
	}
	return cpus, rows.Err()
}

func (s *Store) loadGPUs(ctx context.Context, machineID int64) ([]sim.GPU, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.clock_rate_mhz, g.number_of_cores, g.energy_consumption_w, g.failure_model_id
		FROM machine_gpus mg JOIN gpus g ON g.id = mg.gpu_id
		WHERE mg.machine_id = ?`, machineID)
	if err != nil {
		return nil, fmt.Errorf("loading gpus for machine %d: %w", machineID, err)
	}
	defer rows.Close()

	var gpus []sim.GPU
	for rows.Next() {
		var g sim.GPU
		if err := rows.Scan(&g.SpeedMHz, &g.Cores, &g.EnergyWatts, &g.FailureModelID); err != nil {
			return nil, err
		}
		gpus = append(gpus, g)
	}
	return gpus, rows.Err()
}

func (s *Store) loadTasks(ctx context.Context, traceID int64) ([]*sim.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_tick, total_flop_count, trace_id, task_dependency_id, parallelizability
		FROM tasks WHERE trace_id = ? ORDER BY id`, traceID)
	if err != nil {
		return nil, fmt.Errorf("loading tasks for trace %d: %w", traceID, err)
	}
	defer rows.Close()

	var tasks []*sim.Task
	for rows.Next() {
		var id, startTick, totalOps, rowTraceID, dependencyID int64
		var parallelizability string
		if err := rows.Scan(&id, &startTick, &totalOps, &rowTraceID, &dependencyID, &parallelizability); err != nil {
			return nil, err
		}
		tasks = append(tasks, sim.NewTask(
			sim.TaskID(id), rowTraceID, startTick, totalOps,
			sim.TaskID(dependencyID), parallelizability == "PARALLEL",
		))
	}
	return tasks, rows.Err()
}

func parseRoomKind(s string) sim.RoomKind {
	switch s {
	case "SERVER_ROOM":
		return sim.ServerRoom
	case "POWER_ROOM":
		return sim.PowerRoom
	default:
		return sim.Hallway
	}
}
