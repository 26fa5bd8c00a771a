// Package sim provides the core discrete-tick datacenter workload simulation engine.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - task.go: Task lifecycle (queued → runnable → finished) and dependency state
//   - machine.go: Machine work accounting (FLOPs, cores, thermal model)
//   - experiment.go: The tick loop that ties topology, scheduler and task pool together
//
// # Architecture
//
// The sim package defines the engine and the interfaces it depends on; concrete
// scheduler policies live in sim/policy, tunable defaults live in sim/config, and
// the persistence adapter lives in storage/sqlite. The engine itself never imports
// database/sql or any driver — it only calls through the Repository interface
// defined in repository.go.
//
// # Key Interfaces
//
//   - Scheduler: maps runnable tasks to machines for one tick (sim/policy.FIFO, sim/policy.SRTF)
//   - Repository: the narrow contract the engine uses to load experiments and persist snapshots
package sim
