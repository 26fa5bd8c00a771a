package sim

import "github.com/atlarge-research/opendc-go/sim/config"

// Thermal and memory tunables, defaulted from config.Default() and
// overridable once at startup via ApplyConfig before any Machine is
// constructed. Kept as package variables rather than threading a Config
// through every Machine constructor call, since these are process-wide
// constants in practice (one overlay file per driver run, never per-machine).
var (
	minTemperatureC  = config.Default().MinTemperatureC
	maxTemperatureC  = config.Default().MaxTemperatureC
	initialTempC     = config.Default().InitialTemperatureC
	tempIncreasePer  = config.Default().TemperatureIncreasePerTick
	kernelBaselineMB = config.Default().KernelBaselineMB
)

// ApplyConfig overrides the package's thermal/memory tunables from cfg. Must
// be called, if at all, before any Machine is constructed; Machines read
// these package variables only at construction and on every Work() call.
func ApplyConfig(cfg config.Config) {
	minTemperatureC = cfg.MinTemperatureC
	maxTemperatureC = cfg.MaxTemperatureC
	initialTempC = cfg.InitialTemperatureC
	tempIncreasePer = cfg.TemperatureIncreasePerTick
	kernelBaselineMB = cfg.KernelBaselineMB
}

// MachineID identifies a Machine within a topology.
type MachineID int64

// CPU describes one CPU installed in a Machine.
type CPU struct {
	SpeedMHz       int64
	Cores          int64
	EnergyWatts    float64
	FailureModelID int64
}

// GPU describes one GPU installed in a Machine. Mirrors CPU; GPUs do not
// contribute to Machine.Speed() in this model (see Machine.Speed).
type GPU struct {
	SpeedMHz       int64
	Cores          int64
	EnergyWatts    float64
	FailureModelID int64
}

// Machine is a compute element with CPUs/GPUs, a load factor, a thermal
// state, and at most one assigned Task per tick.
//
// Machine holds a non-owning reference to its current Task: the Topology
// that built the Machine owns neither the Task (the TaskPool does) nor is
// owned by it. Invariant: CurrentTask != nil implies the machine is busy.
type Machine struct {
	ID   MachineID
	CPUs []CPU
	GPUs []GPU

	CurrentTask  *Task
	Load         float64
	TemperatureC float64
	MemoryMB     int64
}

// NewMachine constructs a Machine at its initial thermal and memory state.
// Load starts saturated at 1.0, matching the post-work state Work() leaves
// every machine in — an idle machine (CurrentTask == nil) never delivers
// FLOPs regardless of Load, so this only matters for the first tick a
// machine is assigned a task.
func NewMachine(id MachineID, cpus []CPU, gpus []GPU) *Machine {
	return &Machine{
		ID:           id,
		CPUs:         cpus,
		GPUs:         gpus,
		Load:         1.0,
		TemperatureC: initialTempC,
		MemoryMB:     kernelBaselineMB,
	}
}

// Speed returns the machine's aggregate FLOPs-per-tick rate: the sum over
// CPUs of SpeedMHz * Cores. GPUs are tracked for capacity/energy accounting
// but do not contribute to delivered FLOPs in this model.
func (m *Machine) Speed() int64 {
	var total int64
	for _, c := range m.CPUs {
		total += c.SpeedMHz * c.Cores
	}
	return total
}

// NumberOfCores returns the total core count across all CPUs.
func (m *Machine) NumberOfCores() int64 {
	var total int64
	for _, c := range m.CPUs {
		total += c.Cores
	}
	return total
}

// Assign sets the machine's current task. Idempotent within a tick: the
// last call before Work() wins.
func (m *Machine) Assign(t *Task) { m.CurrentTask = t }

// ClearAssignment detaches the current task. Called at the start of every
// tick, before TaskPool.Reap, so no machine can reference a task about to
// be reaped.
func (m *Machine) ClearAssignment() { m.CurrentTask = nil }

// CurrentWorkloadID returns the assigned task's ID, or 0 if idle.
func (m *Machine) CurrentWorkloadID() TaskID {
	if m.CurrentTask == nil {
		return 0
	}
	return m.CurrentTask.ID
}

// Work delivers one tick of FLOPs to the assigned task (if any), updates the
// thermal model, and saturates Load back to 1.0.
//
// The saturating post-work Load=1.0 matches the original implementation,
// which also carried a commented-out throttling formula
// (load = 1/(temperature-69) above 70°C) that was never wired in. This
// implementation preserves the saturating behavior rather than guessing at
// the abandoned throttle.
func (m *Machine) Work() {
	if m.CurrentTask == nil {
		return
	}
	delivered := int64(float64(m.Speed()) * m.Load)
	m.CurrentTask.ApplyWork(delivered)

	m.TemperatureC += m.Load * tempIncreasePer
	if m.TemperatureC > maxTemperatureC {
		m.TemperatureC = maxTemperatureC
	}
	if m.TemperatureC < minTemperatureC {
		m.TemperatureC = minTemperatureC
	}

	m.Load = 1.0
}
