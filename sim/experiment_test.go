package sim

import "testing"

// fixedScheduler assigns a single predetermined task to every machine,
// mirroring FIFO closely enough for step-order tests without importing
// sim/policy (which imports sim, so sim's own tests cannot import it back).
type fixedScheduler struct{}

func (fixedScheduler) Schedule(machines []*Machine, candidates []*Task) {
	var head *Task
	for _, t := range candidates {
		if t.DependencyReady {
			head = t
			break
		}
	}
	if head == nil {
		return
	}
	for _, m := range machines {
		m.Assign(head)
	}
}

func singleMachineExperiment(totalOps int64) (*Experiment, *Task) {
	machine := NewMachine(1, []CPU{{SpeedMHz: 100, Cores: 1}}, nil)
	rack := &Rack{ID: 1, Machines: map[int64]*Machine{0: machine}}
	room := &Room{ID: 1, Kind: ServerRoom, Racks: []*Rack{rack}}
	dc := NewDatacenter(1, []*Room{room})
	path := NewPath([]*Section{{StartTick: 0, Datacenter: dc}})

	task := NewTask(1, 1, 0, totalOps, 0, false)
	pool := NewTaskPool([]*Task{task})

	exp := NewExperiment(1, path, fixedScheduler{}, pool)
	return exp, task
}

func TestExperiment_Tick_ScenarioS1(t *testing.T) {
	exp, task := singleMachineExperiment(250)

	exp.Tick()

	if task.RemainingOps != 150 {
		t.Errorf("after tick 1, RemainingOps = %d, want 150", task.RemainingOps)
	}
	if exp.CurrentTick != 1 {
		t.Errorf("CurrentTick = %d, want 1", exp.CurrentTick)
	}
	if exp.Finished {
		t.Errorf("experiment must not be finished with work remaining")
	}
}

func TestExperiment_Tick_FinishesWhenPoolEmpties(t *testing.T) {
	exp, _ := singleMachineExperiment(100)

	exp.Tick() // task finishes this tick (100 ops delivered in one shot)
	exp.Tick() // pool now reaps the finished task and the experiment finishes

	if !exp.Finished {
		t.Fatalf("expected experiment to be Finished once its only task is reaped")
	}
}

func TestExperiment_Tick_NoOpOnceFinished(t *testing.T) {
	exp, _ := singleMachineExperiment(100)
	exp.Tick()
	exp.Tick()
	if !exp.Finished {
		t.Fatalf("setup failed: experiment should already be finished")
	}
	tickBefore := exp.CurrentTick
	exp.Tick()
	if exp.CurrentTick != tickBefore {
		t.Errorf("Tick() must be a no-op once Finished, CurrentTick advanced to %d", exp.CurrentTick)
	}
}

func TestExperiment_SaveState_RecordsRunnableTasksAndMachines(t *testing.T) {
	exp, _ := singleMachineExperiment(250)
	exp.Tick()
	exp.SaveState()

	ticks := exp.Buffer.Ticks()
	if len(ticks) != 1 || ticks[0] != exp.CurrentTick {
		t.Fatalf("Ticks() = %v, want [%d]", ticks, exp.CurrentTick)
	}

	tasks := exp.Buffer.TasksAt(exp.CurrentTick)
	if len(tasks) != 1 || tasks[0].RemainingOps != 150 {
		t.Errorf("TasksAt = %v, want one snapshot with RemainingOps=150", tasks)
	}

	machines := exp.Buffer.MachinesAt(exp.CurrentTick)
	if len(machines) != 1 {
		t.Fatalf("MachinesAt = %v, want one machine snapshot", machines)
	}
	if machines[0].TemperatureC != 33.0 {
		t.Errorf("recorded TemperatureC = %v, want 33.0", machines[0].TemperatureC)
	}
}
