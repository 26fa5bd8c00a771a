package sim

import "testing"

func TestTask_ApplyWork_PartialConsumesOps(t *testing.T) {
	task := NewTask(1, 1, 0, 250, 0, false)
	task.ApplyWork(100)
	if task.RemainingOps != 150 {
		t.Errorf("RemainingOps = %d, want 150", task.RemainingOps)
	}
	if task.Finished {
		t.Errorf("Finished = true, want false")
	}
}

func TestTask_ApplyWork_ExactlyFinishes(t *testing.T) {
	task := NewTask(1, 1, 0, 100, 0, false)
	task.ApplyWork(100)
	if !task.Finished {
		t.Fatalf("expected task to be finished")
	}
	if task.RemainingOps != 0 {
		t.Errorf("RemainingOps = %d, want 0", task.RemainingOps)
	}
}

func TestTask_ApplyWork_OverdeliveryClampsAtZero(t *testing.T) {
	task := NewTask(1, 1, 0, 100, 0, false)
	task.ApplyWork(1000)
	if task.RemainingOps != 0 || !task.Finished {
		t.Errorf("expected finished with RemainingOps=0, got RemainingOps=%d Finished=%v", task.RemainingOps, task.Finished)
	}
}

func TestTask_ApplyWork_NoOpWhenAlreadyFinished(t *testing.T) {
	task := NewTask(1, 1, 0, 100, 0, false)
	task.ApplyWork(100)
	task.ApplyWork(50) // must not go negative or un-finish
	if task.RemainingOps != 0 || !task.Finished {
		t.Errorf("expected no-op on finished task, got RemainingOps=%d Finished=%v", task.RemainingOps, task.Finished)
	}
}

func TestTask_ApplyWork_NoOpForNonPositiveOps(t *testing.T) {
	task := NewTask(1, 1, 0, 100, 0, false)
	task.ApplyWork(0)
	task.ApplyWork(-5)
	if task.RemainingOps != 100 {
		t.Errorf("RemainingOps = %d, want 100", task.RemainingOps)
	}
}

func TestNewTask_ZeroTotalOpsStartsFinished(t *testing.T) {
	task := NewTask(1, 1, 0, 0, 0, false)
	if !task.Finished {
		t.Errorf("expected a zero-totalOps task to start finished")
	}
}

func TestNewTask_DependencyReadyOnlyWhenNoDependency(t *testing.T) {
	withDep := NewTask(2, 1, 0, 100, 1, false)
	if withDep.DependencyReady {
		t.Errorf("task with a dependency must not start DependencyReady")
	}

	noDep := NewTask(3, 1, 0, 100, 0, false)
	if !noDep.DependencyReady {
		t.Errorf("task with no dependency must start DependencyReady")
	}
}

func TestTask_Runnable(t *testing.T) {
	task := NewTask(1, 1, 5, 100, 0, false)
	if task.Runnable(5) {
		t.Errorf("task must not be runnable at its own startTick")
	}
	if !task.Runnable(6) {
		t.Errorf("task must be runnable once tick > startTick")
	}
	task.ApplyWork(100)
	if task.Runnable(6) {
		t.Errorf("a finished task must never be runnable")
	}
}

func TestTask_CoresUsed_TransientAccessor(t *testing.T) {
	task := NewTask(1, 1, 0, 100, 0, false)
	task.SetCoresUsed(4)
	if task.CoresUsed() != 4 {
		t.Errorf("CoresUsed() = %d, want 4", task.CoresUsed())
	}
}
