package policy

import (
	"testing"

	"github.com/atlarge-research/opendc-go/sim"
)

func machines(n int) []*sim.Machine {
	out := make([]*sim.Machine, n)
	for i := range out {
		out[i] = sim.NewMachine(sim.MachineID(i+1), []sim.CPU{{SpeedMHz: 100, Cores: 1}}, nil)
	}
	return out
}

func TestFIFO_AssignsEarliestReadyTaskToEveryMachine(t *testing.T) {
	first := sim.NewTask(1, 1, 0, 100, 0, false)
	second := sim.NewTask(2, 1, 0, 100, 0, false)
	ms := machines(3)

	FIFO{}.Schedule(ms, []*sim.Task{first, second})

	for _, m := range ms {
		if m.CurrentWorkloadID() != first.ID {
			t.Errorf("machine %d assigned task %d, want %d", m.ID, m.CurrentWorkloadID(), first.ID)
		}
	}
	if first.CoresUsed() != 3 {
		t.Errorf("first.CoresUsed() = %d, want 3", first.CoresUsed())
	}
}

func TestFIFO_SkipsNotYetReadyCandidates(t *testing.T) {
	blocked := sim.NewTask(1, 1, 0, 100, 5, false)
	ready := sim.NewTask(2, 1, 0, 100, 0, false)
	ms := machines(1)

	FIFO{}.Schedule(ms, []*sim.Task{blocked, ready})

	if ms[0].CurrentWorkloadID() != ready.ID {
		t.Errorf("machine assigned task %d, want the dependency-ready task %d", ms[0].CurrentWorkloadID(), ready.ID)
	}
}

func TestFIFO_NoAssignmentWhenNothingIsReady(t *testing.T) {
	blocked := sim.NewTask(1, 1, 0, 100, 5, false)
	ms := machines(1)

	FIFO{}.Schedule(ms, []*sim.Task{blocked})

	if ms[0].CurrentTask != nil {
		t.Errorf("expected machine to stay idle with no dependency-ready candidates")
	}
}
