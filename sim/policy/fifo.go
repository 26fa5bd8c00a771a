package policy

import "github.com/atlarge-research/opendc-go/sim"

// FIFO assigns the same earliest-in-input dependency-ready task to every
// machine in one tick. If no candidate is dependency-ready, it cycles
// through the candidate list seeking one; if none exists, it emits no
// assignments this tick.
type FIFO struct{}

// Schedule implements sim.Scheduler.
func (FIFO) Schedule(machines []*sim.Machine, candidates []*sim.Task) {
	ready := preStep(candidates)
	if len(ready) == 0 {
		return
	}

	head := ready[0]
	var cores int64
	for _, m := range machines {
		m.Assign(head)
		cores += m.NumberOfCores()
	}
	head.SetCoresUsed(cores)
}
