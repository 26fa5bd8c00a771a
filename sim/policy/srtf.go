package policy

import (
	"sort"

	"github.com/atlarge-research/opendc-go/sim"
)

// SRTF (shortest remaining time first) sorts dependency-ready candidates by
// RemainingOps ascending (stable), then walks machines in input order,
// assigning the current head task to each. A non-parallel head is removed
// from the candidate list after its single assignment, enforcing that a
// serial task consumes exactly one machine per tick; a parallel head stays
// in the list and the cursor advances round-robin over what remains.
// Stops once the candidate list is empty — any remaining machines stay idle.
type SRTF struct{}

// Schedule implements sim.Scheduler.
func (SRTF) Schedule(machines []*sim.Machine, candidates []*sim.Task) {
	ready := preStep(candidates)
	if len(ready) == 0 {
		return
	}

	sort.SliceStable(ready, func(i, j int) bool {
		return ready[i].RemainingOps < ready[j].RemainingOps
	})

	cursor := 0
	for _, m := range machines {
		if len(ready) == 0 {
			break
		}

		head := ready[cursor]
		m.Assign(head)
		head.SetCoresUsed(head.CoresUsed() + m.NumberOfCores())

		if !head.Parallel {
			ready = append(ready[:cursor], ready[cursor+1:]...)
			if len(ready) > 0 {
				cursor %= len(ready)
			} else {
				cursor = 0
			}
		} else {
			cursor = (cursor + 1) % len(ready)
		}
	}
}
