// Package policy provides the scheduling policies that map runnable tasks
// to machines for one tick: FIFO and SRTF. Both satisfy sim.Scheduler by
// duck typing — this package imports sim for the Task/Machine types, so
// sim cannot import policy back without creating a cycle.
package policy

import "github.com/atlarge-research/opendc-go/sim"

// preStep applies the common contract every policy runs before assigning
// anything: reset transient core accounting, then filter to only the
// dependency-ready candidates. Order within the returned slice is preserved
// (input order) — every policy's tie-breaking is by input order.
func preStep(candidates []*sim.Task) []*sim.Task {
	ready := make([]*sim.Task, 0, len(candidates))
	for _, t := range candidates {
		t.SetCoresUsed(0)
		if t.DependencyReady {
			ready = append(ready, t)
		}
	}
	return ready
}
