package sim

// Section pairs a Datacenter with the tick at which it becomes active.
type Section struct {
	Datacenter *Datacenter
	StartTick  int64
}

// FlatMachines delegates to the section's Datacenter.
func (s *Section) FlatMachines() []*Machine {
	return s.Datacenter.FlatMachines()
}

// Path is the unordered collection of Sections belonging to one experiment.
// Invariant: no two sections in a Path share a StartTick — enforced at
// construction (NewPath panics via an invariantViolation, §7, rather than
// silently picking one).
type Path struct {
	sections []*Section
}

// NewPath builds a Path from its sections, validating the no-duplicate-
// StartTick invariant. A malformed Path (duplicate StartTick) is an internal
// invariant violation: process-fatal, not a load-time recoverable error.
func NewPath(sections []*Section) *Path {
	seen := make(map[int64]bool, len(sections))
	for _, s := range sections {
		if seen[s.StartTick] {
			panic(invariantViolation{msg: "path has two sections with the same startTick"})
		}
		seen[s.StartTick] = true
	}
	return &Path{sections: sections}
}

// ActiveAt returns the section with the greatest StartTick strictly less
// than tick. If no section qualifies (every StartTick >= tick), it falls
// back to the section with the smallest StartTick. Panics if the Path has
// no sections at all (a malformed experiment, caught at load).
func (p *Path) ActiveAt(tick int64) *Section {
	if len(p.sections) == 0 {
		panic(invariantViolation{msg: "path has no sections"})
	}

	var best *Section
	var smallest *Section
	for _, s := range p.sections {
		if smallest == nil || s.StartTick < smallest.StartTick {
			smallest = s
		}
		if s.StartTick < tick {
			if best == nil || s.StartTick > best.StartTick {
				best = s
			}
		}
	}
	if best != nil {
		return best
	}
	return smallest
}
