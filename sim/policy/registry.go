package policy

import (
	"fmt"

	"github.com/atlarge-research/opendc-go/sim"
)

// New resolves a scheduler name to a policy instance.
// Valid names: "FIFO", "DEFAULT" (both map to FIFO), "SRTF".
// An unknown name returns an error rather than panicking: at load time this
// is fatal for the one experiment being loaded, not the process (§7).
func New(name string) (sim.Scheduler, error) {
	switch name {
	case "FIFO", "DEFAULT":
		return FIFO{}, nil
	case "SRTF":
		return SRTF{}, nil
	default:
		return nil, fmt.Errorf("unknown scheduler %q; valid schedulers: [FIFO, DEFAULT, SRTF]", name)
	}
}
