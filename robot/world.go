package robot

import (
	"github.com/sarchlab/boxstack/grid"
	"github.com/sarchlab/boxstack/rng"
)

// Params are the policy tunables that do not live on the grid itself.
type Params struct {
	// TargetStacks is the number of full stacks that completes a run. The
	// cooldown policy also uses it as the cap on stacks of height two or more.
	TargetStacks int
	// CooldownSteps is the number of ticks a robot waits after a drop.
	CooldownSteps int
}

// World is the mutable context a robot acts on during its step. It is owned by
// the model and handed to one robot at a time.
type World struct {
	Grid   *grid.Grid
	Boxes  *grid.BoxField
	Rand   rng.Source
	Params Params

	// Front is the index of the column the center-seeking policy currently
	// stacks on. It advances every time the stack under it fills.
	Front int

	completed bool
}

// Destination returns the cell the center-seeking policy delivers boxes to.
func (w *World) Destination() grid.Coord {
	x := w.Front
	if x > w.Grid.Width()-1 {
		x = w.Grid.Width() - 1
	}

	return grid.Coord{X: x, Y: w.Grid.Height() / 2}
}

// SignalCompletion records that the completion threshold has been met.
func (w *World) SignalCompletion() {
	w.completed = true
}

// CompletionSignaled reports whether a robot signaled completion.
func (w *World) CompletionSignaled() bool {
	return w.completed
}
