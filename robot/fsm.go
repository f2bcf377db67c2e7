package robot

import (
	"fmt"

	"github.com/sarchlab/boxstack/rng"
)

// A Policy decides what a robot does in one tick.
type Policy interface {
	// Name returns the short name used in configuration.
	Name() string

	// Step runs one tick of the robot's state machine against w. Errors are
	// invariant violations; correct policies never return one except for the
	// cooldown policy's documented full-stack collision.
	Step(r *Robot, w *World) (Action, error)
}

type guardFunc func(r *Robot, w *World) bool

type actionFunc func(r *Robot, w *World) (Action, error)

// transition is one row of a policy's table. The first row whose state
// matches and whose guard passes fires.
type transition struct {
	from   State
	guard  guardFunc
	action actionFunc
}

func runTable(table []transition, r *Robot, w *World) (Action, error) {
	state := r.State()

	for _, t := range table {
		if t.from != state {
			continue
		}

		if t.guard != nil && !t.guard(r, w) {
			continue
		}

		return t.action(r, w)
	}

	return ActionIdle, nil
}

// wander moves the robot to a uniformly chosen empty neighbor, or keeps it in
// place when every neighbor is taken.
func wander(r *Robot, w *World) (Action, error) {
	candidates := w.Grid.EmptyNeighbors(r.Pos)
	if len(candidates) == 0 {
		return ActionIdle, nil
	}

	if err := r.moveTo(w, rng.Pick(w.Rand, candidates)); err != nil {
		return ActionIdle, err
	}

	return ActionMove, nil
}

// ByName returns the policy registered under name.
func ByName(name string) (Policy, error) {
	switch name {
	case "center":
		return NewCenterSeeking(), nil
	case "cooldown":
		return NewCooldownStacking(), nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}
