// Package robot implements the per-tick decision engine of the box-moving
// robots. Each policy is a small finite-state machine over the Searching and
// Carrying states; the policies share the machine's shape and differ only in
// their transition guards and actions.
package robot

import (
	"fmt"

	"github.com/sarchlab/boxstack/grid"
)

// State is the state of a robot's finite-state machine.
type State int

const (
	// Searching robots do not carry a box and look for one to pick up.
	Searching State = iota
	// Carrying robots hold one box and look for a place to drop it.
	Carrying
)

func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Carrying:
		return "carrying"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Action is what a robot did during one step.
type Action int

const (
	// ActionIdle means the robot stayed and did not touch any box.
	ActionIdle Action = iota
	// ActionMove means the robot moved to a neighbor cell.
	ActionMove
	// ActionPickUp means the robot took a box from a neighbor cell.
	ActionPickUp
	// ActionDrop means the robot put its box onto its cell.
	ActionDrop
)

func (a Action) String() string {
	switch a {
	case ActionIdle:
		return "idle"
	case ActionMove:
		return "move"
	case ActionPickUp:
		return "pickup"
	case ActionDrop:
		return "drop"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// A Robot is a mobile agent that carries at most one box.
type Robot struct {
	ID       int         `json:"id"`
	Pos      grid.Coord  `json:"pos"`
	Carrying bool        `json:"carrying"`
	Cooldown int         `json:"cooldown"`
	LastDrop *grid.Coord `json:"last_drop,omitempty"`
}

// New creates a searching robot at pos.
func New(id int, pos grid.Coord) *Robot {
	return &Robot{ID: id, Pos: pos}
}

// State derives the machine state from the carrying flag.
func (r *Robot) State() State {
	if r.Carrying {
		return Carrying
	}

	return Searching
}

// Clone returns a deep copy of the robot.
func (r *Robot) Clone() Robot {
	c := *r
	if r.LastDrop != nil {
		d := *r.LastDrop
		c.LastDrop = &d
	}

	return c
}

func (r *Robot) moveTo(w *World, to grid.Coord) error {
	if err := w.Grid.Move(r.ID, r.Pos, to); err != nil {
		return err
	}

	r.Pos = to

	return nil
}

func (r *Robot) pickUpFrom(w *World, from grid.Coord) error {
	if err := w.Boxes.Take(from); err != nil {
		return err
	}

	r.Carrying = true

	return nil
}

func (r *Robot) drop(w *World) error {
	if err := w.Boxes.Put(r.Pos); err != nil {
		return err
	}

	r.Carrying = false

	return nil
}
