package robot

import "github.com/sarchlab/boxstack/rng"

// CooldownStacking lets robots grow stacks wherever boxes already lie. After a
// drop a robot rests for a few ticks and never picks up from the cell it last
// dropped on, which keeps it from undoing its own work.
type CooldownStacking struct {
	table []transition
}

// NewCooldownStacking creates the cooldown stacking policy.
func NewCooldownStacking() *CooldownStacking {
	p := &CooldownStacking{}
	p.table = []transition{
		{from: Searching, action: p.search},
		{from: Carrying, guard: onPartialStack, action: p.stack},
		{from: Carrying, guard: onFullStack, action: p.leaveFullStack},
		{from: Carrying, action: wander},
	}

	return p
}

// Name returns "cooldown".
func (p *CooldownStacking) Name() string {
	return "cooldown"
}

// Step counts the cooldown down and runs the machine once it reaches zero.
func (p *CooldownStacking) Step(r *Robot, w *World) (Action, error) {
	if r.Cooldown > 0 {
		r.Cooldown--
	}

	if r.Cooldown > 0 {
		return ActionIdle, nil
	}

	return runTable(p.table, r, w)
}

func onPartialStack(r *Robot, w *World) bool {
	h := w.Boxes.Height(r.Pos)
	return h > 0 && h < w.Boxes.MaxHeight()
}

func onFullStack(r *Robot, w *World) bool {
	return w.Boxes.IsFull(r.Pos)
}

func (p *CooldownStacking) search(r *Robot, w *World) (Action, error) {
	maxHeight := w.Boxes.MaxHeight()

	for _, n := range w.Grid.Neighbors4(r.Pos) {
		if r.LastDrop != nil && n == *r.LastDrop {
			continue
		}

		h := w.Boxes.Height(n)
		if h <= 0 || h >= maxHeight {
			continue
		}

		if err := r.pickUpFrom(w, n); err != nil {
			return ActionIdle, err
		}

		return ActionPickUp, nil
	}

	return wander(r, w)
}

func (p *CooldownStacking) stack(r *Robot, w *World) (Action, error) {
	// h >= 1 always holds on a partial stack; the stack-count clause stays.
	h := w.Boxes.Height(r.Pos)
	if !(h >= 1 || w.Boxes.CountAtLeast(2) < w.Params.TargetStacks) {
		return ActionIdle, nil
	}

	if err := r.drop(w); err != nil {
		return ActionIdle, err
	}

	pos := r.Pos
	r.Cooldown = w.Params.CooldownSteps
	r.LastDrop = &pos

	return ActionDrop, nil
}

// leaveFullStack steps off a full stack. When no neighbor is free the robot
// still picks one at random, and the grid rejects the move as a collision.
func (p *CooldownStacking) leaveFullStack(r *Robot, w *World) (Action, error) {
	if len(w.Grid.EmptyNeighbors(r.Pos)) > 0 {
		return wander(r, w)
	}

	neighbors := w.Grid.Neighbors4(r.Pos)
	if len(neighbors) == 0 {
		return ActionIdle, nil
	}

	if err := r.moveTo(w, rng.Pick(w.Rand, neighbors)); err != nil {
		return ActionIdle, err
	}

	return ActionMove, nil
}
