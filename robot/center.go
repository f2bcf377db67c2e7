package robot

import "github.com/sarchlab/boxstack/grid"

// CenterSeeking funnels every box to a single destination cell on the middle
// row. The destination column shifts one step east every time the stack on it
// fills, so stacks grow as one front.
type CenterSeeking struct {
	table []transition
}

// NewCenterSeeking creates the center-seeking policy.
func NewCenterSeeking() *CenterSeeking {
	p := &CenterSeeking{}
	p.table = []transition{
		{from: Searching, action: p.search},
		{from: Carrying, guard: atDestination, action: p.deliver},
		{from: Carrying, action: p.approach},
	}

	return p
}

// Name returns "center".
func (p *CenterSeeking) Name() string {
	return "center"
}

// Step runs one tick of the center-seeking machine.
func (p *CenterSeeking) Step(r *Robot, w *World) (Action, error) {
	return runTable(p.table, r, w)
}

func atDestination(r *Robot, w *World) bool {
	return r.Pos == w.Destination()
}

func (p *CenterSeeking) search(r *Robot, w *World) (Action, error) {
	dst := w.Destination()

	for _, n := range w.Grid.Neighbors4(r.Pos) {
		if n == dst || w.Boxes.Height(n) == 0 {
			continue
		}

		if err := r.pickUpFrom(w, n); err != nil {
			return ActionIdle, err
		}

		return ActionPickUp, nil
	}

	return wander(r, w)
}

func (p *CenterSeeking) deliver(r *Robot, w *World) (Action, error) {
	if w.Boxes.IsFull(r.Pos) {
		return ActionIdle, nil
	}

	if err := r.drop(w); err != nil {
		return ActionIdle, err
	}

	if w.Boxes.IsFull(r.Pos) {
		w.Front++
	}

	if w.Front >= w.Params.TargetStacks {
		w.SignalCompletion()
	}

	if _, err := wander(r, w); err != nil {
		return ActionDrop, err
	}

	return ActionDrop, nil
}

func (p *CenterSeeking) approach(r *Robot, w *World) (Action, error) {
	best, ok := closestNeighbor(w.Grid, r.Pos, w.Destination())
	if !ok || !w.Grid.IsEmpty(best) {
		return ActionIdle, nil
	}

	if err := r.moveTo(w, best); err != nil {
		return ActionIdle, err
	}

	return ActionMove, nil
}

// closestNeighbor returns the neighbor of pos nearest to dst by Manhattan
// distance. Ties go to the earlier neighbor in enumeration order.
func closestNeighbor(g *grid.Grid, pos, dst grid.Coord) (grid.Coord, bool) {
	neighbors := g.Neighbors4(pos)
	if len(neighbors) == 0 {
		return grid.Coord{}, false
	}

	best := neighbors[0]
	bestDist := best.Manhattan(dst)

	for _, n := range neighbors[1:] {
		if d := n.Manhattan(dst); d < bestDist {
			best, bestDist = n, d
		}
	}

	return best, true
}
