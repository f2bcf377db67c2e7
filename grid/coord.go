// Package grid provides the rectangular lattice the robots live on and the
// per-cell box stacks they manipulate.
package grid

import "fmt"

// Coord is a cell coordinate. X grows eastwards and Y grows northwards.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// C is a shorthand constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Manhattan returns the L1 distance between two coordinates.
func (c Coord) Manhattan(o Coord) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

// neighborOffsets is the fixed Von-Neumann enumeration order: west, south,
// north, east.
var neighborOffsets = [4]Coord{
	{X: -1, Y: 0},
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: 1, Y: 0},
}
