package grid

import "fmt"

// OccupiedCellError is returned when a robot is moved or placed onto a cell
// that another robot holds.
type OccupiedCellError struct {
	Pos      Coord
	Occupant int
}

func (e *OccupiedCellError) Error() string {
	return fmt.Sprintf("cell %s is occupied by robot %d", e.Pos, e.Occupant)
}

// EmptyCellError is returned when a box is taken from a cell without boxes.
type EmptyCellError struct {
	Pos Coord
}

func (e *EmptyCellError) Error() string {
	return fmt.Sprintf("cell %s has no box to take", e.Pos)
}

// StackFullError is returned when a box is put onto a full stack.
type StackFullError struct {
	Pos    Coord
	Height int
}

func (e *StackFullError) Error() string {
	return fmt.Sprintf("stack at %s is full (height %d)", e.Pos, e.Height)
}

// OutOfBoundsError is returned when a coordinate lies outside the grid.
type OutOfBoundsError struct {
	Pos           Coord
	Width, Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("cell %s is outside the %dx%d grid",
		e.Pos, e.Width, e.Height)
}
