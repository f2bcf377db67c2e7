package grid

const noOccupant = -1

// Grid is a fixed-size, non-wrapping lattice in which every cell holds at
// most one robot. Robots are identified by their integer id.
type Grid struct {
	width, height int
	cells         []int
}

// NewGrid creates an empty grid. Width and height must be positive.
func NewGrid(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		panic("grid dimensions must be positive")
	}

	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]int, width*height),
	}

	for i := range g.cells {
		g.cells[i] = noOccupant
	}

	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return g.height
}

// Cells returns the number of cells in the grid.
func (g *Grid) Cells() int {
	return g.width * g.height
}

// Contains reports whether pos lies inside the grid.
func (g *Grid) Contains(pos Coord) bool {
	return pos.X >= 0 && pos.X < g.width && pos.Y >= 0 && pos.Y < g.height
}

func (g *Grid) index(pos Coord) int {
	return pos.X*g.height + pos.Y
}

func (g *Grid) mustContain(pos Coord) error {
	if !g.Contains(pos) {
		return &OutOfBoundsError{Pos: pos, Width: g.width, Height: g.height}
	}

	return nil
}

// Neighbors4 returns the orthogonal neighbors of pos that lie inside the grid,
// in the order west, south, north, east.
func (g *Grid) Neighbors4(pos Coord) []Coord {
	out := make([]Coord, 0, len(neighborOffsets))

	for _, off := range neighborOffsets {
		n := Coord{X: pos.X + off.X, Y: pos.Y + off.Y}
		if g.Contains(n) {
			out = append(out, n)
		}
	}

	return out
}

// EmptyNeighbors returns the neighbors of pos that hold no robot, keeping the
// Neighbors4 order.
func (g *Grid) EmptyNeighbors(pos Coord) []Coord {
	all := g.Neighbors4(pos)
	out := all[:0]

	for _, n := range all {
		if g.IsEmpty(n) {
			out = append(out, n)
		}
	}

	return out
}

// IsEmpty reports whether no robot stands on pos. Cells outside the grid are
// never empty.
func (g *Grid) IsEmpty(pos Coord) bool {
	if !g.Contains(pos) {
		return false
	}

	return g.cells[g.index(pos)] == noOccupant
}

// OccupantAt returns the id of the robot at pos.
func (g *Grid) OccupantAt(pos Coord) (int, bool) {
	if !g.Contains(pos) {
		return 0, false
	}

	id := g.cells[g.index(pos)]
	if id == noOccupant {
		return 0, false
	}

	return id, true
}

// Place puts a robot onto an empty cell. It is only used while a model is
// being initialized.
func (g *Grid) Place(id int, pos Coord) error {
	if err := g.mustContain(pos); err != nil {
		return err
	}

	idx := g.index(pos)
	if occupant := g.cells[idx]; occupant != noOccupant {
		return &OccupiedCellError{Pos: pos, Occupant: occupant}
	}

	g.cells[idx] = id

	return nil
}

// Move relocates robot id from one cell to another. Moving onto the current
// cell is a no-op. Moving onto a cell held by a different robot fails with an
// OccupiedCellError and leaves the grid unchanged.
func (g *Grid) Move(id int, from, to Coord) error {
	if err := g.mustContain(from); err != nil {
		return err
	}

	if err := g.mustContain(to); err != nil {
		return err
	}

	fromIdx := g.index(from)
	if g.cells[fromIdx] != id {
		panic("robot is not at the cell it moves from")
	}

	if from == to {
		return nil
	}

	toIdx := g.index(to)
	if occupant := g.cells[toIdx]; occupant != noOccupant {
		return &OccupiedCellError{Pos: to, Occupant: occupant}
	}

	g.cells[fromIdx] = noOccupant
	g.cells[toIdx] = id

	return nil
}
