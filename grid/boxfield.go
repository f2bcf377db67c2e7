package grid

// BoxField tracks how many boxes are stacked on every cell. Heights never go
// below zero or above the configured maximum.
type BoxField struct {
	width, height int
	maxHeight     int
	heights       []int
}

// NewBoxField creates a box field without boxes.
func NewBoxField(width, height, maxHeight int) *BoxField {
	if width <= 0 || height <= 0 {
		panic("box field dimensions must be positive")
	}

	if maxHeight <= 0 {
		panic("max stack height must be positive")
	}

	return &BoxField{
		width:     width,
		height:    height,
		maxHeight: maxHeight,
		heights:   make([]int, width*height),
	}
}

// MaxHeight returns the height at which a stack is full.
func (f *BoxField) MaxHeight() int {
	return f.maxHeight
}

func (f *BoxField) contains(pos Coord) bool {
	return pos.X >= 0 && pos.X < f.width && pos.Y >= 0 && pos.Y < f.height
}

func (f *BoxField) index(pos Coord) int {
	return pos.X*f.height + pos.Y
}

// Height returns the number of boxes on pos. Cells outside the field hold
// nothing.
func (f *BoxField) Height(pos Coord) int {
	if !f.contains(pos) {
		return 0
	}

	return f.heights[f.index(pos)]
}

// IsFull reports whether the stack on pos reached the maximum height.
func (f *BoxField) IsFull(pos Coord) bool {
	return f.Height(pos) == f.maxHeight
}

// Take removes one box from pos.
func (f *BoxField) Take(pos Coord) error {
	if !f.contains(pos) {
		return &OutOfBoundsError{Pos: pos, Width: f.width, Height: f.height}
	}

	idx := f.index(pos)
	if f.heights[idx] == 0 {
		return &EmptyCellError{Pos: pos}
	}

	f.heights[idx]--

	return nil
}

// Put adds one box onto pos.
func (f *BoxField) Put(pos Coord) error {
	if !f.contains(pos) {
		return &OutOfBoundsError{Pos: pos, Width: f.width, Height: f.height}
	}

	idx := f.index(pos)
	if f.heights[idx] >= f.maxHeight {
		return &StackFullError{Pos: pos, Height: f.heights[idx]}
	}

	f.heights[idx]++

	return nil
}

// Total returns the number of boxes on the field.
func (f *BoxField) Total() int {
	total := 0
	for _, h := range f.heights {
		total += h
	}

	return total
}

// CountAtLeast returns the number of cells holding h or more boxes.
func (f *BoxField) CountAtLeast(h int) int {
	n := 0
	for _, v := range f.heights {
		if v >= h {
			n++
		}
	}

	return n
}

// CountExactly returns the number of cells holding exactly h boxes.
func (f *BoxField) CountExactly(h int) int {
	n := 0
	for _, v := range f.heights {
		if v == h {
			n++
		}
	}

	return n
}

// CountPartial returns the number of cells that hold boxes but are not full.
func (f *BoxField) CountPartial() int {
	n := 0
	for _, v := range f.heights {
		if v > 0 && v < f.maxHeight {
			n++
		}
	}

	return n
}

// Heights returns a copy of the field indexed as [x][y].
func (f *BoxField) Heights() [][]int {
	out := make([][]int, f.width)
	for x := range out {
		out[x] = make([]int, f.height)
		copy(out[x], f.heights[x*f.height:(x+1)*f.height])
	}

	return out
}
