package grid

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Grid", func() {
	var g *Grid

	BeforeEach(func() {
		g = NewGrid(5, 4)
	})

	It("should enumerate neighbors west, south, north, east", func() {
		Expect(g.Neighbors4(C(2, 2))).To(Equal([]Coord{
			C(1, 2), C(2, 1), C(2, 3), C(3, 2),
		}))
	})

	It("should clip neighbors at the corners", func() {
		Expect(g.Neighbors4(C(0, 0))).To(Equal([]Coord{C(0, 1), C(1, 0)}))
		Expect(g.Neighbors4(C(4, 3))).To(Equal([]Coord{C(3, 3), C(4, 2)}))
	})

	It("should place robots on empty cells only", func() {
		Expect(g.Place(1, C(1, 1))).To(Succeed())
		Expect(g.IsEmpty(C(1, 1))).To(BeFalse())

		err := g.Place(2, C(1, 1))

		var occupied *OccupiedCellError
		Expect(errors.As(err, &occupied)).To(BeTrue())
		Expect(occupied.Occupant).To(Equal(1))
	})

	It("should reject positions outside the grid", func() {
		var oob *OutOfBoundsError
		Expect(errors.As(g.Place(0, C(5, 0)), &oob)).To(BeTrue())
		Expect(g.IsEmpty(C(-1, 0))).To(BeFalse())
	})

	It("should move a robot to an empty cell", func() {
		Expect(g.Place(3, C(0, 0))).To(Succeed())

		Expect(g.Move(3, C(0, 0), C(0, 1))).To(Succeed())

		Expect(g.IsEmpty(C(0, 0))).To(BeTrue())
		id, ok := g.OccupantAt(C(0, 1))
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(3))
	})

	It("should treat moving onto the own cell as a no-op", func() {
		Expect(g.Place(3, C(2, 2))).To(Succeed())

		Expect(g.Move(3, C(2, 2), C(2, 2))).To(Succeed())

		id, _ := g.OccupantAt(C(2, 2))
		Expect(id).To(Equal(3))
	})

	It("should refuse to move onto another robot", func() {
		Expect(g.Place(0, C(0, 0))).To(Succeed())
		Expect(g.Place(1, C(1, 0))).To(Succeed())

		err := g.Move(0, C(0, 0), C(1, 0))

		var occupied *OccupiedCellError
		Expect(errors.As(err, &occupied)).To(BeTrue())
		Expect(occupied.Pos).To(Equal(C(1, 0)))
		id, _ := g.OccupantAt(C(0, 0))
		Expect(id).To(Equal(0))
	})

	It("should list only empty neighbors", func() {
		Expect(g.Place(0, C(2, 2))).To(Succeed())
		Expect(g.Place(1, C(2, 1))).To(Succeed())

		Expect(g.EmptyNeighbors(C(2, 2))).To(Equal([]Coord{
			C(1, 2), C(2, 3), C(3, 2),
		}))
	})
})

var _ = Describe("BoxField", func() {
	var f *BoxField

	BeforeEach(func() {
		f = NewBoxField(3, 3, 2)
	})

	It("should stack up to the max height", func() {
		Expect(f.Put(C(1, 1))).To(Succeed())
		Expect(f.Put(C(1, 1))).To(Succeed())
		Expect(f.IsFull(C(1, 1))).To(BeTrue())

		var full *StackFullError
		Expect(errors.As(f.Put(C(1, 1)), &full)).To(BeTrue())
		Expect(f.Height(C(1, 1))).To(Equal(2))
	})

	It("should never go below zero", func() {
		var empty *EmptyCellError
		Expect(errors.As(f.Take(C(0, 0)), &empty)).To(BeTrue())
		Expect(f.Height(C(0, 0))).To(Equal(0))
	})

	It("should count stacks", func() {
		Expect(f.Put(C(0, 0))).To(Succeed())
		Expect(f.Put(C(0, 1))).To(Succeed())
		Expect(f.Put(C(0, 1))).To(Succeed())
		Expect(f.Put(C(2, 2))).To(Succeed())
		Expect(f.Take(C(2, 2))).To(Succeed())

		Expect(f.Total()).To(Equal(3))
		Expect(f.CountAtLeast(1)).To(Equal(2))
		Expect(f.CountExactly(2)).To(Equal(1))
		Expect(f.CountPartial()).To(Equal(1))
	})

	It("should copy heights indexed by x then y", func() {
		Expect(f.Put(C(2, 0))).To(Succeed())

		heights := f.Heights()
		heights[2][0] = 7

		Expect(f.Height(C(2, 0))).To(Equal(1))
		Expect(f.Heights()[2][0]).To(Equal(1))
	})
})
