package robot

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/boxstack/grid"
)

func newTestWorld(
	width, height, maxHeight int,
	src *MockSource,
	params Params,
) *World {
	return &World{
		Grid:   grid.NewGrid(width, height),
		Boxes:  grid.NewBoxField(width, height, maxHeight),
		Rand:   src,
		Params: params,
	}
}

func placeRobot(w *World, id int, pos grid.Coord) *Robot {
	Expect(w.Grid.Place(id, pos)).To(Succeed())
	return New(id, pos)
}

func stackBoxes(w *World, pos grid.Coord, n int) {
	for i := 0; i < n; i++ {
		Expect(w.Boxes.Put(pos)).To(Succeed())
	}
}

var _ = Describe("CenterSeeking", func() {
	var (
		mockCtrl *gomock.Controller
		src      *MockSource
		w        *World
		policy   *CenterSeeking
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		src = NewMockSource(mockCtrl)
		w = newTestWorld(5, 5, 5, src, Params{TargetStacks: 2})
		policy = NewCenterSeeking()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should aim at the middle row of the front column", func() {
		Expect(w.Destination()).To(Equal(grid.C(0, 2)))

		w.Front = 3
		Expect(w.Destination()).To(Equal(grid.C(3, 2)))

		w.Front = 9
		Expect(w.Destination()).To(Equal(grid.C(4, 2)))
	})

	Context("when searching", func() {
		It("should pick up from the first loaded neighbor", func() {
			r := placeRobot(w, 0, grid.C(2, 3))
			stackBoxes(w, grid.C(2, 4), 1)
			stackBoxes(w, grid.C(3, 3), 1)

			action, err := policy.Step(r, w)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(ActionPickUp))
			Expect(r.State()).To(Equal(Carrying))
			Expect(r.Pos).To(Equal(grid.C(2, 3)))
			Expect(w.Boxes.Height(grid.C(2, 4))).To(Equal(0))
			Expect(w.Boxes.Height(grid.C(3, 3))).To(Equal(1))
		})

		It("should never take from the destination", func() {
			r := placeRobot(w, 0, grid.C(1, 2))
			stackBoxes(w, grid.C(0, 2), 3)
			src.EXPECT().Intn(4).Return(1)

			action, err := policy.Step(r, w)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(ActionMove))
			Expect(r.Carrying).To(BeFalse())
			Expect(r.Pos).To(Equal(grid.C(1, 1)))
			Expect(w.Boxes.Height(grid.C(0, 2))).To(Equal(3))
		})

		It("should wander to a random empty neighbor", func() {
			r := placeRobot(w, 0, grid.C(2, 2))
			placeRobot(w, 1, grid.C(1, 2))
			src.EXPECT().Intn(3).Return(2)

			action, err := policy.Step(r, w)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(ActionMove))
			Expect(r.Pos).To(Equal(grid.C(3, 2)))
			Expect(w.Grid.IsEmpty(grid.C(2, 2))).To(BeTrue())
		})

		It("should stay when boxed in", func() {
			r := placeRobot(w, 0, grid.C(0, 0))
			placeRobot(w, 1, grid.C(0, 1))
			placeRobot(w, 2, grid.C(1, 0))

			action, err := policy.Step(r, w)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(ActionIdle))
			Expect(r.Pos).To(Equal(grid.C(0, 0)))
		})
	})

	Context("when carrying", func() {
		It("should step towards the destination", func() {
			r := placeRobot(w, 0, grid.C(4, 4))
			r.Carrying = true

			action, err := policy.Step(r, w)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(ActionMove))
			Expect(r.Pos).To(Equal(grid.C(3, 4)))
		})

		It("should wait when the best step is blocked", func() {
			r := placeRobot(w, 0, grid.C(4, 4))
			r.Carrying = true
			placeRobot(w, 1, grid.C(3, 4))

			action, err := policy.Step(r, w)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(ActionIdle))
			Expect(r.Pos).To(Equal(grid.C(4, 4)))
		})

		It("should drop at the destination and move away", func() {
			r := placeRobot(w, 0, grid.C(0, 2))
			r.Carrying = true
			src.EXPECT().Intn(3).Return(2)

			action, err := policy.Step(r, w)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(ActionDrop))
			Expect(r.Carrying).To(BeFalse())
			Expect(w.Boxes.Height(grid.C(0, 2))).To(Equal(1))
			Expect(w.Front).To(Equal(0))
			Expect(r.Pos).To(Equal(grid.C(1, 2)))
		})

		It("should advance the front when the stack fills", func() {
			r := placeRobot(w, 0, grid.C(0, 2))
			r.Carrying = true
			stackBoxes(w, grid.C(0, 2), 4)
			src.EXPECT().Intn(3).Return(0)

			_, err := policy.Step(r, w)

			Expect(err).NotTo(HaveOccurred())
			Expect(w.Boxes.IsFull(grid.C(0, 2))).To(BeTrue())
			Expect(w.Front).To(Equal(1))
			Expect(w.Destination()).To(Equal(grid.C(1, 2)))
			Expect(w.CompletionSignaled()).To(BeFalse())
		})

		It("should signal completion on the last stack", func() {
			w.Front = 1
			r := placeRobot(w, 0, grid.C(1, 2))
			r.Carrying = true
			stackBoxes(w, grid.C(1, 2), 4)
			src.EXPECT().Intn(4).Return(0)

			_, err := policy.Step(r, w)

			Expect(err).NotTo(HaveOccurred())
			Expect(w.Front).To(Equal(2))
			Expect(w.CompletionSignaled()).To(BeTrue())
		})

		It("should wait on a full destination", func() {
			w.Front = 7
			r := placeRobot(w, 0, grid.C(4, 2))
			r.Carrying = true
			stackBoxes(w, grid.C(4, 2), 5)

			action, err := policy.Step(r, w)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(ActionIdle))
			Expect(r.Carrying).To(BeTrue())
		})
	})
})

var _ = Describe("ByName", func() {
	It("should resolve the known policies", func() {
		p, err := ByName("center")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Name()).To(Equal("center"))

		p, err = ByName("cooldown")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Name()).To(Equal("cooldown"))

		_, err = ByName("greedy")
		Expect(err).To(HaveOccurred())
	})
})
