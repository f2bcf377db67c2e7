package sim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/boxstack/grid"
	"github.com/sarchlab/boxstack/robot"
)

var _ = Describe("Scheduler", func() {
	var (
		mockCtrl  *gomock.Controller
		src       *MockSource
		policy    *MockPolicy
		robots    []*robot.Robot
		w         *robot.World
		scheduler *Scheduler
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		src = NewMockSource(mockCtrl)
		policy = NewMockPolicy(mockCtrl)
		robots = []*robot.Robot{
			robot.New(0, grid.C(0, 0)),
			robot.New(1, grid.C(1, 0)),
			robot.New(2, grid.C(2, 0)),
		}
		w = &robot.World{
			Grid:  grid.NewGrid(3, 3),
			Boxes: grid.NewBoxField(3, 3, 5),
			Rand:  src,
		}
		scheduler = NewScheduler(policy, src, robots)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should step every robot once in shuffled order", func() {
		src.EXPECT().
			Shuffle(3, gomock.Any()).
			Do(func(n int, swap func(i, j int)) {
				swap(0, 2)
			})
		gomock.InOrder(
			policy.EXPECT().Step(robots[2], w).Return(robot.ActionMove, nil),
			policy.EXPECT().Step(robots[1], w).Return(robot.ActionIdle, nil),
			policy.EXPECT().Step(robots[0], w).Return(robot.ActionDrop, nil),
		)

		var stepped []int
		var actions []robot.Action
		err := scheduler.Tick(w, func(r *robot.Robot, a robot.Action) {
			stepped = append(stepped, r.ID)
			actions = append(actions, a)
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(stepped).To(Equal([]int{2, 1, 0}))
		Expect(actions).To(Equal([]robot.Action{
			robot.ActionMove, robot.ActionIdle, robot.ActionDrop,
		}))
	})

	It("should stop at the first failing robot", func() {
		src.EXPECT().Shuffle(3, gomock.Any())
		policy.EXPECT().Step(robots[0], w).Return(robot.ActionIdle, nil)
		policy.EXPECT().
			Step(robots[1], w).
			Return(robot.ActionIdle, &grid.EmptyCellError{Pos: grid.C(1, 1)})

		err := scheduler.Tick(w, nil)

		var empty *grid.EmptyCellError
		Expect(errors.As(err, &empty)).To(BeTrue())
		Expect(empty.Pos).To(Equal(grid.C(1, 1)))
		Expect(err.Error()).To(HavePrefix("robot 1: "))
	})
})
