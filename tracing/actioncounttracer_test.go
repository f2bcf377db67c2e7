package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/boxstack/config"
	"github.com/sarchlab/boxstack/grid"
	"github.com/sarchlab/boxstack/robot"
	"github.com/sarchlab/boxstack/rng"
	"github.com/sarchlab/boxstack/sim"
)

func step(robotID int, a robot.Action) sim.HookCtx {
	return sim.HookCtx{
		Pos:  sim.HookPosAfterStep,
		Item: sim.StepRecord{RobotID: robotID, Action: a},
	}
}

var _ = Describe("ActionCountTracer", func() {
	It("should count actions overall and per robot", func() {
		t := NewActionCountTracer(nil)

		t.Func(step(0, robot.ActionMove))
		t.Func(step(1, robot.ActionMove))
		t.Func(step(1, robot.ActionPickUp))
		t.Func(sim.HookCtx{Pos: sim.HookPosAfterTick, Item: sim.TickSummary{}})

		Expect(t.GetActionNames()).To(Equal([]string{"move", "pickup"}))
		Expect(t.GetActionCount(robot.ActionMove)).To(Equal(uint64(2)))
		Expect(t.GetActionCount(robot.ActionDrop)).To(BeZero())
		Expect(t.GetRobotActionCount(1, robot.ActionPickUp)).To(Equal(uint64(1)))
		Expect(t.GetRobotActionCount(0, robot.ActionPickUp)).To(BeZero())
		Expect(t.TotalSteps()).To(Equal(uint64(3)))
	})

	It("should honor the filter", func() {
		t := NewActionCountTracer(func(rec sim.StepRecord) bool {
			return rec.RobotID == 0
		})

		t.Func(step(0, robot.ActionIdle))
		t.Func(step(1, robot.ActionIdle))

		Expect(t.TotalSteps()).To(Equal(uint64(1)))
	})

	It("should see every robot once per tick of a model", func() {
		cfg := config.Default(config.PolicyCooldown)
		cfg.MaxIterations = 10

		model, err := sim.NewModel(cfg, rng.New(8), sim.WithLayout(sim.Layout{
			Robots: []sim.RobotPlacement{{Pos: grid.C(0, 0)}, {Pos: grid.C(5, 5)}},
			Boxes:  map[grid.Coord]int{grid.C(9, 9): 2},
		}))
		Expect(err).NotTo(HaveOccurred())

		t := NewActionCountTracer(nil)
		CollectTrace(t, model)

		for model.Running() {
			_, err := model.Step()
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(t.TotalSteps()).To(Equal(uint64(2 * model.Now())))
	})
})
