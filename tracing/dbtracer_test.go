package tracing

import (
	"context"
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/boxstack/config"
	"github.com/sarchlab/boxstack/datarecording"
	"github.com/sarchlab/boxstack/grid"
	"github.com/sarchlab/boxstack/robot"
	"github.com/sarchlab/boxstack/rng"
	"github.com/sarchlab/boxstack/sim"
)

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockDataRecorder
		tracer   *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)
		backend.EXPECT().CreateTable(TickTable, TickEntry{})
		backend.EXPECT().CreateTable(ActionTable, ActionEntry{})
		backend.EXPECT().CreateTable(HaltTable, HaltEntry{})

		var err error
		tracer, err = NewDBTracer(backend)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should write one row per robot step", func() {
		backend.EXPECT().InsertData(ActionTable, ActionEntry{
			Tick:     4,
			Robot:    2,
			Action:   "pickup",
			X:        1,
			Y:        3,
			Carrying: true,
		})

		tracer.Func(sim.HookCtx{
			Pos: sim.HookPosAfterStep,
			Item: sim.StepRecord{
				Tick:     4,
				RobotID:  2,
				Action:   robot.ActionPickUp,
				Pos:      grid.C(1, 3),
				Carrying: true,
			},
		})
	})

	It("should write one row per tick", func() {
		backend.EXPECT().InsertData(TickTable, TickEntry{
			Tick:        7,
			Carrying:    1,
			BoxesOnGrid: 9,
			Partial:     3,
			Full:        1,
			Completed:   1,
		})

		tracer.Func(sim.HookCtx{
			Pos: sim.HookPosAfterTick,
			Item: sim.TickSummary{
				Tick:            7,
				Carrying:        1,
				BoxesOnGrid:     9,
				Partial:         3,
				Full:            1,
				CompletedStacks: 1,
			},
		})
	})

	It("should skip ticks outside the range", func() {
		tracer.SetTickRange(10, 20)

		tracer.Func(sim.HookCtx{
			Pos:  sim.HookPosAfterTick,
			Item: sim.TickSummary{Tick: 9},
		})
		tracer.Func(sim.HookCtx{
			Pos:  sim.HookPosAfterStep,
			Item: sim.StepRecord{Tick: 21},
		})
	})

	It("should skip actions on request", func() {
		tracer.SkipActions()

		tracer.Func(sim.HookCtx{
			Pos:  sim.HookPosAfterStep,
			Item: sim.StepRecord{Tick: 1},
		})
	})

	It("should record the halt and flush", func() {
		stepErr := errors.New("robot 1: boom")
		gomock.InOrder(
			backend.EXPECT().InsertData(HaltTable, HaltEntry{
				Reason: "error",
				Error:  "robot 1: boom",
			}),
			backend.EXPECT().Flush(),
		)

		tracer.Func(sim.HookCtx{
			Pos:    sim.HookPosHalt,
			Item:   sim.HaltError,
			Detail: stepErr,
		})
	})

	It("should stop writing after the first failure", func() {
		failure := errors.New("disk full")
		backend.EXPECT().
			InsertData(TickTable, gomock.Any()).
			Return(failure)

		tracer.Func(sim.HookCtx{Pos: sim.HookPosAfterTick, Item: sim.TickSummary{Tick: 1}})
		tracer.Func(sim.HookCtx{Pos: sim.HookPosAfterTick, Item: sim.TickSummary{Tick: 2}})

		Expect(tracer.Err()).To(MatchError(failure))

		backend.EXPECT().Flush()
		Expect(tracer.Terminate()).To(MatchError(failure))
	})
})

var _ = Describe("DBTracer with SQLite", func() {
	It("should store a whole run", func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "run")
		recorder, err := datarecording.New(dbPath)
		Expect(err).NotTo(HaveOccurred())

		tracer, err := NewDBTracer(recorder)
		Expect(err).NotTo(HaveOccurred())

		cfg := config.Default(config.PolicyCenter)
		cfg.Grid = config.GridSize{Width: 6, Height: 6}
		cfg.NumAgents = 2
		cfg.NumBoxes = 8
		cfg.MaxIterations = 25

		model, err := sim.NewModel(cfg, rng.New(4))
		Expect(err).NotTo(HaveOccurred())
		CollectTrace(tracer, model)

		Expect(model.Run(context.Background())).To(Succeed())
		Expect(tracer.Terminate()).To(Succeed())
		Expect(recorder.Close()).To(Succeed())

		reader, err := datarecording.NewReader(dbPath + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(TickTable, TickEntry{})
		reader.MapTable(ActionTable, ActionEntry{})
		reader.MapTable(HaltTable, HaltEntry{})

		ticks, numTicks, err := reader.Query(context.Background(), TickTable,
			datarecording.QueryParams{OrderBy: "Tick"})
		Expect(err).NotTo(HaveOccurred())
		Expect(numTicks).To(Equal(model.Now()))
		for _, row := range ticks {
			tick := row.(*TickEntry)
			Expect(tick.BoxesOnGrid + tick.Carrying).To(Equal(8))
		}

		_, numActions, err := reader.Query(context.Background(), ActionTable,
			datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(numActions).To(Equal(2 * model.Now()))

		halts, _, err := reader.Query(context.Background(), HaltTable,
			datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(halts).To(HaveLen(1))
		Expect(halts[0].(*HaltEntry).Ticks).To(Equal(model.Now()))
	})
})
