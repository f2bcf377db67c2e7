package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sarchlab/boxstack/config"
	"github.com/sarchlab/boxstack/grid"
	"github.com/sarchlab/boxstack/robot"
	"github.com/sarchlab/boxstack/rng"
)

// StepRecord describes one robot step. It is the item of HookPosAfterStep.
type StepRecord struct {
	Tick     int          `json:"tick"`
	RobotID  int          `json:"robot"`
	Action   robot.Action `json:"action"`
	Pos      grid.Coord   `json:"pos"`
	Carrying bool         `json:"carrying"`
}

// TickSummary aggregates the world after one tick. It is the item of
// HookPosAfterTick.
type TickSummary struct {
	Tick            int `json:"tick"`
	Carrying        int `json:"carrying"`
	BoxesOnGrid     int `json:"boxes_on_grid"`
	Partial         int `json:"partial"`
	Full            int `json:"full"`
	CompletedStacks int `json:"completed_stacks"`
}

// ModelOption customizes NewModel.
type ModelOption func(*modelOptions)

type modelOptions struct {
	layout *Layout
}

// WithLayout places robots and boxes as given instead of at random. The
// config's agent and box counts are replaced by the layout's.
func WithLayout(l Layout) ModelOption {
	return func(o *modelOptions) {
		o.layout = &l
	}
}

// Model is one simulation run: a grid, its boxes, a population of robots and
// the clock that drives them.
type Model struct {
	*HookableBase

	cfg       config.Config
	world     *robot.World
	policy    robot.Policy
	scheduler *Scheduler
	clock     *Clock
	stop      StopCondition
	totalBox  int
	err       error

	stateLock    sync.RWMutex
	tickLock     sync.Mutex
	haltReported bool

	// resume is closed by Continue. It is nil while the model is not paused.
	resume       chan struct{}
	isPausedLock sync.Mutex
}

// NewModel builds a model from cfg. All randomness, initial placement
// included, is drawn from src.
func NewModel(
	cfg config.Config,
	src rng.Source,
	opts ...ModelOption,
) (*Model, error) {
	o := &modelOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.layout != nil {
		cfg.NumAgents = len(o.layout.Robots)
		cfg.NumBoxes = 0
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if o.layout != nil {
		if err := o.layout.validate(cfg); err != nil {
			return nil, err
		}

		cfg.NumBoxes = o.layout.TotalBoxes()
	}

	policy, err := robot.ByName(string(cfg.Policy))
	if err != nil {
		return nil, &config.ConfigurationError{Field: "policy", Reason: err.Error()}
	}

	world := &robot.World{
		Grid:  grid.NewGrid(cfg.Grid.Width, cfg.Grid.Height),
		Boxes: grid.NewBoxField(cfg.Grid.Width, cfg.Grid.Height, cfg.MaxStackHeight),
		Rand:  src,
		Params: robot.Params{
			TargetStacks:  cfg.TargetStacks,
			CooldownSteps: cfg.CooldownSteps,
		},
	}

	var robots []*robot.Robot
	if o.layout != nil {
		robots = o.layout.apply(world)
	} else {
		robots = placeRandomly(cfg, world, src)
	}

	m := &Model{
		HookableBase: NewHookableBase(),
		cfg:          cfg,
		world:        world,
		policy:       policy,
		scheduler:    NewScheduler(policy, src, robots),
		clock:        NewClock(cfg.MaxIterations),
		stop:         StopConditionFor(cfg.Policy),
		totalBox:     cfg.NumBoxes,
	}

	if reason, done := m.stop.Evaluate(world); done {
		m.clock.Halt(reason)
	}

	log.Debug().
		Str("policy", policy.Name()).
		Int("width", cfg.Grid.Width).
		Int("height", cfg.Grid.Height).
		Int("robots", len(robots)).
		Int("boxes", cfg.NumBoxes).
		Bool("running", m.clock.Running()).
		Msg("model created")

	return m, nil
}

// Config returns the resolved configuration of the model.
func (m *Model) Config() config.Config {
	return m.cfg
}

// Policy returns the policy that drives the robots.
func (m *Model) Policy() robot.Policy {
	return m.policy
}

// Now returns the number of ticks run so far.
func (m *Model) Now() int {
	return m.clock.Now()
}

// MaxIterations returns the tick limit.
func (m *Model) MaxIterations() int {
	return m.clock.MaxIterations()
}

// Running reports whether the model can still tick.
func (m *Model) Running() bool {
	return m.clock.Running()
}

// HaltReason returns why the model stopped, or HaltNone while it runs.
func (m *Model) HaltReason() HaltReason {
	return m.clock.Reason()
}

// Err returns the step error that stopped the model, if any.
func (m *Model) Err() error {
	m.stateLock.RLock()
	defer m.stateLock.RUnlock()

	return m.err
}

// TotalBoxes returns the number of boxes in the world, carried ones included.
func (m *Model) TotalBoxes() int {
	return m.totalBox
}

// CompletedStacks returns the progress measure of the model's policy.
func (m *Model) CompletedStacks() int {
	m.stateLock.RLock()
	defer m.stateLock.RUnlock()

	return m.stop.CompletedStacks(m.world)
}

// Step runs one tick. It returns whether the model can keep running. While
// the model is paused, Step waits for Continue. A model that already halted
// does nothing and returns the error it halted with.
func (m *Model) Step() (bool, error) {
	return m.step(context.Background())
}

func (m *Model) step(ctx context.Context) (bool, error) {
	if err := m.acquireTick(ctx); err != nil {
		return m.Running(), err
	}
	defer m.tickLock.Unlock()

	if !m.clock.Running() {
		m.stateLock.RLock()
		summary := m.summarize(m.clock.Now())
		m.stateLock.RUnlock()

		m.reportHalt(summary, m.Err())

		return false, m.Err()
	}

	tick := m.clock.Now()
	m.InvokeHook(HookCtx{Domain: m, Pos: HookPosBeforeTick, Item: tick})

	m.stateLock.Lock()
	records, err := m.tick(tick)
	summary := m.summarize(tick)
	m.stateLock.Unlock()

	for _, rec := range records {
		m.InvokeHook(HookCtx{Domain: m, Pos: HookPosAfterStep, Item: rec})
	}

	m.InvokeHook(HookCtx{Domain: m, Pos: HookPosAfterTick, Item: summary})

	if m.clock.Running() {
		return true, nil
	}

	m.reportHalt(summary, err)

	return false, err
}

// acquireTick waits until the model is not paused and takes the tick lock.
func (m *Model) acquireTick(ctx context.Context) error {
	for {
		m.isPausedLock.Lock()
		resume := m.resume
		m.isPausedLock.Unlock()

		if resume != nil {
			select {
			case <-resume:
			case <-ctx.Done():
				return ctx.Err()
			}

			continue
		}

		m.tickLock.Lock()

		if !m.Paused() {
			return nil
		}

		m.tickLock.Unlock()
	}
}

// reportHalt logs the halt and fires the halt hook, once per model.
func (m *Model) reportHalt(s TickSummary, err error) {
	if m.haltReported {
		return
	}

	m.haltReported = true

	m.logHalt(s, err)
	m.InvokeHook(HookCtx{
		Domain: m,
		Pos:    HookPosHalt,
		Item:   m.clock.Reason(),
		Detail: err,
	})
}

func (m *Model) tick(tick int) ([]StepRecord, error) {
	records := make([]StepRecord, 0, len(m.scheduler.Robots()))

	err := m.scheduler.Tick(m.world, func(r *robot.Robot, a robot.Action) {
		records = append(records, StepRecord{
			Tick:     tick,
			RobotID:  r.ID,
			Action:   a,
			Pos:      r.Pos,
			Carrying: r.Carrying,
		})
	})
	if err != nil {
		m.err = fmt.Errorf("tick %d: %w", tick, err)
		m.clock.Halt(HaltError)

		return records, m.err
	}

	if reason, done := m.stop.Evaluate(m.world); done {
		m.clock.Halt(reason)
	}

	m.clock.Advance()

	return records, nil
}

func (m *Model) summarize(tick int) TickSummary {
	s := TickSummary{
		Tick:            tick,
		BoxesOnGrid:     m.world.Boxes.Total(),
		Partial:         m.world.Boxes.CountPartial(),
		Full:            m.world.Boxes.CountExactly(m.world.Boxes.MaxHeight()),
		CompletedStacks: m.stop.CompletedStacks(m.world),
	}

	for _, r := range m.scheduler.Robots() {
		if r.Carrying {
			s.Carrying++
		}
	}

	return s
}

func (m *Model) logHalt(s TickSummary, err error) {
	if err != nil {
		log.Error().Err(err).Int("tick", s.Tick).Msg("simulation failed")
		return
	}

	log.Info().
		Stringer("reason", m.clock.Reason()).
		Int("ticks", m.clock.Now()).
		Int("completed_stacks", s.CompletedStacks).
		Msg("simulation halted")
}

// Run steps the model until it halts, a step fails, or ctx is done. The
// context is checked between ticks and while the model is paused.
func (m *Model) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		running, err := m.step(ctx)
		if err != nil {
			return err
		}

		if !running {
			return nil
		}
	}
}

// Pause holds the next tick until Continue is called. A tick in progress
// finishes before Pause returns.
func (m *Model) Pause() {
	m.isPausedLock.Lock()
	if m.resume == nil {
		m.resume = make(chan struct{})
	}
	m.isPausedLock.Unlock()

	m.tickLock.Lock()
	defer m.tickLock.Unlock()
}

// Continue releases a paused model.
func (m *Model) Continue() {
	m.isPausedLock.Lock()
	defer m.isPausedLock.Unlock()

	if m.resume == nil {
		return
	}

	close(m.resume)
	m.resume = nil
}

// Paused reports whether the model is paused.
func (m *Model) Paused() bool {
	m.isPausedLock.Lock()
	defer m.isPausedLock.Unlock()

	return m.resume != nil
}
