package tracing

import (
	"sync"

	"github.com/sarchlab/boxstack/robot"
	"github.com/sarchlab/boxstack/sim"
)

// ActionFilter decides whether a step should be counted.
type ActionFilter func(rec sim.StepRecord) bool

// ActionCountTracer counts how often each action is taken, overall and per
// robot.
type ActionCountTracer struct {
	filter      ActionFilter
	lock        sync.Mutex
	actionNames []string
	actionCount map[string]uint64
	robotCount  map[int]map[string]uint64
	steps       uint64
}

// NewActionCountTracer creates a new ActionCountTracer. A nil filter counts
// every step.
func NewActionCountTracer(filter ActionFilter) *ActionCountTracer {
	if filter == nil {
		filter = func(sim.StepRecord) bool { return true }
	}

	return &ActionCountTracer{
		filter:      filter,
		actionCount: make(map[string]uint64),
		robotCount:  make(map[int]map[string]uint64),
	}
}

// Func implements sim.Hook.
func (t *ActionCountTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterStep {
		return
	}

	rec := ctx.Item.(sim.StepRecord)
	if !t.filter(rec) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	name := rec.Action.String()
	if _, ok := t.actionCount[name]; !ok {
		t.actionNames = append(t.actionNames, name)
	}

	t.actionCount[name]++
	t.steps++

	perRobot, ok := t.robotCount[rec.RobotID]
	if !ok {
		perRobot = make(map[string]uint64)
		t.robotCount[rec.RobotID] = perRobot
	}

	perRobot[name]++
}

// GetActionNames returns the actions seen, in order of first appearance.
func (t *ActionCountTracer) GetActionNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return append([]string(nil), t.actionNames...)
}

// GetActionCount returns how many times an action was taken.
func (t *ActionCountTracer) GetActionCount(a robot.Action) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.actionCount[a.String()]
}

// GetNamedCount returns the count of an action given by name.
func (t *ActionCountTracer) GetNamedCount(name string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.actionCount[name]
}

// GetRobotActionCount returns how many times one robot took an action.
func (t *ActionCountTracer) GetRobotActionCount(robotID int, a robot.Action) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.robotCount[robotID][a.String()]
}

// TotalSteps returns the number of counted steps.
func (t *ActionCountTracer) TotalSteps() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.steps
}
