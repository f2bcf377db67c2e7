package sim

import (
	"github.com/sarchlab/boxstack/config"
	"github.com/sarchlab/boxstack/robot"
)

// A StopCondition decides, after each tick, whether a policy is done.
type StopCondition interface {
	// Evaluate returns the halt reason and true when the run should stop.
	Evaluate(w *robot.World) (HaltReason, bool)

	// CompletedStacks reports the policy's progress measure.
	CompletedStacks(w *robot.World) int
}

// CompletionSignal stops a run when a robot signals that the destination
// front passed the target. Completed stacks are the stacks behind the front.
type CompletionSignal struct{}

// Evaluate implements StopCondition.
func (CompletionSignal) Evaluate(w *robot.World) (HaltReason, bool) {
	if w.CompletionSignaled() {
		return HaltCompleted, true
	}

	return HaltNone, false
}

// CompletedStacks implements StopCondition.
func (CompletionSignal) CompletedStacks(w *robot.World) int {
	return w.Front
}

// FullStackTarget stops a run when enough cells hold a full stack, or when no
// partial stack is left to take from or drop onto.
type FullStackTarget struct{}

// Evaluate implements StopCondition.
func (FullStackTarget) Evaluate(w *robot.World) (HaltReason, bool) {
	if w.Boxes.CountExactly(w.Boxes.MaxHeight()) >= w.Params.TargetStacks {
		return HaltCompleted, true
	}

	if w.Boxes.CountPartial() == 0 {
		return HaltNoProgress, true
	}

	return HaltNone, false
}

// CompletedStacks implements StopCondition.
func (FullStackTarget) CompletedStacks(w *robot.World) int {
	return w.Boxes.CountExactly(w.Boxes.MaxHeight())
}

// StopConditionFor returns the stop condition that goes with a policy.
func StopConditionFor(p config.Policy) StopCondition {
	if p == config.PolicyCooldown {
		return FullStackTarget{}
	}

	return CompletionSignal{}
}
