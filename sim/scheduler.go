package sim

import (
	"fmt"

	"github.com/sarchlab/boxstack/robot"
	"github.com/sarchlab/boxstack/rng"
)

// Scheduler activates every robot exactly once per tick, in a fresh uniformly
// random order.
type Scheduler struct {
	policy robot.Policy
	rand   rng.Source
	robots []*robot.Robot
}

// NewScheduler creates a scheduler that steps robots with policy.
func NewScheduler(
	policy robot.Policy,
	src rng.Source,
	robots []*robot.Robot,
) *Scheduler {
	return &Scheduler{
		policy: policy,
		rand:   src,
		robots: robots,
	}
}

// Robots returns the scheduled robots ordered by ID.
func (s *Scheduler) Robots() []*robot.Robot {
	return s.robots
}

// Tick steps each robot once. The activation order is drawn from the
// scheduler's source before the first robot moves. after, if not nil, is
// called once per robot right after its step. Tick stops at the first failing
// robot.
func (s *Scheduler) Tick(
	w *robot.World,
	after func(r *robot.Robot, a robot.Action),
) error {
	order := rng.Perm(s.rand, len(s.robots))

	for _, i := range order {
		r := s.robots[i]

		action, err := s.policy.Step(r, w)
		if err != nil {
			return fmt.Errorf("robot %d: %w", r.ID, err)
		}

		if after != nil {
			after(r, action)
		}
	}

	return nil
}
