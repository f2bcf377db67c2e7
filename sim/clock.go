package sim

import (
	"fmt"
	"sync"
)

// HaltReason tells why a model stopped running.
type HaltReason int

const (
	// HaltNone means the model is still running.
	HaltNone HaltReason = iota
	// HaltIterationCap means the tick counter reached the iteration limit.
	HaltIterationCap
	// HaltCompleted means the policy's completion threshold was met.
	HaltCompleted
	// HaltNoProgress means no box can be moved by the policy any more.
	HaltNoProgress
	// HaltError means a robot step failed.
	HaltError
)

func (r HaltReason) String() string {
	switch r {
	case HaltNone:
		return "none"
	case HaltIterationCap:
		return "iteration_cap"
	case HaltCompleted:
		return "completed"
	case HaltNoProgress:
		return "no_progress"
	case HaltError:
		return "error"
	default:
		return fmt.Sprintf("HaltReason(%d)", int(r))
	}
}

// MarshalText encodes the reason by name.
func (r HaltReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a reason written by MarshalText.
func (r *HaltReason) UnmarshalText(text []byte) error {
	for c := HaltNone; c <= HaltError; c++ {
		if c.String() == string(text) {
			*r = c
			return nil
		}
	}

	return fmt.Errorf("unknown halt reason %q", string(text))
}

// Clock counts ticks and owns the running flag of a model. Once halted, a
// clock never runs again.
type Clock struct {
	lock          sync.RWMutex
	now           int
	maxIterations int
	running       bool
	reason        HaltReason
}

// NewClock creates a running clock that halts after maxIterations ticks.
func NewClock(maxIterations int) *Clock {
	c := &Clock{
		maxIterations: maxIterations,
		running:       true,
	}

	if maxIterations <= 0 {
		c.running = false
		c.reason = HaltIterationCap
	}

	return c
}

// Now returns the number of completed ticks.
func (c *Clock) Now() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.now
}

// MaxIterations returns the tick limit.
func (c *Clock) MaxIterations() int {
	return c.maxIterations
}

// Running reports whether more ticks may run.
func (c *Clock) Running() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.running
}

// Reason returns why the clock halted, or HaltNone while it runs.
func (c *Clock) Reason() HaltReason {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.reason
}

// Advance counts one finished tick and halts the clock at the limit. A clock
// that already halted for another reason keeps that reason.
func (c *Clock) Advance() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.now++

	if c.running && c.now >= c.maxIterations {
		c.running = false
		c.reason = HaltIterationCap
	}
}

// Halt stops the clock. It returns false if the clock was already halted.
func (c *Clock) Halt(reason HaltReason) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if !c.running {
		return false
	}

	c.running = false
	c.reason = reason

	return true
}
