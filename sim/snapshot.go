package sim

import (
	"github.com/sarchlab/boxstack/grid"
	"github.com/sarchlab/boxstack/robot"
)

// RobotView is the externally visible state of a robot.
type RobotView struct {
	ID       int        `json:"id"`
	Pos      grid.Coord `json:"pos"`
	Carrying bool       `json:"carrying"`
	Cooldown int        `json:"cooldown"`
}

// Snapshot is a copy of the model state at a tick boundary.
type Snapshot struct {
	Tick            int         `json:"tick"`
	Running         bool        `json:"running"`
	HaltReason      HaltReason  `json:"halt_reason"`
	CompletedStacks int         `json:"completed_stacks"`
	Robots          []RobotView `json:"robots"`
	Heights         [][]int     `json:"heights"`
}

// Snapshot copies the current state. Heights is indexed [x][y]. Robots are
// ordered by ID.
func (m *Model) Snapshot() Snapshot {
	m.stateLock.RLock()
	defer m.stateLock.RUnlock()

	robots := m.scheduler.Robots()
	views := make([]RobotView, 0, len(robots))

	for _, r := range robots {
		views = append(views, RobotView{
			ID:       r.ID,
			Pos:      r.Pos,
			Carrying: r.Carrying,
			Cooldown: r.Cooldown,
		})
	}

	return Snapshot{
		Tick:            m.clock.Now(),
		Running:         m.clock.Running(),
		HaltReason:      m.clock.Reason(),
		CompletedStacks: m.stop.CompletedStacks(m.world),
		Robots:          views,
		Heights:         m.world.Boxes.Heights(),
	}
}

// Robot returns a copy of the robot with the given ID.
func (m *Model) Robot(id int) (robot.Robot, bool) {
	m.stateLock.RLock()
	defer m.stateLock.RUnlock()

	robots := m.scheduler.Robots()
	if id < 0 || id >= len(robots) {
		return robot.Robot{}, false
	}

	return robots[id].Clone(), true
}

// NumRobots returns the size of the population.
func (m *Model) NumRobots() int {
	return len(m.scheduler.Robots())
}
