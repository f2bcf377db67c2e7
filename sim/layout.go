package sim

import (
	"fmt"

	"github.com/sarchlab/boxstack/config"
	"github.com/sarchlab/boxstack/grid"
	"github.com/sarchlab/boxstack/robot"
	"github.com/sarchlab/boxstack/rng"
)

// RobotPlacement is the starting state of one robot in a Layout.
type RobotPlacement struct {
	Pos      grid.Coord
	Carrying bool
}

// Layout fixes the initial world instead of drawing it at random. Robots get
// IDs in slice order. Boxes maps cells to stack heights.
type Layout struct {
	Robots []RobotPlacement
	Boxes  map[grid.Coord]int
}

// TotalBoxes counts the boxes of the layout, carried ones included.
func (l Layout) TotalBoxes() int {
	total := 0
	for _, h := range l.Boxes {
		total += h
	}

	for _, r := range l.Robots {
		if r.Carrying {
			total++
		}
	}

	return total
}

func (l Layout) validate(cfg config.Config) error {
	if len(l.Robots) == 0 {
		return &config.ConfigurationError{Field: "layout", Reason: "has no robots"}
	}

	seen := make(map[grid.Coord]bool, len(l.Robots))
	for i, r := range l.Robots {
		if !inBounds(cfg, r.Pos) {
			return &config.ConfigurationError{
				Field:  "layout",
				Reason: fmt.Sprintf("robot %d at %s is off the grid", i, r.Pos),
			}
		}

		if seen[r.Pos] {
			return &config.ConfigurationError{
				Field:  "layout",
				Reason: fmt.Sprintf("robot %d shares %s with another robot", i, r.Pos),
			}
		}

		seen[r.Pos] = true
	}

	for pos, h := range l.Boxes {
		if !inBounds(cfg, pos) {
			return &config.ConfigurationError{
				Field:  "layout",
				Reason: fmt.Sprintf("stack at %s is off the grid", pos),
			}
		}

		if h < 0 || h > cfg.MaxStackHeight {
			return &config.ConfigurationError{
				Field: "layout",
				Reason: fmt.Sprintf("stack at %s has height %d outside [0, %d]",
					pos, h, cfg.MaxStackHeight),
			}
		}
	}

	return nil
}

func inBounds(cfg config.Config, pos grid.Coord) bool {
	return pos.X >= 0 && pos.X < cfg.Grid.Width &&
		pos.Y >= 0 && pos.Y < cfg.Grid.Height
}

func (l Layout) apply(w *robot.World) []*robot.Robot {
	robots := make([]*robot.Robot, 0, len(l.Robots))

	for id, p := range l.Robots {
		mustPlace(w.Grid.Place(id, p.Pos))

		r := robot.New(id, p.Pos)
		r.Carrying = p.Carrying
		robots = append(robots, r)
	}

	for pos, h := range l.Boxes {
		for i := 0; i < h; i++ {
			mustPlace(w.Boxes.Put(pos))
		}
	}

	return robots
}

// placeRandomly draws robot cells first and box cells second, each by
// rejection sampling over the whole grid. Boxes land only on cells with no
// robot and no box.
func placeRandomly(cfg config.Config, w *robot.World, src rng.Source) []*robot.Robot {
	robots := make([]*robot.Robot, 0, cfg.NumAgents)

	for id := 0; id < cfg.NumAgents; id++ {
		pos := randomCell(cfg, src, w.Grid.IsEmpty)
		mustPlace(w.Grid.Place(id, pos))
		robots = append(robots, robot.New(id, pos))
	}

	for i := 0; i < cfg.NumBoxes; i++ {
		pos := randomCell(cfg, src, func(c grid.Coord) bool {
			return w.Grid.IsEmpty(c) && w.Boxes.Height(c) == 0
		})
		mustPlace(w.Boxes.Put(pos))
	}

	return robots
}

func randomCell(
	cfg config.Config,
	src rng.Source,
	accept func(grid.Coord) bool,
) grid.Coord {
	for {
		pos := grid.C(src.Intn(cfg.Grid.Width), src.Intn(cfg.Grid.Height))
		if accept(pos) {
			return pos
		}
	}
}

func mustPlace(err error) {
	if err != nil {
		panic(err)
	}
}
