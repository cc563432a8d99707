// Package simulator implements a deterministic in-process stand-in for
// the externally owned maze simulator. It speaks exactly the bus
// protocol the real simulator does: it watches the command topics,
// applies the requested move on a grid maze, publishes the confirmed
// pose and event flags, and only then echoes the command's sequence
// number.
//
// The real simulator runs on its own clock; this one instead reacts
// synchronously inside Publish, which makes tests and demo runs fast
// and fully deterministic while leaving the environment's
// wait-and-correlate discipline completely exercised.
package simulator

import (
	"fmt"

	"github.com/nameisalfio/q-learning-maze-robot/bus"
	env "github.com/nameisalfio/q-learning-maze-robot/environment"
)

// Cell addresses one square of the grid maze.
type Cell struct {
	X int
	Y int
}

// Config describes the maze the simulator runs.
type Config struct {
	// Layout is the maze grid indexed [y][x]: 1 is a wall, 0 a free
	// cell. All rows must share one width.
	Layout [][]int

	// Start and Goal are free cells of the layout.
	Start Cell
	Goal  Cell

	// Checkpoints are intermediate cells; entering Checkpoints[i]
	// reports checkpoint id i+1.
	Checkpoints []Cell

	// CellSize scales cell coordinates to the continuous pose the
	// simulator reports.
	CellSize float64
}

// Validate ensures the layout is rectangular and the named cells are
// inside it and free.
func (c Config) Validate() error {
	if len(c.Layout) == 0 || len(c.Layout[0]) == 0 {
		return fmt.Errorf("simulator: empty layout")
	}
	width := len(c.Layout[0])
	for y, row := range c.Layout {
		if len(row) != width {
			return fmt.Errorf("simulator: ragged layout at row %d", y)
		}
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("simulator: cell size must be positive, got %v", c.CellSize)
	}
	for _, named := range append([]Cell{c.Start, c.Goal}, c.Checkpoints...) {
		if named.Y < 0 || named.Y >= len(c.Layout) ||
			named.X < 0 || named.X >= width {
			return fmt.Errorf("simulator: cell %+v outside layout", named)
		}
		if c.Layout[named.Y][named.X] != 0 {
			return fmt.Errorf("simulator: cell %+v is a wall", named)
		}
	}
	return nil
}

// Grid wraps an inner bus and plays the simulator's half of the
// protocol. The learning side uses it as its bus.Bus; publishes of the
// command topics trigger the simulated physics before they return.
type Grid struct {
	inner bus.Bus
	cfg   Config

	pos  Cell
	tick float64
}

// New creates a Grid simulator over the inner bus.
func New(inner bus.Bus, cfg Config) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Grid{inner: inner, cfg: cfg, pos: cfg.Start}, nil
}

// Publish forwards to the inner bus, then reacts to the command topics
// the way the external simulator would on its next frame.
func (g *Grid) Publish(topic string, value float64) error {
	if err := g.inner.Publish(topic, value); err != nil {
		return err
	}
	switch topic {
	case bus.TopicReset:
		return g.handleReset(value)
	case bus.TopicStepSeq:
		return g.handleStep(value)
	}
	return nil
}

// Read forwards to the inner bus.
func (g *Grid) Read(topic string) (float64, bool, error) {
	return g.inner.Read(topic)
}

func (g *Grid) handleReset(seq float64) error {
	g.pos = g.cfg.Start
	if err := g.publishFrame(false); err != nil {
		return err
	}
	// The acknowledgment goes out only after the full frame, exactly
	// like the real simulator confirming a completed reset.
	return g.inner.Publish(bus.TopicResetAck, seq)
}

func (g *Grid) handleStep(seq float64) error {
	value, ok, err := g.inner.Read(bus.TopicAction)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("simulator: step sequence %v without action", seq)
	}

	collision := g.move(env.Action(value))
	if err := g.publishFrame(collision); err != nil {
		return err
	}
	return g.inner.Publish(bus.TopicAckSeq, seq)
}

// move applies the action, staying in place on a wall hit or an
// attempt to leave the grid. It reports whether a collision happened.
func (g *Grid) move(a env.Action) bool {
	target := g.pos
	switch a {
	case env.Up:
		target.Y++
	case env.Down:
		target.Y--
	case env.Left:
		target.X--
	case env.Right:
		target.X++
	}

	if target.Y < 0 || target.Y >= len(g.cfg.Layout) ||
		target.X < 0 || target.X >= len(g.cfg.Layout[0]) ||
		g.cfg.Layout[target.Y][target.X] != 0 {
		return true
	}
	g.pos = target
	return false
}

// publishFrame publishes the confirmed pose and the event flags for
// the just-completed command.
func (g *Grid) publishFrame(collision bool) error {
	g.tick++

	frame := []struct {
		topic string
		value float64
	}{
		{bus.TopicX, float64(g.pos.X) * g.cfg.CellSize},
		{bus.TopicY, float64(g.pos.Y) * g.cfg.CellSize},
		{bus.TopicTheta, 0},
		{bus.TopicCollision, flag(collision)},
		{bus.TopicGoal, flag(g.pos == g.cfg.Goal)},
		{bus.TopicCheckpoint, float64(g.checkpointAt(g.pos))},
		{bus.TopicTick, g.tick},
	}
	for _, kv := range frame {
		if err := g.inner.Publish(kv.topic, kv.value); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grid) checkpointAt(c Cell) int {
	for i, cp := range g.cfg.Checkpoints {
		if cp == c {
			return i + 1
		}
	}
	return 0
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
