// Package maze implements the bus-backed maze environment: it turns a
// chosen action into one externally verified state transition, shapes
// the reward, and decides episode termination.
//
// The environment never moves the robot itself. It publishes commands
// on the shared last-value-wins bus, then polls until the simulator
// echoes the command's sequence number. Only after that correlation is
// confirmed does it read the pose and event topics and commit the
// transition, so a step can never advance on data left over from a
// previous action.
package maze

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nameisalfio/q-learning-maze-robot/bus"
	env "github.com/nameisalfio/q-learning-maze-robot/environment"
	"github.com/nameisalfio/q-learning-maze-robot/state"
)

const (
	// DefaultStepTimeout bounds the wait for a correlated simulator
	// update before a step fails with a transport fault.
	DefaultStepTimeout = 30 * time.Second

	// DefaultPollInterval is the pause between bus reads while waiting
	// for a correlation echo.
	DefaultPollInterval = 20 * time.Millisecond

	// DefaultTraceWindow is the length of the sliding window of recent
	// states used for loop detection.
	DefaultTraceWindow = 6
)

// Config collects the episode limits and transport bounds for a Maze.
type Config struct {
	Rewards        Rewards
	MaxSteps       int           // per-episode step cap
	CollisionLimit int           // collisions that end the episode
	TraceWindow    int           // loop-detection window length
	StepTimeout    time.Duration // bound on one correlated wait
	PollInterval   time.Duration // pause between bus polls
}

// Validate ensures the configuration describes a runnable environment.
func (c Config) Validate() error {
	if err := c.Rewards.Validate(); err != nil {
		return err
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("maze: max steps must be positive, got %d", c.MaxSteps)
	}
	if c.CollisionLimit <= 0 {
		return fmt.Errorf("maze: collision limit must be positive, got %d", c.CollisionLimit)
	}
	if c.TraceWindow <= 0 {
		return fmt.Errorf("maze: trace window must be positive, got %d", c.TraceWindow)
	}
	if c.StepTimeout <= 0 {
		return fmt.Errorf("maze: step timeout must be positive, got %v", c.StepTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("maze: poll interval must be positive, got %v", c.PollInterval)
	}
	return nil
}

// Maze is the environment over the transport bridge. All methods run
// on the single control goroutine; the only concurrency it observes is
// the simulator asynchronously overwriting bus topics.
type Maze struct {
	bus     bus.Bus
	encoder state.Encoder
	logger  *slog.Logger
	config  Config

	// seq numbers every published command across engagement with the
	// simulator, never resetting between episodes, so an echo can never
	// be confused with one from an earlier command.
	seq float64

	// Per-episode bookkeeping, rebuilt by Reset.
	steps          int
	collisions     int
	streak         int
	nextCheckpoint int
	inLoop         bool
	trace          *trace
}

// New creates a Maze over the given bus.
func New(b bus.Bus, encoder state.Encoder, config Config, logger *slog.Logger) (*Maze, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Maze{
		bus:     b,
		encoder: encoder,
		logger:  logger,
		config:  config,
		trace:   newTrace(config.TraceWindow),
	}, nil
}

// Reset starts a new episode: it clears the per-episode bookkeeping,
// commands the simulator to reset, waits for the confirmation echo and
// returns the encoded initial state.
func (m *Maze) Reset(ctx context.Context) (state.State, error) {
	m.steps = 0
	m.collisions = 0
	m.streak = 0
	m.nextCheckpoint = 1
	m.inLoop = false
	m.trace.clear()

	if err := m.bus.Publish(bus.TopicResetCheckpoints, 1); err != nil {
		return state.State{}, err
	}

	m.seq++
	if err := m.bus.Publish(bus.TopicReset, m.seq); err != nil {
		return state.State{}, err
	}
	if err := m.awaitEcho(ctx, bus.TopicResetAck, m.seq); err != nil {
		return state.State{}, fmt.Errorf("maze: reset: %w", err)
	}

	s, err := m.readState()
	if err != nil {
		return state.State{}, err
	}
	m.trace.push(s)

	m.logger.Debug("episode reset", "state", s.String())
	return s, nil
}

// Step publishes the action, waits for the simulator's correlated
// confirmation, and commits the resulting transition. A missing
// confirmation within the configured bound aborts the step with
// environment.ErrTransportTimeout instead of hanging.
//
// Step panics on an action outside the fixed set: that is a
// programming-contract violation, never an expected runtime condition.
func (m *Maze) Step(ctx context.Context, a env.Action) (env.StepResult, error) {
	if !a.Valid() {
		panic(fmt.Sprintf("maze: invalid action %d", int(a)))
	}

	if err := m.bus.Publish(bus.TopicAction, float64(a)); err != nil {
		return env.StepResult{}, err
	}
	m.seq++
	if err := m.bus.Publish(bus.TopicStepSeq, m.seq); err != nil {
		return env.StepResult{}, err
	}
	if err := m.awaitEcho(ctx, bus.TopicAckSeq, m.seq); err != nil {
		return env.StepResult{}, fmt.Errorf("maze: step %v: %w", a, err)
	}

	m.steps++

	next, err := m.readState()
	if err != nil {
		return env.StepResult{}, err
	}
	collision, err := m.readFlag(bus.TopicCollision)
	if err != nil {
		return env.StepResult{}, err
	}
	goal, err := m.readFlag(bus.TopicGoal)
	if err != nil {
		return env.StepResult{}, err
	}
	checkpoint, err := m.readCheckpoint()
	if err != nil {
		return env.StepResult{}, err
	}

	reward, claimed := m.shapeReward(next, collision, goal, checkpoint)

	info := env.Info{
		Outcome:    m.outcome(goal),
		Steps:      m.steps,
		Streak:     m.streak,
		Collisions: m.collisions,
		Checkpoint: claimed,
		Collision:  collision,
	}

	result := env.StepResult{
		State:  next,
		Reward: reward,
		Done:   info.Outcome != env.OutcomeNone,
		Info:   info,
	}
	if result.Done {
		m.logger.Debug("episode finished",
			"outcome", info.Outcome.String(),
			"steps", info.Steps,
			"collisions", info.Collisions)
	}
	return result, nil
}

// shapeReward computes the shaped reward for the transition into next
// and updates the streak, collision, checkpoint and loop bookkeeping.
// It returns the reward and the checkpoint id claimed this step, if
// any.
func (m *Maze) shapeReward(next state.State, collision, goal bool, checkpoint int) (float64, int) {
	r := m.config.Rewards

	reward := r.StepCost

	// The streak that counts toward the goal bonus is the one built up
	// before this step.
	preStreak := m.streak

	if collision {
		reward += r.CollisionPenalty
		m.collisions++
		m.streak = 0
	} else {
		m.streak++
	}

	claimed := 0
	if checkpoint == m.nextCheckpoint && checkpoint <= len(r.CheckpointBonuses) {
		reward += r.CheckpointBonuses[checkpoint-1]
		claimed = checkpoint
		m.nextCheckpoint++
		m.logger.Info("checkpoint reached",
			"id", checkpoint,
			"bonus", r.CheckpointBonuses[checkpoint-1])
	}

	if goal {
		reward += r.GoalReward + r.StreakBonus*float64(preStreak)
	}

	// The loop penalty fires once per re-entry into the window, not on
	// every step spent inside a detected cycle.
	if m.trace.contains(next) {
		if !m.inLoop {
			reward += r.LoopPenalty
			m.logger.Debug("loop detected", "state", next.String())
		}
		m.inLoop = true
	} else {
		m.inLoop = false
	}
	m.trace.push(next)

	return reward, claimed
}

// outcome decides termination: the goal ends the episode successfully,
// the collision budget and the step cap end it as failures.
func (m *Maze) outcome(goal bool) env.Outcome {
	switch {
	case goal:
		return env.OutcomeGoal
	case m.collisions >= m.config.CollisionLimit:
		return env.OutcomeCollisionLimit
	case m.steps >= m.config.MaxSteps:
		return env.OutcomeStepLimit
	default:
		return env.OutcomeNone
	}
}

// awaitEcho polls topic until the simulator echoes want. The bus never
// blocks, so the bounded wait lives here: the poll gives up with
// environment.ErrTransportTimeout after the configured step timeout, or
// earlier if ctx is cancelled.
func (m *Maze) awaitEcho(ctx context.Context, topic string, want float64) error {
	deadline := time.NewTimer(m.config.StepTimeout)
	defer deadline.Stop()
	poll := time.NewTicker(m.config.PollInterval)
	defer poll.Stop()

	for {
		got, ok, err := m.bus.Read(topic)
		if err != nil {
			return err
		}
		if ok && got == want {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%s: %w", topic, env.ErrTransportTimeout)
		case <-poll.C:
		}
	}
}

// readState reads the confirmed pose and encodes it. Pose topics are
// published by the simulator before the acknowledgment echo, so an
// absent topic here means the simulator violated the protocol.
func (m *Maze) readState() (state.State, error) {
	x, err := m.readPose(bus.TopicX)
	if err != nil {
		return state.State{}, err
	}
	y, err := m.readPose(bus.TopicY)
	if err != nil {
		return state.State{}, err
	}
	theta, err := m.readPose(bus.TopicTheta)
	if err != nil {
		return state.State{}, err
	}
	return m.encoder.Encode(x, y, theta), nil
}

func (m *Maze) readPose(topic string) (float64, error) {
	value, ok, err := m.bus.Read(topic)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("maze: %s absent after acknowledgment: %w",
			topic, env.ErrTransportTimeout)
	}
	return value, nil
}

// readFlag reads a 0/1 event topic; anything other than exactly 1 is
// treated as unset, so a malformed or absent flag can never fabricate
// an event.
func (m *Maze) readFlag(topic string) (bool, error) {
	value, ok, err := m.bus.Read(topic)
	if err != nil {
		return false, err
	}
	return ok && value == 1, nil
}

// readCheckpoint reads the id of the checkpoint the simulator reports
// for this step, 0 when none. Fractional or negative ids are malformed
// messages: dropped, logged, treated as absent.
func (m *Maze) readCheckpoint() (int, error) {
	value, ok, err := m.bus.Read(bus.TopicCheckpoint)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	id := int(value)
	if float64(id) != value || id < 0 {
		m.logger.Warn("dropping malformed checkpoint id", "raw", value)
		return 0, nil
	}
	return id, nil
}
