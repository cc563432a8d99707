package experiment

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nameisalfio/q-learning-maze-robot/agent"
	"github.com/nameisalfio/q-learning-maze-robot/agent/policy"
	"github.com/nameisalfio/q-learning-maze-robot/bus"
	env "github.com/nameisalfio/q-learning-maze-robot/environment"
	"github.com/nameisalfio/q-learning-maze-robot/environment/maze"
	"github.com/nameisalfio/q-learning-maze-robot/experiment/trackers"
	"github.com/nameisalfio/q-learning-maze-robot/metric"
	"github.com/nameisalfio/q-learning-maze-robot/simulator"
	"github.com/nameisalfio/q-learning-maze-robot/state"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openGrid wires a maze environment to an open simulated grid with the
// goal in the far corner.
func openGrid(t *testing.T, size int, maxSteps int) env.Environment {
	t.Helper()

	layout := make([][]int, size)
	for y := range layout {
		layout[y] = make([]int, size)
	}
	sim, err := simulator.New(bus.NewMemory(), simulator.Config{
		Layout:   layout,
		Start:    simulator.Cell{X: 0, Y: 0},
		Goal:     simulator.Cell{X: size - 1, Y: size - 1},
		CellSize: 10.0,
	})
	require.NoError(t, err)

	encoder, err := state.NewEncoder(10.0, 0)
	require.NoError(t, err)

	m, err := maze.New(sim, encoder, maze.Config{
		Rewards: maze.Rewards{
			StepCost:         -1.0,
			CollisionPenalty: -13.0,
			LoopPenalty:      0,
			GoalReward:       100.0,
			StreakBonus:      0,
		},
		MaxSteps:       maxSteps,
		CollisionLimit: 1000,
		TraceWindow:    1,
		StepTimeout:    time.Second,
		PollInterval:   time.Millisecond,
	}, discard())
	require.NoError(t, err)
	return m
}

func newTestAgent(t *testing.T, seed uint64) *agent.Agent {
	t.Helper()
	strategy, err := policy.New(policy.Config{
		Name:         policy.EGreedyName,
		Epsilon:      0.3,
		EpsilonDecay: 0.99,
		MinEpsilon:   0.05,
		Seed:         seed,
	})
	require.NoError(t, err)

	a, err := agent.New(agent.Config{
		LearningRate:    0.5,
		LRDecay:         1.0,
		MinLearningRate: 0.5,
		Discount:        0.9,
	}, strategy)
	require.NoError(t, err)
	return a
}

func TestConfigValidation(t *testing.T) {
	valid := Config{Episodes: 10, SuccessWindow: 5, LogEvery: 1}
	require.NoError(t, valid.Validate())

	for name, cfg := range map[string]Config{
		"zero episodes":   {Episodes: 0, SuccessWindow: 5, LogEvery: 1},
		"zero window":     {Episodes: 10, SuccessWindow: 0, LogEvery: 1},
		"zero log every":  {Episodes: 10, SuccessWindow: 5, LogEvery: 0},
		"negative window": {Episodes: 10, SuccessWindow: -1, LogEvery: 1},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRunEpisodeProducesRecord(t *testing.T) {
	environment := openGrid(t, 3, 200)
	a := newTestAgent(t, 7)

	o, err := NewOnline(environment, a, Config{
		Episodes: 1, SuccessWindow: 10, LogEvery: 100,
	}, discard())
	require.NoError(t, err)

	record, err := o.RunEpisode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, record.Number)
	assert.Positive(t, record.Steps)
	assert.NotEqual(t, env.OutcomeNone, record.Outcome)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	environment := openGrid(t, 3, 200)
	a := newTestAgent(t, 7)

	o, err := NewOnline(environment, a, Config{
		Episodes: 1000, SuccessWindow: 10, LogEvery: 100,
	}, discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, o.Run(ctx), context.Canceled)
}

func TestRunSurvivesTransportTimeout(t *testing.T) {
	// A bare bus never acknowledges anything: every episode is lost to
	// a transport fault, but the run itself must complete.
	encoder, err := state.NewEncoder(10.0, 0)
	require.NoError(t, err)
	m, err := maze.New(bus.NewMemory(), encoder, maze.Config{
		Rewards:        maze.DefaultRewards(),
		MaxSteps:       10,
		CollisionLimit: 3,
		TraceWindow:    6,
		StepTimeout:    10 * time.Millisecond,
		PollInterval:   time.Millisecond,
	}, discard())
	require.NoError(t, err)

	returnsPath := filepath.Join(t.TempDir(), "returns.bin")
	o, err := NewOnline(m, newTestAgent(t, 7), Config{
		Episodes: 3, SuccessWindow: 10, LogEvery: 100,
	}, discard(), trackers.NewReturn(returnsPath))
	require.NoError(t, err)

	require.NoError(t, o.Run(context.Background()))
	assert.Equal(t, 0.0, o.SuccessRate())
	require.NoError(t, o.Save())

	// Lost episodes still produce records, so resuming analysis stays
	// aligned with the episode counter.
	returns, err := trackers.LoadFloats(returnsPath)
	require.NoError(t, err)
	assert.Len(t, returns, 3)
}

func TestTrackersRecordEveryEpisode(t *testing.T) {
	environment := openGrid(t, 3, 200)
	a := newTestAgent(t, 11)

	dir := t.TempDir()
	returnsPath := filepath.Join(dir, "returns.bin")
	lengthsPath := filepath.Join(dir, "lengths.bin")
	successPath := filepath.Join(dir, "success.bin")

	o, err := NewOnline(environment, a, Config{
		Episodes: 5, SuccessWindow: 10, LogEvery: 100,
	}, discard(),
		trackers.NewReturn(returnsPath),
		trackers.NewEpisodeLength(lengthsPath),
		trackers.NewSuccess(successPath))
	require.NoError(t, err)
	o.Instrument(metric.New(prometheus.NewRegistry()))

	require.NoError(t, o.Run(context.Background()))
	require.NoError(t, o.Save())

	returns, err := trackers.LoadFloats(returnsPath)
	require.NoError(t, err)
	lengths, err := trackers.LoadFloats(lengthsPath)
	require.NoError(t, err)
	successes, err := trackers.LoadFloats(successPath)
	require.NoError(t, err)

	assert.Len(t, returns, 5)
	assert.Len(t, lengths, 5)
	assert.Len(t, successes, 5)
	for _, s := range successes {
		assert.Contains(t, []float64{0, 1}, s)
	}
}

// With a small open grid, a deterministic simulator and enough
// episodes, Q-learning must converge to the shortest path: four moves
// from corner to corner on a 3x3 grid.
func TestLearnsShortestPathOnSmallGrid(t *testing.T) {
	environment := openGrid(t, 3, 100)
	a := newTestAgent(t, 42)

	o, err := NewOnline(environment, a, Config{
		Episodes: 300, SuccessWindow: 50, LogEvery: 1000,
	}, discard())
	require.NoError(t, err)
	require.NoError(t, o.Run(context.Background()))

	report, err := Evaluate(context.Background(), environment, a, 5, discard())
	require.NoError(t, err)
	assert.Equal(t, 1.0, report.SuccessRate)
	assert.Equal(t, 4.0, report.MeanSteps, "greedy policy must take the shortest path")
	// Four step costs, the last one offset by the goal reward.
	assert.Equal(t, -4.0+100.0, report.MeanReturn)
}

func TestStatsSummariseTheRun(t *testing.T) {
	environment := openGrid(t, 3, 100)
	a := newTestAgent(t, 17)

	o, err := NewOnline(environment, a, Config{
		Episodes: 20, SuccessWindow: 10, LogEvery: 1000,
	}, discard())
	require.NoError(t, err)

	assert.Equal(t, Stats{}, o.Stats(), "fresh run has nothing to report")

	require.NoError(t, o.Run(context.Background()))

	stats := o.Stats()
	assert.Equal(t, 20, stats.Episodes)
	assert.Equal(t, 9, stats.States, "every cell of the grid gets visited")
	assert.GreaterOrEqual(t, stats.BestReturn, stats.MeanReturn)
	assert.GreaterOrEqual(t, stats.SuccessRate, 0.0)
	assert.LessOrEqual(t, stats.SuccessRate, 1.0)
}

func TestEvaluateDoesNotLearn(t *testing.T) {
	environment := openGrid(t, 3, 100)
	a := newTestAgent(t, 42)

	o, err := NewOnline(environment, a, Config{
		Episodes: 50, SuccessWindow: 50, LogEvery: 1000,
	}, discard())
	require.NoError(t, err)
	require.NoError(t, o.Run(context.Background()))

	statesBefore := a.States()
	alphaBefore := a.LearningRate()

	_, err = Evaluate(context.Background(), environment, a, 3, discard())
	require.NoError(t, err)

	assert.Equal(t, statesBefore, a.States())
	assert.Equal(t, alphaBefore, a.LearningRate())
}
