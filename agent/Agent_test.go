package agent

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nameisalfio/q-learning-maze-robot/agent/policy"
	env "github.com/nameisalfio/q-learning-maze-robot/environment"
	"github.com/nameisalfio/q-learning-maze-robot/state"
)

func testConfig() Config {
	return Config{
		LearningRate:    0.5,
		LRDecay:         0.9,
		MinLearningRate: 0.1,
		Discount:        0.9,
	}
}

func newTestAgent(t *testing.T) *Agent {
	t.Helper()
	strategy, err := policy.New(policy.Config{
		Name:         policy.EGreedyName,
		Epsilon:      0.0,
		EpsilonDecay: 0.99,
		MinEpsilon:   0.0,
		Seed:         13,
	})
	require.NoError(t, err)

	a, err := New(testConfig(), strategy)
	require.NoError(t, err)
	return a
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }},
		{"learning rate above one", func(c *Config) { c.LearningRate = 1.5 }},
		{"zero decay", func(c *Config) { c.LRDecay = 0 }},
		{"floor above rate", func(c *Config) { c.MinLearningRate = 0.9 }},
		{"discount above one", func(c *Config) { c.Discount = 1.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestUnvisitedPairsDefaultToZero(t *testing.T) {
	a := newTestAgent(t)
	s := state.State{X: 3, Y: 4}

	_, ok := a.table.Lookup(s)
	assert.False(t, ok, "no row should exist before first access")

	for _, q := range a.table.Row(s) {
		assert.Equal(t, 0.0, q)
	}
}

func TestOptimisticInitialValue(t *testing.T) {
	strategy := policy.NewUCB(1.0)
	c := testConfig()
	c.OptimisticInit = 0.5

	a, err := New(c, strategy)
	require.NoError(t, err)

	for _, q := range a.table.Row(state.State{}) {
		assert.Equal(t, 0.5, q)
	}
}

func TestUpdateMatchesExactFormula(t *testing.T) {
	a := newTestAgent(t)
	s := state.State{X: 0, Y: 0}
	next := state.State{X: 1, Y: 0}

	// First backup from an all-zero table: target = r, Q moves by α·r.
	a.Update(s, env.Right, 10.0, next, false)
	assert.InDelta(t, 5.0, a.table.Row(s)[env.Right], 1e-12)

	// Give the next state a known value through a terminal backup.
	a.Update(next, env.Up, 100.0, state.State{X: 9}, true)
	assert.InDelta(t, 50.0, a.table.Row(next)[env.Up], 1e-12)

	// Non-terminal backup bootstraps from max_a' Q(next, a').
	// target = 0 + 0.9·50 = 45; Q = 5 + 0.5·(45−5) = 25.
	a.Update(s, env.Right, 0.0, next, false)
	assert.InDelta(t, 25.0, a.table.Row(s)[env.Right], 1e-12)
}

func TestUpdateMovesStrictlyTowardTarget(t *testing.T) {
	a := newTestAgent(t)
	s := state.State{}
	next := state.State{X: 1}

	target := 10.0
	previous := a.table.Row(s)[env.Up]
	for i := 0; i < 20; i++ {
		a.Update(s, env.Up, target, next, true)
		q := a.table.Row(s)[env.Up]
		assert.Greater(t, q, previous)
		assert.LessOrEqual(t, q, target)
		previous = q
	}
}

func TestTerminalUpdateClosesOffBootstrapping(t *testing.T) {
	a := newTestAgent(t)
	s := state.State{}
	next := state.State{X: 1}

	// Load the next state with a large value, then verify a terminal
	// backup ignores it.
	a.Update(next, env.Up, 1000.0, state.State{X: 2}, true)

	a.Update(s, env.Down, -1.0, next, true)
	assert.InDelta(t, -0.5, a.table.Row(s)[env.Down], 1e-12)
}

func TestLearningRateDecaysToFloor(t *testing.T) {
	a := newTestAgent(t)

	previous := a.LearningRate()
	for i := 0; i < 50; i++ {
		a.EndEpisode()
		assert.LessOrEqual(t, a.LearningRate(), previous)
		previous = a.LearningRate()
	}
	assert.Equal(t, 0.1, a.LearningRate())
}

func TestUpdatePanicsOnInvalidAction(t *testing.T) {
	a := newTestAgent(t)
	assert.Panics(t, func() {
		a.Update(state.State{}, env.Action(7), 0, state.State{}, false)
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")

	strategy := policy.NewCuriosity(0.4, 0.99, 0.05, 3.0, 21)
	a, err := New(testConfig(), strategy)
	require.NoError(t, err)

	// Accumulate some state worth preserving.
	s1, s2 := state.State{X: 1, Y: 1}, state.State{X: 2, Y: 1}
	for i := 0; i < 10; i++ {
		action := a.SelectAction(s1)
		a.Update(s1, action, -1.0, s2, false)
	}
	a.EndEpisode()
	require.NoError(t, a.Save(path))

	restored, err := New(testConfig(), policy.NewCuriosity(0, 1, 0, 0, 21))
	require.NoError(t, err)
	require.NoError(t, restored.Load(path))

	assert.Equal(t, a.table.states, restored.table.states)
	assert.Equal(t, a.table.values, restored.table.values)
	assert.Equal(t, a.table.index, restored.table.index)
	assert.Equal(t, a.LearningRate(), restored.LearningRate())
	assert.Equal(t, a.RunID(), restored.RunID())
	assert.Equal(t, a.Strategy().Snapshot(), restored.Strategy().Snapshot())
}

func TestLoadRejectsVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")

	file, err := os.Create(path)
	require.NoError(t, err)
	blob := modelBlob{Version: blobVersion + 1}
	require.NoError(t, gob.NewEncoder(file).Encode(blob))
	require.NoError(t, file.Close())

	a := newTestAgent(t)
	err = a.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestLoadRejectsStrategyMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")

	ucbAgent, err := New(testConfig(), policy.NewUCB(2.0))
	require.NoError(t, err)
	require.NoError(t, ucbAgent.Save(path))

	egreedyAgent := newTestAgent(t)
	assert.Error(t, egreedyAgent.Load(path))
}

func TestGreedyActionPicksBestWithoutSideEffects(t *testing.T) {
	a := newTestAgent(t)
	s := state.State{X: 1, Y: 1}

	row := a.table.Row(s)
	row[env.Left] = 2.0
	row[env.Down] = 1.0
	states := a.States()

	assert.Equal(t, env.Left, a.GreedyAction(s))
	assert.Equal(t, env.Up, a.GreedyAction(state.State{X: 9, Y: 9}),
		"unseen state falls back to the first action")
	assert.Equal(t, states, a.States(), "greedy lookups must not grow the table")
}
