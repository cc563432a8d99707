// Package policy implements the exploration strategies that decide
// which action the agent takes in a state: epsilon-greedy, upper
// confidence bound, and curiosity-driven selection.
//
// A Strategy owns only its exploration bookkeeping. Q-value estimates
// are passed in per decision and never mutated here; Observe is the
// only mutator of visit counts and Decay the only mutator of epsilon.
package policy

import (
	"fmt"

	env "github.com/nameisalfio/q-learning-maze-robot/environment"
	"github.com/nameisalfio/q-learning-maze-robot/state"
)

// Strategy selects actions given a state and a snapshot of that
// state's Q-values.
type Strategy interface {
	// Choose returns the action to take in s given the current
	// Q-values for s, one per action in the fixed ordering. Choose
	// performs no bookkeeping of its own.
	Choose(s state.State, q []float64) env.Action

	// Observe records that the agent committed to taking a in s. It is
	// called exactly once per decision.
	Observe(s state.State, a env.Action)

	// Decay advances the per-episode exploration schedule. It is
	// invoked once per episode by the trainer.
	Decay()

	// Snapshot captures the strategy's parameters and counters for
	// persistence alongside the Q-table.
	Snapshot() Snapshot

	// Restore replaces the strategy's state with a previously captured
	// snapshot. Restoring a snapshot taken from a different strategy
	// kind fails rather than silently mixing state.
	Restore(Snapshot) error

	// Name identifies the strategy kind in snapshots and logs.
	Name() string
}

// Strategy kinds, the closed set a Config can name.
const (
	EGreedyName   = "egreedy"
	UCBName       = "ucb"
	CuriosityName = "curiosity"
)

// Snapshot is the serializable exploration state stored in the model
// blob: the strategy kind, its numeric parameters, and its visitation
// counters.
type Snapshot struct {
	Name         string
	Epsilon      float64
	NoveltyBonus float64
	Confidence   float64
	Visits       map[state.State][env.NumActions]int
}

// Config selects and parameterizes a strategy at startup.
type Config struct {
	Name         string  `yaml:"name"`
	Epsilon      float64 `yaml:"epsilon"`
	EpsilonDecay float64 `yaml:"epsilon_decay"`
	MinEpsilon   float64 `yaml:"min_epsilon"`
	Confidence   float64 `yaml:"confidence"`    // UCB exploration constant
	NoveltyBonus float64 `yaml:"novelty_bonus"` // curiosity bonus scale
	Seed         uint64  `yaml:"seed"`
}

// Validate ensures the configuration can produce a working strategy.
func (c Config) Validate() error {
	switch c.Name {
	case EGreedyName, CuriosityName:
		if c.Epsilon < 0 || c.Epsilon > 1 {
			return fmt.Errorf("policy: epsilon must be in [0, 1], got %v", c.Epsilon)
		}
		if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
			return fmt.Errorf("policy: epsilon decay must be in (0, 1], got %v", c.EpsilonDecay)
		}
		if c.MinEpsilon < 0 || c.MinEpsilon > c.Epsilon {
			return fmt.Errorf("policy: min epsilon must be in [0, epsilon], got %v", c.MinEpsilon)
		}
		if c.Name == CuriosityName && c.NoveltyBonus < 0 {
			return fmt.Errorf("policy: novelty bonus cannot be negative, got %v", c.NoveltyBonus)
		}
	case UCBName:
		if c.Confidence <= 0 {
			return fmt.Errorf("policy: UCB confidence must be positive, got %v", c.Confidence)
		}
	default:
		return fmt.Errorf("policy: unknown strategy %q", c.Name)
	}
	return nil
}

// New builds the strategy named by the configuration. The set of
// strategies is closed: the choice is made once at startup and the
// returned value is held polymorphically for the lifetime of the run.
func New(c Config) (Strategy, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.Name {
	case EGreedyName:
		return NewEGreedy(c.Epsilon, c.EpsilonDecay, c.MinEpsilon, c.Seed), nil
	case UCBName:
		return NewUCB(c.Confidence), nil
	case CuriosityName:
		return NewCuriosity(c.Epsilon, c.EpsilonDecay, c.MinEpsilon,
			c.NoveltyBonus, c.Seed), nil
	default:
		return nil, fmt.Errorf("policy: unknown strategy %q", c.Name)
	}
}

// visitCounts tracks per-(state, action) selection counts. Counts only
// grow: they are incremented exactly once per committed decision and
// persist across episodes within a run.
type visitCounts map[state.State][env.NumActions]int

func (v visitCounts) add(s state.State, a env.Action) {
	counts := v[s]
	counts[a]++
	v[s] = counts
}

func (v visitCounts) get(s state.State) [env.NumActions]int {
	return v[s]
}

func (v visitCounts) total(s state.State) int {
	counts := v[s]
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

func (v visitCounts) clone() map[state.State][env.NumActions]int {
	out := make(map[state.State][env.NumActions]int, len(v))
	for s, counts := range v {
		out[s] = counts
	}
	return out
}
