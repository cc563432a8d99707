// Package agent implements the tabular Q-learning agent: the Q-table,
// the update rule, and versioned persistence of the learned model.
//
// The agent owns the Q-table and the learning-rate schedule and
// delegates action choice to an exploration strategy. All mutation
// happens on the single control goroutine driving the training loop,
// so no locking is needed anywhere in the package.
package agent

import (
	"fmt"

	"github.com/google/uuid"

	env "github.com/nameisalfio/q-learning-maze-robot/environment"
	"github.com/nameisalfio/q-learning-maze-robot/agent/policy"
	"github.com/nameisalfio/q-learning-maze-robot/state"
	"github.com/nameisalfio/q-learning-maze-robot/utils/floatutils"
)

// Config holds the learning parameters of the agent.
type Config struct {
	LearningRate    float64 `yaml:"learning_rate"`
	LRDecay         float64 `yaml:"lr_decay"`
	MinLearningRate float64 `yaml:"min_learning_rate"`
	Discount        float64 `yaml:"discount_factor"`

	// OptimisticInit is the default Q-value for never-visited pairs.
	// Zero is the conventional default; a positive value biases early
	// exploration toward untried actions.
	OptimisticInit float64 `yaml:"optimistic_init"`
}

// Validate ensures the configuration describes a usable learner.
func (c Config) Validate() error {
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("agent: learning rate must be in (0, 1], got %v", c.LearningRate)
	}
	if c.LRDecay <= 0 || c.LRDecay > 1 {
		return fmt.Errorf("agent: learning rate decay must be in (0, 1], got %v", c.LRDecay)
	}
	if c.MinLearningRate < 0 || c.MinLearningRate > c.LearningRate {
		return fmt.Errorf("agent: min learning rate must be in [0, learning rate], got %v",
			c.MinLearningRate)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("agent: discount factor must be in [0, 1], got %v", c.Discount)
	}
	return nil
}

// Agent is a tabular Q-learning agent.
type Agent struct {
	table    *QTable
	strategy policy.Strategy

	alpha    float64
	lrDecay  float64
	minAlpha float64
	gamma    float64

	runID string
}

// New creates an Agent with an empty Q-table and the given exploration
// strategy.
func New(config Config, strategy policy.Strategy) (*Agent, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Agent{
		table:    NewQTable(config.OptimisticInit),
		strategy: strategy,
		alpha:    config.LearningRate,
		lrDecay:  config.LRDecay,
		minAlpha: config.MinLearningRate,
		gamma:    config.Discount,
		runID:    uuid.NewString(),
	}, nil
}

// SelectAction chooses the action to take in s by delegating to the
// exploration strategy with the current Q-values, then commits the
// choice to the strategy's counters.
func (a *Agent) SelectAction(s state.State) env.Action {
	action := a.strategy.Choose(s, a.table.Row(s))
	if !action.Valid() {
		panic(fmt.Sprintf("agent: strategy returned invalid action %d", int(action)))
	}
	a.strategy.Observe(s, action)
	return action
}

// GreedyAction returns the exploitation-only action for s with the
// deterministic first-index tie-break. Used in evaluation mode; it
// performs no bookkeeping and leaves the table untouched, so an
// unseen state falls back to the first action.
func (a *Agent) GreedyAction(s state.State) env.Action {
	row, ok := a.table.Lookup(s)
	if !ok {
		return env.Actions[0]
	}
	return env.Action(floatutils.ArgMax(row))
}

// Update applies one Q-learning backup for the observed transition:
//
//	Q(s,a) ← Q(s,a) + α [r + γ max_a' Q(s',a') (1-done) − Q(s,a)]
//
// A terminal transition closes off bootstrapping: the discounted
// future term is dropped entirely.
func (a *Agent) Update(s state.State, action env.Action, reward float64,
	next state.State, done bool) {

	if !action.Valid() {
		panic(fmt.Sprintf("agent: update with invalid action %d", int(action)))
	}

	target := reward
	if !done {
		target += a.gamma * floatutils.Max(a.table.Row(next)...)
	}

	row := a.table.Row(s)
	row[action] += a.alpha * (target - row[action])
}

// EndEpisode advances the per-episode schedules: the strategy's decay
// and the learning-rate decay, which runs independently of epsilon.
func (a *Agent) EndEpisode() {
	a.strategy.Decay()
	a.alpha = floatutils.Max(a.minAlpha, a.alpha*a.lrDecay)
}

// LearningRate returns the current step size α.
func (a *Agent) LearningRate() float64 {
	return a.alpha
}

// States returns the number of distinct states the agent has seen.
func (a *Agent) States() int {
	return a.table.Len()
}

// Strategy exposes the exploration strategy for reporting.
func (a *Agent) Strategy() policy.Strategy {
	return a.strategy
}

// RunID identifies the training run the current model belongs to. It
// is stamped into every saved blob and survives load.
func (a *Agent) RunID() string {
	return a.runID
}
