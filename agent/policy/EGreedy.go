package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"

	env "github.com/nameisalfio/q-learning-maze-robot/environment"
	"github.com/nameisalfio/q-learning-maze-robot/state"
	"github.com/nameisalfio/q-learning-maze-robot/utils/floatutils"
)

// EGreedy implements the ε-greedy strategy: with probability epsilon a
// uniformly random action, otherwise the greedy action with ties broken
// by the first action in the fixed ordering. Epsilon decays
// multiplicatively once per episode down to its floor.
type EGreedy struct {
	epsilon float64
	decay   float64
	floor   float64
	source  rand.Source
}

// NewEGreedy constructs an ε-greedy strategy seeded for reproducible
// action sampling.
func NewEGreedy(epsilon, decay, floor float64, seed uint64) *EGreedy {
	return &EGreedy{
		epsilon: epsilon,
		decay:   decay,
		floor:   floor,
		source:  rand.NewSource(seed),
	}
}

// Choose samples an action from the ε-greedy distribution over q: each
// action carries probability ε/n, and the greedy action additionally
// carries 1-ε.
func (p *EGreedy) Choose(_ state.State, q []float64) env.Action {
	return sampleEGreedy(q, p.epsilon, p.source)
}

// Observe is a no-op: ε-greedy keeps no per-state counters.
func (p *EGreedy) Observe(state.State, env.Action) {}

// Decay shrinks epsilon multiplicatively, never below the floor.
func (p *EGreedy) Decay() {
	p.epsilon = floatutils.Max(p.floor, p.epsilon*p.decay)
}

// Epsilon returns the current exploration probability.
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

func (p *EGreedy) Name() string {
	return EGreedyName
}

func (p *EGreedy) Snapshot() Snapshot {
	return Snapshot{Name: EGreedyName, Epsilon: p.epsilon}
}

func (p *EGreedy) Restore(s Snapshot) error {
	if s.Name != EGreedyName {
		return fmt.Errorf("policy: cannot restore %q snapshot into %q", s.Name, EGreedyName)
	}
	p.epsilon = s.Epsilon
	return nil
}

// sampleEGreedy builds the ε-greedy probability vector over the action
// set and samples it as a categorical distribution. The greedy index
// is the first maximum, so ties resolve deterministically.
func sampleEGreedy(q []float64, epsilon float64, source rand.Source) env.Action {
	greedy := floatutils.ArgMax(q)

	probs := make([]float64, len(q))
	for i := range probs {
		probs[i] = epsilon / float64(len(q))
	}
	probs[greedy] += 1.0 - epsilon

	dist := distuv.NewCategorical(probs, source)
	return env.Action(int(dist.Rand()))
}
