package policy

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	env "github.com/nameisalfio/q-learning-maze-robot/environment"
	"github.com/nameisalfio/q-learning-maze-robot/state"
)

// Curiosity drives exploration toward the less visited: it keeps the
// ε-greedy selection backbone but adds a transient novelty bonus
//
//	noveltyBonus / sqrt(1 + visits(s,a))
//
// to each candidate's effective value. The bonus exists only for the
// duration of the selection and is never written into the Q-table, so
// as counts grow the strategy converges to plain ε-greedy behaviour.
type Curiosity struct {
	epsilon float64
	decay   float64
	floor   float64
	novelty float64
	counts  visitCounts
	source  rand.Source
}

// NewCuriosity constructs a curiosity-driven strategy.
func NewCuriosity(epsilon, decay, floor, novelty float64, seed uint64) *Curiosity {
	return &Curiosity{
		epsilon: epsilon,
		decay:   decay,
		floor:   floor,
		novelty: novelty,
		counts:  make(visitCounts),
		source:  rand.NewSource(seed),
	}
}

// Choose samples ε-greedily from the novelty-adjusted values for s.
func (p *Curiosity) Choose(s state.State, q []float64) env.Action {
	counts := p.counts.get(s)

	adjusted := make([]float64, len(q))
	for i := range q {
		adjusted[i] = q[i] + p.Bonus(counts[i])
	}
	return sampleEGreedy(adjusted, p.epsilon, p.source)
}

// Bonus returns the selection-time novelty bonus for an action visited
// the given number of times. It strictly decreases as visits grow.
func (p *Curiosity) Bonus(visits int) float64 {
	return p.novelty / math.Sqrt(1+float64(visits))
}

// Observe increments the visit count for (s, a).
func (p *Curiosity) Observe(s state.State, a env.Action) {
	p.counts.add(s, a)
}

// Decay shrinks the base epsilon multiplicatively, never below the
// floor.
func (p *Curiosity) Decay() {
	if next := p.epsilon * p.decay; next > p.floor {
		p.epsilon = next
	} else {
		p.epsilon = p.floor
	}
}

// Epsilon returns the current base exploration probability.
func (p *Curiosity) Epsilon() float64 {
	return p.epsilon
}

func (p *Curiosity) Name() string {
	return CuriosityName
}

func (p *Curiosity) Snapshot() Snapshot {
	return Snapshot{
		Name:         CuriosityName,
		Epsilon:      p.epsilon,
		NoveltyBonus: p.novelty,
		Visits:       p.counts.clone(),
	}
}

func (p *Curiosity) Restore(s Snapshot) error {
	if s.Name != CuriosityName {
		return fmt.Errorf("policy: cannot restore %q snapshot into %q", s.Name, CuriosityName)
	}
	p.epsilon = s.Epsilon
	p.novelty = s.NoveltyBonus
	p.counts = make(visitCounts, len(s.Visits))
	for st, counts := range s.Visits {
		p.counts[st] = counts
	}
	return nil
}
