package policy

import (
	"fmt"
	"math"

	env "github.com/nameisalfio/q-learning-maze-robot/environment"
	"github.com/nameisalfio/q-learning-maze-robot/state"
)

// UCB implements upper-confidence-bound selection: it picks the action
// maximizing
//
//	Q(s,a) + c * sqrt(ln(totalVisits(s)+1) / (visits(s,a)+1))
//
// An action never tried in a state is always preferred before any
// already-tried action, which guarantees every action is sampled at
// least once per state before exploitation starts.
type UCB struct {
	confidence float64
	counts     visitCounts
}

// NewUCB constructs a UCB strategy with exploration constant c.
func NewUCB(c float64) *UCB {
	return &UCB{confidence: c, counts: make(visitCounts)}
}

// Choose returns the first untried action for s if one exists,
// otherwise the action with the highest upper confidence bound. Ties
// resolve to the first action in the fixed ordering.
func (p *UCB) Choose(s state.State, q []float64) env.Action {
	counts := p.counts.get(s)

	for _, a := range env.Actions {
		if counts[a] == 0 {
			return a
		}
	}

	total := float64(p.counts.total(s))
	best := env.Actions[0]
	bestScore := math.Inf(-1)
	for _, a := range env.Actions {
		bonus := p.confidence * math.Sqrt(math.Log(total+1)/float64(counts[a]+1))
		if score := q[a] + bonus; score > bestScore {
			bestScore = score
			best = a
		}
	}
	return best
}

// Observe increments the visit count for (s, a).
func (p *UCB) Observe(s state.State, a env.Action) {
	p.counts.add(s, a)
}

// Decay is a no-op: UCB's exploration pressure comes entirely from the
// visit counts.
func (p *UCB) Decay() {}

func (p *UCB) Name() string {
	return UCBName
}

func (p *UCB) Snapshot() Snapshot {
	return Snapshot{
		Name:       UCBName,
		Confidence: p.confidence,
		Visits:     p.counts.clone(),
	}
}

func (p *UCB) Restore(s Snapshot) error {
	if s.Name != UCBName {
		return fmt.Errorf("policy: cannot restore %q snapshot into %q", s.Name, UCBName)
	}
	p.confidence = s.Confidence
	p.counts = make(visitCounts, len(s.Visits))
	for st, counts := range s.Visits {
		p.counts[st] = counts
	}
	return nil
}
