package agent

import (
	env "github.com/nameisalfio/q-learning-maze-robot/environment"
	"github.com/nameisalfio/q-learning-maze-robot/state"
)

// QTable stores action-value estimates in a dense arena: every
// newly-seen state is interned to an integer id backing a flat value
// slice indexed by (id × action count). Rows are created lazily on
// first access, initialized to the configured default, and never
// removed. The arena keeps the lazy-creation semantics of a sparse
// map while making row access a single slice operation.
type QTable struct {
	index     map[state.State]int
	states    []state.State
	values    []float64
	initValue float64
}

// NewQTable returns an empty table whose unvisited entries default to
// initValue.
func NewQTable(initValue float64) *QTable {
	return &QTable{
		index:     make(map[state.State]int),
		initValue: initValue,
	}
}

// Row returns the mutable value row for s, creating it on first
// access. The returned slice aliases the arena, so writes through it
// are the table update.
func (t *QTable) Row(s state.State) []float64 {
	id, ok := t.index[s]
	if !ok {
		id = len(t.states)
		t.index[s] = id
		t.states = append(t.states, s)
		for i := 0; i < env.NumActions; i++ {
			t.values = append(t.values, t.initValue)
		}
	}
	return t.values[id*env.NumActions : (id+1)*env.NumActions]
}

// Lookup returns the value row for s without creating it.
func (t *QTable) Lookup(s state.State) ([]float64, bool) {
	id, ok := t.index[s]
	if !ok {
		return nil, false
	}
	return t.values[id*env.NumActions : (id+1)*env.NumActions], true
}

// Len returns the number of states with materialized rows.
func (t *QTable) Len() int {
	return len(t.states)
}
