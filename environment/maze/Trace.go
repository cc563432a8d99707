package maze

import "github.com/nameisalfio/q-learning-maze-robot/state"

// trace is the per-episode sliding window of recently visited states
// used for loop detection. It is created at Reset and discarded with
// the episode; nothing outside the environment ever sees it.
type trace struct {
	window int
	states []state.State
}

func newTrace(window int) *trace {
	return &trace{window: window, states: make([]state.State, 0, window)}
}

// push appends s, trimming the oldest entry once the window is full.
func (t *trace) push(s state.State) {
	t.states = append(t.states, s)
	if len(t.states) > t.window {
		copy(t.states, t.states[1:])
		t.states = t.states[:t.window]
	}
}

// contains reports whether s is currently inside the window.
func (t *trace) contains(s state.State) bool {
	for _, seen := range t.states {
		if seen == s {
			return true
		}
	}
	return false
}

func (t *trace) clear() {
	t.states = t.states[:0]
}
