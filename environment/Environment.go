// Package environment defines the contract between the learning loop
// and a maze environment, along with the fixed action set and the
// outcome bookkeeping attached to every step.
package environment

import (
	"context"
	"errors"
	"fmt"

	"github.com/nameisalfio/q-learning-maze-robot/state"
)

// Action is one of the fixed discrete moves the agent can take. The
// set is closed: no action is added at runtime, and every table in the
// system is indexed by exactly these values.
type Action int

const (
	Up Action = iota
	Down
	Left
	Right
)

// NumActions is the size of the fixed action set.
const NumActions = 4

// Actions lists the full action set in its fixed ordering. Ties in
// greedy selection are always broken by the first action in this order,
// which keeps every policy decision reproducible.
var Actions = [NumActions]Action{Up, Down, Left, Right}

func (a Action) String() string {
	switch a {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Valid reports whether a is inside the fixed action set.
func (a Action) Valid() bool {
	return a >= Up && a <= Right
}

// ErrTransportTimeout reports that no update correlated to the
// just-published command arrived from the simulator within the
// configured bound. The episode it interrupts is recorded as failed;
// training resumes on the next episode.
var ErrTransportTimeout = errors.New("no correlated simulator update within timeout")

// Outcome classifies how a step left the episode.
type Outcome int

const (
	// OutcomeNone marks a step that did not terminate the episode.
	OutcomeNone Outcome = iota
	// OutcomeGoal marks a successful episode: the goal was reached.
	OutcomeGoal
	// OutcomeCollisionLimit marks termination by the per-episode
	// collision budget.
	OutcomeCollisionLimit
	// OutcomeStepLimit marks termination by the per-episode step cap.
	OutcomeStepLimit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeGoal:
		return "goal"
	case OutcomeCollisionLimit:
		return "collision_limit"
	case OutcomeStepLimit:
		return "step_limit"
	default:
		return "unknown"
	}
}

// Info carries the per-step bookkeeping that the trainer reports on but
// never interprets for learning.
type Info struct {
	Outcome    Outcome
	Steps      int
	Streak     int // consecutive non-colliding steps so far
	Collisions int // collisions this episode
	Checkpoint int // checkpoint id claimed this step, 0 if none
	Collision  bool
}

// Success reports whether the episode ended at the goal.
func (i Info) Success() bool {
	return i.Outcome == OutcomeGoal
}

// StepResult packages one externally verified state transition.
type StepResult struct {
	State  state.State
	Reward float64
	Done   bool
	Info   Info
}

// Environment is one reset-to-termination episode machine. Reset and
// Step suspend on the transport while waiting for the simulator, so
// both take a context for cancellation.
type Environment interface {
	Reset(ctx context.Context) (state.State, error)
	Step(ctx context.Context, a Action) (StepResult, error)
}
