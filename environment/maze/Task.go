package maze

import "fmt"

// Rewards is the shaping schedule applied by the environment. The
// exact numeric values are configuration, not tuning baked into code:
// every term is a named, testable parameter.
type Rewards struct {
	// StepCost is added on every step. It is normally negative so that
	// shorter paths score higher.
	StepCost float64

	// CollisionPenalty is added when the simulator reports a collision
	// for the step.
	CollisionPenalty float64

	// LoopPenalty is added when the new state re-enters the trailing
	// trace window, at most once per re-entry event.
	LoopPenalty float64

	// GoalReward is added when the simulator reports the goal reached.
	GoalReward float64

	// StreakBonus multiplies the number of consecutive non-colliding
	// steps immediately preceding goal arrival.
	StreakBonus float64

	// CheckpointBonuses holds the escalating one-time bonus for each
	// checkpoint; index i is the bonus for checkpoint id i+1. Bonuses
	// are granted in strictly increasing id order, each at most once
	// per episode.
	CheckpointBonuses []float64
}

// DefaultRewards mirrors the schedule the simulator was tuned against.
func DefaultRewards() Rewards {
	return Rewards{
		StepCost:          -1.0,
		CollisionPenalty:  -13.0,
		LoopPenalty:       -19.5,
		GoalReward:        1000.0,
		StreakBonus:       20.0,
		CheckpointBonuses: []float64{50.0, 150.0, 300.0, 500.0},
	}
}

// Validate rejects schedules that would silently invert the shaping.
func (r Rewards) Validate() error {
	if r.StepCost > 0 {
		return fmt.Errorf("maze: step cost must not be positive, got %v", r.StepCost)
	}
	if r.CollisionPenalty > 0 {
		return fmt.Errorf("maze: collision penalty must not be positive, got %v", r.CollisionPenalty)
	}
	if r.LoopPenalty > 0 {
		return fmt.Errorf("maze: loop penalty must not be positive, got %v", r.LoopPenalty)
	}
	if r.GoalReward <= 0 {
		return fmt.Errorf("maze: goal reward must be positive, got %v", r.GoalReward)
	}
	for i := 1; i < len(r.CheckpointBonuses); i++ {
		if r.CheckpointBonuses[i] <= r.CheckpointBonuses[i-1] {
			return fmt.Errorf("maze: checkpoint bonuses must escalate, got %v", r.CheckpointBonuses)
		}
	}
	return nil
}

// Total returns the sum of all checkpoint bonuses. Checkpoint rewards
// granted in one episode can never exceed it.
func (r Rewards) Total() float64 {
	var total float64
	for _, b := range r.CheckpointBonuses {
		total += b
	}
	return total
}
