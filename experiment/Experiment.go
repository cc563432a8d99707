// Package experiment implements the training and evaluation loops that
// drive an agent through episodes of the maze environment.
package experiment

import (
	"context"
	"fmt"

	"github.com/nameisalfio/q-learning-maze-robot/experiment/trackers"
)

// Experiment runs an agent against an environment for a fixed number
// of episodes, feeds every finished episode to the registered
// trackers, and saves the tracked data when the run ends.
type Experiment interface {
	// Run runs all remaining episodes. It stops early when ctx is
	// cancelled, returning ctx.Err().
	Run(ctx context.Context) error

	// RunEpisode runs a single episode and returns its record.
	RunEpisode(ctx context.Context) (trackers.Episode, error)

	// Register adds a tracker to the possibly already running
	// experiment.
	Register(t trackers.Tracker)

	// Save flushes all tracked data to disk.
	Save() error
}

// Config holds the run-level settings of an experiment.
type Config struct {
	Episodes      int `yaml:"episodes"`
	SuccessWindow int `yaml:"success_window"` // trailing window for the success rate
	LogEvery      int `yaml:"log_every"`      // episodes between progress log lines
}

// Validate ensures the configuration describes a runnable experiment.
func (c Config) Validate() error {
	if c.Episodes <= 0 {
		return fmt.Errorf("experiment: episodes must be positive, got %d", c.Episodes)
	}
	if c.SuccessWindow <= 0 {
		return fmt.Errorf("experiment: success window must be positive, got %d", c.SuccessWindow)
	}
	if c.LogEvery <= 0 {
		return fmt.Errorf("experiment: log interval must be positive, got %d", c.LogEvery)
	}
	return nil
}
