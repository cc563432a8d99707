// Package trackers implements Trackers, which record per-episode data
// during a training run and save it to disk when the run finishes.
package trackers

import (
	"encoding/gob"
	"fmt"
	"os"

	env "github.com/nameisalfio/q-learning-maze-robot/environment"
)

// Episode is the record the training loop hands to every Tracker once
// per finished episode.
type Episode struct {
	Number      int     // episode index, starting at 0
	Return      float64 // cumulative shaped reward
	Steps       int
	Collisions  int
	Checkpoints int // checkpoint bonuses claimed
	Outcome     env.Outcome
	Success     bool
}

// Tracker records episode data during a run and saves it afterwards.
type Tracker interface {
	Track(Episode)
	Save() error
}

// LoadFloats loads the float series saved by a Tracker.
func LoadFloats(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("trackers: open %s: %w", filename, err)
	}
	defer file.Close()

	var data []float64
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("trackers: decode %s: %w", filename, err)
	}
	return data, nil
}

// saveFloats gob-encodes a float series to filename.
func saveFloats(filename string, data []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("trackers: create %s: %w", filename, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("trackers: encode %s: %w", filename, err)
	}
	return nil
}
