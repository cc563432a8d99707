package agent

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nameisalfio/q-learning-maze-robot/agent/policy"
	"github.com/nameisalfio/q-learning-maze-robot/state"
)

// blobVersion is bumped whenever the persisted layout changes. Loading
// a blob with a different version fails loudly: silently truncating a
// partially-applicable model would corrupt training.
const blobVersion = 1

// ErrVersionMismatch reports a persisted model whose layout version
// does not match this binary.
var ErrVersionMismatch = errors.New("agent: model version mismatch")

// modelBlob is the single serialized unit holding everything a
// training run accumulates: the Q-table arena, the exploration
// strategy's parameters and counters, and the current learning rate.
type modelBlob struct {
	Version  int
	RunID    string
	Alpha    float64
	States   []state.State
	Values   []float64
	Strategy policy.Snapshot
}

// Save atomically writes the agent's full learned state to path: the
// blob is written to a temporary file in the same directory and
// renamed over the target, so a crash mid-write can never leave a
// truncated model behind.
func (a *Agent) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("agent: save: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("agent: save: %w", err)
	}
	defer os.Remove(tmp.Name())

	blob := modelBlob{
		Version:  blobVersion,
		RunID:    a.runID,
		Alpha:    a.alpha,
		States:   a.table.states,
		Values:   a.table.values,
		Strategy: a.strategy.Snapshot(),
	}
	if err := gob.NewEncoder(tmp).Encode(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("agent: encode model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("agent: save: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("agent: save: %w", err)
	}
	return nil
}

// Load restores the agent's learned state from a blob previously
// written by Save. The blob's layout version and strategy kind must
// both match; a mismatch is fatal to the load, never patched around.
func (a *Agent) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("agent: load: %w", err)
	}
	defer file.Close()

	var blob modelBlob
	if err := gob.NewDecoder(file).Decode(&blob); err != nil {
		return fmt.Errorf("agent: decode model: %w", err)
	}
	if blob.Version != blobVersion {
		return fmt.Errorf("%w: file has version %d, supported version is %d",
			ErrVersionMismatch, blob.Version, blobVersion)
	}
	if err := a.strategy.Restore(blob.Strategy); err != nil {
		return err
	}

	table := NewQTable(a.table.initValue)
	table.states = blob.States
	table.values = blob.Values
	for id, s := range blob.States {
		table.index[s] = id
	}
	a.table = table
	a.alpha = blob.Alpha
	a.runID = blob.RunID
	return nil
}
