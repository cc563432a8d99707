// Package checkpointer saves the learned model at intervals during a
// training run, so an interrupted run can resume from the most recent
// checkpoint instead of starting over.
package checkpointer

// Serializable is a model that can save itself to a file. The agent's
// Save method satisfies this.
type Serializable interface {
	Save(path string) error
}

// Checkpointer decides, once per finished episode, whether to persist
// the tracked model.
type Checkpointer interface {
	Checkpoint(episode int) error
}
