package checkpointer

// nStep checkpoints the tracked model every N finished episodes.
type nStep struct {
	interval int
	object   Serializable

	// filename yields the target path for the next checkpoint. Use
	// FilenameEnumerator for numbered files or FileTimer for
	// timestamped ones; a plain closure over a constant path keeps a
	// single rolling checkpoint.
	filename func() string
}

// NewNStep returns a Checkpointer that saves object every n episodes.
func NewNStep(n int, object Serializable, filename func() string) Checkpointer {
	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint saves the tracked model when the episode index lands on
// the interval. Episode numbering starts at 0, so the first save
// happens after interval episodes.
func (n *nStep) Checkpoint(episode int) error {
	if (episode+1)%n.interval == 0 {
		return n.object.Save(n.filename())
	}
	return nil
}
