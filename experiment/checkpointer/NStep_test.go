package checkpointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saveRecorder struct {
	paths []string
}

func (s *saveRecorder) Save(path string) error {
	s.paths = append(s.paths, path)
	return nil
}

func TestNStepSavesEveryInterval(t *testing.T) {
	rec := &saveRecorder{}
	c := NewNStep(3, rec, func() string { return "model.bin" })

	for episode := 0; episode < 9; episode++ {
		require.NoError(t, c.Checkpoint(episode))
	}
	// Episodes 2, 5 and 8 land on the interval.
	assert.Len(t, rec.paths, 3)
}

func TestFilenameEnumeratorCounts(t *testing.T) {
	next := FilenameEnumerator(0, "models/q", ".bin")
	assert.Equal(t, "models/q1.bin", next())
	assert.Equal(t, "models/q2.bin", next())

	next = FilenameEnumerator(5, "q", ".bin")
	assert.Equal(t, "q6.bin", next())
}
