package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReadAbsentBeforeFirstPublish(t *testing.T) {
	b := NewMemory()

	_, ok, err := b.Read(TopicX)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLastValueWins(t *testing.T) {
	b := NewMemory()

	require.NoError(t, b.Publish(TopicAction, 1))
	require.NoError(t, b.Publish(TopicAction, 3))

	value, ok, err := b.Read(TopicAction)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3.0, value)
}

func TestMemoryTopicsAreIndependent(t *testing.T) {
	b := NewMemory()

	require.NoError(t, b.Publish(TopicX, 2.5))

	value, ok, err := b.Read(TopicX)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2.5, value)

	_, ok, err = b.Read(TopicY)
	require.NoError(t, err)
	assert.False(t, ok)
}
