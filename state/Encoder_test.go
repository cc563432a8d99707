package state

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncoderValidation(t *testing.T) {
	_, err := NewEncoder(0, 0)
	assert.Error(t, err)

	_, err = NewEncoder(-1.5, 0)
	assert.Error(t, err)

	_, err = NewEncoder(1.0, -1)
	assert.Error(t, err)

	_, err = NewEncoder(1.0, 8)
	assert.NoError(t, err)
}

func TestEncodeRoundsToNearestCell(t *testing.T) {
	e, err := NewEncoder(10.0, 0)
	require.NoError(t, err)

	tests := []struct {
		name string
		x, y float64
		want State
	}{
		{"origin", 0, 0, State{0, 0, 0}},
		{"cell center", 10.2, 19.8, State{1, 2, 0}},
		{"jitter below boundary", 4.9, 0, State{0, 0, 0}},
		{"jitter above boundary", 5.1, 0, State{1, 0, 0}},
		{"negative coordinates", -10.4, -19.6, State{-1, -2, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Encode(tt.x, tt.y, 0))
		})
	}
}

func TestEncodeIsStableUnderJitter(t *testing.T) {
	e, err := NewEncoder(1.0, 0)
	require.NoError(t, err)

	// A pose wobbling a millimetre around a cell center must not change
	// cells.
	base := e.Encode(3.0, 7.0, 0)
	assert.Equal(t, base, e.Encode(3.001, 6.999, 0))
	assert.Equal(t, base, e.Encode(2.999, 7.001, 0))
}

func TestEncodeHeadingBuckets(t *testing.T) {
	e, err := NewEncoder(1.0, 4)
	require.NoError(t, err)

	assert.Equal(t, 0, e.Encode(0, 0, 0).Heading)
	assert.Equal(t, 1, e.Encode(0, 0, math.Pi/2).Heading)
	assert.Equal(t, 2, e.Encode(0, 0, math.Pi).Heading)
	assert.Equal(t, 3, e.Encode(0, 0, 3*math.Pi/2).Heading)

	// Full turns wrap around to the first sector.
	assert.Equal(t, 0, e.Encode(0, 0, 2*math.Pi).Heading)
	// Negative headings normalize into [0, 2π).
	assert.Equal(t, 3, e.Encode(0, 0, -math.Pi/2).Heading)
}

func TestEncodeWithoutHeadingIgnoresTheta(t *testing.T) {
	e, err := NewEncoder(1.0, 0)
	require.NoError(t, err)

	assert.Equal(t, e.Encode(2, 3, 0), e.Encode(2, 3, math.Pi))
}
