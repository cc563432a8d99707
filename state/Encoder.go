// Package state maps the simulator's continuous pose feedback onto the
// discrete keys the tabular agent learns over.
package state

import (
	"fmt"
	"math"
)

// State is the discrete key for one distinguishable configuration the
// agent can act on: a maze cell and, when heading discretization is
// enabled, an angular sector. States compare by value and are used
// directly as map keys.
type State struct {
	X       int
	Y       int
	Heading int
}

func (s State) String() string {
	return fmt.Sprintf("(%d, %d, %d)", s.X, s.Y, s.Heading)
}

// Encoder quantizes a raw (position, heading) pose into a State.
//
// Positions are divided by the cell size and rounded to the nearest
// integer cell. Rounding rather than truncation keeps the encoding
// stable under small floating-point jitter: a pose oscillating around a
// cell boundary maps to a single cell instead of flickering between
// two.
type Encoder struct {
	cellSize       float64
	headingBuckets int
}

// NewEncoder returns an Encoder with the given cell size. When
// headingBuckets is positive the heading is bucketed into that many
// angular sectors; zero disables heading discretization so states are
// position-only.
func NewEncoder(cellSize float64, headingBuckets int) (Encoder, error) {
	if cellSize <= 0 {
		return Encoder{}, fmt.Errorf("state: cell size must be positive, got %v", cellSize)
	}
	if headingBuckets < 0 {
		return Encoder{}, fmt.Errorf("state: heading buckets cannot be negative, got %d", headingBuckets)
	}
	return Encoder{cellSize: cellSize, headingBuckets: headingBuckets}, nil
}

// Encode maps a raw pose to its discrete State. Encode is a pure
// function: the same pose always yields the same State.
func (e Encoder) Encode(x, y, theta float64) State {
	s := State{
		X: int(math.Round(x / e.cellSize)),
		Y: int(math.Round(y / e.cellSize)),
	}
	if e.headingBuckets > 0 {
		sector := 2 * math.Pi / float64(e.headingBuckets)
		norm := math.Mod(theta, 2*math.Pi)
		if norm < 0 {
			norm += 2 * math.Pi
		}
		s.Heading = int(math.Round(norm/sector)) % e.headingBuckets
	}
	return s
}
