package experiment

import (
	"gonum.org/v1/gonum/stat"

	"github.com/nameisalfio/q-learning-maze-robot/utils/floatutils"
)

// Stats summarises a training run so far.
type Stats struct {
	Episodes    int
	States      int // distinct states in the value table
	MeanReturn  float64
	BestReturn  float64
	SuccessRate float64 // over the trailing window
}

// Stats reports the run summary for the episodes finished so far.
func (o *Online) Stats() Stats {
	s := Stats{
		Episodes:    o.episode,
		States:      o.agent.States(),
		SuccessRate: o.SuccessRate(),
	}
	if len(o.returns) > 0 {
		s.MeanReturn = stat.Mean(o.returns, nil)
		s.BestReturn = floatutils.Max(o.returns...)
	}
	return s
}
