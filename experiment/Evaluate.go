package experiment

import (
	"context"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/nameisalfio/q-learning-maze-robot/agent"
	env "github.com/nameisalfio/q-learning-maze-robot/environment"
)

// Report summarises a greedy evaluation run.
type Report struct {
	Episodes    int
	Successes   int
	SuccessRate float64
	MeanReturn  float64
	MeanSteps   float64
}

// Evaluate runs greedy episodes with learning frozen: the
// agent always takes its best-known action and its value table never
// changes. Unlike training, a transport fault here aborts the whole
// evaluation, since a partial report would misstate the policy.
func Evaluate(ctx context.Context, environment env.Environment, a *agent.Agent,
	episodes int, logger *slog.Logger) (Report, error) {
	returns := make([]float64, 0, episodes)
	steps := make([]float64, 0, episodes)
	successes := 0

	for i := 0; i < episodes; i++ {
		s, err := environment.Reset(ctx)
		if err != nil {
			return Report{}, err
		}

		episodeReturn := 0.0
		for {
			result, err := environment.Step(ctx, a.GreedyAction(s))
			if err != nil {
				return Report{}, err
			}
			episodeReturn += result.Reward
			s = result.State

			if result.Done {
				returns = append(returns, episodeReturn)
				steps = append(steps, float64(result.Info.Steps))
				if result.Info.Success() {
					successes++
				}
				logger.Debug("evaluation episode finished",
					"episode", i,
					"outcome", result.Info.Outcome.String(),
					"return", episodeReturn,
					"steps", result.Info.Steps)
				break
			}
		}
	}

	return Report{
		Episodes:    episodes,
		Successes:   successes,
		SuccessRate: float64(successes) / float64(episodes),
		MeanReturn:  stat.Mean(returns, nil),
		MeanSteps:   stat.Mean(steps, nil),
	}, nil
}
