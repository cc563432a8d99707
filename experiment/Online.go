package experiment

import (
	"context"
	"errors"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/nameisalfio/q-learning-maze-robot/agent"
	env "github.com/nameisalfio/q-learning-maze-robot/environment"
	"github.com/nameisalfio/q-learning-maze-robot/experiment/checkpointer"
	"github.com/nameisalfio/q-learning-maze-robot/experiment/trackers"
	"github.com/nameisalfio/q-learning-maze-robot/metric"
	"github.com/nameisalfio/q-learning-maze-robot/utils/progressbar"
)

// Online runs an agent online: every transition is learned from as it
// happens, with no separate evaluation phase. A transport fault marks
// the episode failed and the run moves on to the next one, so a
// flaky simulator costs episodes rather than the whole run.
type Online struct {
	environment env.Environment
	agent       *agent.Agent
	config      Config
	logger      *slog.Logger
	metrics     *metric.Metrics

	trackers      []trackers.Tracker
	checkpointers []checkpointer.Checkpointer

	episode   int
	successes []float64
	returns   []float64
	bar       *progressbar.ManualProgressBar
}

// NewOnline creates an online experiment over the given environment
// and agent. The ts parameter lists the trackers recording per-episode
// data; more can be added later with Register.
func NewOnline(environment env.Environment, a *agent.Agent, config Config,
	logger *slog.Logger, ts ...trackers.Tracker) (*Online, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Online{
		environment: environment,
		agent:       a,
		config:      config,
		logger:      logger,
		trackers:    ts,
	}, nil
}

// Register adds a tracker to the experiment.
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RegisterCheckpointer adds a model checkpointer, consulted after
// every finished episode.
func (o *Online) RegisterCheckpointer(c checkpointer.Checkpointer) {
	o.checkpointers = append(o.checkpointers, c)
}

// Instrument attaches Prometheus metrics to the run.
func (o *Online) Instrument(m *metric.Metrics) {
	o.metrics = m
}

// ShowProgress renders a terminal progress bar across the run.
func (o *Online) ShowProgress(width int) {
	o.bar = progressbar.NewManualProgressBar(width, o.config.Episodes)
}

// RunEpisode runs one episode to termination, updating the agent on
// every transition, and commits its record to the trackers.
func (o *Online) RunEpisode(ctx context.Context) (trackers.Episode, error) {
	s, err := o.environment.Reset(ctx)
	if err != nil {
		return trackers.Episode{}, err
	}

	record := trackers.Episode{Number: o.episode}
	for {
		action := o.agent.SelectAction(s)
		result, err := o.environment.Step(ctx, action)
		if err != nil {
			return trackers.Episode{}, err
		}

		o.agent.Update(s, action, result.Reward, result.State, result.Done)
		s = result.State

		record.Return += result.Reward
		if result.Info.Checkpoint != 0 {
			record.Checkpoints++
		}
		if result.Done {
			record.Steps = result.Info.Steps
			record.Collisions = result.Info.Collisions
			record.Outcome = result.Info.Outcome
			record.Success = result.Info.Success()
			break
		}
	}

	o.agent.EndEpisode()
	o.commit(record)
	return record, nil
}

// Run runs all remaining episodes. A transport timeout costs one
// episode; any other failure, including context cancellation, aborts
// the run.
func (o *Online) Run(ctx context.Context) error {
	for o.episode < o.config.Episodes {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := o.RunEpisode(ctx)
		switch {
		case errors.Is(err, env.ErrTransportTimeout):
			o.logger.Error("episode lost to transport fault",
				"episode", o.episode, "err", err)
			o.commit(trackers.Episode{Number: o.episode})
		case err != nil:
			return err
		}
	}
	if o.bar != nil {
		o.bar.Finish()
	}
	return nil
}

// Save flushes all tracked data to disk. The first failure is
// returned, but every tracker gets its chance to save.
func (o *Online) Save() error {
	var firstErr error
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			o.logger.Error("tracker save failed", "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// SuccessRate reports the fraction of goal episodes inside the
// trailing window.
func (o *Online) SuccessRate() float64 {
	if len(o.successes) == 0 {
		return 0
	}
	return stat.Mean(o.successes, nil)
}

// commit books a finished (or lost) episode: trackers, the trailing
// success window, metrics, checkpointing and progress reporting.
func (o *Online) commit(record trackers.Episode) {
	for _, t := range o.trackers {
		t.Track(record)
	}

	success := 0.0
	if record.Success {
		success = 1.0
	}
	o.successes = append(o.successes, success)
	if len(o.successes) > o.config.SuccessWindow {
		o.successes = o.successes[1:]
	}
	o.returns = append(o.returns, record.Return)

	o.metrics.ObserveEpisode(record.Outcome.String(), record.Steps,
		record.Collisions, record.Checkpoints, record.Return)
	o.metrics.SetLearningRate(o.agent.LearningRate())
	o.metrics.SetSuccessRate(o.SuccessRate())
	o.metrics.SetStatesVisited(o.agent.States())

	for _, c := range o.checkpointers {
		if err := c.Checkpoint(record.Number); err != nil {
			o.logger.Error("checkpoint failed",
				"episode", record.Number, "err", err)
		}
	}

	o.episode++
	if o.bar != nil {
		o.bar.Increment()
		o.bar.Display()
	}
	if o.episode%o.config.LogEvery == 0 {
		o.logger.Info("training progress",
			"episode", o.episode,
			"return", record.Return,
			"steps", record.Steps,
			"outcome", record.Outcome.String(),
			"success_rate", o.SuccessRate(),
			"learning_rate", o.agent.LearningRate(),
			"states", o.agent.States())
	}
}
