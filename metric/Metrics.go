// Package metric exposes the training loop's Prometheus
// instrumentation. All metrics are registered on a caller-supplied
// registry so tests can use isolated registries and the binary can
// serve everything from one /metrics endpoint.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for a training run.
type Metrics struct {
	episodesTotal    *prometheus.CounterVec
	stepsTotal       prometheus.Counter
	collisionsTotal  prometheus.Counter
	checkpointsTotal prometheus.Counter
	episodeReturn    prometheus.Histogram
	episodeSteps     prometheus.Histogram
	learningRate     prometheus.Gauge
	successRate      prometheus.Gauge
	statesVisited    prometheus.Gauge
}

// New creates the training metrics and registers them on registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		episodesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maze_episodes_total",
			Help: "Episodes finished, partitioned by outcome.",
		}, []string{"outcome"}),
		stepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maze_steps_total",
			Help: "Environment steps taken across all episodes.",
		}),
		collisionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maze_collisions_total",
			Help: "Collisions reported by the simulator.",
		}),
		checkpointsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maze_checkpoints_total",
			Help: "Checkpoint bonuses claimed.",
		}),
		episodeReturn: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "maze_episode_return",
			Help:    "Shaped return per episode.",
			Buckets: prometheus.LinearBuckets(-500, 250, 10),
		}),
		episodeSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "maze_episode_steps",
			Help:    "Steps per episode.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		learningRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "maze_learning_rate",
			Help: "Current decayed learning rate.",
		}),
		successRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "maze_success_rate",
			Help: "Trailing-window fraction of episodes reaching the goal.",
		}),
		statesVisited: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "maze_states_visited",
			Help: "Distinct states present in the value table.",
		}),
	}

	registry.MustRegister(
		m.episodesTotal,
		m.stepsTotal,
		m.collisionsTotal,
		m.checkpointsTotal,
		m.episodeReturn,
		m.episodeSteps,
		m.learningRate,
		m.successRate,
		m.statesVisited,
	)
	return m
}

// ObserveEpisode records one finished episode. A nil receiver is a
// no-op so callers can run without instrumentation.
func (m *Metrics) ObserveEpisode(outcome string, steps, collisions, checkpoints int, ret float64) {
	if m == nil {
		return
	}
	m.episodesTotal.WithLabelValues(outcome).Inc()
	m.stepsTotal.Add(float64(steps))
	m.collisionsTotal.Add(float64(collisions))
	m.checkpointsTotal.Add(float64(checkpoints))
	m.episodeReturn.Observe(ret)
	m.episodeSteps.Observe(float64(steps))
}

// SetLearningRate publishes the agent's current learning rate.
func (m *Metrics) SetLearningRate(alpha float64) {
	if m == nil {
		return
	}
	m.learningRate.Set(alpha)
}

// SetSuccessRate publishes the trailing-window success rate.
func (m *Metrics) SetSuccessRate(rate float64) {
	if m == nil {
		return
	}
	m.successRate.Set(rate)
}

// SetStatesVisited publishes the size of the value table.
func (m *Metrics) SetStatesVisited(n int) {
	if m == nil {
		return
	}
	m.statesVisited.Set(float64(n))
}

// Handler returns an HTTP handler serving the registry in the
// Prometheus exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
