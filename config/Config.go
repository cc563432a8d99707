// Package config loads the run configuration from a YAML file layered
// over built-in defaults, and validates it before anything starts.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nameisalfio/q-learning-maze-robot/agent"
	"github.com/nameisalfio/q-learning-maze-robot/agent/policy"
	"github.com/nameisalfio/q-learning-maze-robot/environment/maze"
	"github.com/nameisalfio/q-learning-maze-robot/experiment"
)

// Bus kinds accepted by the transport section.
const (
	BusMemory = "memory"
	BusNATS   = "nats"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "250ms" or "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("config: duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the full run configuration.
type Config struct {
	Bus         Bus               `yaml:"bus"`
	Encoder     Encoder           `yaml:"encoder"`
	Agent       agent.Config      `yaml:"agent"`
	Strategy    policy.Config     `yaml:"strategy"`
	Environment Environment       `yaml:"environment"`
	Training    experiment.Config `yaml:"training"`
	Checkpoint  Checkpoint        `yaml:"checkpoint"`
	Metrics     Metrics           `yaml:"metrics"`

	TestEpisodes int `yaml:"test_episodes"`
}

// Bus selects and parameterizes the transport.
type Bus struct {
	Kind   string `yaml:"kind"`
	URL    string `yaml:"url"`    // NATS server URL
	Bucket string `yaml:"bucket"` // key-value bucket name
}

// Encoder configures the pose-to-state discretization.
type Encoder struct {
	CellSize       float64 `yaml:"cell_size"`
	HeadingBuckets int     `yaml:"heading_buckets"`
}

// Environment configures the maze episode rules.
type Environment struct {
	Rewards        Rewards  `yaml:"rewards"`
	MaxSteps       int      `yaml:"max_steps"`
	CollisionLimit int      `yaml:"collision_limit"`
	TraceWindow    int      `yaml:"trace_window"`
	StepTimeout    Duration `yaml:"step_timeout"`
	PollInterval   Duration `yaml:"poll_interval"`
}

// Rewards configures the shaping constants.
type Rewards struct {
	StepCost          float64   `yaml:"step_cost"`
	CollisionPenalty  float64   `yaml:"collision_penalty"`
	LoopPenalty       float64   `yaml:"loop_penalty"`
	GoalReward        float64   `yaml:"goal_reward"`
	StreakBonus       float64   `yaml:"streak_bonus"`
	CheckpointBonuses []float64 `yaml:"checkpoint_bonuses"`
}

// Checkpoint configures periodic model saving.
type Checkpoint struct {
	Path  string `yaml:"path"`
	Every int    `yaml:"every"` // episodes between saves
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Build converts the YAML-facing environment section into the maze
// package's configuration.
func (e Environment) Build() maze.Config {
	return maze.Config{
		Rewards: maze.Rewards{
			StepCost:          e.Rewards.StepCost,
			CollisionPenalty:  e.Rewards.CollisionPenalty,
			LoopPenalty:       e.Rewards.LoopPenalty,
			GoalReward:        e.Rewards.GoalReward,
			StreakBonus:       e.Rewards.StreakBonus,
			CheckpointBonuses: e.Rewards.CheckpointBonuses,
		},
		MaxSteps:       e.MaxSteps,
		CollisionLimit: e.CollisionLimit,
		TraceWindow:    e.TraceWindow,
		StepTimeout:    time.Duration(e.StepTimeout),
		PollInterval:   time.Duration(e.PollInterval),
	}
}

// Default returns the built-in configuration: a memory bus, an
// epsilon-greedy strategy and the standard maze shaping constants.
func Default() Config {
	rewards := maze.DefaultRewards()
	return Config{
		Bus: Bus{
			Kind:   BusMemory,
			URL:    "nats://127.0.0.1:4222",
			Bucket: "maze",
		},
		Encoder: Encoder{
			CellSize:       10.0,
			HeadingBuckets: 0,
		},
		Agent: agent.Config{
			LearningRate:    0.1,
			LRDecay:         0.995,
			MinLearningRate: 0.01,
			Discount:        0.95,
		},
		Strategy: policy.Config{
			Name:         policy.EGreedyName,
			Epsilon:      0.3,
			EpsilonDecay: 0.995,
			MinEpsilon:   0.05,
			Confidence:   1.4,
			NoveltyBonus: 3.0,
			Seed:         uint64(time.Now().UnixNano()),
		},
		Environment: Environment{
			Rewards: Rewards{
				StepCost:          rewards.StepCost,
				CollisionPenalty:  rewards.CollisionPenalty,
				LoopPenalty:       rewards.LoopPenalty,
				GoalReward:        rewards.GoalReward,
				StreakBonus:       rewards.StreakBonus,
				CheckpointBonuses: rewards.CheckpointBonuses,
			},
			MaxSteps:       500,
			CollisionLimit: 3,
			TraceWindow:    maze.DefaultTraceWindow,
			StepTimeout:    Duration(maze.DefaultStepTimeout),
			PollInterval:   Duration(maze.DefaultPollInterval),
		},
		Training: experiment.Config{
			Episodes:      200,
			SuccessWindow: 20,
			LogEvery:      10,
		},
		Checkpoint: Checkpoint{
			Path:  "models/qtable.bin",
			Every: 50,
		},
		Metrics: Metrics{
			Enabled: false,
			Addr:    ":9090",
		},
		TestEpisodes: 5,
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if err := cfg.Validate(); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the whole configuration, delegating each section to
// its owning package.
func (c Config) Validate() error {
	switch c.Bus.Kind {
	case BusMemory:
	case BusNATS:
		if c.Bus.URL == "" {
			return fmt.Errorf("config: nats bus requires a url")
		}
		if c.Bus.Bucket == "" {
			return fmt.Errorf("config: nats bus requires a bucket")
		}
	default:
		return fmt.Errorf("config: unknown bus kind %q", c.Bus.Kind)
	}

	if c.Encoder.CellSize <= 0 {
		return fmt.Errorf("config: cell size must be positive, got %v", c.Encoder.CellSize)
	}
	if c.Encoder.HeadingBuckets < 0 {
		return fmt.Errorf("config: heading buckets must be non-negative, got %d", c.Encoder.HeadingBuckets)
	}

	if err := c.Agent.Validate(); err != nil {
		return err
	}
	if err := c.Strategy.Validate(); err != nil {
		return err
	}
	if err := c.Environment.Build().Validate(); err != nil {
		return err
	}
	if err := c.Training.Validate(); err != nil {
		return err
	}

	if c.Checkpoint.Path != "" && c.Checkpoint.Every <= 0 {
		return fmt.Errorf("config: checkpoint interval must be positive, got %d", c.Checkpoint.Every)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("config: metrics enabled without an address")
	}
	if c.TestEpisodes <= 0 {
		return fmt.Errorf("config: test episodes must be positive, got %d", c.TestEpisodes)
	}
	return nil
}
