// Command q-learning-maze-robot trains and evaluates a tabular
// Q-learning agent that drives a robot through a maze over a
// last-value-wins message bus.
//
// Three modes are supported:
//
//	train  learn a policy, checkpointing the model as it goes
//	test   evaluate a saved model with greedy rollouts
//	demo   train and evaluate against the built-in grid simulator
//
// With the memory bus the built-in simulator answers every command
// in-process; with the NATS bus an external simulator is expected on
// the other side of the bucket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nameisalfio/q-learning-maze-robot/agent"
	"github.com/nameisalfio/q-learning-maze-robot/agent/policy"
	"github.com/nameisalfio/q-learning-maze-robot/bus"
	"github.com/nameisalfio/q-learning-maze-robot/config"
	"github.com/nameisalfio/q-learning-maze-robot/environment/maze"
	"github.com/nameisalfio/q-learning-maze-robot/experiment"
	"github.com/nameisalfio/q-learning-maze-robot/experiment/checkpointer"
	"github.com/nameisalfio/q-learning-maze-robot/experiment/trackers"
	"github.com/nameisalfio/q-learning-maze-robot/metric"
	"github.com/nameisalfio/q-learning-maze-robot/simulator"
	"github.com/nameisalfio/q-learning-maze-robot/state"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		mode       = flag.String("mode", "train", "train, test or demo")
		episodes   = flag.Int("episodes", 0, "override the configured episode count")
		modelPath  = flag.String("model", "", "override the configured model path")
		dataDir    = flag.String("data", "data", "directory for tracked episode data")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*configPath, *mode, *episodes, *modelPath, *dataDir, logger); err != nil {
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func run(configPath, mode string, episodes int, modelPath, dataDir string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if mode == "demo" {
		cfg.Bus.Kind = config.BusMemory
	}
	if episodes > 0 {
		cfg.Training.Episodes = episodes
	}
	if modelPath != "" {
		cfg.Checkpoint.Path = modelPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, cleanup, err := buildBus(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	encoder, err := state.NewEncoder(cfg.Encoder.CellSize, cfg.Encoder.HeadingBuckets)
	if err != nil {
		return err
	}
	environment, err := maze.New(b, encoder, cfg.Environment.Build(), logger)
	if err != nil {
		return err
	}

	strategy, err := policy.New(cfg.Strategy)
	if err != nil {
		return err
	}
	a, err := agent.New(cfg.Agent, strategy)
	if err != nil {
		return err
	}

	switch mode {
	case "train", "demo":
		return train(ctx, cfg, b, environment, a, dataDir, mode == "demo", logger)
	case "test":
		return test(ctx, cfg, b, environment, a, logger)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// buildBus creates the configured transport. The memory bus is wrapped
// in the built-in grid simulator so it answers the command topics
// itself; the NATS bus relies on an external simulator.
func buildBus(ctx context.Context, cfg config.Config, logger *slog.Logger) (bus.Bus, func(), error) {
	switch cfg.Bus.Kind {
	case config.BusMemory:
		grid, err := simulator.New(bus.NewMemory(), simulator.DefaultConfig())
		if err != nil {
			return nil, nil, err
		}
		return grid, func() {}, nil
	case config.BusNATS:
		n, err := bus.NewNats(ctx, cfg.Bus.URL, cfg.Bus.Bucket, logger)
		if err != nil {
			return nil, nil, err
		}
		return n, func() {
			if err := n.Close(); err != nil {
				logger.Warn("bus close failed", "err", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown bus kind %q", cfg.Bus.Kind)
	}
}

func train(ctx context.Context, cfg config.Config, b bus.Bus,
	environment *maze.Maze, a *agent.Agent, dataDir string, demo bool,
	logger *slog.Logger) error {
	if err := b.Publish(bus.TopicMode, bus.ModeTrain); err != nil {
		return err
	}

	// Resume from an existing model rather than starting over.
	if _, err := os.Stat(cfg.Checkpoint.Path); err == nil {
		if err := a.Load(cfg.Checkpoint.Path); err != nil {
			return fmt.Errorf("resume from %s: %w", cfg.Checkpoint.Path, err)
		}
		logger.Info("resuming training",
			"model", cfg.Checkpoint.Path,
			"run_id", a.RunID(),
			"states", a.States())
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	o, err := experiment.NewOnline(environment, a, cfg.Training, logger,
		trackers.NewReturn(filepath.Join(dataDir, "returns.bin")),
		trackers.NewEpisodeLength(filepath.Join(dataDir, "lengths.bin")),
		trackers.NewSuccess(filepath.Join(dataDir, "success.bin")))
	if err != nil {
		return err
	}

	if cfg.Checkpoint.Path != "" {
		path := cfg.Checkpoint.Path
		o.RegisterCheckpointer(checkpointer.NewNStep(cfg.Checkpoint.Every, a,
			func() string { return path }))
	}
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		o.Instrument(metric.New(registry))
		go serveMetrics(ctx, cfg.Metrics.Addr, registry, logger)
	}
	o.ShowProgress(40)

	logger.Info("training",
		"episodes", cfg.Training.Episodes,
		"strategy", a.Strategy().Name(),
		"run_id", a.RunID(),
		"bus", cfg.Bus.Kind)

	runErr := o.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		logger.Info("training interrupted, saving progress")
		runErr = nil
	}
	if runErr != nil {
		return runErr
	}

	if err := o.Save(); err != nil {
		return err
	}
	stats := o.Stats()
	logger.Info("training finished",
		"episodes", stats.Episodes,
		"states", stats.States,
		"mean_return", stats.MeanReturn,
		"best_return", stats.BestReturn,
		"success_rate", stats.SuccessRate)
	if cfg.Checkpoint.Path != "" {
		if err := a.Save(cfg.Checkpoint.Path); err != nil {
			return err
		}
		logger.Info("model saved",
			"path", cfg.Checkpoint.Path,
			"states", a.States())
	}

	if demo {
		return test(context.Background(), cfg, b, environment, a, logger)
	}
	return nil
}

func test(ctx context.Context, cfg config.Config, b bus.Bus,
	environment *maze.Maze, a *agent.Agent, logger *slog.Logger) error {
	if a.States() == 0 {
		if err := a.Load(cfg.Checkpoint.Path); err != nil {
			return fmt.Errorf("load model %s: %w", cfg.Checkpoint.Path, err)
		}
	}
	if err := b.Publish(bus.TopicMode, bus.ModeTest); err != nil {
		return err
	}

	report, err := experiment.Evaluate(ctx, environment, a, cfg.TestEpisodes, logger)
	if err != nil {
		return err
	}
	logger.Info("evaluation finished",
		"episodes", report.Episodes,
		"successes", report.Successes,
		"success_rate", report.SuccessRate,
		"mean_return", report.MeanReturn,
		"mean_steps", report.MeanSteps)
	return nil
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry, logger *slog.Logger) {
	server := &http.Server{Addr: addr, Handler: metric.Handler(registry)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	logger.Info("serving metrics", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", "err", err)
	}
}
