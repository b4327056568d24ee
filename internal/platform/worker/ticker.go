package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// TickerTask represents a task triggered by a ticker.
type TickerTask struct {
	Name     string
	Interval time.Duration
	// RunOnStart runs the task once before the first tick.
	RunOnStart bool
	Run        func(ctx context.Context)
}

// TickerConfig configures a ticker-based worker loop.
type TickerConfig struct {
	// Name identifies the worker for logging.
	Name string

	// Tasks are the ticker-triggered tasks to run. Each task gets its own
	// goroutine, so a slow task never delays the others.
	Tasks []TickerTask

	// Logger for the worker.
	Logger *zerolog.Logger
}

// TickerLoop runs every task on its own interval until ctx is canceled.
// Tasks with a non-positive interval or nil Run are ignored.
// Returns a wrapped context error when the context is canceled.
func TickerLoop(ctx context.Context, cfg TickerConfig) error {
	logger := getLogger(cfg.Logger)
	logger.Info().Str(logFieldWorker, cfg.Name).Int("tasks", len(cfg.Tasks)).Msg("starting ticker loop")

	defer logger.Info().Str(logFieldWorker, cfg.Name).Msg("ticker loop stopped")

	g, gctx := errgroup.WithContext(ctx)

	for _, task := range cfg.Tasks {
		if task.Interval <= 0 || task.Run == nil {
			logger.Warn().Str(logFieldTask, task.Name).Msg("skipping ticker task without interval or body")

			continue
		}

		g.Go(func() error {
			return runTicker(gctx, task, logger)
		})
	}

	_ = g.Wait()

	<-ctx.Done()

	return fmt.Errorf("ticker loop %s: %w", cfg.Name, ctx.Err())
}

func runTicker(ctx context.Context, task TickerTask, logger *zerolog.Logger) error {
	if task.RunOnStart {
		logger.Debug().Str(logFieldTask, task.Name).Msg("running initial task")
		safeRun(ctx, logger, task.Name, task.Run)
	}

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			logger.Debug().Str(logFieldTask, task.Name).Msg("ticker fired")
			safeRun(ctx, logger, task.Name, task.Run)
		}
	}
}
