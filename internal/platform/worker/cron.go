package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CronJob is a task fired on a standard five-field cron expression.
type CronJob struct {
	Name string
	Spec string
	Run  func(ctx context.Context)
}

// CronConfig configures a cron-driven worker.
type CronConfig struct {
	Name string
	Jobs []CronJob
	// Location evaluates cron expressions; defaults to UTC.
	Location *time.Location
	Logger   *zerolog.Logger
}

// CronLoop schedules every job and blocks until ctx is canceled.
// Overlapping firings of the same job are skipped while the previous one runs.
func CronLoop(ctx context.Context, cfg CronConfig) error {
	logger := getLogger(cfg.Logger)

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.SkipIfStillRunning(cl)),
	)

	for _, job := range cfg.Jobs {
		if job.Run == nil {
			continue
		}

		if _, err := c.AddFunc(job.Spec, func() {
			logger.Info().Str(logFieldWorker, cfg.Name).Str(logFieldTask, job.Name).Msg("cron job fired")
			safeRun(ctx, logger, job.Name, job.Run)
		}); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.Name, job.Spec, err)
		}
	}

	logger.Info().Str(logFieldWorker, cfg.Name).Int("jobs", len(c.Entries())).Msg("starting cron loop")
	c.Start()

	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()

	logger.Info().Str(logFieldWorker, cfg.Name).Msg("cron loop stopped")

	return fmt.Errorf("cron loop %s: %w", cfg.Name, ctx.Err())
}

// ValidateCronSpec reports whether spec parses as a five-field cron expression.
func ValidateCronSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	return nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
