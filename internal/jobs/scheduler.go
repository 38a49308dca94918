// Package jobs runs the periodic maintenance tasks of the storefront.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Job is a named cron job with its own schedule.
type Job interface {
	cron.Job
	Name() string
	Spec() string
}

// Scheduler wraps a cron instance. Overlapping runs of one job are skipped
// and panics are recovered and logged.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	logger := cronLogger{log.Logger.With().Str("component", "cron").Logger()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.SkipIfStillRunning(logger), cron.Recover(logger)),
		),
	}
}

// Add registers job under its own spec.
func (s *Scheduler) Add(job Job) error {
	if _, err := s.cron.AddJob(job.Spec(), job); err != nil {
		return fmt.Errorf("failed to schedule job %s with spec %q: %w", job.Name(), job.Spec(), err)
	}
	log.Info().Str("job", job.Name()).Str("spec", job.Spec()).Msg("job scheduled")
	return nil
}

// Len reports the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
