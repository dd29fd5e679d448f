// Package scheduler runs a job on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron. Overlapping runs are skipped.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	job    Job
	logger *zap.Logger
	ctx    context.Context
}

// New registers job under spec, which accepts standard five-field cron
// expressions and descriptors such as "@daily" or "@every 6h".
func New(spec string, job Job, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("schedule", spec))

	cl := NewLogger(logger)
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:   spec,
		job:    job,
		logger: logger,
		ctx:    context.Background(),
	}

	if _, err := s.cron.AddFunc(spec, func() { s.runOnce(s.ctx) }); err != nil {
		return nil, fmt.Errorf("cron spec %q: %w", spec, err)
	}

	return s, nil
}

// Next returns when the job fires next. It is zero until Run starts.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Run starts the cron loop and blocks until ctx is done, then waits for a
// running job to finish. With immediately set the job also runs once up front.
func (s *Scheduler) Run(ctx context.Context, immediately bool) error {
	s.ctx = ctx

	s.cron.Start()
	s.logger.Info("scheduler started", zap.Time("next", s.Next()))

	if immediately {
		s.runOnce(ctx)
	}

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	started := time.Now()
	s.logger.Info("scheduled run started")

	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled run failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return
	}

	s.logger.Info("scheduled run finished", zap.Duration("elapsed", time.Since(started)))
}
