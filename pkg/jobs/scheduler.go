package jobs

import (
	"context"
	"time"

	"github.com/jordanlanch/scribely/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler runs background maintenance on cron schedules
type Scheduler struct {
	cron    *cron.Cron
	logger  logger.Logger
	timeout time.Duration
}

// NewScheduler creates a scheduler. Each run gets its own context bounded by timeout.
func NewScheduler(timeout time.Duration, log logger.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	if log == nil {
		log = logger.Default()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  log.With("component", "scheduler"),
		timeout: timeout,
	}
}

// Add registers fn under name on spec, e.g. "@every 3m" or "0 4 * * *"
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, fn)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Job scheduled", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) run(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		s.logger.Warn("Job failed", "job", name, "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Debug("Job completed", "job", name, "duration", time.Since(start))
}

// Jobs returns the number of registered jobs
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start starts the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
