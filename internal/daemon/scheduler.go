package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/e-radio/eradio/internal/logfields"
)

// Scheduler wraps a gocron scheduler running the periodic refresh.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(logger *slog.Logger, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleRefresh runs fn every interval until ctx is done. Overlapping runs
// are skipped. It returns the job ID.
func (s *Scheduler) ScheduleRefresh(ctx context.Context, interval time.Duration, name string, fn func(context.Context) error) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.execute, ctx, name, fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create %s job: %w", name, err)
	}
	return job.ID().String(), nil
}

func (s *Scheduler) execute(ctx context.Context, name string, fn func(context.Context) error) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	s.logger.Info("Executing scheduled task", logfields.Task(name))
	if err := fn(ctx); err != nil {
		s.logger.Error("Scheduled task failed", logfields.Task(name), logfields.Error(err))
		return
	}
	s.logger.Info("Scheduled task finished", logfields.Task(name),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}
