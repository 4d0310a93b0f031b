package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/fadedpez/tucoleague/internal/logging"
	"github.com/go-co-op/gocron/v2"
)

// Task is a unit of periodic work. A returned error is logged and the task
// runs again on its next tick.
type Task func(ctx context.Context) error

// Scheduler runs league housekeeping tasks on fixed intervals
type Scheduler struct {
	cron   gocron.Scheduler
	logger *logging.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a stopped scheduler
func NewScheduler(logger *logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default
	}
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("error creating scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// AddTask runs fn every interval once the scheduler is started. A run that is
// still going when the next tick arrives causes that tick to be skipped.
func (s *Scheduler) AddTask(name string, interval time.Duration, fn Task) error {
	if interval <= 0 {
		return fmt.Errorf("task %s: interval must be positive, got %s", name, interval)
	}

	_, err := s.cron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.run, name, fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("error scheduling task %s: %w", name, err)
	}
	s.logger.Debug("Scheduled task %s every %s", name, interval)
	return nil
}

// Start begins running the scheduled tasks
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started with %d tasks", len(s.cron.Jobs()))
}

// Stop cancels in-flight tasks and waits for them to return
func (s *Scheduler) Stop() error {
	s.cancel()
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("error stopping scheduler: %w", err)
	}
	s.logger.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) run(name string, fn Task) {
	if err := fn(s.ctx); err != nil {
		s.logger.Warn("Scheduled task %s failed: %v", name, err)
	}
}
