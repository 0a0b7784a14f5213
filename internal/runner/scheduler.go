package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/pmtrack/internal/logfields"
	"git.home.luguber.info/inful/pmtrack/internal/recurrence"
)

// Scheduler wraps a gocron scheduler that fires the daily pass.
type Scheduler struct {
	scheduler gocron.Scheduler
	runner    *Runner
	log       *slog.Logger
}

// NewScheduler creates a scheduler that runs the pass every day at the given
// local time.
func NewScheduler(r *Runner, hour, minute int, log *slog.Logger) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	sched := &Scheduler{scheduler: s, runner: r, log: log}
	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0))),
		gocron.NewTask(sched.execute),
		gocron.WithName("daily-maintenance-pass"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule daily pass: %w", err)
	}
	return sched, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.log.Info("starting maintenance scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.log.Info("stopping maintenance scheduler")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	today := recurrence.DateOf(time.Now())
	if _, err := s.runner.RunOnce(ctx, today); err != nil {
		s.log.Error("scheduled pass failed",
			logfields.RunDate(today.String()),
			logfields.Error(err))
	}
}
