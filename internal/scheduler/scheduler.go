package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Dashboard is the part of the dashboard driven by time.
type Dashboard interface {
	Tick()
	Refresh() bool
}

// Scheduler drives the on-screen clock every second and, optionally,
// re-renders the last searched location on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	dashboard Dashboard
	refresh   time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. A zero refresh interval disables refreshes.
func New(dashboard Dashboard, refresh time.Duration, tz *time.Location, logger *slog.Logger) *Scheduler {
	if tz == nil {
		tz = time.Local
	}
	s := gocron.NewScheduler(tz)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		dashboard: dashboard,
		refresh:   refresh,
		logger:    logger,
	}
}

// Start schedules the jobs and starts the underlying scheduler. The clock
// ticks once immediately.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Second().Tag("clock").Do(s.dashboard.Tick); err != nil {
		return err
	}

	if s.refresh > 0 {
		_, err := s.scheduler.Every(s.refresh).WaitForSchedule().Tag("refresh").Do(func() {
			if !s.dashboard.Refresh() {
				s.logger.Debug("refresh skipped: nothing rendered yet")
				return
			}
			s.logger.Info("refreshing current weather")
		})
		if err != nil {
			return err
		}
	} else {
		s.logger.Info("periodic refresh disabled")
	}

	s.scheduler.StartAsync()
	return nil
}

// Jobs returns the number of scheduled jobs.
func (s *Scheduler) Jobs() int {
	return s.scheduler.Len()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
