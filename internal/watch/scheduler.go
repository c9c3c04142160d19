package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler publishes periodic BuildRequested events, covering content
// sources that change without filesystem events (e.g. a git-synced tree).
type Scheduler struct {
	scheduler gocron.Scheduler
	bus       *Bus
}

// NewScheduler wraps a gocron scheduler publishing on bus.
func NewScheduler(bus *Bus) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, bus: bus}, nil
}

// SchedulePeriodicRebuild registers a rebuild every interval. Returns the
// job ID for later management.
func (s *Scheduler) SchedulePeriodicRebuild(ctx context.Context, interval time.Duration) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := Publish(s.bus, ctx, BuildRequested{
				Reason:      "periodic rebuild",
				RequestedAt: time.Now(),
			}); err != nil {
				slog.Warn("Scheduled rebuild request failed", "error", err)
			}
		}),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return "", fmt.Errorf("create periodic rebuild job: %w", err)
	}
	return job.ID().String(), nil
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() { s.scheduler.Start() }

// Stop shuts the scheduler down gracefully.
func (s *Scheduler) Stop() error { return s.scheduler.Shutdown() }
