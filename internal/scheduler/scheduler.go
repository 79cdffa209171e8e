package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"vocabdrill/internal/logger"
)

// Sweeper drops practice sessions that have been idle for longer than idle
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	idleTTL   time.Duration
	interval  time.Duration
	log       *logger.Logger
}

// New creates a scheduler that sweeps idle sessions every interval
func New(sweeper Sweeper, idleTTL, interval time.Duration, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sweeper,
		idleTTL:   idleTTL,
		interval:  interval,
		log:       log.With("component", "scheduler"),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", s.interval)
	}
	if _, err := s.scheduler.Every(s.interval).Do(s.sweepIdleSessions); err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	s.scheduler.StartAsync()
	s.log.Info("scheduler started", "sweep_interval", s.interval.String(), "idle_ttl", s.idleTTL.String())
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) sweepIdleSessions() {
	if removed := s.sweeper.Sweep(s.idleTTL); removed > 0 {
		s.log.Info("removed idle practice sessions", "count", removed)
	}
}
