// Package sla escalates review items that outlive their deadline.
package sla

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the sweep every 15 minutes.
const DefaultSchedule = "*/15 * * * *"

const sweepTimeout = 2 * time.Minute

// Escalator is the review operation the sweeper drives.
type Escalator interface {
	SweepOverdue(ctx context.Context) (int, error)
}

// Sweeper runs the overdue sweep on a cron schedule.
type Sweeper struct {
	escalator Escalator
	cron      *cron.Cron
	schedule  string
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
}

func NewSweeper(escalator Escalator, schedule string, logger *slog.Logger) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid sla sweep schedule %q: %w", schedule, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sweeper{
		escalator: escalator,
		cron:      cron.New(),
		schedule:  schedule,
		logger:    logger,
	}, nil
}

// Start registers the job and starts the scheduler.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("sla sweeper already running")
	}
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("schedule sla sweep: %w", err)
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("sla sweeper started", "schedule", s.schedule)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
}

// RunOnce performs one sweep and returns the number of escalated items.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := s.escalator.SweepOverdue(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "sla sweep failed", "escalated", n, "error", err)
		return n
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "escalated overdue review items", "escalated", n)
	}
	return n
}
