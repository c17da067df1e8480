package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SchedulerConfig holds configuration for the bill scheduler
type SchedulerConfig struct {
	// PollInterval is how often due bills and overdue charges are checked (default: 1h)
	PollInterval time.Duration
}

// DefaultSchedulerConfig returns sensible defaults
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{PollInterval: time.Hour}
}

// Scheduler periodically generates planned transactions from due bills and
// flags planned transactions whose charge date has passed.
type Scheduler struct {
	bills  *BillProcessor
	status *StatusUpdater
	config SchedulerConfig
	now    func() time.Time

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScheduler(bills *BillProcessor, status *StatusUpdater, config SchedulerConfig) *Scheduler {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSchedulerConfig().PollInterval
	}
	return &Scheduler{
		bills:  bills,
		status: status,
		config: config,
		now:    time.Now,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	slog.InfoContext(ctx, "Scheduler started", "poll_interval", s.config.PollInterval)
	return nil
}

// Stop gracefully stops the scheduler and waits for the current run.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Scheduler stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Scheduler stop timed out")
		return ctx.Err()
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on startup
	s.RunOnce(ctx)

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce processes due bills, then marks overdue charges.
func (s *Scheduler) RunOnce(ctx context.Context) {
	now := s.now()
	if s.bills != nil {
		if _, err := s.bills.ProcessDueBills(ctx, now); err != nil {
			slog.ErrorContext(ctx, "Failed to process bills", "error", err)
		}
	}
	if s.status != nil {
		if _, err := s.status.MarkOverdue(ctx, now); err != nil {
			slog.ErrorContext(ctx, "Failed to mark overdue transactions", "error", err)
		}
	}
}
