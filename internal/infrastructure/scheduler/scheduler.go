// Package scheduler runs the periodic connection check in the background.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
)

// ConnectionChecker runs one auto-connect check
type ConnectionChecker interface {
	AutoConnectCheck(ctx context.Context, onSettingsPage bool) error
}

// Config holds scheduler configuration
type Config struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// CheckInterval is the time between two checks
	CheckInterval time.Duration

	// JobTimeout bounds a single check
	JobTimeout time.Duration

	// RunOnStart runs a check as soon as the scheduler starts
	RunOnStart bool
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		CheckInterval: 5 * time.Minute,
		JobTimeout:    time.Minute,
		RunOnStart:    true,
	}
}

// Validate checks that the intervals are usable
func (c Config) Validate() error {
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidConfig)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// RunResult describes one finished check
type RunResult struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// ConnectionCheckScheduler calls the connection checker on a fixed interval.
// A tick that finds an admin check running is skipped.
type ConnectionCheckScheduler struct {
	checker ConnectionChecker
	config  Config
	logger  *zap.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	last      *RunResult
}

// NewConnectionCheckScheduler creates a new scheduler instance
func NewConnectionCheckScheduler(checker ConnectionChecker, config Config, logger *zap.Logger) (*ConnectionCheckScheduler, error) {
	if config.Enabled {
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionCheckScheduler{
		checker: checker,
		config:  config,
		logger:  logger,
	}, nil
}

// Start starts the check loop
func (s *ConnectionCheckScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Connection check scheduler is disabled")
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Connection check scheduler started",
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running check until ctx is done
func (s *ConnectionCheckScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Connection check scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Connection check scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *ConnectionCheckScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastRun returns the most recent finished check, nil before the first one
func (s *ConnectionCheckScheduler) LastRun() *RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	return &r
}

func (s *ConnectionCheckScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Connection check loop stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ConnectionCheckScheduler) tick(ctx context.Context) {
	r := RunResult{ID: uuid.New(), StartedAt: time.Now()}
	log := s.logger.With(zap.String("run_id", r.ID.String()))

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	r.Err = s.checker.AutoConnectCheck(jobCtx, false)
	r.FinishedAt = time.Now()

	switch {
	case errors.Is(r.Err, connection.ErrCheckInProgress):
		log.Debug("Skipping connection check, an admin check is running")
	case r.Err != nil:
		log.Error("Connection check failed",
			zap.Duration("duration", r.FinishedAt.Sub(r.StartedAt)),
			zap.Error(r.Err),
		)
	default:
		log.Debug("Connection check completed",
			zap.Duration("duration", r.FinishedAt.Sub(r.StartedAt)),
		)
	}

	s.mu.Lock()
	s.last = &r
	s.mu.Unlock()
}
