// Package scheduler runs the daily subscription billing job.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/application/billing"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"github.com/wagginmeals/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RunStatus represents the status of a billing run
type RunStatus string

const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

// Trigger names what started a run
type Trigger string

const (
	TriggerDaily  Trigger = "daily"
	TriggerManual Trigger = "manual"
)

// BillingRunner is the part of the billing service the scheduler drives
type BillingRunner interface {
	RunDueBilling(ctx context.Context, asOf time.Time) (*billing.BatchResult, error)
	RetryFailedPayments(ctx context.Context, asOf time.Time) (*billing.BatchResult, error)
}

// Run records one execution of the billing job
type Run struct {
	ID          uuid.UUID            `json:"id"`
	Trigger     Trigger              `json:"trigger"`
	Status      RunStatus            `json:"status"`
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	Billing     *billing.BatchResult `json:"billing,omitempty"`
	Retries     *billing.BatchResult `json:"retries,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Config holds the billing scheduler configuration
type Config struct {
	Enabled       bool
	DailyHour     int
	DailyMinute   int
	CheckInterval time.Duration
	JobTimeout    time.Duration
	Location      *time.Location
}

// DefaultConfig returns the default configuration: 06:00 daily, checked every minute
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		DailyHour:     6,
		DailyMinute:   0,
		CheckInterval: time.Minute,
		JobTimeout:    30 * time.Minute,
		Location:      time.Local,
	}
}

// ConfigFromSettings maps the billing section of the application config
func ConfigFromSettings(cfg config.BillingConfig) Config {
	c := DefaultConfig()
	c.Enabled = cfg.SchedulerEnabled
	c.DailyHour = cfg.DailyHour
	c.DailyMinute = cfg.DailyMinute
	if cfg.CheckInterval > 0 {
		c.CheckInterval = cfg.CheckInterval
	}
	return c
}

// Validate checks the trigger time and intervals
func (c Config) Validate() error {
	if c.DailyHour < 0 || c.DailyHour > 23 || c.DailyMinute < 0 || c.DailyMinute > 59 {
		return fmt.Errorf("%w: daily time %02d:%02d", ErrInvalidConfig, c.DailyHour, c.DailyMinute)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// BillingScheduler triggers RunDueBilling and then RetryFailedPayments once a
// day at the configured time. Only one run executes at a time.
type BillingScheduler struct {
	config Config
	runner BillingRunner
	logger *zap.Logger
	now    func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	inFlight    bool
	lastRunDate string
	lastRun     *Run
}

// NewBillingScheduler creates a new scheduler
func NewBillingScheduler(cfg Config, runner BillingRunner, logger *zap.Logger) (*BillingScheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultConfig().JobTimeout
	}
	return &BillingScheduler{
		config: cfg,
		runner: runner,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Start starts the trigger loop. It is a no-op when disabled or already running.
func (s *BillingScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Billing scheduler disabled")
		return nil
	}
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Billing scheduler started",
		zap.Int("daily_hour", s.config.DailyHour),
		zap.Int("daily_minute", s.config.DailyMinute),
		zap.Duration("check_interval", s.config.CheckInterval),
	)
	return nil
}

// Stop stops the loop and waits for an in-flight run or ctx
func (s *BillingScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Billing scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Billing scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the trigger loop is active
func (s *BillingScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastRun returns a copy of the most recent run, if any
func (s *BillingScheduler) LastRun() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	r := *s.lastRun
	return &r
}

// TriggerImmediate runs billing now, on the caller's goroutine
func (s *BillingScheduler) TriggerImmediate(ctx context.Context) (*Run, error) {
	return s.execute(ctx, TriggerManual)
}

func (s *BillingScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger fires once per calendar day, at or after the configured time
func (s *BillingScheduler) checkAndTrigger(ctx context.Context) bool {
	now := s.now().In(s.config.Location)
	today := now.Format(time.DateOnly)

	s.mu.Lock()
	if s.lastRunDate == today {
		s.mu.Unlock()
		return false
	}
	due := time.Date(now.Year(), now.Month(), now.Day(), s.config.DailyHour, s.config.DailyMinute, 0, 0, s.config.Location)
	if now.Before(due) {
		s.mu.Unlock()
		return false
	}
	s.lastRunDate = today
	s.mu.Unlock()

	s.logger.Info("Triggering daily billing", zap.String("date", today))
	if _, err := s.execute(ctx, TriggerDaily); err != nil {
		s.logger.Error("Daily billing run failed", zap.Error(err))
	}
	return true
}

func (s *BillingScheduler) execute(ctx context.Context, trigger Trigger) (*Run, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrRunInProgress
	}
	s.inFlight = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	run := &Run{ID: uuid.New(), Trigger: trigger, Status: RunStatusRunning, StartedAt: s.now()}
	log := s.logger.With(zap.String("run_id", run.ID.String()), zap.String("trigger", string(trigger)))

	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()
	ctx, span := telemetry.StartSpan(ctx, "scheduler", "billing_run",
		attribute.String("run.id", run.ID.String()),
		attribute.String("run.trigger", string(trigger)),
	)

	var errs []error
	asOf := s.now()
	res, err := s.runner.RunDueBilling(ctx, asOf)
	if err != nil {
		errs = append(errs, fmt.Errorf("process billing: %w", err))
	}
	run.Billing = res

	retries, err := s.runner.RetryFailedPayments(ctx, s.now())
	if err != nil {
		errs = append(errs, fmt.Errorf("retry failed payments: %w", err))
	}
	run.Retries = retries

	completed := s.now()
	run.CompletedAt = &completed
	runErr := errors.Join(errs...)
	telemetry.EndSpan(span, runErr)
	if runErr != nil {
		run.Status = RunStatusFailed
		run.Error = runErr.Error()
	} else {
		run.Status = RunStatusSuccess
	}

	fields := []zap.Field{zap.Duration("duration", completed.Sub(run.StartedAt))}
	if res != nil {
		fields = append(fields, zap.Int("billed", res.Successful), zap.Int("failed", res.Failed), zap.Int("skipped", res.Skipped))
	}
	if retries != nil {
		fields = append(fields, zap.Int("retried", retries.Total), zap.Int("recovered", retries.Successful))
	}
	if runErr != nil {
		log.Error("Billing run finished with errors", append(fields, zap.Error(runErr))...)
	} else {
		log.Info("Billing run finished", fields...)
	}

	s.mu.Lock()
	s.lastRun = run
	s.mu.Unlock()
	return run, runErr
}
