package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/application/billing"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockBillingRunner struct{ mock.Mock }

func (m *MockBillingRunner) RunDueBilling(ctx context.Context, asOf time.Time) (*billing.BatchResult, error) {
	args := m.Called(ctx, asOf)
	res, _ := args.Get(0).(*billing.BatchResult)
	return res, args.Error(1)
}

func (m *MockBillingRunner) RetryFailedPayments(ctx context.Context, asOf time.Time) (*billing.BatchResult, error) {
	args := m.Called(ctx, asOf)
	res, _ := args.Get(0).(*billing.BatchResult)
	return res, args.Error(1)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestScheduler(t *testing.T, runner BillingRunner, clock *fakeClock) *BillingScheduler {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DailyHour = 6
	cfg.Location = time.UTC
	s, err := NewBillingScheduler(cfg, runner, zap.NewNop())
	require.NoError(t, err)
	s.now = clock.Now
	return s
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"hour too large", func(c *Config) { c.DailyHour = 24 }, true},
		{"negative minute", func(c *Config) { c.DailyMinute = -1 }, true},
		{"zero interval", func(c *Config) { c.CheckInterval = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(config.BillingConfig{SchedulerEnabled: true, DailyHour: 3, DailyMinute: 30, CheckInterval: 10 * time.Second})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 3, cfg.DailyHour)
	assert.Equal(t, 30, cfg.DailyMinute)
	assert.Equal(t, 10*time.Second, cfg.CheckInterval)

	cfg = ConfigFromSettings(config.BillingConfig{})
	assert.Equal(t, time.Minute, cfg.CheckInterval)
}

func TestCheckAndTrigger_OncePerDayAfterDueTime(t *testing.T) {
	runner := new(MockBillingRunner)
	runner.On("RunDueBilling", mock.Anything, mock.Anything).Return(&billing.BatchResult{Total: 2, Successful: 2}, nil)
	runner.On("RetryFailedPayments", mock.Anything, mock.Anything).Return(&billing.BatchResult{}, nil)
	clock := &fakeClock{now: time.Date(2026, 10, 1, 5, 59, 0, 0, time.UTC)}
	s := newTestScheduler(t, runner, clock)
	ctx := context.Background()

	assert.False(t, s.checkAndTrigger(ctx), "before the daily time")

	clock.Set(time.Date(2026, 10, 1, 6, 3, 0, 0, time.UTC))
	assert.True(t, s.checkAndTrigger(ctx), "a late tick still fires")
	assert.False(t, s.checkAndTrigger(ctx), "already ran today")

	clock.Set(time.Date(2026, 10, 2, 6, 0, 0, 0, time.UTC))
	assert.True(t, s.checkAndTrigger(ctx))

	runner.AssertNumberOfCalls(t, "RunDueBilling", 2)
	runner.AssertNumberOfCalls(t, "RetryFailedPayments", 2)
	last := s.LastRun()
	require.NotNil(t, last)
	assert.Equal(t, TriggerDaily, last.Trigger)
	assert.Equal(t, RunStatusSuccess, last.Status)
	assert.Equal(t, 2, last.Billing.Successful)
}

func TestTriggerImmediate_RetriesRunEvenWhenBillingFails(t *testing.T) {
	runner := new(MockBillingRunner)
	runner.On("RunDueBilling", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	runner.On("RetryFailedPayments", mock.Anything, mock.Anything).Return(&billing.BatchResult{Total: 1, Successful: 1}, nil)
	s := newTestScheduler(t, runner, &fakeClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)})

	run, err := s.TriggerImmediate(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Equal(t, TriggerManual, run.Trigger)
	assert.Nil(t, run.Billing)
	assert.Equal(t, 1, run.Retries.Successful)
	runner.AssertExpectations(t)
}

func TestTriggerImmediate_RejectsConcurrentRun(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	runner := new(MockBillingRunner)
	runner.On("RunDueBilling", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&billing.BatchResult{}, nil).Once()
	runner.On("RetryFailedPayments", mock.Anything, mock.Anything).Return(&billing.BatchResult{}, nil)
	s := newTestScheduler(t, runner, &fakeClock{now: time.Now()})

	done := make(chan error, 1)
	go func() {
		_, err := s.TriggerImmediate(context.Background())
		done <- err
	}()
	<-started

	_, err := s.TriggerImmediate(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestStartStop(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	runner := new(MockBillingRunner)
	cfg := DefaultConfig()
	cfg.CheckInterval = 10 * time.Millisecond
	cfg.Location = time.UTC
	s, err := NewBillingScheduler(cfg, runner, zap.New(core))
	require.NoError(t, err)
	// before the daily time, so ticks never bill
	s.now = func() time.Time { return time.Date(2026, 10, 1, 1, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(ctx))

	assert.Equal(t, 1, logs.FilterMessage("Billing scheduler started").Len())
	assert.Equal(t, 1, logs.FilterMessage("Billing scheduler stopped").Len())
}

func TestStart_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	s, err := NewBillingScheduler(cfg, new(MockBillingRunner), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}
