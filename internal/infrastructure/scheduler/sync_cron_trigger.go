package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	syncapp "github.com/storefront/backend/internal/application/sync"
)

// SyncRunner triggers catalog sync runs. Implemented by the sync
// application service.
type SyncRunner interface {
	Run(ctx context.Context, scope *uuid.UUID) (*syncapp.RunSummary, error)
}

// SyncCronTriggerConfig holds configuration for the sync cron trigger
type SyncCronTriggerConfig struct {
	// Interval is how often to kick off a sync run
	Interval time.Duration
	// RunTimeout is the maximum time a single run can take
	RunTimeout time.Duration
}

// DefaultSyncCronTriggerConfig returns default cron trigger configuration
func DefaultSyncCronTriggerConfig() SyncCronTriggerConfig {
	return SyncCronTriggerConfig{
		Interval:   time.Hour,
		RunTimeout: 30 * time.Minute,
	}
}

// Validate validates the configuration
func (c *SyncCronTriggerConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.RunTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// SyncCronTrigger periodically starts unscoped catalog sync runs. The
// run itself decides which integrations are due, so the trigger only
// needs to fire on a fixed interval.
type SyncCronTrigger struct {
	config SyncCronTriggerConfig
	runner SyncRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncCronTrigger creates a new sync cron trigger
func NewSyncCronTrigger(config SyncCronTriggerConfig, runner SyncRunner, logger *zap.Logger) (*SyncCronTrigger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &SyncCronTrigger{
		config: config,
		runner: runner,
		logger: logger,
	}, nil
}

// Start starts the cron trigger
func (c *SyncCronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Sync cron trigger started",
		zap.Duration("interval", c.config.Interval),
		zap.Duration("run_timeout", c.config.RunTimeout),
	)

	return nil
}

// Stop gracefully stops the cron trigger
func (c *SyncCronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Sync cron trigger stopped")
		return nil
	case <-ctx.Done():
		c.logger.Warn("Sync cron trigger stop timed out")
		return ctx.Err()
	}
}

// runLoop fires a sync run on every tick until the context is cancelled
func (c *SyncCronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.trigger(ctx)
		}
	}
}

// trigger starts one unscoped sync run
func (c *SyncCronTrigger) trigger(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, c.config.RunTimeout)
	defer cancel()

	c.logger.Info("Scheduled sync run starting")

	summary, err := c.runner.Run(runCtx, nil)
	if err != nil {
		c.logger.Error("Scheduled sync run failed", zap.Error(err))
		return
	}

	success, failed, skipped := summary.Counts()
	c.logger.Info("Scheduled sync run finished",
		zap.Int("success", success),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
		zap.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)
}
