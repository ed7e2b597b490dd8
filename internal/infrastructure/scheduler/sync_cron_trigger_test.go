package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncapp "github.com/storefront/backend/internal/application/sync"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

// stubRunner counts Run invocations and records the scope it was given.
type stubRunner struct {
	runs    atomic.Int64
	lastErr error
	fired   chan struct{}
}

func newStubRunner() *stubRunner {
	return &stubRunner{fired: make(chan struct{}, 16)}
}

func (r *stubRunner) Run(ctx context.Context, scope *uuid.UUID) (*syncapp.RunSummary, error) {
	r.runs.Add(1)
	select {
	case r.fired <- struct{}{}:
	default:
	}
	if r.lastErr != nil {
		return nil, r.lastErr
	}
	now := time.Now()
	return &syncapp.RunSummary{StartedAt: now, FinishedAt: now}, nil
}

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestSyncCronTriggerConfig_Validate(t *testing.T) {
	cfg := DefaultSyncCronTriggerConfig()
	assert.NoError(t, cfg.Validate())

	cfg = SyncCronTriggerConfig{Interval: 0, RunTimeout: time.Minute}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = SyncCronTriggerConfig{Interval: time.Hour, RunTimeout: 0}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestNewSyncCronTrigger_InvalidConfig(t *testing.T) {
	_, err := NewSyncCronTrigger(SyncCronTriggerConfig{}, newStubRunner(), newTestLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// ---------------------------------------------------------------------------
// Trigger Tests
// ---------------------------------------------------------------------------

func TestSyncCronTrigger_FiresOnInterval(t *testing.T) {
	runner := newStubRunner()
	trigger, err := NewSyncCronTrigger(SyncCronTriggerConfig{
		Interval:   10 * time.Millisecond,
		RunTimeout: time.Second,
	}, runner, newTestLogger())
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))
	defer trigger.Stop(context.Background())

	select {
	case <-runner.fired:
	case <-time.After(time.Second):
		t.Fatal("trigger never fired")
	}
}

func TestSyncCronTrigger_RunErrorDoesNotStopLoop(t *testing.T) {
	runner := newStubRunner()
	runner.lastErr = errors.New("integrations unavailable")

	trigger, err := NewSyncCronTrigger(SyncCronTriggerConfig{
		Interval:   5 * time.Millisecond,
		RunTimeout: time.Second,
	}, runner, newTestLogger())
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))
	defer trigger.Stop(context.Background())

	// Wait for at least two fires to prove the loop survived the error
	for i := 0; i < 2; i++ {
		select {
		case <-runner.fired:
		case <-time.After(time.Second):
			t.Fatal("trigger stopped firing after error")
		}
	}
	assert.GreaterOrEqual(t, runner.runs.Load(), int64(2))
}

func TestSyncCronTrigger_StartIsIdempotent(t *testing.T) {
	trigger, err := NewSyncCronTrigger(SyncCronTriggerConfig{
		Interval:   time.Hour,
		RunTimeout: time.Minute,
	}, newStubRunner(), newTestLogger())
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Stop(context.Background()))
}

func TestSyncCronTrigger_StopWithoutStart(t *testing.T) {
	trigger, err := NewSyncCronTrigger(SyncCronTriggerConfig{
		Interval:   time.Hour,
		RunTimeout: time.Minute,
	}, newStubRunner(), newTestLogger())
	require.NoError(t, err)

	assert.NoError(t, trigger.Stop(context.Background()))
}

func TestSyncCronTrigger_StopHaltsFiring(t *testing.T) {
	runner := newStubRunner()
	trigger, err := NewSyncCronTrigger(SyncCronTriggerConfig{
		Interval:   5 * time.Millisecond,
		RunTimeout: time.Second,
	}, runner, newTestLogger())
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))

	select {
	case <-runner.fired:
	case <-time.After(time.Second):
		t.Fatal("trigger never fired")
	}

	require.NoError(t, trigger.Stop(context.Background()))
	countAtStop := runner.runs.Load()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, countAtStop, runner.runs.Load())
}
