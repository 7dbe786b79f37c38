package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingExecutor counts executions and can fail a configurable number of times
type recordingExecutor struct {
	mu       sync.Mutex
	executed []ScanType
	failures int
}

func (e *recordingExecutor) Execute(ctx context.Context, job *Job) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed = append(e.executed, job.ScanType)
	if e.failures > 0 {
		e.failures--
		return errors.New("scan failed")
	}
	return nil
}

func (e *recordingExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.executed)
}

func testConfig() Config {
	return Config{
		Enabled:           true,
		MaxConcurrentJobs: 2,
		JobTimeout:        time.Second,
		RetryAttempts:     1,
		RetryDelay:        time.Millisecond,
	}
}

func TestScheduler(t *testing.T) {
	t.Run("rejects jobs when not running", func(t *testing.T) {
		s := NewScheduler(testConfig(), &recordingExecutor{}, zap.NewNop())

		err := s.SubmitJob(NewJob(ScanTypeLowStock, 0))

		assert.ErrorIs(t, err, ErrSchedulerNotRunning)
	})

	t.Run("executes submitted jobs", func(t *testing.T) {
		exec := &recordingExecutor{}
		s := NewScheduler(testConfig(), exec, zap.NewNop())
		require.NoError(t, s.Start(context.Background()))

		require.NoError(t, s.SubmitJob(NewJob(ScanTypeExpiry, 0)))

		assert.Eventually(t, func() bool { return exec.count() == 1 }, time.Second, 10*time.Millisecond)
		require.NoError(t, s.Stop(context.Background()))
	})

	t.Run("schedule scan submits one job per scan type", func(t *testing.T) {
		exec := &recordingExecutor{}
		s := NewScheduler(testConfig(), exec, zap.NewNop())
		require.NoError(t, s.Start(context.Background()))

		require.NoError(t, s.ScheduleScan())

		assert.Eventually(t, func() bool { return exec.count() == len(AllScanTypes()) }, time.Second, 10*time.Millisecond)
		require.NoError(t, s.Stop(context.Background()))
	})

	t.Run("failed jobs retry up to max", func(t *testing.T) {
		exec := &recordingExecutor{failures: 1}
		s := NewScheduler(testConfig(), exec, zap.NewNop())
		require.NoError(t, s.Start(context.Background()))

		require.NoError(t, s.SubmitJob(NewJob(ScanTypeLowStock, 1)))

		assert.Eventually(t, func() bool { return exec.count() == 2 }, 2*time.Second, 10*time.Millisecond)
		require.NoError(t, s.Stop(context.Background()))
	})
}

func TestJobLifecycle(t *testing.T) {
	job := NewJob(ScanTypeLowStock, 2)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)

	job.Fail("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Minute)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, JobStatusPending, job.Status)
	require.NotNil(t, job.NextRetryAt)

	job.Fail("boom")
	job.ScheduleRetry(time.Minute)
	job.Fail("boom")
	assert.False(t, job.ShouldRetry())
}

func TestIntervalTrigger(t *testing.T) {
	t.Run("fires immediately on start", func(t *testing.T) {
		exec := &recordingExecutor{}
		s := NewScheduler(testConfig(), exec, zap.NewNop())
		require.NoError(t, s.Start(context.Background()))

		trigger := NewIntervalTrigger(time.Hour, s, zap.NewNop())
		require.NoError(t, trigger.Start(context.Background()))

		assert.Eventually(t, func() bool { return exec.count() == len(AllScanTypes()) }, time.Second, 10*time.Millisecond)

		require.NoError(t, trigger.Stop(context.Background()))
		require.NoError(t, s.Stop(context.Background()))
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		trigger := NewIntervalTrigger(0, nil, zap.NewNop())
		assert.ErrorIs(t, trigger.Start(context.Background()), ErrInvalidConfig)
	})
}
