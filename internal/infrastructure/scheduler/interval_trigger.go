package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// IntervalTrigger submits alert scans on a fixed interval. The first scan
// runs shortly after start so a restart does not wait a full interval.
type IntervalTrigger struct {
	interval  time.Duration
	scheduler *Scheduler
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewIntervalTrigger creates a new interval trigger
func NewIntervalTrigger(interval time.Duration, sched *Scheduler, logger *zap.Logger) *IntervalTrigger {
	return &IntervalTrigger{
		interval:  interval,
		scheduler: sched,
		logger:    logger,
	}
}

// Start starts the trigger loop
func (t *IntervalTrigger) Start(ctx context.Context) error {
	if t.interval <= 0 {
		return ErrInvalidConfig
	}

	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Interval trigger started", zap.Duration("interval", t.interval))
	return nil
}

// Stop stops the trigger loop
func (t *IntervalTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Interval trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *IntervalTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	t.fire()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.fire()
		}
	}
}

func (t *IntervalTrigger) fire() {
	if err := t.scheduler.ScheduleScan(); err != nil {
		t.logger.Error("Failed to schedule alert scan", zap.Error(err))
	}
}
