package sync

import (
	"context"
	"errors"
	stdsync "sync"
	"time"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/semaphore"

	"github.com/honeycarbs/talentsync/pkg/logging"
)

// TaskSyncTalent names the background sync task
const TaskSyncTalent = "sync_talent"

// ErrDispatcherClosed is returned by Shutdown when called twice
var ErrDispatcherClosed = errors.New("dispatcher is closed")

// DispatcherOption configures Dispatcher
type DispatcherOption func(*Dispatcher)

// WithMaxInFlight bounds the number of concurrently running tasks; n <= 0 means unbounded
func WithMaxInFlight(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithTaskTimeout bounds every task run
func WithTaskTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithRecorder sets the task recorder
func WithRecorder(rec Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		if rec != nil {
			d.rec = rec
		}
	}
}

// Dispatcher runs fire-and-forget work on its own goroutines. Callers never block
// on it and never see its errors; failures and panics are logged here.
type Dispatcher struct {
	runner  Runner
	log     *logging.Logger
	rec     Recorder
	sem     *semaphore.Weighted
	timeout time.Duration

	base   context.Context
	cancel context.CancelFunc

	mu     stdsync.Mutex
	closed bool
	wg     stdsync.WaitGroup
}

// NewDispatcher creates a Dispatcher that runs sync attempts through runner
func NewDispatcher(runner Runner, log *logging.Logger, opts ...DispatcherOption) *Dispatcher {
	if log == nil {
		log = logging.NewNop()
	}

	// runs outlive the request that triggered them
	base, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		runner: runner,
		log:    log.With("component", "dispatcher"),
		rec:    NopRecorder{},
		base:   base,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// TriggerBackgroundSync schedules one sync attempt for the talent and returns immediately
func (d *Dispatcher) TriggerBackgroundSync(talentID, jobID string) {
	d.Go(TaskSyncTalent, func(ctx context.Context) error {
		_, err := d.runner.SyncTalent(ctx, talentID, jobID)
		return err
	})
}

// Go schedules fn on its own goroutine. It reports false when the dispatcher is shut down.
func (d *Dispatcher) Go(name string, fn func(ctx context.Context) error) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Warn("dispatcher closed, dropping task", "task", name)
		return false
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go d.run(name, fn)
	return true
}

func (d *Dispatcher) run(name string, fn func(ctx context.Context) error) {
	defer d.wg.Done()

	// waiting for a slot only ends at shutdown; the task timeout covers the run itself
	if d.sem != nil {
		if err := d.sem.Acquire(d.base, 1); err != nil {
			d.log.Warn("background task abandoned before start", "task", name, "error", err)
			return
		}
		defer d.sem.Release(1)
	}

	ctx := d.base
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	d.rec.TaskStarted(name)

	var err error
	recovered := panics.Try(func() {
		err = fn(ctx)
	})
	if recovered != nil {
		d.log.Error("background task panicked", "task", name, "panic", recovered.Value, "stack", string(recovered.Stack))
		d.rec.TaskFinished(name, recovered.AsError(), true)
		return
	}
	if err != nil {
		d.log.Warn("background task failed", "task", name, "error", err)
	}
	d.rec.TaskFinished(name, err, false)
}

// Shutdown stops accepting work and waits for running tasks. When ctx expires first,
// running tasks are cancelled and ctx's error is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
