// SPDX-License-Identifier: MIT

package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvgds/execctx"
	"github.com/katalvlaran/lvgds/metrics"
)

const poolLabel = "pool"

// scheduledTask is a queue entry; it lives only while queued.
type scheduledTask struct {
	id   uint64
	task *Task
}

// Pool is a fixed set of worker goroutines sharing one FIFO queue.
type Pool struct {
	mu     sync.Mutex // guards queue, nextID, closed
	queue  deque.Deque[*scheduledTask]
	nextID uint64
	closed bool

	numWorkers int
	wake       chan struct{} // one token per parked worker at most
	quit       chan struct{}
	group      errgroup.Group
	closeOnce  sync.Once

	dedicated chan struct{} // semaphore for launchNewWorker goroutines
	logger    *slog.Logger
}

// NewPool starts numWorkers worker goroutines.
func NewPool(numWorkers int, opts ...Option) (*Pool, error) {
	if numWorkers <= 0 {
		return nil, fmt.Errorf("%w: numWorkers must be positive (%d)", ErrOptionViolation, numWorkers)
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if o.MaxDedicatedWorkers < 0 {
		o.MaxDedicatedWorkers = 2 * numWorkers
	}

	p := &Pool{
		numWorkers: numWorkers,
		wake:       make(chan struct{}, numWorkers),
		quit:       make(chan struct{}),
		dedicated:  make(chan struct{}, o.MaxDedicatedWorkers),
		logger:     o.Logger,
	}
	for i := 0; i < numWorkers; i++ {
		id := i
		p.group.Go(func() error { return p.runWorker(id) })
	}
	return p, nil
}

// NumWorkers returns the pool size.
func (p *Pool) NumWorkers() int { return p.numWorkers }

// Pending returns the number of queued entries.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}

// Close stops accepting tasks, lets workers drain the queue and waits for them.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.quit)
	})
	return p.group.Wait()
}

// runWorker is the worker loop: claim the first registrable task in queue
// order, run it, deregister, repeat; park on the wake channel when idle.
func (p *Pool) runWorker(id int) error {
	p.logger.Debug("scheduler: worker started", "worker", id)
	defer p.logger.Debug("scheduler: worker stopped", "worker", id)
	for {
		st := p.getTaskAndRegister()
		if st == nil {
			select {
			case <-p.wake:
				continue
			case <-p.quit:
				// quit may win over a pending wake; drain what is queued.
				for st := p.getTaskAndRegister(); st != nil; st = p.getTaskAndRegister() {
					runTask(st.task)
				}
				return nil
			}
		}
		runTask(st.task)
	}
}

// getTaskAndRegister scans the queue head to tail and returns the first entry
// that accepts a registration. Entries that refuse because they completed
// successfully are dropped; errored or still-running entries stay until
// their scheduling goroutine removes them.
func (p *Pool) getTaskAndRegister() *scheduledTask {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < p.queue.Len(); {
		st := p.queue.At(i)
		if st.task.RegisterThread() {
			return st
		}
		if st.task.IsCompletedSuccessfully() {
			p.queue.Remove(i)
			continue
		}
		i++
	}
	return nil
}

func (p *Pool) push(t *Task) (*scheduledTask, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	st := &scheduledTask{id: p.nextID, task: t}
	p.nextID++
	p.queue.PushBack(st)
	p.mu.Unlock()

	// Wake every parked worker; a full channel means enough tokens are pending.
	for i := 0; i < p.numWorkers; i++ {
		select {
		case p.wake <- struct{}{}:
		default:
			return st, nil
		}
	}
	return st, nil
}

func (p *Pool) remove(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < p.queue.Len(); i++ {
		if p.queue.At(i).id == id {
			p.queue.Remove(i)
			return
		}
	}
}

func (p *Pool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Pool) acquireDedicated() bool {
	select {
	case p.dedicated <- struct{}{}:
		metrics.DedicatedWorkers.Inc()
		return true
	default:
		return false
	}
}

func (p *Pool) releaseDedicated() {
	<-p.dedicated
	metrics.DedicatedWorkers.Dec()
}

// ScheduleTaskAndWaitOrError implements Scheduler.
func (p *Pool) ScheduleTaskAndWaitOrError(ec *execctx.ExecutionContext, t *Task, launchNewWorker bool) error {
	ctx, span := tracer.Start(ec.Ctx, "scheduler.Pool.ScheduleTaskAndWaitOrError",
		trace.WithAttributes(
			attribute.Int("max_threads", t.MaxThreads()),
			attribute.Int("children", len(t.Children())),
			attribute.Bool("launch_new_worker", launchNewWorker),
		))
	defer span.End()

	if err := p.scheduleAndWait(ec.WithContext(ctx), t, launchNewWorker); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "task failed")
		return err
	}
	return nil
}

func (p *Pool) scheduleAndWait(ec *execctx.ExecutionContext, t *Task, launchNewWorker bool) error {
	// 1) Dependencies first, depth-first and left-to-right.
	for _, child := range t.Children() {
		if err := p.scheduleAndWait(ec, child, false); err != nil {
			return err
		}
		if child.Terminate() {
			return nil
		}
	}
	if p.isClosed() {
		return ErrClosed
	}
	metrics.TasksScheduled.WithLabelValues(poolLabel).Inc()

	// 2) Optional dedicated goroutine, pre-registered so it is guaranteed a slot.
	var joined chan struct{}
	callerRuns := false
	if launchNewWorker {
		if p.acquireDedicated() {
			t.RegisterThread()
			joined = make(chan struct{})
			go func() {
				defer close(joined)
				defer p.releaseDedicated()
				runTask(t)
			}()
		} else {
			callerRuns = true
		}
	}

	// 3) Enqueue and wait.
	st, err := p.push(t)
	if err != nil {
		if joined != nil {
			<-joined
		}
		return err
	}
	if callerRuns && t.RegisterThread() {
		ec.Logger().Debug("scheduler: dedicated budget exhausted, running task on caller")
		runTask(t)
	}
	start := time.Now()
	waitForTask(ec.Client, t)
	metrics.TaskWait.WithLabelValues(poolLabel).Observe(time.Since(start).Seconds())
	if joined != nil {
		<-joined
	}
	p.remove(st.id)

	if err := t.Err(); err != nil {
		metrics.TaskErrors.WithLabelValues(poolLabel).Inc()
		ec.Logger().Debug("scheduler: task failed", "task_id", st.id, "error", err)
		return err
	}
	return nil
}

// waitForTask blocks until t completes. With a timeout it interrupts the
// client once the budget is spent; without one it interrupts as soon as t
// stores an error so that other workers stop early.
func waitForTask(client *execctx.ClientContext, t *Task) {
	failed := t.Failed()
	for {
		if t.IsCompleted() {
			return
		}
		var timer *time.Timer
		var timeout <-chan time.Time
		if client.HasTimeout() {
			if rem := client.TimeoutRemaining(); rem == 0 {
				client.Interrupt()
			} else {
				timer = time.NewTimer(rem)
				timeout = timer.C
			}
		} else if t.HasError() {
			client.Interrupt()
		}

		select {
		case <-t.Done():
		case <-failed:
			failed = nil
		case <-timeout:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}
