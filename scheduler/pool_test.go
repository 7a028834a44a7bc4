package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvgds/execctx"
	"github.com/katalvlaran/lvgds/internal/ctxlog"
	"github.com/katalvlaran/lvgds/scheduler"
)

// peakBody tracks how many goroutines run the body at the same time.
type peakBody struct {
	cur, peak atomic.Int32
	runs      atomic.Int32
	hold      time.Duration
}

func (b *peakBody) Run() error {
	n := b.cur.Add(1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(b.hold)
	b.cur.Add(-1)
	b.runs.Add(1)
	return nil
}

func newPool(t *testing.T, workers int, opts ...scheduler.Option) *scheduler.Pool {
	t.Helper()
	opts = append([]scheduler.Option{scheduler.WithLogger(ctxlog.Discard())}, opts...)
	p, err := scheduler.NewPool(workers, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, p.Close()) })
	return p
}

func TestPool_SingleWorkerSerializes(t *testing.T) {
	p := newPool(t, 1)
	body := &peakBody{hold: 5 * time.Millisecond}
	task := scheduler.NewTask(body, 2)

	require.NoError(t, p.ScheduleTaskAndWaitOrError(newExec(t), task, false))
	require.EqualValues(t, 1, body.peak.Load())
	require.True(t, task.IsCompletedSuccessfully())
	require.Zero(t, p.Pending())
}

func TestPool_MaxThreadsCap(t *testing.T) {
	p := newPool(t, 8)
	body := &peakBody{hold: 20 * time.Millisecond}
	task := scheduler.NewTask(body, 3)

	require.NoError(t, p.ScheduleTaskAndWaitOrError(newExec(t), task, true))
	require.LessOrEqual(t, body.peak.Load(), int32(3))
	reg, fin := task.Registrations()
	require.LessOrEqual(t, reg, 3)
	require.Equal(t, reg, fin)
	require.Zero(t, p.Pending())
}

func TestPool_QueueEmptyAfterError(t *testing.T) {
	p := newPool(t, 4)
	boom := errors.New("compute failed")
	var calls atomic.Int32
	task := scheduler.NewTask(scheduler.BodyFunc(func() error {
		if calls.Add(1) == 1 {
			return boom
		}
		time.Sleep(time.Millisecond)
		return nil
	}), 4)

	ec := newExec(t)
	err := p.ScheduleTaskAndWaitOrError(ec, task, true)
	require.ErrorIs(t, err, boom)
	require.Zero(t, p.Pending())
	reg, fin := task.Registrations()
	require.Equal(t, reg, fin)
}

func TestPool_TimeoutInterruptsClient(t *testing.T) {
	p := newPool(t, 1)
	ec := newExec(t, execctx.WithTimeout(10*time.Millisecond))
	task := scheduler.NewTask(scheduler.BodyFunc(func() error {
		for !ec.Client.Interrupted() {
			time.Sleep(time.Millisecond)
		}
		return ec.Client.CheckInterrupt()
	}), 1)

	err := p.ScheduleTaskAndWaitOrError(ec, task, false)
	require.ErrorIs(t, err, execctx.ErrInterrupted)
	require.Zero(t, p.Pending())
}

func TestPool_ZeroDedicatedBudgetCallerRuns(t *testing.T) {
	p := newPool(t, 1, scheduler.WithMaxDedicatedWorkers(0))
	ec := newExec(t)

	// Occupy the only worker with a task that nests another launchNewWorker call.
	var inner atomic.Bool
	outer := scheduler.NewTask(scheduler.BodyFunc(func() error {
		nested := scheduler.NewTask(scheduler.BodyFunc(func() error {
			inner.Store(true)
			return nil
		}), 2)
		return p.ScheduleTaskAndWaitOrError(ec, nested, true)
	}), 1)

	require.NoError(t, p.ScheduleTaskAndWaitOrError(ec, outer, false))
	require.True(t, inner.Load())
	require.Zero(t, p.Pending())
}

func TestPool_ConcurrentCallers(t *testing.T) {
	p := newPool(t, 3)
	var wg sync.WaitGroup
	var total atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task := scheduler.NewTask(scheduler.BodyFunc(func() error {
				total.Add(1)
				return nil
			}), 1)
			assert.NoError(t, p.ScheduleTaskAndWaitOrError(newExec(t), task, false))
		}()
	}
	wg.Wait()
	require.EqualValues(t, 16, total.Load())
	require.Zero(t, p.Pending())
}

func TestPool_ClosedRejects(t *testing.T) {
	p, err := scheduler.NewPool(1, scheduler.WithLogger(ctxlog.Discard()))
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	task := scheduler.NewTask(scheduler.BodyFunc(func() error { return nil }), 1)
	require.ErrorIs(t, p.ScheduleTaskAndWaitOrError(newExec(t), task, false), scheduler.ErrClosed)
}

func TestPool_CloseDrainsQueued(t *testing.T) {
	for i := 0; i < 200; i++ {
		p, err := scheduler.NewPool(1, scheduler.WithLogger(ctxlog.Discard()))
		require.NoError(t, err)
		var ran atomic.Bool
		task := scheduler.NewTask(scheduler.BodyFunc(func() error {
			ran.Store(true)
			return nil
		}), 1)
		ec := newExec(t)
		errCh := make(chan error, 1)
		go func() { errCh <- p.ScheduleTaskAndWaitOrError(ec, task, false) }()
		require.NoError(t, p.Close())

		select {
		case err := <-errCh:
			if errors.Is(err, scheduler.ErrClosed) {
				require.False(t, ran.Load())
				continue
			}
			require.NoError(t, err)
			require.True(t, ran.Load())
		case <-time.After(2 * time.Second):
			t.Fatalf("iteration %d: queued task never ran after Close", i)
		}
	}
}

func BenchmarkPool_ScheduleSmallTask(b *testing.B) {
	p, err := scheduler.NewPool(4, scheduler.WithLogger(ctxlog.Discard()))
	require.NoError(b, err)
	defer p.Close()
	client, err := execctx.NewClientContext(context.Background())
	require.NoError(b, err)
	ec := execctx.NewExecutionContext(client, ctxlog.Discard())
	noop := scheduler.BodyFunc(func() error { return nil })

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := p.ScheduleTaskAndWaitOrError(ec, scheduler.NewTask(noop, 2), false); err != nil {
			b.Fatal(err)
		}
	}
}
