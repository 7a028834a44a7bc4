// SPDX-License-Identifier: MIT

// Package execctx carries per-query execution state: the client-side
// interrupt flag and timeout budget, the thread budget for parallel
// operators, and the profiler and logger of the running query.
//
// Cancellation is cooperative. Long-running loops poll Interrupted (or
// CheckInterrupt) at iteration boundaries and return ErrInterrupted; nothing
// is preempted. An explicit Interrupt, an expired timeout and a cancelled
// parent context are indistinguishable to callers.
package execctx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/katalvlaran/lvgds/config"
	"github.com/katalvlaran/lvgds/internal/ctxlog"
	"github.com/katalvlaran/lvgds/metrics"
)

var (
	// ErrInterrupted is returned by every cancellation point.
	ErrInterrupted = errors.New("execctx: query interrupted")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("execctx: invalid option supplied")
)

// DefaultSparseFrontierThreshold is the number of sparse frontier entries
// above which the GDS engine switches to dense frontiers.
const DefaultSparseFrontierThreshold uint64 = 1024

// Option configures a ClientContext.
type Option func(*ClientContext)

// WithTimeout bounds the query's wall-clock time. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *ClientContext) {
		if d < 0 {
			c.err = fmt.Errorf("%w: timeout cannot be negative (%s)", ErrOptionViolation, d)
			return
		}
		c.timeout = d
	}
}

// WithMaxNumThreads sets maxNumThreadForExec.
func WithMaxNumThreads(n int) Option {
	return func(c *ClientContext) {
		if n <= 0 {
			c.err = fmt.Errorf("%w: max threads must be positive (%d)", ErrOptionViolation, n)
			return
		}
		c.maxThreads = n
	}
}

// WithSparseFrontierThreshold sets the sparse to dense switch threshold.
func WithSparseFrontierThreshold(n uint64) Option {
	return func(c *ClientContext) { c.sparseFrontierThreshold = n }
}

// WithArenaBlockCapacity sets the number of ParentList slots per arena block.
func WithArenaBlockCapacity(n int) Option {
	return func(c *ClientContext) {
		if n <= 0 {
			c.err = fmt.Errorf("%w: arena block capacity must be positive (%d)", ErrOptionViolation, n)
			return
		}
		c.arenaBlockCapacity = n
	}
}

// OptionsFromConfig maps the query section of a config file to Options.
// Zero values keep the defaults, except Timeout where zero already means none.
func OptionsFromConfig(q config.QueryConfig) []Option {
	opts := []Option{WithTimeout(q.Timeout)}
	if q.MaxNumThreads > 0 {
		opts = append(opts, WithMaxNumThreads(q.MaxNumThreads))
	}
	if q.SparseFrontierThreshold > 0 {
		opts = append(opts, WithSparseFrontierThreshold(q.SparseFrontierThreshold))
	}
	if q.ArenaBlockCapacity > 0 {
		opts = append(opts, WithArenaBlockCapacity(q.ArenaBlockCapacity))
	}
	return opts
}

// ClientContext is the client-side view of a running query.
// All methods are safe for concurrent use.
type ClientContext struct {
	ctx         context.Context
	interrupted atomic.Bool
	startTime   time.Time

	timeout                 time.Duration
	maxThreads              int
	sparseFrontierThreshold uint64
	arenaBlockCapacity      int

	err error
}

// NewClientContext builds a ClientContext bound to ctx. Cancelling ctx has
// the same effect as calling Interrupt.
func NewClientContext(ctx context.Context, opts ...Option) (*ClientContext, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	c := &ClientContext{
		ctx:                     ctx,
		startTime:               time.Now(),
		maxThreads:              runtime.GOMAXPROCS(0),
		sparseFrontierThreshold: DefaultSparseFrontierThreshold,
		arenaBlockCapacity:      1 << 13,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.err != nil {
		return nil, c.err
	}
	return c, nil
}

// Interrupted reports whether the query must stop. An expired timeout
// latches the interrupt flag.
func (c *ClientContext) Interrupted() bool {
	if c.interrupted.Load() {
		return true
	}
	if c.HasTimeout() && time.Since(c.startTime) >= c.timeout {
		c.interrupted.Store(true)
		return true
	}
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// CheckInterrupt returns ErrInterrupted when Interrupted is true.
func (c *ClientContext) CheckInterrupt() error {
	if c.Interrupted() {
		return ErrInterrupted
	}
	return nil
}

// Interrupt flags the query for cooperative cancellation. Idempotent.
func (c *ClientContext) Interrupt() { c.interrupted.Store(true) }

// HasTimeout reports whether a timeout was configured.
func (c *ClientContext) HasTimeout() bool { return c.timeout > 0 }

// TimeoutRemaining returns the remaining time budget, never negative.
// Without a timeout it returns 0.
func (c *ClientContext) TimeoutRemaining() time.Duration {
	if !c.HasTimeout() {
		return 0
	}
	rem := c.timeout - time.Since(c.startTime)
	if rem < 0 {
		return 0
	}
	return rem
}

// TimeoutRemainingInMS is TimeoutRemaining truncated to milliseconds.
func (c *ClientContext) TimeoutRemainingInMS() uint64 {
	return uint64(c.TimeoutRemaining() / time.Millisecond)
}

// MaxNumThreadForExec is the thread budget for one parallel task.
func (c *ClientContext) MaxNumThreadForExec() int { return c.maxThreads }

// SparseFrontierThreshold is the sparse to dense switch point.
func (c *ClientContext) SparseFrontierThreshold() uint64 { return c.sparseFrontierThreshold }

// ArenaBlockCapacity is the ParentList slot count per arena block.
func (c *ClientContext) ArenaBlockCapacity() int { return c.arenaBlockCapacity }

// Context returns the context the client was created with.
func (c *ClientContext) Context() context.Context { return c.ctx }

var nextQueryID atomic.Uint64

// ExecutionContext bundles what an operator needs while executing one query.
type ExecutionContext struct {
	QueryID  uint64
	Profiler *metrics.Profiler
	Client   *ClientContext
	// Ctx carries the query logger (see Logger) and tracing spans.
	Ctx context.Context
}

// NewExecutionContext assigns a fresh query ID and a profiler, and attaches
// a logger enriched with the query ID to the client's context.
func NewExecutionContext(client *ClientContext, logger *slog.Logger) *ExecutionContext {
	id := nextQueryID.Add(1)
	if logger == nil {
		logger = ctxlog.FromContext(client.Context())
	}
	return &ExecutionContext{
		QueryID:  id,
		Profiler: metrics.NewProfiler(),
		Client:   client,
		Ctx:      ctxlog.WithLogger(client.Context(), logger.With("query_id", id)),
	}
}

// Logger returns the query-scoped logger.
func (e *ExecutionContext) Logger() *slog.Logger { return ctxlog.FromContext(e.Ctx) }

// WithContext returns a shallow copy of e whose Ctx is ctx.
func (e *ExecutionContext) WithContext(ctx context.Context) *ExecutionContext {
	cp := *e
	cp.Ctx = ctx
	return &cp
}
