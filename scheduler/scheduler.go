// SPDX-License-Identifier: MIT

package scheduler

import (
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/katalvlaran/lvgds/config"
	"github.com/katalvlaran/lvgds/execctx"
)

var (
	// ErrClosed is returned when scheduling on a closed Pool.
	ErrClosed = errors.New("scheduler: closed")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("scheduler: invalid option supplied")
)

var tracer = otel.Tracer("github.com/katalvlaran/lvgds/scheduler")

// Scheduler runs tasks and their dependencies to completion.
type Scheduler interface {
	// ScheduleTaskAndWaitOrError runs t's children, then t, and returns the
	// first error stored on any of them. launchNewWorker asks for one extra
	// goroutine dedicated to t for the duration of the call; pass it when
	// the caller is itself a pool worker.
	ScheduleTaskAndWaitOrError(ec *execctx.ExecutionContext, t *Task, launchNewWorker bool) error

	// NumWorkers is the size of the worker pool (0 for Inline).
	NumWorkers() int

	// Close stops the workers. Tasks already queued are drained first.
	Close() error
}

// Options configures a Pool.
type Options struct {
	// MaxDedicatedWorkers caps the goroutines started for launchNewWorker
	// requests across all in-flight calls. Zero means callers always run
	// the task themselves.
	MaxDedicatedWorkers int

	// Logger receives worker lifecycle and task error records.
	Logger *slog.Logger

	err error
}

// Option configures a Pool.
type Option func(*Options)

// DefaultOptions returns a dedicated-worker budget of twice the pool size
// (resolved in NewPool) and the default logger.
func DefaultOptions() Options {
	return Options{MaxDedicatedWorkers: -1, Logger: slog.Default()}
}

// WithMaxDedicatedWorkers sets the dedicated goroutine budget.
func WithMaxDedicatedWorkers(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: MaxDedicatedWorkers cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.MaxDedicatedWorkers = n
	}
}

// WithLogger sets the scheduler logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// FromConfig builds the scheduler selected by cfg.Mode.
func FromConfig(cfg config.SchedulerConfig, opts ...Option) (Scheduler, error) {
	switch cfg.Mode {
	case config.ModeInline:
		o := DefaultOptions()
		for _, opt := range opts {
			opt(&o)
		}
		if o.err != nil {
			return nil, o.err
		}
		return NewInline(o.Logger), nil
	case config.ModePool, "":
		all := append([]Option{WithMaxDedicatedWorkers(cfg.MaxDedicatedWorkers)}, opts...)
		return NewPool(cfg.NumWorkers, all...)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrOptionViolation, cfg.Mode)
	}
}
