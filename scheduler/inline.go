// SPDX-License-Identifier: MIT

package scheduler

import (
	"log/slog"

	"github.com/katalvlaran/lvgds/execctx"
	"github.com/katalvlaran/lvgds/metrics"
)

const inlineLabel = "inline"

// Inline runs every task synchronously on the calling goroutine.
type Inline struct {
	logger *slog.Logger
}

// NewInline returns a goroutine-free scheduler.
func NewInline(logger *slog.Logger) *Inline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inline{logger: logger}
}

// NumWorkers is always 0.
func (s *Inline) NumWorkers() int { return 0 }

// Close is a no-op.
func (s *Inline) Close() error { return nil }

// ScheduleTaskAndWaitOrError implements Scheduler. launchNewWorker is ignored.
func (s *Inline) ScheduleTaskAndWaitOrError(ec *execctx.ExecutionContext, t *Task, _ bool) error {
	for _, child := range t.Children() {
		if err := s.ScheduleTaskAndWaitOrError(ec, child, false); err != nil {
			return err
		}
		if child.Terminate() {
			return nil
		}
	}
	metrics.TasksScheduled.WithLabelValues(inlineLabel).Inc()

	t.RegisterThread()
	runTask(t)
	if err := t.Err(); err != nil {
		metrics.TaskErrors.WithLabelValues(inlineLabel).Inc()
		s.logger.Debug("scheduler: inline task failed", "error", err)
		return err
	}
	return nil
}
