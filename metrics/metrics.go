// SPDX-License-Identifier: MIT

// Package metrics exposes the Prometheus collectors shared by the scheduler,
// the GDS engine and the path writers, plus a per-query Profiler.
//
// Collectors register on the default registry at package init, so a binary
// only has to mount promhttp.Handler() to export them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TasksScheduled counts tasks handed to a scheduler, by scheduler kind.
	TasksScheduled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lvgds_scheduler_tasks_scheduled_total",
		Help: "Tasks submitted through ScheduleTaskAndWaitOrError",
	}, []string{"scheduler"})

	// TaskErrors counts tasks that completed with a stored error.
	TaskErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lvgds_scheduler_task_errors_total",
		Help: "Tasks that finished with an error",
	}, []string{"scheduler"})

	// TaskWait observes how long the scheduling goroutine blocked on a task.
	TaskWait = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lvgds_scheduler_task_wait_seconds",
		Help:    "Time spent waiting for a scheduled task to complete",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	}, []string{"scheduler"})

	// DedicatedWorkers reports goroutines started for launchNewWorker requests.
	DedicatedWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lvgds_scheduler_dedicated_workers",
		Help: "Dedicated worker goroutines currently running",
	})

	// GDSIterations counts BSP iterations, by frontier density.
	GDSIterations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lvgds_gds_iterations_total",
		Help: "Frontier iterations executed",
	}, []string{"density"})

	// DenseSwitches counts sparse to dense frontier switches.
	DenseSwitches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lvgds_gds_dense_switches_total",
		Help: "Sparse to dense frontier switches",
	})

	// EarlyTerminations counts BSP loops stopped by EdgeCompute.Terminate.
	EarlyTerminations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lvgds_gds_early_terminations_total",
		Help: "Recursive joins that stopped before convergence",
	})

	// ArenaBlocks counts ParentList blocks allocated.
	ArenaBlocks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lvgds_bfsgraph_arena_blocks_total",
		Help: "ParentList arena blocks allocated",
	})

	// PathsEmitted counts rows written by path writers, by algorithm.
	PathsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lvgds_paths_emitted_total",
		Help: "Path rows appended to result tables",
	}, []string{"algorithm"})
)
