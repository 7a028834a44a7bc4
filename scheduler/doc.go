// SPDX-License-Identifier: MIT

// Package scheduler multiplexes a fixed pool of worker goroutines across
// dependency-ordered Tasks.
//
// What:
//
//	A Task wraps a Body that up to MaxThreads goroutines execute
//	concurrently. Each goroutine registers on the task, runs the body once,
//	and deregisters. The task completes when the last registered goroutine
//	deregisters; once any goroutine has finished, registration is closed.
//	The first error (or recovered panic) a body produces is stored on the
//	task and surfaced exactly once, to the goroutine that scheduled it.
//
//	ScheduleTaskAndWaitOrError runs the task's children first, depth-first
//	and left-to-right, stopping early if a child reports Terminate. It then
//	enqueues the task at the tail of a FIFO queue and blocks until the task
//	completes, the query's time budget runs out (which interrupts the
//	query), or the task records an error (which also interrupts the query so
//	sibling workers stop early). Whatever the outcome, the task's queue entry
//	is gone when the call returns and no worker is registered on it.
//
// Implementations:
//
//	Pool    - worker goroutines parked on a wake channel; a deque under one
//	          mutex holds the queue. With launchNewWorker the caller gets one
//	          extra dedicated goroutine from a bounded budget; when the budget
//	          is spent the caller registers on the task and runs it itself.
//	Inline  - runs every task synchronously on the calling goroutine.
//
// Both satisfy Scheduler and are chosen at construction time (see FromConfig).
//
// Ordering:
//
//	Worker registration follows queue order. Completion order is not
//	guaranteed. A child's writes are visible to its parent's workers: every
//	worker deregisters under the task mutex, the last one closes the task's
//	done channel, and the scheduling goroutine only enqueues the parent after
//	receiving from it.
package scheduler
