// SPDX-License-Identifier: MIT

// Package gds is the bulk-synchronous graph compute engine.
//
// A run is a loop of iterations over a frontier.Pair. Each iteration visits,
// for every node table, every rel table that table is the src of, in the
// run's Direction (Both means Fwd then Bwd). For each (rel, direction) the
// Runner builds a FrontierTask:
//
//	Sparse pair - RunSparse walks the active nodes on the calling goroutine
//	              with the shared EdgeCompute; no scheduling overhead.
//	Dense pair  - the task is scheduled with launchNewWorker and up to
//	              MaxNumThreadForExec goroutines; each copies the
//	              EdgeCompute and claims offset morsels from a
//	              MorselDispatcher, skipping inactive nodes.
//
// The scheduler returns only after every goroutine of the task finished, so
// the Runner's next BeginNewIteration observes all writes of the previous
// one. Interrupts are polled before each rel table and each morsel.
//
// Loops:
//
//	RunRecursiveJoinEdgeCompute - early termination through a mask and
//	                              adaptive densification.
//	RunAlgorithmEdgeCompute     - plain loop for whole-graph algorithms.
//	RunFTSEdgeCompute           - a single iteration.
//	RunVertexCompute            - per-table vertex visitor, inline or in
//	                              morsels depending on the density state.
package gds
