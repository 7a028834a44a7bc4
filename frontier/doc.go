// SPDX-License-Identifier: MIT

// Package frontier tracks which nodes are active in each iteration of a
// bulk-synchronous graph traversal.
//
// Instead of a boolean, every node carries the iteration that last reached
// it: Unvisited (math.MaxUint16) before any, InitialVisited (0) for sources.
// During iteration i the engine reads nodes whose value is i-1 from the
// current frontier and writes i into the next frontier; BeginNewIteration
// then swaps the two. Stale values simply stop matching, so frontiers are
// never cleared between iterations.
//
// Representations:
//
//	SparseFrontier - per-table hash maps; cheap while few nodes are reached,
//	                 written by one goroutine only.
//	DenseFrontier  - one atomic slot per node; written concurrently by the
//	                 workers of a dense iteration. Init fills the slots in
//	                 parallel morsels using golang.org/x/sync/errgroup.
//
// Pairs:
//
//	DynamicPair - separate current/next, sparse until NeedSwitchToDense.
//	SPPair      - one shared frontier for unweighted shortest paths, where a
//	              node is reached at most once.
//	DensePair   - always dense, for passes that touch every node.
//
// Switching is one-way (sparse to dense) within a run.
package frontier
