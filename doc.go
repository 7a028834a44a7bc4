// Package lvgds is an in-memory recursive-join engine: it runs shortest-path
// and variable-length path queries over a table-partitioned property graph
// with a bulk-synchronous, frontier-driven executor.
//
// 🚀 What is lvgds?
//
//	A concurrent path-finding core that brings together:
//		• Graph storage: node and rel tables, chunked neighbor scans
//		• Frontiers: sparse and dense, switched by an active-node threshold
//		• Parent graphs: lock-free arena of ParentList chains per query
//		• Algorithms: all/single shortest paths, weighted (all/single)
//		  shortest paths, variable-length joins
//		• Path semantics: WALK, TRAIL and ACYCLIC with node masks
//		• Scheduling: worker pool or inline execution behind one interface
//
// Under the hood, everything is organized into focused packages:
//
//	core/      - Graph, tables, NodeID/RelID, NodeMask, YAML fixtures
//	frontier/  - sparse/dense frontiers and the current/next frontier pair
//	bfsgraph/  - ParentList arena and sparse/dense parent graphs
//	gds/       - BSP runner: edge compute and vertex compute tasks
//	paths/     - path writers, limit counter, result tables
//	recjoin/   - RecursiveExtend and the per-algorithm edge computes
//	scheduler/ - task scheduler (pool, inline) with dedicated workers
//	execctx/   - client/execution context, interruption, profiler
//	config/    - YAML configuration
//	metrics/   - Prometheus instrumentation
//	builder/   - generated topologies for tests, benchmarks and the CLI
//
// Quick ASCII example:
//
//	    A──1──▶B
//	    │      │
//	    5      2
//	    ▼      ▼
//	    C──1──▶D
//
// AWSP from A yields A→B (1), A→C (5) and the single cheapest A→D path
// through B (3); ALL_SP yields both two-hop paths to D.
//
//	go run ./cmd/lvgds -graph city.yaml -table City -source A -algorithm awsp -path
package lvgds
