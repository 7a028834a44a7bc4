// SPDX-License-Identifier: MIT

// Package core provides the in-memory property graph the analytical engine
// runs over, in the shape a columnar graph store exposes it.
//
// Model:
//
//   - A node table holds nodes with a unique string key. A node is addressed
//     by NodeID{Table, Offset}; offsets are dense per table, 0..MaxOffset-1.
//   - A rel table connects one src node table to one dst node table and
//     stores a float64 weight per edge. An edge is addressed by RelID.
//   - Adjacency is kept in both directions so a scan can bind either side
//     (Fwd binds src, Bwd binds dst).
//
// Schema enumeration:
//
//	NodeTableIDs()            // node tables, ascending
//	RelInfos(nodeTable)       // rel tables whose src side is nodeTable
//	MaxOffset(table)          // exclusive offset bound of a node table
//	MaxOffsetMap()            // MaxOffset for every node table
//
// Neighbor scans:
//
//	s := g.NewScanner()       // one per goroutine
//	s.Scan(bound, rel, Fwd, func(c Chunk) error { ... })
//
// A Chunk carries parallel slices of neighbor IDs, edge IDs and weights, at
// most the configured chunk size (WithChunkSize, default DefaultChunkSize).
//
// Node masks:
//
// NodeMask restricts sources, destinations or intermediate path nodes per
// table and is backed by golang.org/x/tools/container/intsets.
//
// Fixtures:
//
// LoadYAML / LoadYAMLFile build a Graph from a small YAML document; see
// Fixture for the shape.
//
// Concurrency: builders and readers are guarded by one sync.RWMutex, so a
// built Graph can be scanned from any number of goroutines.
package core
