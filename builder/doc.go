// SPDX-License-Identifier: MIT

// Package builder generates deterministic core.Graph topologies for tests,
// benchmarks and the lvgds CLI.
//
// Every generator is a Constructor applied by BuildGraph to one node table
// and one rel table created up front. Constructors add their own nodes, so
// several of them can be composed into one graph side by side.
//
// Options:
//
//   - WithTableNames: node and rel table names ("N" and "E" by default).
//   - WithIDScheme:   node keys from the node index (decimal by default).
//   - WithSeed / WithRand: RNG for RandomSparse and random weights.
//   - WithWeightFn:   edge weights (constant 1 by default); see
//     ConstantWeightFn and UniformWeightFn.
//
// Edges are directed. Constructors emit nodes in index order and edges in
// a documented order, so the same options and constructors always yield the
// same RelIDs.
package builder
