// SPDX-License-Identifier: MIT

// Package bfsgraph stores the parent chains a recursive traversal leaves
// behind, so every shortest (or bounded-length) path can be enumerated after
// the traversal ends.
//
// Entries live in an Arena of fixed-size ObjectBlocks and are addressed by a
// Handle (block, slot) instead of a pointer; NilHandle ends a chain. Each
// worker goroutine appends to its own block and publishes entries by storing
// a handle into a node's head slot.
//
// A Manager hands out the SparseGraph (maps, single writer) while the
// frontier is small and the DenseGraph (one atomic head per node, lock-free
// compare-and-swap) after SwitchToDense.
package bfsgraph
