// SPDX-License-Identifier: MIT
//
// File: scan.go
// Role: neighbor scans yielding fixed-size Chunks.
//
// Determinism:
//   - Neighbors are produced in edge insertion order.
package core

import "fmt"

// ScanFunc consumes one Chunk. Returning a non-nil error stops the scan.
// The Chunk's slices are reused between calls; copy them to retain data.
type ScanFunc func(c Chunk) error

// Scanner iterates neighbors of bound nodes with a reusable Chunk buffer.
// A Scanner is not safe for concurrent use; create one per goroutine.
type Scanner struct {
	g     *Graph
	chunk Chunk
}

// NewScanner returns a Scanner over g.
func (g *Graph) NewScanner() *Scanner {
	return &Scanner{
		g: g,
		chunk: Chunk{
			Nbrs:    make([]NodeID, 0, g.chunkSize),
			Edges:   make([]RelID, 0, g.chunkSize),
			Weights: make([]float64, 0, g.chunkSize),
		},
	}
}

// Scan visits the neighbors of bound through rel in direction dir (Fwd or
// Bwd). bound must live in the table the direction binds.
//
// Implementation:
//   - Stage 1: resolve the adjacency list under the read lock.
//   - Stage 2: emit Chunks of up to the graph chunk size; the lock is not
//     held while fn runs.
//
// Complexity: O(deg(bound)).
func (s *Scanner) Scan(bound NodeID, rel TableID, dir Direction, fn ScanFunc) error {
	if dir == Both {
		if err := s.Scan(bound, rel, Fwd, fn); err != nil {
			return err
		}
		return s.Scan(bound, rel, Bwd, fn)
	}

	s.g.mu.RLock()
	rt, ok := s.g.rels[rel]
	if !ok {
		s.g.mu.RUnlock()
		return fmt.Errorf("%w: rel table %d", ErrTableNotFound, rel)
	}
	adj, nbrTable := rt.fwd, rt.dst
	boundTable := rt.src
	if dir == Bwd {
		adj, nbrTable, boundTable = rt.bwd, rt.src, rt.dst
	}
	if bound.Table != boundTable || bound.Offset >= Offset(len(adj)) {
		s.g.mu.RUnlock()
		return nil
	}
	entries := adj[bound.Offset]
	weights := rt.weights
	s.g.mu.RUnlock()

	size := s.g.chunkSize
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		c := s.chunk
		c.Nbrs, c.Edges, c.Weights = c.Nbrs[:0], c.Edges[:0], c.Weights[:0]
		for _, e := range entries[start:end] {
			c.Nbrs = append(c.Nbrs, NodeID{Table: nbrTable, Offset: e.nbr})
			c.Edges = append(c.Edges, RelID{Table: rel, Offset: e.rel})
			c.Weights = append(c.Weights, weights[e.rel])
		}
		s.chunk = c
		if err := fn(c); err != nil {
			return err
		}
	}

	return nil
}

// Degree returns the number of neighbors of bound through rel in dir. It
// fails with ErrTableNotFound when rel is not a rel table.
func (g *Graph) Degree(bound NodeID, rel TableID, dir Direction) (int, error) {
	n := 0
	err := g.NewScanner().Scan(bound, rel, dir, func(c Chunk) error {
		n += c.Len()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
