// SPDX-License-Identifier: MIT
// Package: lvgds/builder
//
// topology.go: deterministic and seeded topology constructors.
//
// Contract shared by every constructor:
//   - Validate parameters before adding anything.
//   - Add nodes in index order, then edges in the documented order.
//   - Draw one weight per emitted edge from the configured WeightFn.

package builder

import (
	"fmt"

	"github.com/katalvlaran/lvgds/core"
)

// Path builds 0->1->...->n-1 (n >= 2).
func Path(n int) Constructor {
	return func(t *Target) error {
		if n < 2 {
			return fmt.Errorf("Path: n=%d < 2: %w", n, ErrTooFewVertices)
		}
		ids, err := t.addNodes(n)
		if err != nil {
			return err
		}
		for i := 0; i+1 < n; i++ {
			if err := t.addEdge(ids[i], ids[i+1]); err != nil {
				return err
			}
		}
		return nil
	}
}

// Cycle builds 0->1->...->n-1->0 (n >= 2).
func Cycle(n int) Constructor {
	return func(t *Target) error {
		if n < 2 {
			return fmt.Errorf("Cycle: n=%d < 2: %w", n, ErrTooFewVertices)
		}
		ids, err := t.addNodes(n)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := t.addEdge(ids[i], ids[(i+1)%n]); err != nil {
				return err
			}
		}
		return nil
	}
}

// Star builds a center (index 0) with an edge to each of n-1 leaves (n >= 2).
func Star(n int) Constructor {
	return func(t *Target) error {
		if n < 2 {
			return fmt.Errorf("Star: n=%d < 2: %w", n, ErrTooFewVertices)
		}
		ids, err := t.addNodes(n)
		if err != nil {
			return err
		}
		for _, leaf := range ids[1:] {
			if err := t.addEdge(ids[0], leaf); err != nil {
				return err
			}
		}
		return nil
	}
}

// Complete builds every edge i->j with i != j (n >= 1), i then j ascending.
func Complete(n int) Constructor {
	return func(t *Target) error {
		if n < 1 {
			return fmt.Errorf("Complete: n=%d < 1: %w", n, ErrTooFewVertices)
		}
		ids, err := t.addNodes(n)
		if err != nil {
			return err
		}
		for i := range ids {
			for j := range ids {
				if i == j {
					continue
				}
				if err := t.addEdge(ids[i], ids[j]); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// Grid builds a rows x cols grid, row-major, with edges to the right and
// bottom neighbors. Cell (r, c) has index r*cols+c; it is reached from
// (0, 0) by exactly C(r+c, r) shortest paths.
func Grid(rows, cols int) Constructor {
	return func(t *Target) error {
		if rows < 1 || cols < 1 {
			return fmt.Errorf("Grid: rows=%d, cols=%d (each must be >= 1): %w", rows, cols, ErrTooFewVertices)
		}
		ids, err := t.addNodes(rows * cols)
		if err != nil {
			return err
		}
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				u := ids[r*cols+c]
				if c+1 < cols {
					if err := t.addEdge(u, ids[r*cols+c+1]); err != nil {
						return err
					}
				}
				if r+1 < rows {
					if err := t.addEdge(u, ids[(r+1)*cols+c]); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
}

// Ladder builds i->i+1 and i->i+2, so node i sits ceil(i/2) hops from 0
// (n >= 2).
func Ladder(n int) Constructor {
	return func(t *Target) error {
		if n < 2 {
			return fmt.Errorf("Ladder: n=%d < 2: %w", n, ErrTooFewVertices)
		}
		ids, err := t.addNodes(n)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			for _, j := range []int{i + 1, i + 2} {
				if j < n {
					if err := t.addEdge(ids[i], ids[j]); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
}

// RandomSparse includes each ordered pair i->j (i != j) independently with
// probability p. An RNG is required when 0 < p < 1.
//
// Complexity: O(n^2) Bernoulli trials.
func RandomSparse(n int, p float64) Constructor {
	return func(t *Target) error {
		if n < 1 {
			return fmt.Errorf("RandomSparse: n=%d < 1: %w", n, ErrTooFewVertices)
		}
		if p < 0 || p > 1 {
			return fmt.Errorf("RandomSparse: p=%.6f: %w", p, ErrInvalidProbability)
		}
		rng := t.cfg.rng
		if rng == nil && p > 0 && p < 1 {
			return fmt.Errorf("RandomSparse: %w", ErrNeedRandSource)
		}
		ids, err := t.addNodes(n)
		if err != nil {
			return err
		}
		for i := range ids {
			for j := range ids {
				if i == j {
					continue
				}
				if p < 1 && (p == 0 || rng.Float64() >= p) {
					continue
				}
				if err := t.addEdge(ids[i], ids[j]); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// AllNodes returns every node of t in offset order.
func (t *Target) AllNodes() []core.NodeID {
	n := t.Graph.MaxOffset(t.Nodes)
	out := make([]core.NodeID, n)
	for i := range out {
		out[i] = core.NodeID{Table: t.Nodes, Offset: core.Offset(i)}
	}
	return out
}
