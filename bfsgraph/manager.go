// SPDX-License-Identifier: MIT

package bfsgraph

import (
	"sync"

	"github.com/katalvlaran/lvgds/core"
	"github.com/katalvlaran/lvgds/frontier"
)

// Manager owns the arena of one algorithm run and the graph currently
// receiving parents. It starts Sparse and may switch to Dense once; the
// arena, and so every chain, survives the switch.
type Manager struct {
	mu         sync.Mutex
	arena      *Arena
	maxOffsets map[core.TableID]core.Offset
	sparse     *SparseGraph
	dense      *DenseGraph
	state      frontier.DensityState
	current    Graph
}

// NewManager returns a Sparse manager for a graph with maxOffsets nodes per
// table and blockCapacity slots per arena block.
func NewManager(maxOffsets map[core.TableID]core.Offset, blockCapacity int) *Manager {
	arena := NewArena(blockCapacity)
	m := &Manager{
		arena:      arena,
		maxOffsets: maxOffsets,
		sparse:     NewSparseGraph(arena),
		state:      frontier.Sparse,
	}
	m.current = m.sparse
	return m
}

// Current returns the graph receiving parents.
func (m *Manager) Current() Graph {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Sparse returns the sparse graph; its visited set stays valid only while
// State is Sparse.
func (m *Manager) Sparse() *SparseGraph { return m.sparse }

// State returns the density of the current graph.
func (m *Manager) State() frontier.DensityState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Arena returns the block store shared by both graphs.
func (m *Manager) Arena() *Arena { return m.arena }

// SwitchToDense moves every sparse head into freshly allocated dense slots.
// Calling it twice is a no-op.
func (m *Manager) SwitchToDense() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == frontier.Dense {
		return
	}
	m.dense = NewDenseGraph(m.arena, m.maxOffsets)
	for table, heads := range m.sparse.heads {
		for off, h := range heads {
			m.dense.SetParentList(core.NodeID{Table: table, Offset: off}, h)
		}
	}
	m.state = frontier.Dense
	m.current = m.dense
}

// InitSource seeds a weighted run: source gets a chain of one entry with
// cost 0 whose IsSource is true.
func (m *Manager) InitSource(source core.NodeID) {
	g := m.Current()
	b := g.AddNewBlock()
	p := b.ReserveNext()
	p.setNbrInfo(source, core.InvalidRelID, true)
	p.Iter = frontier.InitialVisited
	p.Cost = 0
	g.SetParentList(source, p.self)
}

// EnsureBlock returns b when it can take another entry, otherwise a new
// block of g.
func EnsureBlock(g Graph, b *ObjectBlock) *ObjectBlock {
	if b != nil && b.HasSpace() {
		return b
	}
	return g.AddNewBlock()
}
