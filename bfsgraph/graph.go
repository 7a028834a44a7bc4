// SPDX-License-Identifier: MIT

package bfsgraph

import (
	"math"
	"sort"
	"sync/atomic"

	"github.com/katalvlaran/lvgds/core"
)

// Graph records, per reached node, the head of its ParentList chain.
//
// Unweighted algorithms append one entry per (parent, edge) that reached a
// node at the current iteration. Weighted algorithms keep only the entries
// of minimum accumulated cost and use the TryAdd variants.
type Graph interface {
	// AddNewBlock allocates a block from the shared arena.
	AddNewBlock() *ObjectBlock

	// AddParent prepends (bound, edge) to nbr's chain with iteration iter.
	AddParent(iter uint16, bound core.NodeID, edge core.RelID, nbr core.NodeID, fwd bool, block *ObjectBlock)
	// AddSingleParent records (bound, edge) only if nbr has no chain yet.
	AddSingleParent(iter uint16, bound core.NodeID, edge core.RelID, nbr core.NodeID, fwd bool, block *ObjectBlock)
	// TryAddParentWithWeight adds (bound, edge) at cost(bound)+weight if it
	// improves nbr's best cost, or ties it through an edge not yet chained. It reports
	// whether nbr's chain changed.
	TryAddParentWithWeight(bound core.NodeID, edge core.RelID, nbr core.NodeID, fwd bool, weight float64, block *ObjectBlock) bool
	// TryAddSingleParentWithWeight replaces nbr's chain only on a strictly
	// lower cost.
	TryAddSingleParentWithWeight(bound core.NodeID, edge core.RelID, nbr core.NodeID, fwd bool, weight float64, block *ObjectBlock) bool

	// ParentListHead returns the head of id's chain, or nil.
	ParentListHead(id core.NodeID) *ParentList
	// SetParentList installs h as id's head.
	SetParentList(id core.NodeID, h Handle)
	// Next follows a chain link.
	Next(p *ParentList) *ParentList
}

// Cost returns p.Cost, or math.MaxFloat64 for a nil entry.
func Cost(p *ParentList) float64 {
	if p == nil {
		return math.MaxFloat64
	}
	return p.Cost
}

type graphBase struct {
	arena *Arena
}

func (g *graphBase) AddNewBlock() *ObjectBlock { return g.arena.AddNewBlock() }

func (g *graphBase) Next(p *ParentList) *ParentList { return g.arena.Next(p) }

// chainHasEdge reports whether edge already occurs in the chain starting at
// p. A parent whose cost ties again after being re-activated must not add a
// second entry for the same edge.
func (g *graphBase) chainHasEdge(p *ParentList, edge core.RelID) bool {
	for ; p != nil; p = g.arena.Next(p) {
		if p.EdgeID == edge {
			return true
		}
	}
	return false
}

// SparseGraph stores heads in per-table maps. It is mutated by one goroutine
// at a time.
type SparseGraph struct {
	graphBase
	heads map[core.TableID]map[core.Offset]Handle
}

// NewSparseGraph returns an empty sparse graph over arena.
func NewSparseGraph(arena *Arena) *SparseGraph {
	return &SparseGraph{
		graphBase: graphBase{arena: arena},
		heads:     make(map[core.TableID]map[core.Offset]Handle),
	}
}

func (g *SparseGraph) head(id core.NodeID) Handle {
	return g.heads[id.Table][id.Offset]
}

// SetParentList implements Graph.
func (g *SparseGraph) SetParentList(id core.NodeID, h Handle) {
	m, ok := g.heads[id.Table]
	if !ok {
		m = make(map[core.Offset]Handle)
		g.heads[id.Table] = m
	}
	m[id.Offset] = h
}

// ParentListHead implements Graph.
func (g *SparseGraph) ParentListHead(id core.NodeID) *ParentList {
	return g.arena.Get(g.head(id))
}

// AddParent implements Graph.
func (g *SparseGraph) AddParent(iter uint16, bound core.NodeID, edge core.RelID, nbr core.NodeID, fwd bool, block *ObjectBlock) {
	p := block.ReserveNext()
	p.setNbrInfo(bound, edge, fwd)
	p.Iter = iter
	p.SetNext(g.head(nbr))
	g.SetParentList(nbr, p.self)
}

// AddSingleParent implements Graph.
func (g *SparseGraph) AddSingleParent(iter uint16, bound core.NodeID, edge core.RelID, nbr core.NodeID, fwd bool, block *ObjectBlock) {
	if !g.head(nbr).IsNil() {
		return
	}
	p := block.ReserveNext()
	p.setNbrInfo(bound, edge, fwd)
	p.Iter = iter
	g.SetParentList(nbr, p.self)
}

// TryAddParentWithWeight implements Graph.
func (g *SparseGraph) TryAddParentWithWeight(bound core.NodeID, edge core.RelID, nbr core.NodeID, fwd bool, weight float64, block *ObjectBlock) bool {
	cur := g.ParentListHead(nbr)
	cost := Cost(g.ParentListHead(bound)) + weight
	switch {
	case cost < Cost(cur):
		p := block.ReserveNext()
		p.setNbrInfo(bound, edge, fwd)
		p.Cost = cost
		g.SetParentList(nbr, p.self)
		return true
	case cur != nil && cost == cur.Cost && !g.chainHasEdge(cur, edge):
		p := block.ReserveNext()
		p.setNbrInfo(bound, edge, fwd)
		p.Cost = cost
		p.SetNext(cur.self)
		g.SetParentList(nbr, p.self)
		return true
	}
	return false
}

// TryAddSingleParentWithWeight implements Graph.
func (g *SparseGraph) TryAddSingleParentWithWeight(bound core.NodeID, edge core.RelID, nbr core.NodeID, fwd bool, weight float64, block *ObjectBlock) bool {
	cost := Cost(g.ParentListHead(bound)) + weight
	if cost >= Cost(g.ParentListHead(nbr)) {
		return false
	}
	p := block.ReserveNext()
	p.setNbrInfo(bound, edge, fwd)
	p.Cost = cost
	g.SetParentList(nbr, p.self)
	return true
}

// VisitedOffsets returns, in ascending order, the offsets of table that
// have a chain.
func (g *SparseGraph) VisitedOffsets(table core.TableID) []core.Offset {
	m := g.heads[table]
	out := make([]core.Offset, 0, len(m))
	for off := range m {
		out = append(out, off)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NumVisited returns the number of nodes with a chain.
func (g *SparseGraph) NumVisited() int {
	n := 0
	for _, m := range g.heads {
		n += len(m)
	}
	return n
}

// DenseGraph stores one atomic head per node. All methods are safe for
// concurrent use; chains are published by compare-and-swap on the head.
type DenseGraph struct {
	graphBase
	heads map[core.TableID][]atomic.Uint64
}

// NewDenseGraph allocates a nil head for every node in maxOffsets.
func NewDenseGraph(arena *Arena, maxOffsets map[core.TableID]core.Offset) *DenseGraph {
	g := &DenseGraph{
		graphBase: graphBase{arena: arena},
		heads:     make(map[core.TableID][]atomic.Uint64, len(maxOffsets)),
	}
	for table, n := range maxOffsets {
		g.heads[table] = make([]atomic.Uint64, n)
	}
	return g
}

func (g *DenseGraph) slot(id core.NodeID) *atomic.Uint64 {
	slots, ok := g.heads[id.Table]
	if !ok || id.Offset >= core.Offset(len(slots)) {
		return nil
	}
	return &slots[id.Offset]
}

// SetParentList implements Graph.
func (g *DenseGraph) SetParentList(id core.NodeID, h Handle) {
	if s := g.slot(id); s != nil {
		s.Store(uint64(h))
	}
}

// ParentListHead implements Graph.
func (g *DenseGraph) ParentListHead(id core.NodeID) *ParentList {
	s := g.slot(id)
	if s == nil {
		return nil
	}
	return g.arena.Get(Handle(s.Load()))
}

// AddParent implements Graph.
func (g *DenseGraph) AddParent(iter uint16, bound core.NodeID, edge core.RelID, nbr core.NodeID, fwd bool, block *ObjectBlock) {
	s := g.slot(nbr)
	if s == nil {
		return
	}
	p := block.ReserveNext()
	p.setNbrInfo(bound, edge, fwd)
	p.Iter = iter
	for {
		expected := s.Load()
		p.SetNext(Handle(expected))
		if s.CompareAndSwap(expected, uint64(p.self)) {
			return
		}
	}
}

// AddSingleParent implements Graph.
func (g *DenseGraph) AddSingleParent(iter uint16, bound core.NodeID, edge core.RelID, nbr core.NodeID, fwd bool, block *ObjectBlock) {
	s := g.slot(nbr)
	if s == nil || s.Load() != uint64(NilHandle) {
		return
	}
	p := block.ReserveNext()
	p.setNbrInfo(bound, edge, fwd)
	p.Iter = iter
	if !s.CompareAndSwap(uint64(NilHandle), uint64(p.self)) {
		block.RevertLast()
	}
}

// TryAddParentWithWeight implements Graph.
func (g *DenseGraph) TryAddParentWithWeight(bound core.NodeID, edge core.RelID, nbr core.NodeID, fwd bool, weight float64, block *ObjectBlock) bool {
	s := g.slot(nbr)
	if s == nil {
		return false
	}
	p := block.ReserveNext()
	p.setNbrInfo(bound, edge, fwd)
	p.Cost = Cost(g.ParentListHead(bound)) + weight
	for {
		expected := s.Load()
		cur := g.arena.Get(Handle(expected))
		switch {
		case p.Cost < Cost(cur):
			p.SetNext(NilHandle)
		case cur != nil && p.Cost == cur.Cost && !g.chainHasEdge(cur, edge):
			p.SetNext(Handle(expected))
		default:
			block.RevertLast()
			return false
		}
		if s.CompareAndSwap(expected, uint64(p.self)) {
			return true
		}
	}
}

// TryAddSingleParentWithWeight implements Graph.
func (g *DenseGraph) TryAddSingleParentWithWeight(bound core.NodeID, edge core.RelID, nbr core.NodeID, fwd bool, weight float64, block *ObjectBlock) bool {
	s := g.slot(nbr)
	if s == nil {
		return false
	}
	p := block.ReserveNext()
	p.setNbrInfo(bound, edge, fwd)
	p.Cost = Cost(g.ParentListHead(bound)) + weight
	for {
		expected := s.Load()
		if p.Cost >= Cost(g.arena.Get(Handle(expected))) {
			block.RevertLast()
			return false
		}
		if s.CompareAndSwap(expected, uint64(p.self)) {
			return true
		}
	}
}

var (
	_ Graph = (*SparseGraph)(nil)
	_ Graph = (*DenseGraph)(nil)
)
