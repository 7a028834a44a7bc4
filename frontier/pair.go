// SPDX-License-Identifier: MIT

package frontier

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/katalvlaran/lvgds/core"
)

// Pair is the current/next frontier pair of one BSP run.
//
// The orchestrating goroutine owns the transitions (BeginNewIteration,
// SwitchToDense, ResetCurrentIter). Workers call the read methods and the
// AddNode*ToNextFrontier methods while an iteration is in flight.
type Pair interface {
	CurrentIter() uint16
	ResetCurrentIter()

	SetActiveNodesForNextIter()
	// ContinueNextIter reports whether the last iteration activated a node
	// and fewer than maxIter iterations have run.
	ContinueNextIter(maxIter uint16) bool
	// BeginNewIteration increments the iteration, clears the active flag and
	// swaps current and next.
	BeginNewIteration()

	AddNodeToNextFrontier(id core.NodeID)
	AddNodesToNextFrontier(ids []core.NodeID)
	NextFrontierValue(id core.NodeID) uint16
	// IsActiveOnCurrentFrontier reports whether id was reached by the
	// previous iteration.
	IsActiveOnCurrentFrontier(id core.NodeID) bool
	// ActiveNodesOnCurrentFrontier lists, in the Sparse state, the offsets of
	// table active on the current frontier.
	ActiveNodesOnCurrentFrontier(table core.TableID) []core.Offset

	State() DensityState
	NeedSwitchToDense(threshold uint64) bool
	SwitchToDense(ctx context.Context) error
}

// pairBase carries the iteration counter and the current/next pointers.
type pairBase struct {
	mu        sync.Mutex // serializes transitions
	curIter   atomic.Uint32
	hasActive atomic.Bool
	current   Frontier
	next      Frontier
}

func (p *pairBase) CurrentIter() uint16 { return uint16(p.curIter.Load()) }

func (p *pairBase) ResetCurrentIter() { p.curIter.Store(0) }

func (p *pairBase) SetActiveNodesForNextIter() { p.hasActive.Store(true) }

func (p *pairBase) ContinueNextIter(maxIter uint16) bool {
	return p.hasActive.Load() && p.CurrentIter() < maxIter
}

// advance runs the shared part of BeginNewIteration; callers swap under mu.
func (p *pairBase) advance() {
	p.curIter.Add(1)
	p.hasActive.Store(false)
}

func (p *pairBase) AddNodeToNextFrontier(id core.NodeID) {
	p.next.AddNode(id, p.CurrentIter())
}

func (p *pairBase) AddNodesToNextFrontier(ids []core.NodeID) {
	p.next.AddNodes(ids, p.CurrentIter())
}

func (p *pairBase) NextFrontierValue(id core.NodeID) uint16 { return p.next.Iteration(id) }

func (p *pairBase) IsActiveOnCurrentFrontier(id core.NodeID) bool {
	cur := p.CurrentIter()
	return cur > 0 && p.current.Iteration(id) == cur-1
}

// SPPair backs unweighted shortest paths, where a node is reached in at
// most one iteration: current and next refer to the same frontier, so
// "next value" is also "already visited".
type SPPair struct {
	pairBase
	state      DensityState
	maxOffsets map[core.TableID]core.Offset
	sparse     *SparseFrontier
	dense      *DenseFrontier // nil until SwitchToDense
}

// NewSPPair starts in the Sparse state; dense slots are allocated only on
// switch, so runs that stay sparse cost O(visited) memory.
func NewSPPair(maxOffsets map[core.TableID]core.Offset) *SPPair {
	p := &SPPair{
		state:      Sparse,
		maxOffsets: maxOffsets,
		sparse:     NewSparseFrontier(),
	}
	p.current, p.next = p.sparse, p.sparse
	return p
}

// BeginNewIteration implements Pair. There is nothing to swap.
func (p *SPPair) BeginNewIteration() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance()
}

// Frontier returns the single frontier of the current state.
func (p *SPPair) Frontier() Frontier {
	if p.state == Dense {
		return p.dense
	}
	return p.sparse
}

// NumActiveNodesInCurrentFrontier counts masked nodes active on the
// current frontier.
func (p *SPPair) NumActiveNodesInCurrentFrontier(mask *core.NodeMask) uint64 {
	var n uint64
	for _, table := range mask.Tables() {
		for _, off := range mask.Offsets(table) {
			if p.IsActiveOnCurrentFrontier(core.NodeID{Table: table, Offset: off}) {
				n++
			}
		}
	}
	return n
}

// ActiveNodesOnCurrentFrontier implements Pair.
func (p *SPPair) ActiveNodesOnCurrentFrontier(table core.TableID) []core.Offset {
	if p.CurrentIter() == 0 {
		return nil
	}
	return p.sparse.OffsetsAt(table, p.CurrentIter()-1)
}

// State implements Pair.
func (p *SPPair) State() DensityState { return p.state }

// NeedSwitchToDense implements Pair.
func (p *SPPair) NeedSwitchToDense(threshold uint64) bool {
	return p.state == Sparse && p.sparse.Size() > threshold
}

// SwitchToDense initializes the dense frontier to Unvisited and copies every
// sparse entry into it.
func (p *SPPair) SwitchToDense(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Dense {
		return nil
	}
	dense := NewDenseFrontier(p.maxOffsets)
	if err := dense.Init(ctx, Unvisited); err != nil {
		return err
	}
	p.dense = dense
	p.sparse.each(p.dense.AddNode)
	p.state = Dense
	p.current, p.next = p.dense, p.dense
	return nil
}

// DynamicPair keeps separate current and next frontiers and switches from
// sparse maps to dense arrays when the next frontier grows past a threshold.
type DynamicPair struct {
	pairBase
	state                 DensityState
	maxOffsets            map[core.TableID]core.Offset
	curSparse, nextSparse *SparseFrontier
	curDense, nextDense   *DenseFrontier // nil until SwitchToDense
}

// NewDynamicPair starts in the Sparse state; the dense frontiers are
// allocated on switch.
func NewDynamicPair(maxOffsets map[core.TableID]core.Offset) *DynamicPair {
	p := &DynamicPair{
		state:      Sparse,
		maxOffsets: maxOffsets,
		curSparse:  NewSparseFrontier(),
		nextSparse: NewSparseFrontier(),
	}
	p.current, p.next = p.curSparse, p.nextSparse
	return p
}

// BeginNewIteration implements Pair.
func (p *DynamicPair) BeginNewIteration() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance()
	if p.state == Sparse {
		p.curSparse, p.nextSparse = p.nextSparse, p.curSparse
		p.current, p.next = p.curSparse, p.nextSparse
		return
	}
	p.curDense, p.nextDense = p.nextDense, p.curDense
	p.current, p.next = p.curDense, p.nextDense
}

// ActiveNodesOnCurrentFrontier implements Pair.
func (p *DynamicPair) ActiveNodesOnCurrentFrontier(table core.TableID) []core.Offset {
	if p.CurrentIter() == 0 {
		return nil
	}
	return p.curSparse.OffsetsAt(table, p.CurrentIter()-1)
}

// State implements Pair.
func (p *DynamicPair) State() DensityState { return p.state }

// NeedSwitchToDense implements Pair.
func (p *DynamicPair) NeedSwitchToDense(threshold uint64) bool {
	return p.state == Sparse && p.nextSparse.Size() > threshold
}

// SwitchToDense initializes both dense frontiers to Unvisited and copies the
// next sparse frontier, the only one the following iteration reads.
func (p *DynamicPair) SwitchToDense(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Dense {
		return nil
	}
	cur, next := NewDenseFrontier(p.maxOffsets), NewDenseFrontier(p.maxOffsets)
	if err := cur.Init(ctx, Unvisited); err != nil {
		return err
	}
	if err := next.Init(ctx, Unvisited); err != nil {
		return err
	}
	p.curDense, p.nextDense = cur, next
	p.nextSparse.each(p.nextDense.AddNode)
	p.state = Dense
	p.current, p.next = p.curDense, p.nextDense
	return nil
}

// DensePair is always dense; whole-graph passes use it.
type DensePair struct {
	pairBase
	cur, nxt *DenseFrontier
}

// NewDensePair allocates both frontiers and initializes them to val.
func NewDensePair(ctx context.Context, maxOffsets map[core.TableID]core.Offset, val uint16) (*DensePair, error) {
	p := &DensePair{
		cur: NewDenseFrontier(maxOffsets),
		nxt: NewDenseFrontier(maxOffsets),
	}
	if err := p.ResetValue(ctx, val); err != nil {
		return nil, err
	}
	p.current, p.next = p.cur, p.nxt
	return p, nil
}

// ResetValue sets every slot of both frontiers to val.
func (p *DensePair) ResetValue(ctx context.Context, val uint16) error {
	if err := p.cur.Init(ctx, val); err != nil {
		return err
	}
	return p.nxt.Init(ctx, val)
}

// BeginNewIteration implements Pair.
func (p *DensePair) BeginNewIteration() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance()
	p.cur, p.nxt = p.nxt, p.cur
	p.current, p.next = p.cur, p.nxt
}

// ActiveNodesOnCurrentFrontier is never consulted for a dense-only pair.
func (p *DensePair) ActiveNodesOnCurrentFrontier(core.TableID) []core.Offset { return nil }

// State implements Pair.
func (p *DensePair) State() DensityState { return Dense }

// NeedSwitchToDense implements Pair.
func (p *DensePair) NeedSwitchToDense(uint64) bool { return false }

// SwitchToDense implements Pair.
func (p *DensePair) SwitchToDense(context.Context) error { return nil }

var (
	_ Pair = (*SPPair)(nil)
	_ Pair = (*DynamicPair)(nil)
	_ Pair = (*DensePair)(nil)
)
