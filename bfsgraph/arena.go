// SPDX-License-Identifier: MIT

package bfsgraph

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/katalvlaran/lvgds/core"
	"github.com/katalvlaran/lvgds/metrics"
)

// DefaultBlockCapacity is the number of ParentList slots per ObjectBlock.
const DefaultBlockCapacity = 1 << 13

// Handle addresses one ParentList as (block, slot). The zero Handle is nil.
type Handle uint64

// NilHandle refers to no ParentList.
const NilHandle Handle = 0

func makeHandle(block, slot uint32) Handle {
	return Handle(uint64(block+1)<<32 | uint64(slot))
}

// IsNil reports whether h refers to no ParentList.
func (h Handle) IsNil() bool { return h == NilHandle }

// Block returns the block index of a non-nil handle.
func (h Handle) Block() uint32 { return uint32(uint64(h)>>32) - 1 }

// Slot returns the slot index of a non-nil handle.
func (h Handle) Slot() uint32 { return uint32(h) }

// String renders h as "block/slot" or "nil".
func (h Handle) String() string {
	if h.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%d/%d", h.Block(), h.Slot())
}

// ParentList is one predecessor record of a node: the parent node, the edge
// that reached the node from it, and either the iteration (unweighted) or the
// accumulated cost (weighted) of the node through that parent. Entries with
// the same node form a singly linked list through next, newest first.
//
// Every field but next is written once, before the entry is published.
type ParentList struct {
	NodeID core.NodeID
	EdgeID core.RelID
	IsFwd  bool
	Iter   uint16
	Cost   float64

	self Handle
	next atomic.Uint64
}

func (p *ParentList) reset() {
	p.NodeID = core.InvalidNodeID
	p.EdgeID = core.InvalidRelID
	p.IsFwd = false
	p.Iter = math.MaxUint16
	p.Cost = math.MaxFloat64
	p.next.Store(uint64(NilHandle))
}

func (p *ParentList) setNbrInfo(nodeID core.NodeID, edgeID core.RelID, fwd bool) {
	p.NodeID, p.EdgeID, p.IsFwd = nodeID, edgeID, fwd
}

// Handle returns the handle p was reserved at.
func (p *ParentList) Handle() Handle { return p.self }

// NextHandle returns the next co-optimal parent, or NilHandle.
func (p *ParentList) NextHandle() Handle { return Handle(p.next.Load()) }

// SetNext links p to h.
func (p *ParentList) SetNext(h Handle) { p.next.Store(uint64(h)) }

// IsSource reports whether p is the seed entry of a weighted source.
func (p *ParentList) IsSource() bool { return p.EdgeID == core.InvalidRelID }

// ObjectBlock is a fixed-capacity, append-only chunk of ParentList slots.
// Each block is written by a single goroutine at a time.
type ObjectBlock struct {
	index   uint32
	slots   []ParentList
	nextPos atomic.Uint64
}

// ReserveNext claims the next free slot. Callers check HasSpace first.
func (b *ObjectBlock) ReserveNext() *ParentList {
	pos := b.nextPos.Add(1) - 1
	p := &b.slots[pos]
	p.reset()
	p.self = makeHandle(b.index, uint32(pos))
	return p
}

// RevertLast releases the most recently reserved slot.
func (b *ObjectBlock) RevertLast() { b.nextPos.Add(^uint64(0)) }

// HasSpace reports whether ReserveNext can succeed.
func (b *ObjectBlock) HasSpace() bool { return b.nextPos.Load() < uint64(len(b.slots)) }

// Len returns the number of reserved slots.
func (b *ObjectBlock) Len() int { return int(b.nextPos.Load()) }

// Arena owns every ObjectBlock of one algorithm run. Blocks are published
// through a copy-on-write slice so Get never takes a lock.
type Arena struct {
	mu       sync.Mutex // serializes AddNewBlock
	blocks   atomic.Pointer[[]*ObjectBlock]
	capacity int
}

// NewArena returns an empty arena with capacity slots per block
// (DefaultBlockCapacity when capacity < 1).
func NewArena(capacity int) *Arena {
	if capacity < 1 {
		capacity = DefaultBlockCapacity
	}
	a := &Arena{capacity: capacity}
	empty := make([]*ObjectBlock, 0)
	a.blocks.Store(&empty)
	return a
}

// AddNewBlock appends a fresh block and returns it.
func (a *Arena) AddNewBlock() *ObjectBlock {
	a.mu.Lock()
	defer a.mu.Unlock()
	old := *a.blocks.Load()
	b := &ObjectBlock{index: uint32(len(old)), slots: make([]ParentList, a.capacity)}
	grown := make([]*ObjectBlock, len(old), len(old)+1)
	copy(grown, old)
	grown = append(grown, b)
	a.blocks.Store(&grown)
	metrics.ArenaBlocks.Inc()
	return b
}

// Get resolves h; a nil handle yields nil.
func (a *Arena) Get(h Handle) *ParentList {
	if h.IsNil() {
		return nil
	}
	blocks := *a.blocks.Load()
	return &blocks[h.Block()].slots[h.Slot()]
}

// NumBlocks returns the number of allocated blocks.
func (a *Arena) NumBlocks() int { return len(*a.blocks.Load()) }

// Next resolves p's next link.
func (a *Arena) Next(p *ParentList) *ParentList { return a.Get(p.NextHandle()) }
