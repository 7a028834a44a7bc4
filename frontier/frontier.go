// SPDX-License-Identifier: MIT

package frontier

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvgds/core"
)

// Iteration numbers stored per node.
const (
	// Unvisited marks a node no iteration has reached.
	Unvisited uint16 = math.MaxUint16
	// InitialVisited is the iteration of source nodes.
	InitialVisited uint16 = 0
)

// initMorselSize is the offset range one goroutine fills during dense init.
const initMorselSize = 1 << 16

// DensityState selects the frontier representation.
type DensityState uint8

const (
	// Sparse keeps visited nodes in hash maps; iteration runs inline.
	Sparse DensityState = iota
	// Dense keeps one atomic slot per node; iteration runs on the scheduler.
	Dense
)

// String implements fmt.Stringer.
func (s DensityState) String() string {
	switch s {
	case Sparse:
		return "sparse"
	case Dense:
		return "dense"
	default:
		return fmt.Sprintf("density(%d)", uint8(s))
	}
}

// Frontier records, per node, the iteration that last reached it.
type Frontier interface {
	AddNode(id core.NodeID, iter uint16)
	AddNodes(ids []core.NodeID, iter uint16)
	// Iteration returns Unvisited for nodes never added.
	Iteration(id core.NodeID) uint16
}

// SparseFrontier is a hash map per table. It is not safe for concurrent
// writes and is only mutated while the engine runs inline.
type SparseFrontier struct {
	data map[core.TableID]map[core.Offset]uint16
	size uint64
}

// NewSparseFrontier returns an empty sparse frontier.
func NewSparseFrontier() *SparseFrontier {
	return &SparseFrontier{data: make(map[core.TableID]map[core.Offset]uint16)}
}

// AddNode sets the iteration of id, inserting it if absent.
func (f *SparseFrontier) AddNode(id core.NodeID, iter uint16) {
	m, ok := f.data[id.Table]
	if !ok {
		m = make(map[core.Offset]uint16)
		f.data[id.Table] = m
	}
	if _, seen := m[id.Offset]; !seen {
		f.size++
	}
	m[id.Offset] = iter
}

// AddNodes calls AddNode for each id.
func (f *SparseFrontier) AddNodes(ids []core.NodeID, iter uint16) {
	for _, id := range ids {
		f.AddNode(id, iter)
	}
}

// Iteration implements Frontier.
func (f *SparseFrontier) Iteration(id core.NodeID) uint16 {
	if iter, ok := f.data[id.Table][id.Offset]; ok {
		return iter
	}
	return Unvisited
}

// Size is the number of distinct nodes ever added.
func (f *SparseFrontier) Size() uint64 { return f.size }

// OffsetsAt returns, in ascending order, the offsets of table whose
// iteration equals iter.
func (f *SparseFrontier) OffsetsAt(table core.TableID, iter uint16) []core.Offset {
	var out []core.Offset
	for off, it := range f.data[table] {
		if it == iter {
			out = append(out, off)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// each visits every stored entry.
func (f *SparseFrontier) each(fn func(id core.NodeID, iter uint16)) {
	for table, m := range f.data {
		for off, iter := range m {
			fn(core.NodeID{Table: table, Offset: off}, iter)
		}
	}
}

// DenseFrontier holds one atomic iteration slot per node. Slots are
// allocated by NewDenseFrontier and filled by Init; after that AddNode and
// Iteration are safe for concurrent use.
type DenseFrontier struct {
	maxOffsets map[core.TableID]core.Offset
	data       map[core.TableID][]atomic.Uint32
}

// NewDenseFrontier allocates slots for every node in maxOffsets without
// initializing them (they read as InitialVisited until Init runs).
func NewDenseFrontier(maxOffsets map[core.TableID]core.Offset) *DenseFrontier {
	f := &DenseFrontier{
		maxOffsets: maxOffsets,
		data:       make(map[core.TableID][]atomic.Uint32, len(maxOffsets)),
	}
	for table, n := range maxOffsets {
		f.data[table] = make([]atomic.Uint32, n)
	}
	return f
}

// Init sets every slot to val, splitting the work into offset morsels
// filled in parallel.
func (f *DenseFrontier) Init(ctx context.Context, val uint16) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, slots := range f.data {
		slots := slots
		for begin := 0; begin < len(slots); begin += initMorselSize {
			begin, end := begin, min(begin+initMorselSize, len(slots))
			eg.Go(func() error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				for i := begin; i < end; i++ {
					slots[i].Store(uint32(val))
				}
				return nil
			})
		}
	}
	return eg.Wait()
}

// AddNode implements Frontier. Nodes outside the allocated tables are ignored.
func (f *DenseFrontier) AddNode(id core.NodeID, iter uint16) {
	if slots, ok := f.data[id.Table]; ok && id.Offset < core.Offset(len(slots)) {
		slots[id.Offset].Store(uint32(iter))
	}
}

// AddNodes calls AddNode for each id.
func (f *DenseFrontier) AddNodes(ids []core.NodeID, iter uint16) {
	for _, id := range ids {
		f.AddNode(id, iter)
	}
}

// Iteration implements Frontier.
func (f *DenseFrontier) Iteration(id core.NodeID) uint16 {
	if slots, ok := f.data[id.Table]; ok && id.Offset < core.Offset(len(slots)) {
		return uint16(slots[id.Offset].Load())
	}
	return Unvisited
}

// MaskNotIn resets to Unvisited every slot whose node is outside mask, for
// the tables mask constrains.
func (f *DenseFrontier) MaskNotIn(mask *core.NodeMask) {
	for table, slots := range f.data {
		if !mask.ContainsTable(table) {
			continue
		}
		for i := range slots {
			if !mask.IsMasked(core.NodeID{Table: table, Offset: core.Offset(i)}) {
				slots[i].Store(uint32(Unvisited))
			}
		}
	}
}
