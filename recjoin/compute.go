// SPDX-License-Identifier: MIT

package recjoin

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/lvgds/bfsgraph"
	"github.com/katalvlaran/lvgds/core"
	"github.com/katalvlaran/lvgds/frontier"
	"github.com/katalvlaran/lvgds/gds"
)

// arenaCursor is the block an edge compute copy appends to. Each copy owns
// its cursor; the block is allocated on first use.
type arenaCursor struct {
	mgr   *bfsgraph.Manager
	block *bfsgraph.ObjectBlock
}

func (c *arenaCursor) next(g bfsgraph.Graph) *bfsgraph.ObjectBlock {
	c.block = bfsgraph.EnsureBlock(g, c.block)
	return c.block
}

// allSPCompute records a parent for every edge reaching a neighbor first
// visited in this iteration.
type allSPCompute struct {
	gds.SPEdgeCompute
	arenaCursor
}

func (c *allSPCompute) EdgeCompute(bound core.NodeID, chunk core.Chunk, fwd bool) ([]core.NodeID, error) {
	g := c.mgr.Current()
	iter := c.Pair.CurrentIter()
	var active []core.NodeID
	for i, nbr := range chunk.Nbrs {
		v := c.Pair.NextFrontierValue(nbr)
		if v != frontier.Unvisited && v != iter {
			continue
		}
		g.AddParent(iter, bound, chunk.Edges[i], nbr, fwd, c.next(g))
		if v == frontier.Unvisited {
			active = append(active, nbr)
		}
	}
	return active, nil
}

func (c *allSPCompute) Copy() gds.EdgeCompute {
	return &allSPCompute{SPEdgeCompute: gds.SPEdgeCompute{Pair: c.Pair}, arenaCursor: arenaCursor{mgr: c.mgr}}
}

// singleSPCompute records the first parent of each neighbor only.
type singleSPCompute struct {
	gds.SPEdgeCompute
	arenaCursor
}

func (c *singleSPCompute) EdgeCompute(bound core.NodeID, chunk core.Chunk, fwd bool) ([]core.NodeID, error) {
	g := c.mgr.Current()
	iter := c.Pair.CurrentIter()
	var active []core.NodeID
	for i, nbr := range chunk.Nbrs {
		if c.Pair.NextFrontierValue(nbr) != frontier.Unvisited {
			continue
		}
		g.AddSingleParent(iter, bound, chunk.Edges[i], nbr, fwd, c.next(g))
		active = append(active, nbr)
	}
	return active, nil
}

func (c *singleSPCompute) Copy() gds.EdgeCompute {
	return &singleSPCompute{SPEdgeCompute: gds.SPEdgeCompute{Pair: c.Pair}, arenaCursor: arenaCursor{mgr: c.mgr}}
}

// varLenCompute records every edge in every iteration.
type varLenCompute struct {
	gds.BaseEdgeCompute
	arenaCursor
	pair frontier.Pair
}

func (c *varLenCompute) EdgeCompute(bound core.NodeID, chunk core.Chunk, fwd bool) ([]core.NodeID, error) {
	g := c.mgr.Current()
	iter := c.pair.CurrentIter()
	active := make([]core.NodeID, 0, chunk.Len())
	for i, nbr := range chunk.Nbrs {
		g.AddParent(iter, bound, chunk.Edges[i], nbr, fwd, c.next(g))
		active = append(active, nbr)
	}
	return active, nil
}

func (c *varLenCompute) Copy() gds.EdgeCompute {
	return &varLenCompute{arenaCursor: arenaCursor{mgr: c.mgr}, pair: c.pair}
}

// weightedCompute relaxes neighbors by cost; all keeps co-optimal parents.
type weightedCompute struct {
	gds.BaseEdgeCompute
	arenaCursor
	source core.NodeID
	all    bool
}

func (c *weightedCompute) EdgeCompute(bound core.NodeID, chunk core.Chunk, fwd bool) ([]core.NodeID, error) {
	g := c.mgr.Current()
	var active []core.NodeID
	for i, nbr := range chunk.Nbrs {
		w := chunk.Weights[i]
		if err := checkWeight(w, chunk.Edges[i]); err != nil {
			return nil, err
		}
		if nbr == c.source {
			continue
		}
		var improved bool
		if c.all {
			improved = g.TryAddParentWithWeight(bound, chunk.Edges[i], nbr, fwd, w, c.next(g))
		} else {
			improved = g.TryAddSingleParentWithWeight(bound, chunk.Edges[i], nbr, fwd, w, c.next(g))
		}
		if improved {
			active = append(active, nbr)
		}
	}
	return active, nil
}

func (c *weightedCompute) Copy() gds.EdgeCompute {
	return &weightedCompute{arenaCursor: arenaCursor{mgr: c.mgr}, source: c.source, all: c.all}
}

func checkWeight(w float64, edge core.RelID) error {
	switch {
	case math.IsNaN(w) || math.IsInf(w, 0):
		return fmt.Errorf("%w: edge %s has weight %v", ErrInvalidWeight, edge, w)
	case w < 0:
		return fmt.Errorf("%w: edge %s has weight %v", ErrNegativeWeight, edge, w)
	}
	return nil
}

// parentsAux keeps the parent arena in step with the frontier pair.
type parentsAux struct {
	mgr      *bfsgraph.Manager
	weighted bool
}

// InitSource seeds the cost-0 source entry weighted algorithms walk back to.
func (a *parentsAux) InitSource(source core.NodeID) {
	if a.weighted {
		a.mgr.InitSource(source)
	}
}

func (a *parentsAux) SwitchToDense(context.Context) error {
	a.mgr.SwitchToDense()
	return nil
}

// run is the per-source state of one recursive join.
type run struct {
	pair frontier.Pair
	mgr  *bfsgraph.Manager
	cs   *gds.ComputeState
}

// newRun builds the frontier pair, parent arena and edge compute of alg
// for source.
func newRun(alg Algorithm, g *core.Graph, dir core.Direction, source core.NodeID, blockCapacity int) *run {
	maxOffsets := g.MaxOffsetMap()
	mgr := bfsgraph.NewManager(maxOffsets, blockCapacity)
	cursor := arenaCursor{mgr: mgr}
	r := &run{mgr: mgr}
	var ec gds.EdgeCompute
	switch alg {
	case AllSP, SingleSP:
		pair := frontier.NewSPPair(maxOffsets)
		r.pair = pair
		if alg == AllSP {
			ec = &allSPCompute{SPEdgeCompute: gds.SPEdgeCompute{Pair: pair}, arenaCursor: cursor}
		} else {
			ec = &singleSPCompute{SPEdgeCompute: gds.SPEdgeCompute{Pair: pair}, arenaCursor: cursor}
		}
	case VarLen:
		pair := frontier.NewDynamicPair(maxOffsets)
		r.pair = pair
		ec = &varLenCompute{arenaCursor: cursor, pair: pair}
	case WSP, AWSP:
		r.pair = frontier.NewDynamicPair(maxOffsets)
		ec = &weightedCompute{arenaCursor: cursor, source: source, all: alg == AWSP}
	}
	r.cs = gds.NewComputeState(r.pair, ec, &parentsAux{mgr: mgr, weighted: alg.Weighted()}, dir)
	return r
}
