// SPDX-License-Identifier: MIT

package gds

import (
	"github.com/katalvlaran/lvgds/core"
	"github.com/katalvlaran/lvgds/execctx"
	"github.com/katalvlaran/lvgds/frontier"
)

// FrontierTask expands the active nodes of one bound table through one rel
// table in one direction (Fwd or Bwd).
//
// Run is the dense body: every goroutine the scheduler registers copies the
// edge compute, then claims morsels until none are left. RunSparse walks
// the sparse active set on the calling goroutine with the shared compute.
type FrontierTask struct {
	graph      *core.Graph
	pair       frontier.Pair
	ec         EdgeCompute
	rel        core.RelInfo
	dir        core.Direction
	client     *execctx.ClientContext
	dispatcher *MorselDispatcher
}

// NewFrontierTask builds the task for rel scanned in dir, which must be Fwd
// or Bwd.
func NewFrontierTask(g *core.Graph, pair frontier.Pair, ec EdgeCompute, rel core.RelInfo, dir core.Direction, client *execctx.ClientContext) *FrontierTask {
	bound := rel.BoundTable(dir)
	return &FrontierTask{
		graph:      g,
		pair:       pair,
		ec:         ec,
		rel:        rel,
		dir:        dir,
		client:     client,
		dispatcher: NewMorselDispatcher(g.MaxOffset(bound), 0),
	}
}

// Run implements scheduler.Body.
func (t *FrontierTask) Run() error {
	ec := t.ec.Copy()
	scanner := t.graph.NewScanner()
	table := t.rel.BoundTable(t.dir)
	for {
		begin, end, ok := t.dispatcher.Next()
		if !ok {
			return nil
		}
		if err := t.client.CheckInterrupt(); err != nil {
			return err
		}
		for off := begin; off < end; off++ {
			bound := core.NodeID{Table: table, Offset: off}
			if !t.pair.IsActiveOnCurrentFrontier(bound) {
				continue
			}
			if err := t.expand(scanner, ec, bound); err != nil {
				return err
			}
		}
	}
}

// RunSparse expands every sparse active node of the bound table.
func (t *FrontierTask) RunSparse() error {
	scanner := t.graph.NewScanner()
	table := t.rel.BoundTable(t.dir)
	for _, off := range t.pair.ActiveNodesOnCurrentFrontier(table) {
		if err := t.expand(scanner, t.ec, core.NodeID{Table: table, Offset: off}); err != nil {
			return err
		}
	}
	return nil
}

func (t *FrontierTask) expand(scanner *core.Scanner, ec EdgeCompute, bound core.NodeID) error {
	fwd := t.dir == core.Fwd
	return scanner.Scan(bound, t.rel.RelTable, t.dir, func(c core.Chunk) error {
		active, err := ec.EdgeCompute(bound, c, fwd)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			t.pair.AddNodesToNextFrontier(active)
			t.pair.SetActiveNodesForNextIter()
		}
		return nil
	})
}

// VertexComputeTask runs a VertexCompute over one node table.
type VertexComputeTask struct {
	vc         VertexCompute
	table      core.TableID
	client     *execctx.ClientContext
	dispatcher *MorselDispatcher
}

// NewVertexComputeTask builds the task for table.
func NewVertexComputeTask(g *core.Graph, vc VertexCompute, table core.TableID, client *execctx.ClientContext) *VertexComputeTask {
	return &VertexComputeTask{
		vc:         vc,
		table:      table,
		client:     client,
		dispatcher: NewMorselDispatcher(g.MaxOffset(table), 0),
	}
}

// Run implements scheduler.Body.
func (t *VertexComputeTask) Run() error {
	vc := t.vc.Copy()
	defer release(vc)
	for {
		begin, end, ok := t.dispatcher.Next()
		if !ok {
			return nil
		}
		if err := t.client.CheckInterrupt(); err != nil {
			return err
		}
		if err := vc.VertexCompute(begin, end, t.table); err != nil {
			return err
		}
	}
}

// RunSparse visits the table on the calling goroutine.
func (t *VertexComputeTask) RunSparse() error {
	vc := t.vc.Copy()
	defer release(vc)
	if err := t.client.CheckInterrupt(); err != nil {
		return err
	}
	return vc.VertexComputeSparse(t.table)
}

func release(vc VertexCompute) {
	if r, ok := vc.(Releaser); ok {
		r.Release()
	}
}
