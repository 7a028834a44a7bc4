// SPDX-License-Identifier: MIT

package paths

import (
	"github.com/gammazero/deque"

	"github.com/katalvlaran/lvgds/bfsgraph"
	"github.com/katalvlaran/lvgds/core"
	"github.com/katalvlaran/lvgds/execctx"
	"github.com/katalvlaran/lvgds/metrics"
)

// Writer turns the parent chains of one source into rows.
//
// A Writer is not safe for concurrent use; Copy returns an independent
// writer over the same chains for another goroutine.
type Writer interface {
	// Write appends every path from the source to dst.
	Write(t *Table, dst core.NodeID, counter *LimitCounter) error
	// WriteTable writes every visited node of table, plus the source when
	// zero-length paths are requested. Only valid while the run is sparse.
	WriteTable(t *Table, table core.TableID, counter *LimitCounter) error
	Copy() Writer
}

// Config is shared by every writer of one source.
type Config struct {
	Client     *execctx.ClientContext
	Manager    *bfsgraph.Manager
	Source     core.NodeID
	OutputMask *core.NodeMask
	Info       WriterInfo
	// Algorithm labels the emitted-rows metric.
	Algorithm string
}

// base carries the DFS stack and the checks every writer shares. The stack
// holds ParentList entries from the destination (index 0) toward the
// source.
type base struct {
	cfg   Config
	graph bfsgraph.Graph
	stack deque.Deque[*bfsgraph.ParentList]
}

func newBase(cfg Config) base {
	return base{cfg: cfg, graph: cfg.Manager.Current()}
}

func (b *base) inOutputMask(dst core.NodeID) bool { return b.cfg.OutputMask.Valid(dst) }

// writeTable calls write for each visited offset of table, stopping once
// the counter is exceeded.
func (b *base) writeTable(table core.TableID, counter *LimitCounter, write func(core.NodeID) error) error {
	source := b.cfg.Source
	sourceSeen := false
	for _, off := range b.cfg.Manager.Sparse().VisitedOffsets(table) {
		if counter.ExceedLimit() {
			return nil
		}
		dst := core.NodeID{Table: table, Offset: off}
		sourceSeen = sourceSeen || dst == source
		if err := write(dst); err != nil {
			return err
		}
	}
	if b.cfg.Info.LowerBound == 0 && source.Table == table && !sourceSeen && !counter.ExceedLimit() {
		return write(source)
	}
	return nil
}

func (b *base) top() *bfsgraph.ParentList { return b.stack.Back() }

func (b *base) replaceTop(p *bfsgraph.ParentList) { b.stack.Set(b.stack.Len()-1, p) }

// findFirstParent returns the first entry of dst's chain that passes the
// node mask and reaches dst in at least LowerBound steps.
func (b *base) findFirstParent(dst core.NodeID) *bfsgraph.ParentList {
	p := b.graph.ParentListHead(dst)
	if b.cfg.Info.fast() {
		return p
	}
	for ; p != nil; p = b.graph.Next(p) {
		if b.checkPathNodeMask(p) && p.Iter >= b.cfg.Info.LowerBound {
			return p
		}
	}
	return nil
}

// isNextViable reports whether the top may be replaced by its sibling
// next: on the destination level next must respect the lower bound, deeper
// down it must sit on the same level as the top.
func (b *base) isNextViable(next *bfsgraph.ParentList) bool {
	if next == nil {
		return false
	}
	if b.stack.Len() == 1 {
		return next.Iter >= b.cfg.Info.LowerBound
	}
	return next.Iter == b.top().Iter
}

// checkPathNodeMask never filters the source, reached at iteration 1.
func (b *base) checkPathNodeMask(p *bfsgraph.ParentList) bool {
	mask := b.cfg.Info.PathNodeMask
	return mask == nil || p.Iter == 1 || mask.Valid(p.NodeID)
}

// checkAppend applies the semantic to candidate pushed above the stack.
func (b *base) checkAppend(candidate *bfsgraph.ParentList) bool {
	return b.semanticOK(candidate, b.stack.Len())
}

// checkReplaceTop applies the semantic to candidate replacing the top.
func (b *base) checkReplaceTop(candidate *bfsgraph.ParentList) bool {
	return b.semanticOK(candidate, b.stack.Len()-1)
}

// semanticOK compares candidate with stack[0:n].
func (b *base) semanticOK(candidate *bfsgraph.ParentList, n int) bool {
	switch b.cfg.Info.Semantic {
	case Trail:
		for i := 0; i < n; i++ {
			if b.stack.At(i).EdgeID == candidate.EdgeID {
				return false
			}
		}
	case Acyclic:
		for i := 0; i < n; i++ {
			if b.stack.At(i).NodeID == candidate.NodeID {
				return false
			}
		}
	}
	return true
}

// emit appends the stack as a row and reports whether the limit is hit.
func (b *base) emit(t *Table, dst core.NodeID, counter *LimitCounter, weight float64, weighted bool) bool {
	t.Append(b.row(dst, weight, weighted))
	metrics.PathsEmitted.WithLabelValues(b.cfg.Algorithm).Inc()
	counter.Increase(1)
	return counter.ExceedLimit()
}

// row renders the stack. Entries are stacked destination first, so the
// default rendering reverses them to read source to destination; FlipPath
// keeps stack order.
func (b *base) row(dst core.NodeID, weight float64, weighted bool) Row {
	n := b.stack.Len()
	r := Row{Src: b.cfg.Source, Dst: dst, Length: uint16(n), Weight: weight, Weighted: weighted}
	info := b.cfg.Info
	if !info.WritePath {
		return r
	}
	r.NodeIDs = make([]core.NodeID, max(n-1, 0))
	r.EdgeIDs = make([]core.RelID, n)
	if info.WriteEdgeDirection {
		r.Directions = make([]bool, n)
	}
	if n == 0 {
		return r
	}
	setEdge := func(pos int, p *bfsgraph.ParentList) {
		r.EdgeIDs[pos] = p.EdgeID
		if info.WriteEdgeDirection {
			r.Directions[pos] = p.IsFwd
		}
	}
	if info.FlipPath {
		for i := 0; i < n-1; i++ {
			p := b.stack.At(i)
			r.NodeIDs[i] = p.NodeID
			setEdge(i, p)
		}
		setEdge(n-1, b.stack.At(n-1))
		return r
	}
	for i := 1; i < n; i++ {
		p := b.stack.At(n - 1 - i)
		r.NodeIDs[i-1] = p.NodeID
		setEdge(i, p)
	}
	setEdge(0, b.stack.At(n-1))
	return r
}

// dfsFast enumerates every walk from first down to iteration 1 without any
// filtering.
func (b *base) dfsFast(first *bfsgraph.ParentList, t *Table, dst core.NodeID, counter *LimitCounter) error {
	b.stack.Clear()
	b.stack.PushBack(first)
	backtracking := false
	for b.stack.Len() > 0 {
		if err := b.cfg.Client.CheckInterrupt(); err != nil {
			b.stack.Clear()
			return err
		}
		top := b.top()
		if top.Iter == 1 {
			if b.emit(t, dst, counter, 0, false) {
				b.stack.Clear()
				return nil
			}
			backtracking = true
		}
		if backtracking {
			if next := b.graph.Next(b.top()); b.isNextViable(next) {
				b.replaceTop(next)
				backtracking = false
			} else {
				b.stack.PopBack()
			}
			continue
		}
		parent := b.graph.ParentListHead(top.NodeID)
		for parent != nil && parent.Iter != top.Iter-1 {
			parent = b.graph.Next(parent)
		}
		if parent == nil {
			backtracking = true
			continue
		}
		b.stack.PushBack(parent)
	}
	return nil
}

// dfsSlow is dfsFast with the path node mask and the semantic applied to
// every candidate.
func (b *base) dfsSlow(first *bfsgraph.ParentList, t *Table, dst core.NodeID, counter *LimitCounter) error {
	b.stack.Clear()
	b.stack.PushBack(first)
	backtracking := false
	for b.stack.Len() > 0 {
		if err := b.cfg.Client.CheckInterrupt(); err != nil {
			b.stack.Clear()
			return err
		}
		if b.top().Iter == 1 {
			if b.emit(t, dst, counter, 0, false) {
				b.stack.Clear()
				return nil
			}
			backtracking = true
		}
		if backtracking {
			next := b.graph.Next(b.top())
			for {
				if !b.isNextViable(next) {
					b.stack.PopBack()
					break
				}
				if !b.checkPathNodeMask(next) || !b.checkReplaceTop(next) {
					next = b.graph.Next(next)
					continue
				}
				b.replaceTop(next)
				backtracking = false
				break
			}
			continue
		}
		top := b.top()
		parent := b.graph.ParentListHead(top.NodeID)
		for ; parent != nil; parent = b.graph.Next(parent) {
			if parent.Iter == top.Iter-1 && b.checkPathNodeMask(parent) && b.checkAppend(parent) {
				break
			}
		}
		if parent == nil {
			backtracking = true
			continue
		}
		b.stack.PushBack(parent)
	}
	return nil
}

func (b *base) dfs(first *bfsgraph.ParentList, t *Table, dst core.NodeID, counter *LimitCounter) error {
	if b.cfg.Info.fast() {
		return b.dfsFast(first, t, dst, counter)
	}
	return b.dfsSlow(first, t, dst, counter)
}

// SPWriter writes every shortest path found by an unweighted shortest-path
// run.
type SPWriter struct {
	base
}

// NewSPWriter returns a writer over cfg.Manager's current graph.
func NewSPWriter(cfg Config) *SPWriter { return &SPWriter{base: newBase(cfg)} }

// Write implements Writer. The source itself is never written.
func (w *SPWriter) Write(t *Table, dst core.NodeID, counter *LimitCounter) error {
	if !w.inOutputMask(dst) || dst == w.cfg.Source {
		return nil
	}
	first := w.findFirstParent(dst)
	if first == nil {
		return nil
	}
	return w.dfs(first, t, dst, counter)
}

// WriteTable implements Writer.
func (w *SPWriter) WriteTable(t *Table, table core.TableID, counter *LimitCounter) error {
	return w.writeTable(table, counter, func(dst core.NodeID) error { return w.Write(t, dst, counter) })
}

// Copy implements Writer.
func (w *SPWriter) Copy() Writer { return NewSPWriter(w.cfg) }

// VarLenWriter writes every walk (or trail, or acyclic path) whose length
// lies between the lower bound and the iteration cap of the run.
type VarLenWriter struct {
	base
}

// NewVarLenWriter returns a writer over cfg.Manager's current graph.
func NewVarLenWriter(cfg Config) *VarLenWriter { return &VarLenWriter{base: newBase(cfg)} }

// Write implements Writer. With a zero lower bound the source is written
// once as a path of length 0, ahead of any cycle back to it.
func (w *VarLenWriter) Write(t *Table, dst core.NodeID, counter *LimitCounter) error {
	if !w.inOutputMask(dst) {
		return nil
	}
	if dst == w.cfg.Source && w.cfg.Info.LowerBound == 0 {
		w.stack.Clear()
		if w.emit(t, dst, counter, 0, false) {
			return nil
		}
	}
	first := w.findFirstParent(dst)
	if first == nil || first.Iter < w.cfg.Info.LowerBound {
		return nil
	}
	return w.dfs(first, t, dst, counter)
}

// WriteTable implements Writer.
func (w *VarLenWriter) WriteTable(t *Table, table core.TableID, counter *LimitCounter) error {
	return w.writeTable(table, counter, func(dst core.NodeID) error { return w.Write(t, dst, counter) })
}

// Copy implements Writer.
func (w *VarLenWriter) Copy() Writer { return NewVarLenWriter(w.cfg) }

var (
	_ Writer = (*SPWriter)(nil)
	_ Writer = (*VarLenWriter)(nil)
)
