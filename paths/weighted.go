// SPDX-License-Identifier: MIT

package paths

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvgds/core"
)

// ErrBrokenChain is returned when a single-parent chain does not lead back
// to the source.
var ErrBrokenChain = errors.New("paths: parent chain does not reach the source")

// AWSPWriter writes every minimum-cost path of an all-weighted-shortest-paths
// run. Entries sharing a chain all carry the node's minimum cost, so the
// DFS only needs the head of each parent's chain and its siblings.
type AWSPWriter struct {
	base
}

// NewAWSPWriter returns a writer over cfg.Manager's current graph.
func NewAWSPWriter(cfg Config) *AWSPWriter { return &AWSPWriter{base: newBase(cfg)} }

// Write implements Writer.
//
// Implementation:
//   - Stage 1: skip the source and unreached destinations; the row weight
//     is the cost of dst's head.
//   - Stage 2: push parent chain heads until the source entry is on top,
//     then pop it and emit; backtrack by replacing the top with its
//     sibling, or popping when there is none.
//   - A top whose node is dst or already occurs deeper in the stack is a
//     dead end, so cycles of zero-weight edges cannot recurse forever.
func (w *AWSPWriter) Write(t *Table, dst core.NodeID, counter *LimitCounter) error {
	if !w.inOutputMask(dst) || dst == w.cfg.Source {
		return nil
	}
	first := w.graph.ParentListHead(dst)
	if first == nil || first.Cost == math.MaxFloat64 {
		return nil
	}
	weight := first.Cost

	w.stack.Clear()
	w.stack.PushBack(first)
	backtracking := false
	for w.stack.Len() > 0 {
		if err := w.cfg.Client.CheckInterrupt(); err != nil {
			w.stack.Clear()
			return err
		}
		switch top := w.top(); {
		case top.IsSource():
			w.stack.PopBack()
			if w.emit(t, dst, counter, weight, true) {
				w.stack.Clear()
				return nil
			}
			backtracking = true
		case !backtracking && w.repeatsTopNode(dst):
			backtracking = true
		}
		if backtracking {
			if next := w.graph.Next(w.top()); next != nil {
				w.replaceTop(next)
				backtracking = false
			} else {
				w.stack.PopBack()
			}
			continue
		}
		head := w.graph.ParentListHead(w.top().NodeID)
		if head == nil {
			backtracking = true
			continue
		}
		w.stack.PushBack(head)
	}
	return nil
}

// repeatsTopNode reports whether the top's node is dst or already on the
// stack.
func (w *AWSPWriter) repeatsTopNode(dst core.NodeID) bool {
	n := w.stack.Len()
	id := w.stack.At(n - 1).NodeID
	if id == dst {
		return true
	}
	for i := 0; i < n-1; i++ {
		if w.stack.At(i).NodeID == id {
			return true
		}
	}
	return false
}

// WriteTable implements Writer.
func (w *AWSPWriter) WriteTable(t *Table, table core.TableID, counter *LimitCounter) error {
	return w.writeTable(table, counter, func(dst core.NodeID) error { return w.Write(t, dst, counter) })
}

// Copy implements Writer.
func (w *AWSPWriter) Copy() Writer { return NewAWSPWriter(w.cfg) }

// WSPWriter writes the single minimum-cost path of a weighted shortest
// path run, following chain heads back to the source.
type WSPWriter struct {
	base
}

// NewWSPWriter returns a writer over cfg.Manager's current graph.
func NewWSPWriter(cfg Config) *WSPWriter { return &WSPWriter{base: newBase(cfg)} }

// Write implements Writer.
func (w *WSPWriter) Write(t *Table, dst core.NodeID, counter *LimitCounter) error {
	if !w.inOutputMask(dst) || dst == w.cfg.Source {
		return nil
	}
	parent := w.graph.ParentListHead(dst)
	if parent == nil {
		return nil
	}
	weight := parent.Cost

	w.stack.Clear()
	w.stack.PushBack(parent)
	for !parent.IsSource() {
		if err := w.cfg.Client.CheckInterrupt(); err != nil {
			w.stack.Clear()
			return err
		}
		if w.stack.Len() > math.MaxUint16 {
			w.stack.Clear()
			return fmt.Errorf("%w: %s", ErrBrokenChain, dst)
		}
		if parent = w.graph.ParentListHead(parent.NodeID); parent == nil {
			w.stack.Clear()
			return fmt.Errorf("%w: %s", ErrBrokenChain, dst)
		}
		w.stack.PushBack(parent)
	}
	w.stack.PopBack()
	w.emit(t, dst, counter, weight, true)
	w.stack.Clear()
	return nil
}

// WriteTable implements Writer.
func (w *WSPWriter) WriteTable(t *Table, table core.TableID, counter *LimitCounter) error {
	return w.writeTable(table, counter, func(dst core.NodeID) error { return w.Write(t, dst, counter) })
}

// Copy implements Writer.
func (w *WSPWriter) Copy() Writer { return NewWSPWriter(w.cfg) }

var (
	_ Writer = (*AWSPWriter)(nil)
	_ Writer = (*WSPWriter)(nil)
)
