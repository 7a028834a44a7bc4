// SPDX-License-Identifier: MIT
//
// File: mask.go
// Role: per-table node offset masks (input sources, output destinations,
// path node predicates).
//
// Concurrency:
//   - A NodeMask is built by one goroutine and then only read. Reads are safe
//     for concurrent use; writes are not.
package core

import (
	"sort"

	"golang.org/x/tools/container/intsets"
)

// NodeMask selects node offsets per table. A table without an entry is not
// masked at all: every node in it passes. A nil *NodeMask passes everything.
type NodeMask struct {
	tables map[TableID]*intsets.Sparse
}

// NewNodeMask returns an empty mask that constrains no table yet.
func NewNodeMask() *NodeMask {
	return &NodeMask{tables: make(map[TableID]*intsets.Sparse)}
}

// Enable starts masking table; until nodes are added, nothing in it passes.
func (m *NodeMask) Enable(table TableID) {
	if _, ok := m.tables[table]; !ok {
		m.tables[table] = &intsets.Sparse{}
	}
}

// Add masks id in, enabling its table if needed.
func (m *NodeMask) Add(id NodeID) {
	m.Enable(id.Table)
	m.tables[id.Table].Insert(int(id.Offset))
}

// ContainsTable reports whether table is constrained by m.
func (m *NodeMask) ContainsTable(table TableID) bool {
	if m == nil {
		return false
	}
	_, ok := m.tables[table]
	return ok
}

// IsMasked reports whether id is selected inside a constrained table.
// It returns false for unconstrained tables; use Valid for predicate semantics.
func (m *NodeMask) IsMasked(id NodeID) bool {
	if m == nil {
		return false
	}
	s, ok := m.tables[id.Table]
	return ok && s.Has(int(id.Offset))
}

// Valid reports whether id passes the mask: its table is unconstrained or
// the offset is selected.
func (m *NodeMask) Valid(id NodeID) bool {
	if m == nil {
		return true
	}
	s, ok := m.tables[id.Table]
	if !ok {
		return true
	}
	return s.Has(int(id.Offset))
}

// NumMasked returns the number of selected nodes across constrained tables.
func (m *NodeMask) NumMasked() uint64 {
	if m == nil {
		return 0
	}
	var n uint64
	for _, s := range m.tables {
		n += uint64(s.Len())
	}
	return n
}

// Offsets returns the selected offsets of table in ascending order.
func (m *NodeMask) Offsets(table TableID) []Offset {
	if m == nil {
		return nil
	}
	s, ok := m.tables[table]
	if !ok {
		return nil
	}
	var buf []int
	buf = s.AppendTo(buf)
	out := make([]Offset, len(buf))
	for i, v := range buf {
		out[i] = Offset(v)
	}
	return out
}

// Tables returns the constrained tables in ascending order.
func (m *NodeMask) Tables() []TableID {
	if m == nil {
		return nil
	}
	ids := make([]TableID, 0, len(m.tables))
	for id := range m.tables {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
