// SPDX-License-Identifier: MIT

package paths

import (
	"sort"
	"sync"
)

// Table is a row buffer owned by one goroutine at a time.
type Table struct {
	rows []Row
}

// Append adds r.
func (t *Table) Append(r Row) { t.rows = append(t.rows, r) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns the rows in append order.
func (t *Table) Rows() []Row { return t.rows }

// TablePool hands out local tables to concurrent writers and merges them.
type TablePool struct {
	mu   sync.Mutex
	free []*Table
	all  []*Table
}

// NewTablePool returns an empty pool.
func NewTablePool() *TablePool { return &TablePool{} }

// Claim returns an idle table, creating one if none is free.
func (p *TablePool) Claim() *Table {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		t := p.free[n-1]
		p.free = p.free[:n-1]
		return t
	}
	t := &Table{}
	p.all = append(p.all, t)
	return t
}

// Return makes t available to the next Claim.
func (p *TablePool) Return(t *Table) {
	if t == nil {
		return
	}
	p.mu.Lock()
	p.free = append(p.free, t)
	p.mu.Unlock()
}

// Merge concatenates every table ever claimed. Call it after all writers
// returned their tables.
func (p *TablePool) Merge() *Table {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := &Table{}
	for _, t := range p.all {
		out.rows = append(out.rows, t.rows...)
	}
	return out
}

// SortRows orders rows by source, destination, length and edge sequence.
// Rows merged from concurrent tables have no inherent order.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Src != b.Src {
			return less(a.Src.Table, a.Src.Offset, b.Src.Table, b.Src.Offset)
		}
		if a.Dst != b.Dst {
			return less(a.Dst.Table, a.Dst.Offset, b.Dst.Table, b.Dst.Offset)
		}
		if a.Length != b.Length {
			return a.Length < b.Length
		}
		for k := 0; k < len(a.EdgeIDs) && k < len(b.EdgeIDs); k++ {
			if a.EdgeIDs[k] != b.EdgeIDs[k] {
				ea, eb := a.EdgeIDs[k], b.EdgeIDs[k]
				return less(ea.Table, ea.Offset, eb.Table, eb.Offset)
			}
		}
		return len(a.EdgeIDs) < len(b.EdgeIDs)
	})
}

func less[T ~uint32, O ~uint64](ta T, oa O, tb T, ob O) bool {
	if ta != tb {
		return ta < tb
	}
	return oa < ob
}

// Truncate drops every row past the first n.
func (t *Table) Truncate(n int) {
	if n < len(t.rows) {
		t.rows = t.rows[:n]
	}
}
