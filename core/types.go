// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: identifiers, directions, relation descriptors and sentinel errors.
//
// Determinism:
//   - Table IDs are assigned in creation order starting at 0.
//   - Node and rel offsets are dense per table, assigned in insertion order.
package core

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for graph construction and lookups.
var (
	// ErrTableNotFound indicates a table ID or name that does not exist.
	ErrTableNotFound = errors.New("core: table not found")

	// ErrDuplicateTable indicates a second table with the same name.
	ErrDuplicateTable = errors.New("core: duplicate table name")

	// ErrNodeNotFound indicates a node key or offset that does not exist.
	ErrNodeNotFound = errors.New("core: node not found")

	// ErrDuplicateKey indicates a second node with the same primary key in one table.
	ErrDuplicateKey = errors.New("core: duplicate node key")

	// ErrEmptyKey indicates a node was added with an empty primary key.
	ErrEmptyKey = errors.New("core: node key is empty")

	// ErrTableKind indicates a node table was used where a rel table was expected, or vice versa.
	ErrTableKind = errors.New("core: wrong table kind")

	// ErrInvalidFixture indicates a malformed YAML graph document.
	ErrInvalidFixture = errors.New("core: invalid graph fixture")
)

// TableID identifies a node or rel table.
type TableID uint32

// InvalidTableID is never assigned to a table.
const InvalidTableID TableID = math.MaxUint32

// Offset is a dense row position inside a table.
type Offset uint64

// InvalidOffset is never assigned to a row.
const InvalidOffset Offset = math.MaxUint64

// NodeID addresses one node: its table and its offset in that table.
type NodeID struct {
	Table  TableID
	Offset Offset
}

// InvalidNodeID is the zero-information node reference.
var InvalidNodeID = NodeID{Table: InvalidTableID, Offset: InvalidOffset}

// Valid reports whether id addresses a row.
func (id NodeID) Valid() bool { return id.Table != InvalidTableID && id.Offset != InvalidOffset }

// String renders id as "table:offset".
func (id NodeID) String() string { return fmt.Sprintf("%d:%d", id.Table, id.Offset) }

// RelID addresses one relationship (edge): its rel table and its offset.
type RelID struct {
	Table  TableID
	Offset Offset
}

// InvalidRelID is the zero-information edge reference.
var InvalidRelID = RelID{Table: InvalidTableID, Offset: InvalidOffset}

// String renders id as "table:offset".
func (id RelID) String() string { return fmt.Sprintf("%d:%d", id.Table, id.Offset) }

// Direction selects which side of a rel table is bound during a scan.
type Direction uint8

const (
	// Fwd scans from the src side to the dst side.
	Fwd Direction = iota
	// Bwd scans from the dst side to the src side.
	Bwd
	// Both scans Fwd then Bwd.
	Both
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case Fwd:
		return "fwd"
	case Bwd:
		return "bwd"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection accepts "fwd", "bwd" and "both".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "fwd", "":
		return Fwd, nil
	case "bwd":
		return Bwd, nil
	case "both":
		return Both, nil
	default:
		return Fwd, fmt.Errorf("core: unknown direction %q", s)
	}
}

// RelInfo describes one rel table reachable from a bound node table.
//
// SrcTable/DstTable are the rel table's declared endpoints. A node table
// that is the src of the rel scans it Fwd; a node table that is the dst
// scans it Bwd; a self-referencing rel table is scanned both ways.
type RelInfo struct {
	RelTable TableID
	Name     string
	SrcTable TableID
	DstTable TableID
}

// NbrTable returns the table on the far side when scanning in dir.
func (r RelInfo) NbrTable(dir Direction) TableID {
	if dir == Bwd {
		return r.SrcTable
	}
	return r.DstTable
}

// BoundTable returns the table bound when scanning in dir.
func (r RelInfo) BoundTable(dir Direction) TableID {
	if dir == Bwd {
		return r.DstTable
	}
	return r.SrcTable
}

// Chunk is one batch of neighbors produced by a scan. All slices have equal length.
type Chunk struct {
	Nbrs    []NodeID
	Edges   []RelID
	Weights []float64
}

// Len returns the number of neighbors in c.
func (c Chunk) Len() int { return len(c.Nbrs) }

// DefaultChunkSize is the maximum neighbors per Chunk.
const DefaultChunkSize = 2048
