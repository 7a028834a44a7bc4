// SPDX-License-Identifier: MIT
//
// File: graph.go
// Role: table catalog, node/rel insertion and schema enumeration.
//
// Concurrency:
//   - mu guards the catalog and every table's rows. Builders take the write
//     lock; scans and lookups take the read lock, so a fully built Graph can be
//     scanned by any number of goroutines at once.
package core

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// nodeTable stores node primary keys by offset.
type nodeTable struct {
	id    TableID
	name  string
	keys  []string
	index map[string]Offset
}

// adjEntry is one half-edge in an adjacency list.
type adjEntry struct {
	nbr Offset
	rel Offset
}

// relTable stores edges and both adjacency directions.
type relTable struct {
	id       TableID
	name     string
	src, dst TableID
	weights  []float64    // by rel offset
	fwd      [][]adjEntry // by src offset
	bwd      [][]adjEntry // by dst offset
}

// GraphOption configures a Graph before creation.
type GraphOption func(g *Graph)

// WithChunkSize sets the maximum number of neighbors per scanned Chunk.
// Values below 1 are ignored.
func WithChunkSize(n int) GraphOption {
	return func(g *Graph) {
		if n > 0 {
			g.chunkSize = n
		}
	}
}

// Graph is an in-memory property graph of node tables and rel tables.
//
// Each node table holds nodes addressed by dense offsets and a unique string
// key. Each rel table connects one src node table to one dst node table and
// stores a float64 weight per edge.
type Graph struct {
	mu sync.RWMutex

	nextTableID TableID
	nodes       map[TableID]*nodeTable
	rels        map[TableID]*relTable
	byName      map[string]TableID
	chunkSize   int
}

// NewGraph creates an empty Graph.
// Complexity: O(1)
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		nodes:     make(map[TableID]*nodeTable),
		rels:      make(map[TableID]*relTable),
		byName:    make(map[string]TableID),
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// AddNodeTable registers a node table and returns its ID.
//
// Errors:
//   - ErrDuplicateTable if any table already uses name.
func (g *Graph) AddNodeTable(name string) (TableID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.byName[name]; ok {
		return InvalidTableID, fmt.Errorf("%w: %q", ErrDuplicateTable, name)
	}
	id := g.nextTableID
	g.nextTableID++
	g.nodes[id] = &nodeTable{id: id, name: name, index: make(map[string]Offset)}
	g.byName[name] = id

	return id, nil
}

// AddRelTable registers a rel table from src to dst node tables.
//
// Errors:
//   - ErrDuplicateTable if any table already uses name.
//   - ErrTableNotFound / ErrTableKind if src or dst is not a node table.
func (g *Graph) AddRelTable(name string, src, dst TableID) (TableID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.byName[name]; ok {
		return InvalidTableID, fmt.Errorf("%w: %q", ErrDuplicateTable, name)
	}
	for _, t := range []TableID{src, dst} {
		if _, ok := g.nodes[t]; !ok {
			return InvalidTableID, g.missingNodeTableLocked(t)
		}
	}
	id := g.nextTableID
	g.nextTableID++
	g.rels[id] = &relTable{id: id, name: name, src: src, dst: dst}
	g.byName[name] = id

	return id, nil
}

func (g *Graph) missingNodeTableLocked(t TableID) error {
	if _, ok := g.rels[t]; ok {
		return fmt.Errorf("%w: table %d is a rel table", ErrTableKind, t)
	}
	return fmt.Errorf("%w: node table %d", ErrTableNotFound, t)
}

// AddNode appends a node with a unique key to a node table.
//
// Implementation:
//   - Stage 1: validate key and table.
//   - Stage 2: assign the next dense offset and index the key.
//
// Complexity: O(1) amortized.
func (g *Graph) AddNode(table TableID, key string) (NodeID, error) {
	if key == "" {
		return InvalidNodeID, ErrEmptyKey
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	nt, ok := g.nodes[table]
	if !ok {
		return InvalidNodeID, g.missingNodeTableLocked(table)
	}
	if _, dup := nt.index[key]; dup {
		return InvalidNodeID, fmt.Errorf("%w: %q in %s", ErrDuplicateKey, key, nt.name)
	}
	off := Offset(len(nt.keys))
	nt.keys = append(nt.keys, key)
	nt.index[key] = off

	return NodeID{Table: table, Offset: off}, nil
}

// AddRel appends an edge src->dst to a rel table. The endpoints must live in
// the rel table's declared src and dst node tables. weight is stored as is;
// validating it is up to the algorithm that reads it.
//
// Complexity: O(1) amortized.
func (g *Graph) AddRel(table TableID, src, dst NodeID, weight float64) (RelID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rt, ok := g.rels[table]
	if !ok {
		if _, isNode := g.nodes[table]; isNode {
			return InvalidRelID, fmt.Errorf("%w: table %d is a node table", ErrTableKind, table)
		}
		return InvalidRelID, fmt.Errorf("%w: rel table %d", ErrTableNotFound, table)
	}
	if src.Table != rt.src || dst.Table != rt.dst {
		return InvalidRelID, fmt.Errorf("%w: %s connects %d->%d, got %s->%s",
			ErrTableKind, rt.name, rt.src, rt.dst, src, dst)
	}
	if !g.hasNodeLocked(src) || !g.hasNodeLocked(dst) {
		return InvalidRelID, fmt.Errorf("%w: %s->%s", ErrNodeNotFound, src, dst)
	}
	off := Offset(len(rt.weights))
	rt.weights = append(rt.weights, weight)
	rt.fwd = growAdj(rt.fwd, src.Offset)
	rt.fwd[src.Offset] = append(rt.fwd[src.Offset], adjEntry{nbr: dst.Offset, rel: off})
	rt.bwd = growAdj(rt.bwd, dst.Offset)
	rt.bwd[dst.Offset] = append(rt.bwd[dst.Offset], adjEntry{nbr: src.Offset, rel: off})

	return RelID{Table: table, Offset: off}, nil
}

func growAdj(adj [][]adjEntry, off Offset) [][]adjEntry {
	for Offset(len(adj)) <= off {
		adj = append(adj, nil)
	}
	return adj
}

func (g *Graph) hasNodeLocked(id NodeID) bool {
	nt, ok := g.nodes[id.Table]
	return ok && id.Offset < Offset(len(nt.keys))
}

// HasNode reports whether id addresses an existing node.
func (g *Graph) HasNode(id NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hasNodeLocked(id)
}

// NodeTableIDs returns all node table IDs in ascending order.
func (g *Graph) NodeTableIDs() []TableID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]TableID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// RelInfos returns the rel tables whose src side is nodeTable, ordered by
// rel table ID. A frontier pass over nodeTable scans each of them Fwd; a
// Bwd pass binds the dst side of the same descriptors.
func (g *Graph) RelInfos(nodeTable TableID) []RelInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []RelInfo
	for _, rt := range g.rels {
		if rt.src == nodeTable {
			out = append(out, RelInfo{RelTable: rt.id, Name: rt.name, SrcTable: rt.src, DstTable: rt.dst})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelTable < out[j].RelTable })

	return out
}

// MaxOffset returns the number of nodes in a node table (an exclusive offset bound).
// Unknown tables report 0.
func (g *Graph) MaxOffset(table TableID) Offset {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if nt, ok := g.nodes[table]; ok {
		return Offset(len(nt.keys))
	}
	return 0
}

// MaxOffsetMap returns MaxOffset for every node table.
func (g *Graph) MaxOffsetMap() map[TableID]Offset {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m := make(map[TableID]Offset, len(g.nodes))
	for id, nt := range g.nodes {
		m[id] = Offset(len(nt.keys))
	}
	return m
}

// NumNodes returns the total node count across node tables.
func (g *Graph) NumNodes() uint64 {
	var n uint64
	for _, m := range g.MaxOffsetMap() {
		n += uint64(m)
	}
	return n
}

// TableByName resolves a node or rel table name.
func (g *Graph) TableByName(name string) (TableID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.byName[name]
	if !ok {
		return InvalidTableID, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}
	return id, nil
}

// TableName returns the name of a table, or "" if unknown.
func (g *Graph) TableName(id TableID) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if nt, ok := g.nodes[id]; ok {
		return nt.name
	}
	if rt, ok := g.rels[id]; ok {
		return rt.name
	}
	return ""
}

// Lookup resolves a node key inside a node table.
func (g *Graph) Lookup(table TableID, key string) (NodeID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nt, ok := g.nodes[table]
	if !ok {
		return InvalidNodeID, g.missingNodeTableLocked(table)
	}
	off, ok := nt.index[key]
	if !ok {
		return InvalidNodeID, fmt.Errorf("%w: %q in %s", ErrNodeNotFound, key, nt.name)
	}
	return NodeID{Table: table, Offset: off}, nil
}

// Key returns the primary key of a node, or "" if id does not exist.
func (g *Graph) Key(id NodeID) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.hasNodeLocked(id) {
		return ""
	}
	return g.nodes[id.Table].keys[id.Offset]
}

// Weight returns the stored weight of an edge, or NaN if id does not exist.
func (g *Graph) Weight(id RelID) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rt, ok := g.rels[id.Table]
	if !ok || id.Offset >= Offset(len(rt.weights)) {
		return math.NaN()
	}
	return rt.weights[id.Offset]
}
