// SPDX-License-Identifier: MIT
// Package: lvgds/builder
//
// api.go: BuildGraph orchestrator and the Target constructors write to.
//
// Design:
//   - One orchestrator: BuildGraph(gopts, bopts, cons...) creates the graph and
//     its two tables, resolves the options, then runs cons in order.
//   - Constructors return sentinel errors and never panic.
//   - Determinism: same options, seed and constructor order yield identical
//     graphs, RelIDs included.

package builder

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/lvgds/core"
)

var (
	// ErrTooFewVertices is returned when a size parameter is below the
	// constructor's minimum.
	ErrTooFewVertices = errors.New("builder: parameter too small")

	// ErrInvalidProbability is returned for probabilities outside [0,1].
	ErrInvalidProbability = errors.New("builder: probability out of range")

	// ErrNeedRandSource is returned when a stochastic constructor has no RNG.
	ErrNeedRandSource = errors.New("builder: rng is required")

	// ErrConstructFailed is returned for a nil constructor.
	ErrConstructFailed = errors.New("builder: construction failed")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("builder: invalid option value")
)

// Target is the graph and tables constructors populate.
type Target struct {
	Graph *core.Graph
	Nodes core.TableID
	Rels  core.TableID

	cfg builderConfig
}

// Constructor adds one topology to t.
type Constructor func(t *Target) error

// BuildGraph creates a graph with gopts, adds the node and rel tables, and
// applies cons in order. Constructor errors are wrapped with their index.
//
// Complexity: O(len(bopts)) plus the cost of each constructor.
func BuildGraph(gopts []core.GraphOption, bopts []Option, cons ...Constructor) (*Target, error) {
	cfg := newBuilderConfig(bopts...)
	if cfg.err != nil {
		return nil, cfg.err
	}
	g := core.NewGraph(gopts...)
	nodes, err := g.AddNodeTable(cfg.nodeTable)
	if err != nil {
		return nil, fmt.Errorf("BuildGraph: %w", err)
	}
	rels, err := g.AddRelTable(cfg.relTable, nodes, nodes)
	if err != nil {
		return nil, fmt.Errorf("BuildGraph: %w", err)
	}
	t := &Target{Graph: g, Nodes: nodes, Rels: rels, cfg: cfg}
	for i, fn := range cons {
		if fn == nil {
			return nil, fmt.Errorf("BuildGraph: nil constructor at index %d: %w", i, ErrConstructFailed)
		}
		if err := fn(t); err != nil {
			return nil, fmt.Errorf("BuildGraph: constructor %d: %w", i, err)
		}
	}
	return t, nil
}

// Node resolves the node with global index i, counted across every
// constructor in application order.
func (t *Target) Node(i int) (core.NodeID, error) {
	return t.Graph.Lookup(t.Nodes, t.cfg.idFn(i))
}

// addNodes appends n nodes keyed idFn(base+i) and returns their IDs, where
// base is the current node count so composed constructors never collide.
func (t *Target) addNodes(n int) ([]core.NodeID, error) {
	base := int(t.Graph.MaxOffset(t.Nodes))
	ids := make([]core.NodeID, n)
	for i := range ids {
		id, err := t.Graph.AddNode(t.Nodes, t.cfg.idFn(base+i))
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func (t *Target) addEdge(src, dst core.NodeID) error {
	_, err := t.Graph.AddRel(t.Rels, src, dst, t.cfg.weightFn(t.cfg.rng))
	return err
}
