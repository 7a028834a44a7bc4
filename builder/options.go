// SPDX-License-Identifier: MIT
// Package: lvgds/builder
//
// options.go: functional options resolved into an immutable builderConfig.
//
// Design:
//   - Option constructors validate eagerly and record the violation; BuildGraph
//     surfaces it before touching the graph.
//   - No RNG unless one is set: deterministic constructors never need it.

package builder

import (
	"fmt"
	"math/rand"
	"strconv"
)

// Defaults.
const (
	DefaultNodeTable  = "N"
	DefaultRelTable   = "E"
	DefaultEdgeWeight = 1.0
)

// WeightFn returns the weight of the next emitted edge. rng is nil unless
// WithSeed or WithRand was given.
type WeightFn func(rng *rand.Rand) float64

// Option configures BuildGraph.
type Option func(*builderConfig)

type builderConfig struct {
	nodeTable string
	relTable  string
	idFn      func(int) string
	rng       *rand.Rand
	weightFn  WeightFn
	err       error
}

func newBuilderConfig(opts ...Option) builderConfig {
	cfg := builderConfig{
		nodeTable: DefaultNodeTable,
		relTable:  DefaultRelTable,
		idFn:      strconv.Itoa,
		weightFn:  ConstantWeightFn(DefaultEdgeWeight),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTableNames names the node and rel tables.
func WithTableNames(nodes, rels string) Option {
	return func(c *builderConfig) {
		if nodes == "" || rels == "" || nodes == rels {
			c.err = fmt.Errorf("%w: table names %q, %q", ErrOptionViolation, nodes, rels)
			return
		}
		c.nodeTable, c.relTable = nodes, rels
	}
}

// WithIDScheme derives node keys from node indices. Keys must be unique.
func WithIDScheme(fn func(int) string) Option {
	return func(c *builderConfig) {
		if fn == nil {
			c.err = fmt.Errorf("%w: nil id scheme", ErrOptionViolation)
			return
		}
		c.idFn = fn
	}
}

// WithRand sets the RNG.
func WithRand(r *rand.Rand) Option {
	return func(c *builderConfig) {
		if r == nil {
			c.err = fmt.Errorf("%w: nil rand", ErrOptionViolation)
			return
		}
		c.rng = r
	}
}

// WithSeed sets a fresh RNG seeded with seed.
func WithSeed(seed int64) Option {
	return func(c *builderConfig) { c.rng = rand.New(rand.NewSource(seed)) }
}

// WithWeightFn sets the edge weight distribution.
func WithWeightFn(fn WeightFn) Option {
	return func(c *builderConfig) {
		if fn == nil {
			c.err = fmt.Errorf("%w: nil weight function", ErrOptionViolation)
			return
		}
		c.weightFn = fn
	}
}

// ConstantWeightFn always returns w.
func ConstantWeightFn(w float64) WeightFn {
	return func(*rand.Rand) float64 { return w }
}

// UniformWeightFn draws integral weights uniformly from [lo, hi]. It needs
// an RNG; without one it returns lo.
func UniformWeightFn(lo, hi int) WeightFn {
	if hi < lo {
		lo, hi = hi, lo
	}
	return func(rng *rand.Rand) float64 {
		if rng == nil {
			return float64(lo)
		}
		return float64(lo + rng.Intn(hi-lo+1))
	}
}
