// SPDX-License-Identifier: MIT

package recjoin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/lvgds/core"
	"github.com/katalvlaran/lvgds/gds"
	"github.com/katalvlaran/lvgds/paths"
)

var (
	// ErrNegativeWeight is returned when a weighted algorithm scans an edge
	// with a negative weight.
	ErrNegativeWeight = errors.New("recjoin: negative edge weight")

	// ErrInvalidWeight is returned for NaN or infinite edge weights.
	ErrInvalidWeight = errors.New("recjoin: non-finite edge weight")

	// ErrUnknownAlgorithm is returned by ParseAlgorithm.
	ErrUnknownAlgorithm = errors.New("recjoin: unknown algorithm")

	// ErrInvalidBindData wraps every BindData validation failure.
	ErrInvalidBindData = errors.New("recjoin: invalid bind data")
)

// DefaultUpperBound caps unweighted runs when BindData.UpperBound is 0.
const DefaultUpperBound uint16 = 30

// Algorithm selects the recursive join.
type Algorithm uint8

const (
	// AllSP finds every shortest path by hop count.
	AllSP Algorithm = iota
	// SingleSP finds one shortest path by hop count per destination.
	SingleSP
	// WSP finds one minimum-weight path per destination.
	WSP
	// AWSP finds every minimum-weight path.
	AWSP
	// VarLen enumerates paths with a length between the bounds.
	VarLen
)

var algorithmNames = [...]string{
	AllSP:    "all_sp",
	SingleSP: "single_sp",
	WSP:      "wsp",
	AWSP:     "awsp",
	VarLen:   "var_len",
}

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	if int(a) < len(algorithmNames) {
		return algorithmNames[a]
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

// ParseAlgorithm accepts the names String returns, in any case.
func ParseAlgorithm(s string) (Algorithm, error) {
	for i, name := range algorithmNames {
		if strings.EqualFold(s, name) {
			return Algorithm(i), nil
		}
	}
	return AllSP, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Weighted reports whether a uses edge weights.
func (a Algorithm) Weighted() bool { return a == WSP || a == AWSP }

// BindData is the resolved input of one recursive join.
type BindData struct {
	Algorithm Algorithm
	Direction core.Direction

	// LowerBound and UpperBound bound the path length (in edges). Shortest
	// path algorithms ignore LowerBound. UpperBound 0 selects
	// DefaultUpperBound for unweighted algorithms and no bound for
	// weighted ones.
	LowerBound uint16
	UpperBound uint16

	Semantic  paths.Semantic
	WritePath bool
	// FlipPath renders paths in stack order; set when the join runs from
	// the destination side.
	FlipPath bool

	// InputTables and OutputTables restrict source and destination node
	// tables; nil means every table.
	InputTables  []core.TableID
	OutputTables []core.TableID
	// InputMask and OutputMask select sources and destinations within the
	// tables they constrain.
	InputMask  *core.NodeMask
	OutputMask *core.NodeMask
	// PathNodeMask restricts intermediate nodes.
	PathNodeMask *core.NodeMask

	// ResultLimit stops the join after that many rows; 0 is unlimited.
	ResultLimit uint64
}

// Validate checks bounds and resolves the default upper bound.
func (b *BindData) Validate() error {
	if int(b.Algorithm) >= len(algorithmNames) {
		return fmt.Errorf("%w: %s", ErrInvalidBindData, b.Algorithm)
	}
	if b.Direction > core.Both {
		return fmt.Errorf("%w: %s", ErrInvalidBindData, b.Direction)
	}
	if b.Semantic > paths.Acyclic {
		return fmt.Errorf("%w: %s", ErrInvalidBindData, b.Semantic)
	}
	if b.UpperBound == 0 {
		b.UpperBound = DefaultUpperBound
		if b.Algorithm.Weighted() {
			b.UpperBound = gds.MaxIterations
		}
	}
	if b.UpperBound > gds.MaxIterations {
		return fmt.Errorf("%w: upper bound %d exceeds %d", ErrInvalidBindData, b.UpperBound, gds.MaxIterations)
	}
	if b.LowerBound > b.UpperBound {
		return fmt.Errorf("%w: lower bound %d exceeds upper bound %d", ErrInvalidBindData, b.LowerBound, b.UpperBound)
	}
	return nil
}

func (b *BindData) writerInfo() paths.WriterInfo {
	info := paths.WriterInfo{
		Semantic:           b.Semantic,
		WritePath:          b.WritePath,
		WriteEdgeDirection: b.WritePath && b.Direction == core.Both,
		FlipPath:           b.FlipPath,
		PathNodeMask:       b.PathNodeMask,
	}
	if b.Algorithm == VarLen {
		info.LowerBound = b.LowerBound
	}
	return info
}
