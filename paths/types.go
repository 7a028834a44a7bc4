// SPDX-License-Identifier: MIT

package paths

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/katalvlaran/lvgds/core"
)

// ErrUnknownSemantic is returned by ParseSemantic.
var ErrUnknownSemantic = errors.New("paths: unknown path semantic")

// Semantic restricts which walks are emitted.
type Semantic uint8

const (
	// Walk emits every walk.
	Walk Semantic = iota
	// Trail rejects walks that repeat an edge.
	Trail
	// Acyclic rejects walks that repeat a node; the destination is not
	// compared, so a cycle back to the source is allowed.
	Acyclic
)

// String implements fmt.Stringer.
func (s Semantic) String() string {
	switch s {
	case Walk:
		return "walk"
	case Trail:
		return "trail"
	case Acyclic:
		return "acyclic"
	default:
		return fmt.Sprintf("semantic(%d)", uint8(s))
	}
}

// ParseSemantic accepts walk, trail and acyclic in any case.
func ParseSemantic(s string) (Semantic, error) {
	switch strings.ToLower(s) {
	case "walk", "":
		return Walk, nil
	case "trail":
		return Trail, nil
	case "acyclic":
		return Acyclic, nil
	default:
		return Walk, fmt.Errorf("%w: %q", ErrUnknownSemantic, s)
	}
}

// WriterInfo configures a path writer.
type WriterInfo struct {
	Semantic Semantic
	// LowerBound is the minimum path length emitted.
	LowerBound uint16
	// WritePath fills Row.NodeIDs, Row.EdgeIDs and Row.Directions.
	WritePath bool
	// WriteEdgeDirection fills Row.Directions.
	WriteEdgeDirection bool
	// FlipPath keeps the stack order instead of reversing it, for runs
	// that started from the destination side.
	FlipPath bool
	// PathNodeMask, when set, restricts the intermediate nodes of a path.
	PathNodeMask *core.NodeMask
}

// HasNodeMask reports whether intermediate nodes are filtered.
func (i WriterInfo) HasNodeMask() bool { return i.PathNodeMask != nil }

func (i WriterInfo) fast() bool { return !i.HasNodeMask() && i.Semantic == Walk }

// Row is one emitted path.
type Row struct {
	Src    core.NodeID
	Dst    core.NodeID
	Length uint16
	// Directions[i] reports whether edge i was traversed src to dst.
	Directions []bool
	// NodeIDs holds the Length-1 intermediate nodes, src side first.
	NodeIDs []core.NodeID
	EdgeIDs []core.RelID
	// Weight is the path cost; only weighted algorithms set Weighted.
	Weight   float64
	Weighted bool
}

// LimitCounter counts emitted rows across every writer of one query.
// A zero limit never triggers.
type LimitCounter struct {
	limit uint64
	count atomic.Uint64
}

// NewLimitCounter returns a counter that is exceeded once limit rows were
// counted.
func NewLimitCounter(limit uint64) *LimitCounter {
	return &LimitCounter{limit: limit}
}

// Increase adds n rows.
func (c *LimitCounter) Increase(n uint64) {
	if c != nil {
		c.count.Add(n)
	}
}

// ExceedLimit reports whether the limit has been reached. Nil counters
// never do.
func (c *LimitCounter) ExceedLimit() bool {
	return c != nil && c.limit > 0 && c.count.Load() >= c.limit
}

// Count returns the rows counted so far.
func (c *LimitCounter) Count() uint64 {
	if c == nil {
		return 0
	}
	return c.count.Load()
}
