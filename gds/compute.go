// SPDX-License-Identifier: MIT

package gds

import (
	"context"

	"github.com/katalvlaran/lvgds/core"
	"github.com/katalvlaran/lvgds/frontier"
	"github.com/katalvlaran/lvgds/metrics"
)

// EdgeCompute processes neighbor chunks of active bound nodes.
//
// The Runner keeps one shared instance for inline (sparse) passes and calls
// Copy once per goroutine of a dense pass, so an implementation may keep
// per-goroutine scratch state (an arena block, buffers) without locking.
type EdgeCompute interface {
	// EdgeCompute handles one chunk of bound's neighbors and returns the
	// neighbors to activate in the next frontier. fwd reports whether the
	// chunk was scanned src to dst.
	EdgeCompute(bound core.NodeID, chunk core.Chunk, fwd bool) ([]core.NodeID, error)
	// ResetSingleThreadState clears state accumulated by the shared
	// instance across iterations, before a new run.
	ResetSingleThreadState()
	// Terminate reports, between iterations, that every node the caller
	// needs from mask has been reached.
	Terminate(mask *core.NodeMask) bool
	Copy() EdgeCompute
}

// BaseEdgeCompute provides no-op ResetSingleThreadState and Terminate.
type BaseEdgeCompute struct{}

// ResetSingleThreadState implements EdgeCompute.
func (BaseEdgeCompute) ResetSingleThreadState() {}

// Terminate implements EdgeCompute.
func (BaseEdgeCompute) Terminate(*core.NodeMask) bool { return false }

// maxSPTerminateTargets bounds the masks SPEdgeCompute counts against;
// larger masks never terminate early.
const maxSPTerminateTargets = 100

// SPEdgeCompute is embedded by unweighted shortest-path computes. Because a
// node is reached at most once, the run can stop as soon as every masked
// node has appeared on a frontier.
type SPEdgeCompute struct {
	Pair       *frontier.SPPair
	numReached uint64
}

// ResetSingleThreadState implements EdgeCompute.
func (c *SPEdgeCompute) ResetSingleThreadState() { c.numReached = 0 }

// Terminate implements EdgeCompute.
func (c *SPEdgeCompute) Terminate(mask *core.NodeMask) bool {
	target := mask.NumMasked()
	if target > maxSPTerminateTargets {
		return false
	}
	c.numReached += c.Pair.NumActiveNodesInCurrentFrontier(mask)
	return c.numReached == target
}

// VertexCompute visits nodes table by table.
type VertexCompute interface {
	// BeginOnTable reports whether table should be visited at all.
	BeginOnTable(table core.TableID) bool
	// VertexCompute visits offsets [begin, end) of table.
	VertexCompute(begin, end core.Offset, table core.TableID) error
	// VertexComputeSparse visits the nodes of table the implementation
	// tracks itself, used while the run is sparse.
	VertexComputeSparse(table core.TableID) error
	Copy() VertexCompute
}

// Releaser is implemented by VertexCompute copies holding resources that
// must be returned once the copy is done.
type Releaser interface {
	Release()
}

// AuxiliaryState is per-run state kept beside the frontier pair, such as
// the parent arena of path algorithms.
type AuxiliaryState interface {
	InitSource(source core.NodeID)
	SwitchToDense(ctx context.Context) error
}

// NoAuxiliaryState is an AuxiliaryState that does nothing.
type NoAuxiliaryState struct{}

// InitSource implements AuxiliaryState.
func (NoAuxiliaryState) InitSource(core.NodeID) {}

// SwitchToDense implements AuxiliaryState.
func (NoAuxiliaryState) SwitchToDense(context.Context) error { return nil }

// ComputeState is everything one run of the engine mutates.
type ComputeState struct {
	Pair        frontier.Pair
	EdgeCompute EdgeCompute
	Aux         AuxiliaryState
	// Direction selects which sides of each rel table are scanned.
	Direction core.Direction
}

// NewComputeState returns a ComputeState; a nil aux becomes
// NoAuxiliaryState.
func NewComputeState(pair frontier.Pair, ec EdgeCompute, aux AuxiliaryState, dir core.Direction) *ComputeState {
	if aux == nil {
		aux = NoAuxiliaryState{}
	}
	return &ComputeState{Pair: pair, EdgeCompute: ec, Aux: aux, Direction: dir}
}

// InitSource activates source for the first iteration.
func (s *ComputeState) InitSource(source core.NodeID) {
	s.Pair.AddNodeToNextFrontier(source)
	s.Pair.SetActiveNodesForNextIter()
	s.Aux.InitSource(source)
}

// SwitchToDense densifies the frontier pair and the auxiliary state.
func (s *ComputeState) SwitchToDense(ctx context.Context) error {
	if err := s.Pair.SwitchToDense(ctx); err != nil {
		return err
	}
	if err := s.Aux.SwitchToDense(ctx); err != nil {
		return err
	}
	metrics.DenseSwitches.Inc()
	return nil
}
