// SPDX-License-Identifier: MIT

package gds

import (
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/lvgds/core"
	"github.com/katalvlaran/lvgds/execctx"
	"github.com/katalvlaran/lvgds/frontier"
	"github.com/katalvlaran/lvgds/metrics"
	"github.com/katalvlaran/lvgds/scheduler"
)

// ErrNilState is returned when a Runner method gets no ComputeState.
var ErrNilState = errors.New("gds: nil compute state")

var tracer = otel.Tracer("github.com/katalvlaran/lvgds/gds")

// Runner drives frontier and vertex passes over one graph. Sparse passes
// run on the calling goroutine; dense passes are scheduled on sched with a
// dedicated worker and up to MaxNumThreadForExec goroutines.
type Runner struct {
	sched scheduler.Scheduler
	graph *core.Graph
}

// NewRunner returns a Runner over g.
func NewRunner(sched scheduler.Scheduler, g *core.Graph) *Runner {
	return &Runner{sched: sched, graph: g}
}

// Graph returns the graph the runner scans.
func (r *Runner) Graph() *core.Graph { return r.graph }

// RunRecursiveJoinEdgeCompute runs the BSP loop of a recursive join.
//
// Implementation:
//   - Stage 1: reset the shared edge compute.
//   - Stage 2: while the pair has active nodes and fewer than maxIter
//     iterations ran: begin an iteration; stop early when outputMask is
//     set and the edge compute reports every target reached; expand one
//     iteration; densify when the next frontier outgrew the threshold.
//
// Complexity: O(maxIter * (V + E)) in the worst case.
func (r *Runner) RunRecursiveJoinEdgeCompute(ec *execctx.ExecutionContext, cs *ComputeState, maxIter uint16, outputMask *core.NodeMask) (err error) {
	if cs == nil {
		return ErrNilState
	}
	ctx, span := tracer.Start(ec.Ctx, "gds.RunRecursiveJoinEdgeCompute", trace.WithAttributes(
		attribute.Int("gds.max_iter", int(maxIter)),
		attribute.Bool("gds.output_mask", outputMask != nil),
	))
	defer func() {
		span.SetAttributes(
			attribute.Int("gds.iterations", int(cs.Pair.CurrentIter())),
			attribute.String("gds.density", cs.Pair.State().String()),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	ec = ec.WithContext(ctx)
	logger := ec.Logger()
	threshold := ec.Client.SparseFrontierThreshold()

	cs.EdgeCompute.ResetSingleThreadState()
	for cs.Pair.ContinueNextIter(maxIter) {
		cs.Pair.BeginNewIteration()
		if outputMask != nil && cs.EdgeCompute.Terminate(outputMask) {
			metrics.EarlyTerminations.Inc()
			logger.Debug("gds: all targets reached", "iter", cs.Pair.CurrentIter())
			break
		}
		if err := r.runOneIteration(ec, cs); err != nil {
			return err
		}
		if cs.Pair.NeedSwitchToDense(threshold) {
			logger.Debug("gds: switching to dense", "iter", cs.Pair.CurrentIter(), "threshold", threshold)
			if err := cs.SwitchToDense(ctx); err != nil {
				return fmt.Errorf("gds: dense switch: %w", err)
			}
		}
	}
	return nil
}

// RunAlgorithmEdgeCompute runs the plain BSP loop used by whole-graph
// algorithms: no early termination and no densification.
func (r *Runner) RunAlgorithmEdgeCompute(ec *execctx.ExecutionContext, cs *ComputeState, maxIter uint16) error {
	if cs == nil {
		return ErrNilState
	}
	for cs.Pair.ContinueNextIter(maxIter) {
		cs.Pair.BeginNewIteration()
		if err := r.runOneIteration(ec, cs); err != nil {
			return err
		}
	}
	return nil
}

// RunFTSEdgeCompute runs exactly one iteration.
func (r *Runner) RunFTSEdgeCompute(ec *execctx.ExecutionContext, cs *ComputeState) error {
	if cs == nil {
		return ErrNilState
	}
	cs.Pair.BeginNewIteration()
	return r.runOneIteration(ec, cs)
}

// runOneIteration expands, for every node table, each rel table it is the
// src of, in the directions cs asks for.
func (r *Runner) runOneIteration(ec *execctx.ExecutionContext, cs *ComputeState) error {
	metrics.GDSIterations.WithLabelValues(cs.Pair.State().String()).Inc()
	for _, table := range r.graph.NodeTableIDs() {
		for _, info := range r.graph.RelInfos(table) {
			if err := ec.Client.CheckInterrupt(); err != nil {
				return err
			}
			switch cs.Direction {
			case core.Fwd, core.Bwd:
				if err := r.runFrontierTask(ec, cs, info, cs.Direction); err != nil {
					return err
				}
			case core.Both:
				if err := r.runFrontierTask(ec, cs, info, core.Fwd); err != nil {
					return err
				}
				if err := r.runFrontierTask(ec, cs, info, core.Bwd); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *Runner) runFrontierTask(ec *execctx.ExecutionContext, cs *ComputeState, info core.RelInfo, dir core.Direction) error {
	ft := NewFrontierTask(r.graph, cs.Pair, cs.EdgeCompute, info, dir, ec.Client)
	if cs.Pair.State() == frontier.Sparse {
		return ft.RunSparse()
	}
	task := scheduler.NewTask(ft, ec.Client.MaxNumThreadForExec())
	return r.sched.ScheduleTaskAndWaitOrError(ec, task, true)
}

// RunVertexCompute visits every node table vc accepts. In the Sparse state
// each table is visited through VertexComputeSparse on the calling
// goroutine; in the Dense state it is split into morsels on the scheduler.
func (r *Runner) RunVertexCompute(ec *execctx.ExecutionContext, state frontier.DensityState, vc VertexCompute) error {
	for _, table := range r.graph.NodeTableIDs() {
		if !vc.BeginOnTable(table) {
			continue
		}
		vt := NewVertexComputeTask(r.graph, vc, table, ec.Client)
		if state == frontier.Sparse {
			if err := vt.RunSparse(); err != nil {
				return err
			}
			continue
		}
		task := scheduler.NewTask(vt, ec.Client.MaxNumThreadForExec())
		if err := r.sched.ScheduleTaskAndWaitOrError(ec, task, true); err != nil {
			return err
		}
	}
	return nil
}

// MaxIterations is the iteration cap for loops that should only stop on
// convergence.
const MaxIterations uint16 = math.MaxUint16 - 1
