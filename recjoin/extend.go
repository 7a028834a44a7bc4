// SPDX-License-Identifier: MIT

package recjoin

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/lvgds/core"
	"github.com/katalvlaran/lvgds/execctx"
	"github.com/katalvlaran/lvgds/gds"
	"github.com/katalvlaran/lvgds/paths"
)

var tracer = otel.Tracer("github.com/katalvlaran/lvgds/recjoin")

// Profiler counter and timer names recorded by Execute.
const (
	ProfileSources = "recjoin.sources"
	ProfileRows    = "recjoin.rows"
	ProfileCompute = "recjoin.compute"
	ProfileOutput  = "recjoin.output"
)

// RecursiveExtend runs one recursive join from every selected source.
type RecursiveExtend struct {
	runner *gds.Runner
	bind   BindData
}

// NewRecursiveExtend validates bind and binds it to runner's graph.
func NewRecursiveExtend(runner *gds.Runner, bind BindData) (*RecursiveExtend, error) {
	if runner == nil {
		return nil, fmt.Errorf("%w: nil runner", ErrInvalidBindData)
	}
	if err := bind.Validate(); err != nil {
		return nil, err
	}
	return &RecursiveExtend{runner: runner, bind: bind}, nil
}

// BindData returns the validated bind data.
func (r *RecursiveExtend) BindData() BindData { return r.bind }

// Execute runs the join and returns the merged rows, at most
// BindData.ResultLimit of them when a limit is set.
//
// Implementation:
//   - Stage 1: enumerate sources from the input tables, restricted by the
//     input mask where it constrains a table.
//   - Stage 2: per source, build a fresh frontier pair and parent arena,
//     seed the source and run the BSP loop up to the upper bound.
//   - Stage 3: run the path writer as a vertex compute over the output
//     tables, writing into pooled tables; stop when the limit is reached.
//   - Stage 4: merge the pooled tables and trim to the limit.
//
// Complexity: O(S * (U * (V + E) + P)) for S sources, upper bound U and P
// written path entries.
func (r *RecursiveExtend) Execute(ec *execctx.ExecutionContext) (_ *paths.Table, err error) {
	ctx, span := tracer.Start(ec.Ctx, "recjoin.Execute", trace.WithAttributes(
		attribute.String("recjoin.algorithm", r.bind.Algorithm.String()),
		attribute.String("recjoin.direction", r.bind.Direction.String()),
		attribute.Int("recjoin.lower_bound", int(r.bind.LowerBound)),
		attribute.Int("recjoin.upper_bound", int(r.bind.UpperBound)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	ec = ec.WithContext(ctx)
	logger := ec.Logger().With("algorithm", r.bind.Algorithm.String())

	sources := r.sources()
	pool := paths.NewTablePool()
	counter := paths.NewLimitCounter(r.bind.ResultLimit)
	for i, src := range sources {
		if err := ec.Client.CheckInterrupt(); err != nil {
			return nil, err
		}
		if err := r.runSource(ec, src, pool, counter); err != nil {
			return nil, fmt.Errorf("recjoin: source %s: %w", src, err)
		}
		ec.Profiler.Add(ProfileSources, 1)
		ec.Profiler.UpdateProgress(float64(i+1) / float64(len(sources)))
		if counter.ExceedLimit() {
			logger.Debug("recjoin: result limit reached", "sources_done", i+1, "limit", r.bind.ResultLimit)
			break
		}
	}

	out := pool.Merge()
	if r.bind.ResultLimit > 0 && uint64(out.Len()) > r.bind.ResultLimit {
		out.Truncate(int(r.bind.ResultLimit))
	}
	ec.Profiler.Add(ProfileRows, uint64(out.Len()))
	span.SetAttributes(attribute.Int("recjoin.rows", out.Len()))
	logger.Info("recjoin: done", "sources", len(sources), "rows", out.Len())
	return out, nil
}

func (r *RecursiveExtend) runSource(ec *execctx.ExecutionContext, src core.NodeID, pool *paths.TablePool, counter *paths.LimitCounter) error {
	g := r.runner.Graph()
	run := newRun(r.bind.Algorithm, g, r.bind.Direction, src, ec.Client.ArenaBlockCapacity())
	run.cs.InitSource(src)

	start := time.Now()
	if err := r.runner.RunRecursiveJoinEdgeCompute(ec, run.cs, r.bind.UpperBound, r.terminationMask(g)); err != nil {
		return err
	}
	ec.Profiler.Observe(ProfileCompute, time.Since(start))

	start = time.Now()
	writer := r.newWriter(paths.Config{
		Client:     ec.Client,
		Manager:    run.mgr,
		Source:     src,
		OutputMask: r.bind.OutputMask,
		Info:       r.bind.writerInfo(),
		Algorithm:  r.bind.Algorithm.String(),
	})
	vc := newOutputCompute(pool, writer, counter, r.bind.OutputTables)
	if err := r.runner.RunVertexCompute(ec, run.pair.State(), vc); err != nil {
		return err
	}
	ec.Profiler.Observe(ProfileOutput, time.Since(start))
	ec.Logger().Debug("recjoin: source done",
		"source", src,
		"iterations", run.pair.CurrentIter(),
		"density", run.pair.State().String(),
		"arena_blocks", run.mgr.Arena().NumBlocks(),
	)
	return nil
}

func (r *RecursiveExtend) newWriter(cfg paths.Config) paths.Writer {
	switch r.bind.Algorithm {
	case VarLen:
		return paths.NewVarLenWriter(cfg)
	case WSP:
		return paths.NewWSPWriter(cfg)
	case AWSP:
		return paths.NewAWSPWriter(cfg)
	default:
		return paths.NewSPWriter(cfg)
	}
}

// terminationMask returns the output mask when it pins down every possible
// destination, so counting reached masked nodes can stop the loop early.
// A table left unconstrained admits all its nodes, and nothing can be
// counted against it.
func (r *RecursiveExtend) terminationMask(g *core.Graph) *core.NodeMask {
	mask := r.bind.OutputMask
	if mask == nil {
		return nil
	}
	tables := r.bind.OutputTables
	if tables == nil {
		tables = g.NodeTableIDs()
	}
	for _, t := range tables {
		if !mask.ContainsTable(t) {
			return nil
		}
	}
	return mask
}

// sources lists the source nodes in table then offset order.
func (r *RecursiveExtend) sources() []core.NodeID {
	g := r.runner.Graph()
	tables := r.bind.InputTables
	if tables == nil {
		tables = g.NodeTableIDs()
	}
	var out []core.NodeID
	for _, t := range tables {
		if r.bind.InputMask.ContainsTable(t) {
			for _, off := range r.bind.InputMask.Offsets(t) {
				if off < g.MaxOffset(t) {
					out = append(out, core.NodeID{Table: t, Offset: off})
				}
			}
			continue
		}
		for off := core.Offset(0); off < g.MaxOffset(t); off++ {
			out = append(out, core.NodeID{Table: t, Offset: off})
		}
	}
	return out
}
