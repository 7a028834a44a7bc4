package gds_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvgds/builder"
	"github.com/katalvlaran/lvgds/core"
	"github.com/katalvlaran/lvgds/execctx"
	"github.com/katalvlaran/lvgds/frontier"
	"github.com/katalvlaran/lvgds/gds"
	"github.com/katalvlaran/lvgds/internal/ctxlog"
	"github.com/katalvlaran/lvgds/scheduler"
)

const ladderSize = 50

// ladder builds nodes 0..n-1 with edges i->i+1 and i->i+2, so the BFS level
// of node i from node 0 is ceil(i/2).
func ladder(t *testing.T, n int) (*core.Graph, core.TableID, core.TableID) {
	t.Helper()
	tg, err := builder.BuildGraph([]core.GraphOption{core.WithChunkSize(1)}, nil, builder.Ladder(n))
	require.NoError(t, err)
	return tg.Graph, tg.Nodes, tg.Rels
}

func newExec(t *testing.T, opts ...execctx.Option) *execctx.ExecutionContext {
	t.Helper()
	client, err := execctx.NewClientContext(context.Background(), opts...)
	require.NoError(t, err)
	return execctx.NewExecutionContext(client, ctxlog.Discard())
}

func schedulers(t *testing.T) map[string]scheduler.Scheduler {
	t.Helper()
	pool, err := scheduler.NewPool(4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return map[string]scheduler.Scheduler{
		"pool":   pool,
		"inline": scheduler.NewInline(ctxlog.Discard()),
	}
}

// reach activates every neighbor not reached yet.
type reach struct {
	gds.SPEdgeCompute
	calls *atomic.Int64
	fail  error
	delay time.Duration
}

func newReach(p *frontier.SPPair) *reach {
	return &reach{SPEdgeCompute: gds.SPEdgeCompute{Pair: p}, calls: new(atomic.Int64)}
}

func (r *reach) EdgeCompute(_ core.NodeID, c core.Chunk, _ bool) ([]core.NodeID, error) {
	r.calls.Add(1)
	time.Sleep(r.delay)
	if r.fail != nil {
		return nil, r.fail
	}
	var out []core.NodeID
	for _, nbr := range c.Nbrs {
		if r.Pair.NextFrontierValue(nbr) == frontier.Unvisited {
			out = append(out, nbr)
		}
	}
	return out, nil
}

func (r *reach) Copy() gds.EdgeCompute {
	return &reach{SPEdgeCompute: gds.SPEdgeCompute{Pair: r.Pair}, calls: r.calls, fail: r.fail, delay: r.delay}
}

func TestRunRecursiveJoin_Levels(t *testing.T) {
	for name, sched := range schedulers(t) {
		for _, threshold := range []uint64{0, 1 << 20} {
			t.Run(fmt.Sprintf("%s/threshold=%d", name, threshold), func(t *testing.T) {
				g, nodes, _ := ladder(t, ladderSize)
				ec := newExec(t, execctx.WithSparseFrontierThreshold(threshold), execctx.WithMaxNumThreads(3))
				pair := frontier.NewSPPair(g.MaxOffsetMap())
				cs := gds.NewComputeState(pair, newReach(pair), nil, core.Fwd)
				cs.InitSource(core.NodeID{Table: nodes, Offset: 0})

				r := gds.NewRunner(sched, g)
				require.NoError(t, r.RunRecursiveJoinEdgeCompute(ec, cs, gds.MaxIterations, nil))
				if threshold == 0 {
					require.Equal(t, frontier.Dense, pair.State())
				} else {
					require.Equal(t, frontier.Sparse, pair.State())
				}
				for i := 0; i < ladderSize; i++ {
					got := pair.Frontier().Iteration(core.NodeID{Table: nodes, Offset: core.Offset(i)})
					require.Equal(t, uint16((i+1)/2), got, "node %d", i)
				}
			})
		}
	}
}

func TestRunRecursiveJoin_MaxIter(t *testing.T) {
	g, nodes, _ := ladder(t, ladderSize)
	pair := frontier.NewSPPair(g.MaxOffsetMap())
	cs := gds.NewComputeState(pair, newReach(pair), nil, core.Fwd)
	cs.InitSource(core.NodeID{Table: nodes, Offset: 0})
	r := gds.NewRunner(scheduler.NewInline(nil), g)
	require.NoError(t, r.RunRecursiveJoinEdgeCompute(newExec(t), cs, 2, nil))
	require.Equal(t, uint16(2), pair.Frontier().Iteration(core.NodeID{Table: nodes, Offset: 4}))
	require.Equal(t, frontier.Unvisited, pair.Frontier().Iteration(core.NodeID{Table: nodes, Offset: 5}))
}

func TestRunRecursiveJoin_EarlyTermination(t *testing.T) {
	g, nodes, _ := ladder(t, ladderSize)
	pair := frontier.NewSPPair(g.MaxOffsetMap())
	rc := newReach(pair)
	cs := gds.NewComputeState(pair, rc, nil, core.Fwd)
	cs.InitSource(core.NodeID{Table: nodes, Offset: 0})
	mask := core.NewNodeMask()
	mask.Add(core.NodeID{Table: nodes, Offset: 3})

	r := gds.NewRunner(scheduler.NewInline(nil), g)
	require.NoError(t, r.RunRecursiveJoinEdgeCompute(newExec(t), cs, gds.MaxIterations, mask))
	// node 3 is reached at iteration 2; the loop stops when iteration 3 begins.
	require.Equal(t, uint16(3), pair.CurrentIter())
	require.Equal(t, frontier.Unvisited, pair.Frontier().Iteration(core.NodeID{Table: nodes, Offset: 7}))
}

func TestSPEdgeCompute_LargeMaskNeverTerminates(t *testing.T) {
	pair := frontier.NewSPPair(map[core.TableID]core.Offset{0: 200})
	c := &gds.SPEdgeCompute{Pair: pair}
	mask := core.NewNodeMask()
	for i := 0; i < 101; i++ {
		mask.Add(core.NodeID{Table: 0, Offset: core.Offset(i)})
	}
	require.False(t, c.Terminate(mask))
	c.ResetSingleThreadState()
}

func TestRunRecursiveJoin_Errors(t *testing.T) {
	boom := errors.New("boom")
	for name, sched := range schedulers(t) {
		t.Run(name, func(t *testing.T) {
			g, nodes, _ := ladder(t, ladderSize)
			pair := frontier.NewSPPair(g.MaxOffsetMap())
			rc := newReach(pair)
			rc.fail = boom
			cs := gds.NewComputeState(pair, rc, nil, core.Fwd)
			cs.InitSource(core.NodeID{Table: nodes, Offset: 0})
			r := gds.NewRunner(sched, g)
			require.ErrorIs(t, r.RunRecursiveJoinEdgeCompute(newExec(t), cs, gds.MaxIterations, nil), boom)

			ec := newExec(t, execctx.WithSparseFrontierThreshold(0))
			ec.Client.Interrupt()
			pair = frontier.NewSPPair(g.MaxOffsetMap())
			cs = gds.NewComputeState(pair, newReach(pair), nil, core.Fwd)
			cs.InitSource(core.NodeID{Table: nodes, Offset: 0})
			require.ErrorIs(t, r.RunRecursiveJoinEdgeCompute(ec, cs, gds.MaxIterations, nil), execctx.ErrInterrupted)
		})
	}
	require.ErrorIs(t, gds.NewRunner(nil, nil).RunFTSEdgeCompute(nil, nil), gds.ErrNilState)
}

func TestRunRecursiveJoin_Timeout(t *testing.T) {
	for name, sched := range schedulers(t) {
		for _, threshold := range []uint64{0, 1 << 20} {
			t.Run(fmt.Sprintf("%s/threshold=%d", name, threshold), func(t *testing.T) {
				g, nodes, _ := ladder(t, ladderSize)
				r := gds.NewRunner(sched, g)
				last := core.NodeID{Table: nodes, Offset: ladderSize - 1}

				// Expired before the first iteration.
				ec := newExec(t, execctx.WithSparseFrontierThreshold(threshold), execctx.WithTimeout(time.Millisecond))
				time.Sleep(5 * time.Millisecond)
				pair := frontier.NewSPPair(g.MaxOffsetMap())
				cs := gds.NewComputeState(pair, newReach(pair), nil, core.Fwd)
				cs.InitSource(core.NodeID{Table: nodes, Offset: 0})
				require.ErrorIs(t, r.RunRecursiveJoinEdgeCompute(ec, cs, gds.MaxIterations, nil), execctx.ErrInterrupted)

				// Expires while iterating.
				ec = newExec(t, execctx.WithSparseFrontierThreshold(threshold), execctx.WithTimeout(20*time.Millisecond))
				pair = frontier.NewSPPair(g.MaxOffsetMap())
				rc := newReach(pair)
				rc.delay = 5 * time.Millisecond
				cs = gds.NewComputeState(pair, rc, nil, core.Fwd)
				cs.InitSource(core.NodeID{Table: nodes, Offset: 0})
				require.ErrorIs(t, r.RunRecursiveJoinEdgeCompute(ec, cs, gds.MaxIterations, nil), execctx.ErrInterrupted)
				require.Equal(t, frontier.Unvisited, pair.Frontier().Iteration(last))
			})
		}
	}
}

func TestRunFTSAndAlgorithm(t *testing.T) {
	g, nodes, _ := ladder(t, 6)
	r := gds.NewRunner(scheduler.NewInline(nil), g)
	ec := newExec(t)

	pair := frontier.NewSPPair(g.MaxOffsetMap())
	cs := gds.NewComputeState(pair, newReach(pair), nil, core.Fwd)
	cs.InitSource(core.NodeID{Table: nodes, Offset: 0})
	require.NoError(t, r.RunFTSEdgeCompute(ec, cs))
	require.Equal(t, uint16(1), pair.Frontier().Iteration(core.NodeID{Table: nodes, Offset: 2}))
	require.Equal(t, frontier.Unvisited, pair.Frontier().Iteration(core.NodeID{Table: nodes, Offset: 3}))

	// Bwd from the last node reaches the first.
	pair = frontier.NewSPPair(g.MaxOffsetMap())
	cs = gds.NewComputeState(pair, newReach(pair), nil, core.Bwd)
	cs.InitSource(core.NodeID{Table: nodes, Offset: 5})
	require.NoError(t, r.RunAlgorithmEdgeCompute(ec, cs, gds.MaxIterations))
	require.Equal(t, uint16(3), pair.Frontier().Iteration(core.NodeID{Table: nodes, Offset: 0}))
}

// counter counts visited offsets per table.
type counter struct {
	mu      *sync.Mutex
	visited map[core.TableID]int
	skip    core.TableID
	copies  *atomic.Int64
}

func (c *counter) BeginOnTable(table core.TableID) bool { return table != c.skip }

func (c *counter) VertexCompute(begin, end core.Offset, table core.TableID) error {
	c.mu.Lock()
	c.visited[table] += int(end - begin)
	c.mu.Unlock()
	return nil
}

func (c *counter) VertexComputeSparse(table core.TableID) error {
	c.mu.Lock()
	c.visited[table] = -1
	c.mu.Unlock()
	return nil
}

func (c *counter) Copy() gds.VertexCompute {
	c.copies.Add(1)
	return c
}

func (c *counter) Release() { c.copies.Add(-1) }

func TestRunVertexCompute(t *testing.T) {
	g := core.NewGraph()
	a, err := g.AddNodeTable("A")
	require.NoError(t, err)
	b, err := g.AddNodeTable("B")
	require.NoError(t, err)
	for i := 0; i < 5000; i++ {
		_, err = g.AddNode(a, fmt.Sprint(i))
		require.NoError(t, err)
	}
	_, err = g.AddNode(b, "x")
	require.NoError(t, err)

	for name, sched := range schedulers(t) {
		t.Run(name, func(t *testing.T) {
			r := gds.NewRunner(sched, g)
			c := &counter{mu: &sync.Mutex{}, visited: map[core.TableID]int{}, skip: b, copies: new(atomic.Int64)}
			require.NoError(t, r.RunVertexCompute(newExec(t), frontier.Dense, c))
			require.Equal(t, map[core.TableID]int{a: 5000}, c.visited)
			require.Zero(t, c.copies.Load(), "every copy released")

			c.visited = map[core.TableID]int{}
			require.NoError(t, r.RunVertexCompute(newExec(t), frontier.Sparse, c))
			require.Equal(t, map[core.TableID]int{a: -1}, c.visited)
		})
	}
}

func TestMorselDispatcher(t *testing.T) {
	d := gds.NewMorselDispatcher(10_000, 7)
	var total atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				b, e, ok := d.Next()
				if !ok {
					return
				}
				total.Add(int64(e - b))
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int64(10_000), total.Load())

	empty := gds.NewMorselDispatcher(0, 0)
	_, _, ok := empty.Next()
	require.False(t, ok)
}
