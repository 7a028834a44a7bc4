package paths_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvgds/bfsgraph"
	"github.com/katalvlaran/lvgds/core"
	"github.com/katalvlaran/lvgds/execctx"
	"github.com/katalvlaran/lvgds/paths"
)

func nid(off core.Offset) core.NodeID { return core.NodeID{Table: 0, Offset: off} }
func rid(off core.Offset) core.RelID  { return core.RelID{Table: 1, Offset: off} }

var sizes = map[core.TableID]core.Offset{0: 8}

func client(t *testing.T) *execctx.ClientContext {
	t.Helper()
	c, err := execctx.NewClientContext(context.Background())
	require.NoError(t, err)
	return c
}

// diamond records the all-shortest-paths chains of 0->1 (e0), 0->2 (e1),
// 1->3 (e2), 2->3 (e3) from source 0.
func diamond() *bfsgraph.Manager {
	m := bfsgraph.NewManager(sizes, 0)
	g := m.Current()
	b := g.AddNewBlock()
	g.AddParent(1, nid(0), rid(0), nid(1), true, b)
	g.AddParent(1, nid(0), rid(1), nid(2), true, b)
	g.AddParent(2, nid(1), rid(2), nid(3), true, b)
	g.AddParent(2, nid(2), rid(3), nid(3), false, b)
	return m
}

// cycle records var-len chains of 0->1 (e0), 1->0 (e1), 1->2 (e2) from
// source 0 up to three iterations.
func cycle() *bfsgraph.Manager {
	m := bfsgraph.NewManager(sizes, 0)
	g := m.Current()
	b := g.AddNewBlock()
	g.AddParent(1, nid(0), rid(0), nid(1), true, b)
	g.AddParent(2, nid(1), rid(1), nid(0), true, b)
	g.AddParent(2, nid(1), rid(2), nid(2), true, b)
	g.AddParent(3, nid(0), rid(0), nid(1), true, b)
	return m
}

func edges(rows []paths.Row) [][]core.RelID {
	out := make([][]core.RelID, len(rows))
	for i, r := range rows {
		out[i] = r.EdgeIDs
	}
	return out
}

func TestSPWriter_AllShortestPaths(t *testing.T) {
	cfg := paths.Config{
		Client:    client(t),
		Manager:   diamond(),
		Source:    nid(0),
		Info:      paths.WriterInfo{WritePath: true, WriteEdgeDirection: true},
		Algorithm: "test",
	}
	w := paths.NewSPWriter(cfg)
	tbl := &paths.Table{}
	require.NoError(t, w.Write(tbl, nid(3), nil))
	require.NoError(t, w.Write(tbl, nid(0), nil), "source is skipped")
	require.NoError(t, w.Write(tbl, nid(5), nil), "unreached is skipped")

	rows := tbl.Rows()
	paths.SortRows(rows)
	want := []paths.Row{
		{Src: nid(0), Dst: nid(3), Length: 2, Directions: []bool{true, true},
			NodeIDs: []core.NodeID{nid(1)}, EdgeIDs: []core.RelID{rid(0), rid(2)}},
		{Src: nid(0), Dst: nid(3), Length: 2, Directions: []bool{true, false},
			NodeIDs: []core.NodeID{nid(2)}, EdgeIDs: []core.RelID{rid(1), rid(3)}},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	cp := w.Copy()
	other := &paths.Table{}
	require.NoError(t, cp.Write(other, nid(1), nil))
	require.Equal(t, 1, other.Len())
}

func TestSPWriter_FlipPath(t *testing.T) {
	w := paths.NewSPWriter(paths.Config{
		Client:  client(t),
		Manager: diamond(),
		Source:  nid(0),
		Info:    paths.WriterInfo{WritePath: true, FlipPath: true},
	})
	tbl := &paths.Table{}
	require.NoError(t, w.Write(tbl, nid(3), nil))
	rows := tbl.Rows()
	paths.SortRows(rows)
	require.Equal(t, []core.RelID{rid(2), rid(0)}, rows[0].EdgeIDs)
	require.Equal(t, []core.NodeID{nid(1)}, rows[0].NodeIDs)
	require.Nil(t, rows[0].Directions)
}

func TestSPWriter_Masks(t *testing.T) {
	pathMask := core.NewNodeMask()
	pathMask.Add(nid(2))
	w := paths.NewSPWriter(paths.Config{
		Client:  client(t),
		Manager: diamond(),
		Source:  nid(0),
		Info:    paths.WriterInfo{WritePath: true, PathNodeMask: pathMask},
	})
	tbl := &paths.Table{}
	require.NoError(t, w.Write(tbl, nid(3), nil))
	require.Equal(t, [][]core.RelID{{rid(1), rid(3)}}, edges(tbl.Rows()))

	outMask := core.NewNodeMask()
	outMask.Add(nid(2))
	w = paths.NewSPWriter(paths.Config{Client: client(t), Manager: diamond(), Source: nid(0), OutputMask: outMask})
	tbl = &paths.Table{}
	require.NoError(t, w.Write(tbl, nid(3), nil))
	require.Zero(t, tbl.Len())
	require.NoError(t, w.Write(tbl, nid(2), nil))
	require.Equal(t, 1, tbl.Len())
	require.Nil(t, tbl.Rows()[0].EdgeIDs, "WritePath off")
}

func TestSPWriter_Limit(t *testing.T) {
	w := paths.NewSPWriter(paths.Config{Client: client(t), Manager: diamond(), Source: nid(0)})
	counter := paths.NewLimitCounter(1)
	tbl := &paths.Table{}
	require.NoError(t, w.WriteTable(tbl, 0, counter))
	require.Equal(t, 1, tbl.Len())
	require.True(t, counter.ExceedLimit())
	require.Equal(t, uint64(1), counter.Count())
}

func TestWriteTable_Sparse(t *testing.T) {
	cl := client(t)
	tbl := &paths.Table{}
	require.NoError(t, paths.NewSPWriter(paths.Config{Client: cl, Manager: diamond(), Source: nid(0)}).
		WriteTable(tbl, 0, nil))
	require.Equal(t, 4, tbl.Len())

	tbl = &paths.Table{}
	require.NoError(t, paths.NewVarLenWriter(paths.Config{Client: cl, Manager: diamond(), Source: nid(0)}).
		WriteTable(tbl, 0, nil))
	require.Equal(t, 5, tbl.Len(), "plus the zero-length path")

	tbl = &paths.Table{}
	require.NoError(t, paths.NewVarLenWriter(paths.Config{Client: cl, Manager: diamond(), Source: nid(0)}).
		WriteTable(tbl, 7, nil))
	require.Zero(t, tbl.Len())
}

func TestVarLenWriter_Semantics(t *testing.T) {
	tests := []struct {
		name  string
		info  paths.WriterInfo
		dst   core.NodeID
		edges [][]core.RelID
	}{
		{
			name:  "walk",
			info:  paths.WriterInfo{WritePath: true, LowerBound: 1},
			dst:   nid(1),
			edges: [][]core.RelID{{rid(0)}, {rid(0), rid(1), rid(0)}},
		},
		{
			name:  "walk lower bound 2",
			info:  paths.WriterInfo{WritePath: true, LowerBound: 2},
			dst:   nid(1),
			edges: [][]core.RelID{{rid(0), rid(1), rid(0)}},
		},
		{
			name:  "trail",
			info:  paths.WriterInfo{WritePath: true, LowerBound: 1, Semantic: paths.Trail},
			dst:   nid(1),
			edges: [][]core.RelID{{rid(0)}},
		},
		{
			name:  "acyclic",
			info:  paths.WriterInfo{WritePath: true, LowerBound: 1, Semantic: paths.Acyclic},
			dst:   nid(1),
			edges: [][]core.RelID{{rid(0)}},
		},
		{
			name:  "acyclic allows a cycle back to the source",
			info:  paths.WriterInfo{WritePath: true, Semantic: paths.Acyclic},
			dst:   nid(0),
			edges: [][]core.RelID{{}, {rid(0), rid(1)}},
		},
		{
			name:  "lower bound above every path",
			info:  paths.WriterInfo{WritePath: true, LowerBound: 3},
			dst:   nid(2),
			edges: [][]core.RelID{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := paths.NewVarLenWriter(paths.Config{Client: client(t), Manager: cycle(), Source: nid(0), Info: tt.info})
			tbl := &paths.Table{}
			require.NoError(t, w.Write(tbl, tt.dst, nil))
			rows := tbl.Rows()
			paths.SortRows(rows)
			got := edges(rows)
			if got == nil {
				got = [][]core.RelID{}
			}
			require.Equal(t, tt.edges, got)
			for _, r := range rows {
				require.Equal(t, int(r.Length), len(r.EdgeIDs))
				checkSemantic(t, tt.info.Semantic, r)
			}
		})
	}
}

// checkSemantic verifies a row against its semantic directly.
func checkSemantic(t *testing.T, s paths.Semantic, r paths.Row) {
	t.Helper()
	switch s {
	case paths.Trail:
		seen := map[core.RelID]bool{}
		for _, e := range r.EdgeIDs {
			require.False(t, seen[e], "edge %s repeated", e)
			seen[e] = true
		}
	case paths.Acyclic:
		seen := map[core.NodeID]bool{r.Src: true}
		for _, n := range r.NodeIDs {
			require.False(t, seen[n], "node %s repeated", n)
			seen[n] = true
		}
	}
}

func TestWriter_Interrupted(t *testing.T) {
	cl := client(t)
	cl.Interrupt()
	w := paths.NewSPWriter(paths.Config{Client: cl, Manager: diamond(), Source: nid(0)})
	tbl := &paths.Table{}
	require.ErrorIs(t, w.Write(tbl, nid(3), nil), execctx.ErrInterrupted)
	require.Zero(t, tbl.Len())
}

func TestWriter_TimedOut(t *testing.T) {
	cl, err := execctx.NewClientContext(context.Background(), execctx.WithTimeout(time.Millisecond))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	cases := map[string]paths.Writer{
		"sp":      paths.NewSPWriter(paths.Config{Client: cl, Manager: diamond(), Source: nid(0)}),
		"sp_slow": paths.NewSPWriter(paths.Config{Client: cl, Manager: diamond(), Source: nid(0), Info: paths.WriterInfo{Semantic: paths.Acyclic}}),
		"awsp":    paths.NewAWSPWriter(paths.Config{Client: cl, Manager: weightedDiamond(false), Source: nid(0)}),
		"wsp":     paths.NewWSPWriter(paths.Config{Client: cl, Manager: weightedDiamond(true), Source: nid(0)}),
	}
	for name, w := range cases {
		t.Run(name, func(t *testing.T) {
			tbl := &paths.Table{}
			require.ErrorIs(t, w.Write(tbl, nid(3), nil), execctx.ErrInterrupted)
			require.Zero(t, tbl.Len())
		})
	}
}

// weightedDiamond: 0->1 (e0, 1), 0->2 (e1, 2), 1->3 (e2, 2), 2->3 (e3, 1),
// so 3 is reached at cost 3 through both 1 and 2.
func weightedDiamond(single bool) *bfsgraph.Manager {
	m := bfsgraph.NewManager(sizes, 0)
	m.InitSource(nid(0))
	g := m.Current()
	b := g.AddNewBlock()
	add := g.TryAddParentWithWeight
	if single {
		add = g.TryAddSingleParentWithWeight
	}
	add(nid(0), rid(0), nid(1), true, 1, b)
	add(nid(0), rid(1), nid(2), true, 2, b)
	add(nid(1), rid(2), nid(3), true, 2, b)
	add(nid(2), rid(3), nid(3), true, 1, b)
	return m
}

func TestAWSPWriter(t *testing.T) {
	m := weightedDiamond(false)
	w := paths.NewAWSPWriter(paths.Config{Client: client(t), Manager: m, Source: nid(0), Info: paths.WriterInfo{WritePath: true}})
	tbl := &paths.Table{}
	require.NoError(t, w.WriteTable(tbl, 0, nil))
	rows := tbl.Rows()
	paths.SortRows(rows)
	require.Len(t, rows, 4)
	last := rows[2:]
	require.Equal(t, [][]core.RelID{{rid(0), rid(2)}, {rid(1), rid(3)}}, edges(last))
	for _, r := range last {
		require.True(t, r.Weighted)
		require.Equal(t, 3.0, r.Weight)
		require.Equal(t, uint16(2), r.Length)
	}
}

func TestAWSPWriter_ZeroWeightCycle(t *testing.T) {
	m := bfsgraph.NewManager(sizes, 0)
	m.InitSource(nid(0))
	g := m.Current()
	b := g.AddNewBlock()
	require.True(t, g.TryAddParentWithWeight(nid(0), rid(0), nid(1), true, 1, b))
	require.True(t, g.TryAddParentWithWeight(nid(1), rid(1), nid(4), true, 0, b))
	require.True(t, g.TryAddParentWithWeight(nid(4), rid(2), nid(1), true, 0, b), "tie through a new edge")

	w := paths.NewAWSPWriter(paths.Config{Client: client(t), Manager: m, Source: nid(0), Info: paths.WriterInfo{WritePath: true}})
	tbl := &paths.Table{}
	require.NoError(t, w.Write(tbl, nid(1), nil))
	require.Equal(t, [][]core.RelID{{rid(0)}}, edges(tbl.Rows()))
	require.NoError(t, w.Write(tbl, nid(4), nil))
	require.Equal(t, 2, tbl.Len())
}

func TestWSPWriter(t *testing.T) {
	m := weightedDiamond(true)
	w := paths.NewWSPWriter(paths.Config{Client: client(t), Manager: m, Source: nid(0), Info: paths.WriterInfo{WritePath: true}})
	tbl := &paths.Table{}
	require.NoError(t, w.Write(tbl, nid(3), nil))
	require.NoError(t, w.Write(tbl, nid(0), nil))
	require.Equal(t, 1, tbl.Len())
	r := tbl.Rows()[0]
	require.Equal(t, 3.0, r.Weight)
	require.Equal(t, []core.RelID{rid(0), rid(2)}, r.EdgeIDs, "the first minimum wins")

	broken := bfsgraph.NewManager(sizes, 0)
	g := broken.Current()
	b := g.AddNewBlock()
	g.AddSingleParent(2, nid(6), rid(5), nid(7), true, b)
	w = paths.NewWSPWriter(paths.Config{Client: client(t), Manager: broken, Source: nid(0)})
	require.ErrorIs(t, w.Write(&paths.Table{}, nid(7), nil), paths.ErrBrokenChain)
}

func TestTablePool(t *testing.T) {
	p := paths.NewTablePool()
	a := p.Claim()
	b := p.Claim()
	require.NotSame(t, a, b)
	a.Append(paths.Row{Dst: nid(2)})
	b.Append(paths.Row{Dst: nid(1)})
	p.Return(a)
	require.Same(t, a, p.Claim())
	p.Return(nil)

	rows := p.Merge().Rows()
	paths.SortRows(rows)
	require.Equal(t, []core.NodeID{nid(1), nid(2)}, []core.NodeID{rows[0].Dst, rows[1].Dst})
}

func TestParseSemantic(t *testing.T) {
	for in, want := range map[string]paths.Semantic{"": paths.Walk, "TRAIL": paths.Trail, "acyclic": paths.Acyclic} {
		got, err := paths.ParseSemantic(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := paths.ParseSemantic("simple")
	require.ErrorIs(t, err, paths.ErrUnknownSemantic)
	require.Equal(t, "trail", paths.Trail.String())

	var nilCounter *paths.LimitCounter
	nilCounter.Increase(3)
	require.False(t, nilCounter.ExceedLimit())
	require.False(t, paths.NewLimitCounter(0).ExceedLimit())
}
