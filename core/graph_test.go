package core_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvgds/core"
)

const diamond = `
node_tables:
  - name: City
    nodes: [A, B, C, D]
rel_tables:
  - name: Road
    from: City
    to: City
    rels:
      - {from: A, to: B, weight: 1}
      - {from: B, to: D, weight: 2}
      - {from: A, to: C, weight: 5}
      - {from: C, to: D, weight: 1}
`

func loadDiamond(t *testing.T, opts ...core.GraphOption) *core.Graph {
	t.Helper()
	g, err := core.LoadYAML(strings.NewReader(diamond), opts...)
	require.NoError(t, err)
	return g
}

func collect(t *testing.T, g *core.Graph, bound core.NodeID, rel core.TableID, dir core.Direction) (keys []string, weights []float64, chunks int) {
	t.Helper()
	err := g.NewScanner().Scan(bound, rel, dir, func(c core.Chunk) error {
		chunks++
		for i := 0; i < c.Len(); i++ {
			keys = append(keys, g.Key(c.Nbrs[i]))
			weights = append(weights, c.Weights[i])
			assert.Equal(t, c.Weights[i], g.Weight(c.Edges[i]))
		}
		return nil
	})
	require.NoError(t, err)
	return keys, weights, chunks
}

func TestGraph_Schema(t *testing.T) {
	g := loadDiamond(t)
	city, err := g.TableByName("City")
	require.NoError(t, err)
	road, err := g.TableByName("Road")
	require.NoError(t, err)

	require.Equal(t, []core.TableID{city}, g.NodeTableIDs())
	require.Equal(t, core.Offset(4), g.MaxOffset(city))
	require.Equal(t, uint64(4), g.NumNodes())
	infos := g.RelInfos(city)
	require.Len(t, infos, 1)
	require.Equal(t, road, infos[0].RelTable)
	require.Equal(t, city, infos[0].NbrTable(core.Fwd))
	require.Equal(t, "Road", g.TableName(road))
}

func TestScanner_FwdBwd(t *testing.T) {
	g := loadDiamond(t)
	city, _ := g.TableByName("City")
	road, _ := g.TableByName("Road")
	a, err := g.Lookup(city, "A")
	require.NoError(t, err)
	d, err := g.Lookup(city, "D")
	require.NoError(t, err)

	keys, weights, _ := collect(t, g, a, road, core.Fwd)
	require.Equal(t, []string{"B", "C"}, keys)
	require.Equal(t, []float64{1, 5}, weights)

	keys, _, _ = collect(t, g, d, road, core.Bwd)
	require.Equal(t, []string{"B", "C"}, keys)

	keys, _, _ = collect(t, g, d, road, core.Fwd)
	require.Empty(t, keys)
	deg, err := g.Degree(a, road, core.Both)
	require.NoError(t, err)
	require.Equal(t, 2, deg)

	_, err = g.Degree(a, city, core.Fwd)
	require.ErrorIs(t, err, core.ErrTableNotFound)
	_, err = g.Degree(a, core.TableID(99), core.Both)
	require.ErrorIs(t, err, core.ErrTableNotFound)
}

func TestScanner_ChunkSize(t *testing.T) {
	g := loadDiamond(t, core.WithChunkSize(1))
	city, _ := g.TableByName("City")
	road, _ := g.TableByName("Road")
	a, _ := g.Lookup(city, "A")

	keys, _, chunks := collect(t, g, a, road, core.Fwd)
	require.Equal(t, []string{"B", "C"}, keys)
	require.Equal(t, 2, chunks)
}

func TestScanner_StopsOnError(t *testing.T) {
	g := loadDiamond(t, core.WithChunkSize(1))
	city, _ := g.TableByName("City")
	road, _ := g.TableByName("Road")
	a, _ := g.Lookup(city, "A")
	stop := errors.New("stop")

	calls := 0
	err := g.NewScanner().Scan(a, road, core.Fwd, func(core.Chunk) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, calls)
}

func TestGraph_Errors(t *testing.T) {
	g := core.NewGraph()
	person, err := g.AddNodeTable("Person")
	require.NoError(t, err)
	_, err = g.AddNodeTable("Person")
	require.ErrorIs(t, err, core.ErrDuplicateTable)

	_, err = g.AddNode(person, "")
	require.ErrorIs(t, err, core.ErrEmptyKey)
	alice, err := g.AddNode(person, "alice")
	require.NoError(t, err)
	_, err = g.AddNode(person, "alice")
	require.ErrorIs(t, err, core.ErrDuplicateKey)

	knows, err := g.AddRelTable("Knows", person, person)
	require.NoError(t, err)
	_, err = g.AddRelTable("Bad", knows, person)
	require.ErrorIs(t, err, core.ErrTableKind)
	_, err = g.AddRel(person, alice, alice, 1)
	require.ErrorIs(t, err, core.ErrTableKind)
	_, err = g.AddRel(knows, alice, core.NodeID{Table: person, Offset: 7}, 1)
	require.ErrorIs(t, err, core.ErrNodeNotFound)

	_, err = g.Lookup(person, "bob")
	require.ErrorIs(t, err, core.ErrNodeNotFound)
	_, err = g.TableByName("Nope")
	require.ErrorIs(t, err, core.ErrTableNotFound)
	require.Empty(t, g.Key(core.InvalidNodeID))
}

func TestLoadYAML_Invalid(t *testing.T) {
	_, err := core.LoadYAML(strings.NewReader("node_tables: [{name: A, bogus: 1}]"))
	require.ErrorIs(t, err, core.ErrInvalidFixture)

	_, err = core.LoadYAML(strings.NewReader(`
node_tables: [{name: A, nodes: [x]}]
rel_tables: [{name: R, from: A, to: Missing}]
`))
	require.ErrorIs(t, err, core.ErrInvalidFixture)
}

func TestLoadYAML_DefaultWeight(t *testing.T) {
	g, err := core.LoadYAML(strings.NewReader(`
node_tables: [{name: N, nodes: [x, y]}]
rel_tables: [{name: E, from: N, to: N, rels: [{from: x, to: y}]}]
`))
	require.NoError(t, err)
	e, _ := g.TableByName("E")
	require.Equal(t, 1.0, g.Weight(core.RelID{Table: e, Offset: 0}))
}

func TestScanner_Concurrent(t *testing.T) {
	g := loadDiamond(t)
	city, _ := g.TableByName("City")
	road, _ := g.TableByName("Road")
	a, _ := g.Lookup(city, "A")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := 0
			assert.NoError(t, g.NewScanner().Scan(a, road, core.Fwd, func(c core.Chunk) error {
				n += c.Len()
				return nil
			}))
			assert.Equal(t, 2, n)
		}()
	}
	wg.Wait()
}

func TestDirection(t *testing.T) {
	for _, s := range []string{"fwd", "bwd", "both"} {
		d, err := core.ParseDirection(s)
		require.NoError(t, err)
		require.Equal(t, s, d.String())
	}
	_, err := core.ParseDirection("sideways")
	require.Error(t, err)
}
