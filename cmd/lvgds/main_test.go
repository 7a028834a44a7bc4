package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvgds/config"
	"github.com/katalvlaran/lvgds/recjoin"
)

const graphDoc = `
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

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// table splits tabwriter output into rows of fields, header excluded.
func table(out string) [][]string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	rows := make([][]string, 0, len(lines))
	for _, l := range lines[1:] {
		rows = append(rows, strings.Fields(l))
	}
	return rows
}

func TestRun_AWSP(t *testing.T) {
	graph := writeFile(t, "g.yaml", graphDoc)
	var out, errOut bytes.Buffer
	err := run(context.Background(), &out, &errOut, []string{
		"-graph", graph, "-table", "City", "-source", "A", "-algorithm", "awsp", "-path", "-log-level", "error",
	})
	require.NoError(t, err, errOut.String())
	rows := table(out.String())
	require.Len(t, rows, 3)
	require.Equal(t, []string{"A", "D", "2", "3"}, rows[2][:4])
	require.Equal(t, "B", rows[2][6])
	require.True(t, strings.HasPrefix(out.String(), "SRC"))
}

func TestRun_ConfigAndLimit(t *testing.T) {
	graph := writeFile(t, "g.yaml", graphDoc)
	cfg := writeFile(t, "c.yaml", "scheduler:\n  mode: inline\nquery:\n  result_limit: 2\nlog:\n  level: error\n")
	var out, errOut bytes.Buffer
	require.NoError(t, run(context.Background(), &out, &errOut, []string{
		"-graph", graph, "-config", cfg, "-table", "City", "-algorithm", "var_len", "-upper", "3",
	}))
	require.Len(t, table(out.String()), 2)

	out.Reset()
	require.NoError(t, run(context.Background(), &out, &errOut, []string{
		"-graph", graph, "-config", cfg, "-table", "City", "-targets", "D", "-limit", "10",
	}))
	// A->D twice, B->D, C->D.
	rows := table(out.String())
	require.Len(t, rows, 4)
	for _, r := range rows {
		require.Equal(t, "D", r[1])
	}
}

func TestRun_Errors(t *testing.T) {
	graph := writeFile(t, "g.yaml", graphDoc)
	var out, errOut bytes.Buffer
	for _, args := range [][]string{
		{},
		{"-graph", graph},
		{"-graph", graph, "-table", "City", "-algorithm", "pagerank"},
		{"-graph", graph, "-table", "City", "-semantic", "simple"},
		{"-graph", graph, "-table", "City", "-direction", "up"},
		{"-nope"},
	} {
		require.ErrorIs(t, run(context.Background(), &out, &errOut, args), errUsage, "%v", args)
	}

	require.ErrorIs(t, run(context.Background(), &out, &errOut, []string{"-graph", graph, "-table", "City", "-algorithm", "var_len", "-lower", "5", "-upper", "2"}), recjoin.ErrInvalidBindData)
	require.Error(t, run(context.Background(), &out, &errOut, []string{"-graph", graph, "-table", "Town"}))
	require.Error(t, run(context.Background(), &out, &errOut, []string{"-graph", graph, "-table", "City", "-source", "Z"}))

	bad := writeFile(t, "c.yaml", "scheduler:\n  mode: fibers\n")
	require.ErrorIs(t, run(context.Background(), &out, &errOut, []string{"-graph", graph, "-table", "City", "-config", bad}), config.ErrInvalidConfig)

	out.Reset()
	require.NoError(t, run(context.Background(), &out, &errOut, []string{"-h"}))
	require.Empty(t, out.String())
}

func TestRun_Generate(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, run(context.Background(), &out, &errOut, []string{
		"-generate", "grid:3x3", "-source", "0", "-targets", "8", "-log-level", "error",
	}), errOut.String())
	// C(4,2) monotone lattice paths from corner to corner.
	require.Len(t, table(out.String()), 6)

	out.Reset()
	require.NoError(t, run(context.Background(), &out, &errOut, []string{
		"-generate", "random:20:0.2", "-seed", "3", "-weights", "1:5", "-algorithm", "wsp", "-source", "0",
	}))
	for _, r := range table(out.String()) {
		require.Equal(t, "0", r[0])
	}

	for _, args := range [][]string{
		{"-generate", "grid:3"},
		{"-generate", "torus:4"},
		{"-generate", "path:4", "-weights", "heavy"},
		{"-generate", "path:4", "-graph", "g.yaml"},
	} {
		require.ErrorIs(t, run(context.Background(), &out, &errOut, args), errUsage, "%v", args)
	}
	require.Error(t, run(context.Background(), &out, &errOut, []string{"-generate", "path:1"}))
}

func TestRun_Cancelled(t *testing.T) {
	graph := writeFile(t, "g.yaml", graphDoc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out, errOut bytes.Buffer
	err := run(ctx, &out, &errOut, []string{"-graph", graph, "-table", "City", "-log-level", "error"})
	require.Error(t, err)
}
