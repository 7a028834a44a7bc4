// SPDX-License-Identifier: MIT

// Command lvgds loads a YAML graph, or generates one, and runs one
// recursive join from a source node, printing a row per path.
//
//	lvgds -graph city.yaml -table City -source A -algorithm awsp -path
//	lvgds -generate grid:4x4 -source 0 -targets 15
//	lvgds -generate random:50:0.1 -seed 7 -weights 1:9 -algorithm wsp -source 0
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/katalvlaran/lvgds/builder"
	"github.com/katalvlaran/lvgds/config"
	"github.com/katalvlaran/lvgds/core"
	"github.com/katalvlaran/lvgds/execctx"
	"github.com/katalvlaran/lvgds/gds"
	"github.com/katalvlaran/lvgds/internal/ctxlog"
	"github.com/katalvlaran/lvgds/paths"
	"github.com/katalvlaran/lvgds/recjoin"
	"github.com/katalvlaran/lvgds/scheduler"
)

// errUsage marks argument errors; main exits with status 2 on them.
var errUsage = errors.New("lvgds: usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type options struct {
	graphPath  string
	generate   string
	seed       int64
	weights    string
	configPath string
	table      string
	source     string
	targets    string
	algorithm  string
	direction  string
	semantic   string
	lower      uint
	upper      uint
	limit      uint64
	writePath  bool
	logLevel   string
	logFormat  string
}

func parseArgs(args []string, errOut io.Writer) (*options, error) {
	fs := flag.NewFlagSet("lvgds", flag.ContinueOnError)
	fs.SetOutput(errOut)
	o := &options{}
	fs.StringVar(&o.graphPath, "graph", "", "YAML graph file")
	fs.StringVar(&o.generate, "generate", "", "generate a graph instead: path:N, cycle:N, star:N, complete:N, ladder:N, grid:RxC or random:N:P")
	fs.Int64Var(&o.seed, "seed", 1, "RNG seed for -generate")
	fs.StringVar(&o.weights, "weights", "", "integral edge weight range lo:hi for -generate; 1 when empty")
	fs.StringVar(&o.configPath, "config", "", "YAML config file; built-in defaults when empty")
	fs.StringVar(&o.table, "table", "", "node table of the source; required with -graph")
	fs.StringVar(&o.source, "source", "", "source node key; every node of -table when empty")
	fs.StringVar(&o.targets, "targets", "", "comma-separated destination keys in -table; all when empty")
	fs.StringVar(&o.algorithm, "algorithm", "all_sp", "all_sp, single_sp, wsp, awsp or var_len")
	fs.StringVar(&o.direction, "direction", "fwd", "fwd, bwd or both")
	fs.StringVar(&o.semantic, "semantic", "walk", "walk, trail or acyclic")
	fs.UintVar(&o.lower, "lower", 1, "minimum path length (var_len)")
	fs.UintVar(&o.upper, "upper", 0, "maximum path length; 0 picks the algorithm default")
	fs.Uint64Var(&o.limit, "limit", 0, "maximum rows; overrides query.result_limit when set")
	fs.BoolVar(&o.writePath, "path", false, "print intermediate nodes")
	fs.StringVar(&o.logLevel, "log-level", "", "overrides log.level")
	fs.StringVar(&o.logFormat, "log-format", "", "overrides log.format")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	switch {
	case o.graphPath != "" && o.generate != "":
		return nil, fmt.Errorf("%w: -graph and -generate are exclusive", errUsage)
	case o.generate != "":
		if o.table == "" {
			o.table = builder.DefaultNodeTable
		}
	case o.graphPath == "" || o.table == "":
		fs.Usage()
		return nil, fmt.Errorf("%w: -graph and -table, or -generate, are required", errUsage)
	}
	if o.lower > uint(gds.MaxIterations) || o.upper > uint(gds.MaxIterations) {
		return nil, fmt.Errorf("%w: bounds must not exceed %d", errUsage, gds.MaxIterations)
	}
	return o, nil
}

func loadConfig(o *options) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if o.limit > 0 {
		cfg.Query.ResultLimit = o.limit
	}
	return cfg, cfg.Validate()
}

func loadGraph(o *options) (*core.Graph, error) {
	if o.generate == "" {
		return core.LoadYAMLFile(o.graphPath)
	}
	cons, err := builder.ParseTopology(o.generate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	bopts := []builder.Option{builder.WithSeed(o.seed)}
	if o.weights != "" {
		var lo, hi int
		if _, err := fmt.Sscanf(o.weights, "%d:%d", &lo, &hi); err != nil {
			return nil, fmt.Errorf("%w: -weights %q: %v", errUsage, o.weights, err)
		}
		bopts = append(bopts, builder.WithWeightFn(builder.UniformWeightFn(lo, hi)))
	}
	t, err := builder.BuildGraph(nil, bopts, cons)
	if err != nil {
		return nil, err
	}
	return t.Graph, nil
}

func bindData(o *options, g *core.Graph, cfg *config.Config) (recjoin.BindData, error) {
	var bd recjoin.BindData
	var err error
	if bd.Algorithm, err = recjoin.ParseAlgorithm(o.algorithm); err != nil {
		return bd, fmt.Errorf("%w: %v", errUsage, err)
	}
	if bd.Direction, err = core.ParseDirection(o.direction); err != nil {
		return bd, fmt.Errorf("%w: %v", errUsage, err)
	}
	if bd.Semantic, err = paths.ParseSemantic(o.semantic); err != nil {
		return bd, fmt.Errorf("%w: %v", errUsage, err)
	}
	table, err := g.TableByName(o.table)
	if err != nil {
		return bd, err
	}
	bd.InputTables = []core.TableID{table}
	if o.source != "" {
		src, err := g.Lookup(table, o.source)
		if err != nil {
			return bd, err
		}
		bd.InputMask = core.NewNodeMask()
		bd.InputMask.Add(src)
	}
	if o.targets != "" {
		bd.OutputMask = core.NewNodeMask()
		bd.OutputMask.Enable(table)
		for _, key := range strings.Split(o.targets, ",") {
			dst, err := g.Lookup(table, strings.TrimSpace(key))
			if err != nil {
				return bd, err
			}
			bd.OutputMask.Add(dst)
		}
	}
	bd.LowerBound = uint16(o.lower)
	bd.UpperBound = uint16(o.upper)
	bd.WritePath = o.writePath
	bd.ResultLimit = cfg.Query.ResultLimit
	return bd, nil
}

func run(ctx context.Context, out, errOut io.Writer, args []string) error {
	o, err := parseArgs(args, errOut)
	if err != nil || o == nil {
		return err
	}
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	logger := ctxlog.New(cfg.Log.Level, cfg.Log.Format, errOut)
	ctx = ctxlog.WithLogger(ctx, logger)

	g, err := loadGraph(o)
	if err != nil {
		return err
	}
	bd, err := bindData(o, g, cfg)
	if err != nil {
		return err
	}

	sched, err := scheduler.FromConfig(cfg.Scheduler, scheduler.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sched.Close(); cerr != nil {
			logger.Warn("lvgds: scheduler close", "err", cerr)
		}
	}()

	client, err := execctx.NewClientContext(ctx, execctx.OptionsFromConfig(cfg.Query)...)
	if err != nil {
		return err
	}
	ec := execctx.NewExecutionContext(client, logger)

	rj, err := recjoin.NewRecursiveExtend(gds.NewRunner(sched, g), bd)
	if err != nil {
		return err
	}
	table, err := rj.Execute(ec)
	if err != nil {
		return err
	}
	rows := table.Rows()
	paths.SortRows(rows)
	return printRows(out, g, bd, rows)
}

func printRows(out io.Writer, g *core.Graph, bd recjoin.BindData, rows []paths.Row) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := []string{"SRC", "DST", "LEN"}
	if bd.Algorithm.Weighted() {
		header = append(header, "WEIGHT")
	}
	if bd.WritePath {
		header = append(header, "PATH")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		cols := []string{g.Key(r.Src), g.Key(r.Dst), fmt.Sprint(r.Length)}
		if r.Weighted {
			cols = append(cols, fmt.Sprintf("%g", r.Weight))
		}
		if bd.WritePath {
			cols = append(cols, renderPath(g, r))
		}
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	return tw.Flush()
}

// renderPath prints src -[edge]-> n1 ... -> dst; edges walked against
// their direction are drawn <-[edge]-.
func renderPath(g *core.Graph, r paths.Row) string {
	var b strings.Builder
	b.WriteString(g.Key(r.Src))
	for i, e := range r.EdgeIDs {
		next := r.Dst
		if i < len(r.NodeIDs) {
			next = r.NodeIDs[i]
		}
		if r.Directions != nil && !r.Directions[i] {
			fmt.Fprintf(&b, " <-[%s]- %s", e, g.Key(next))
			continue
		}
		fmt.Fprintf(&b, " -[%s]-> %s", e, g.Key(next))
	}
	return b.String()
}
