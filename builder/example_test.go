package builder_test

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/lvgds/builder"
	"github.com/katalvlaran/lvgds/core"
)

// ExampleBuildGraph composes a path and a star into one node table.
func ExampleBuildGraph() {
	tg, err := builder.BuildGraph(nil, []builder.Option{builder.WithTableNames("Stop", "Link")},
		builder.Path(3), builder.Star(3))
	if err != nil {
		fmt.Println(err)
		return
	}
	var out []string
	for _, n := range tg.AllNodes() {
		deg, err := tg.Graph.Degree(n, tg.Rels, core.Fwd)
		if err != nil {
			fmt.Println(err)
			return
		}
		out = append(out, fmt.Sprintf("%s:%d", tg.Graph.Key(n), deg))
	}
	fmt.Println(strings.Join(out, " "))

	// Output:
	// 0:1 1:1 2:0 3:2 4:0 5:0
}
