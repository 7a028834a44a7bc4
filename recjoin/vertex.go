// SPDX-License-Identifier: MIT

package recjoin

import (
	"github.com/katalvlaran/lvgds/core"
	"github.com/katalvlaran/lvgds/gds"
	"github.com/katalvlaran/lvgds/paths"
)

// outputCompute writes the paths of one source, destination by destination.
// The prototype passed to the runner holds no table; each goroutine's Copy
// claims one from the pool and returns it in Release.
type outputCompute struct {
	pool    *paths.TablePool
	writer  paths.Writer
	counter *paths.LimitCounter
	tables  map[core.TableID]struct{}

	table *paths.Table
}

func newOutputCompute(pool *paths.TablePool, writer paths.Writer, counter *paths.LimitCounter, outputTables []core.TableID) *outputCompute {
	c := &outputCompute{pool: pool, writer: writer, counter: counter}
	if outputTables != nil {
		c.tables = make(map[core.TableID]struct{}, len(outputTables))
		for _, t := range outputTables {
			c.tables[t] = struct{}{}
		}
	}
	return c
}

func (c *outputCompute) BeginOnTable(table core.TableID) bool {
	if c.tables == nil {
		return true
	}
	_, ok := c.tables[table]
	return ok
}

func (c *outputCompute) VertexCompute(begin, end core.Offset, table core.TableID) error {
	for off := begin; off < end; off++ {
		if c.counter.ExceedLimit() {
			return nil
		}
		if err := c.writer.Write(c.table, core.NodeID{Table: table, Offset: off}, c.counter); err != nil {
			return err
		}
	}
	return nil
}

func (c *outputCompute) VertexComputeSparse(table core.TableID) error {
	return c.writer.WriteTable(c.table, table, c.counter)
}

func (c *outputCompute) Copy() gds.VertexCompute {
	return &outputCompute{
		pool:    c.pool,
		writer:  c.writer.Copy(),
		counter: c.counter,
		tables:  c.tables,
		table:   c.pool.Claim(),
	}
}

func (c *outputCompute) Release() {
	c.pool.Return(c.table)
	c.table = nil
}

var (
	_ gds.VertexCompute = (*outputCompute)(nil)
	_ gds.Releaser      = (*outputCompute)(nil)
)
