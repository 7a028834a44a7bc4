// SPDX-License-Identifier: MIT
//
// File: fixture.go
// Role: YAML graph documents for tests and the command line.
//
// Document shape:
//
//	node_tables:
//	  - name: City
//	    nodes: [A, B, C]
//	rel_tables:
//	  - name: Road
//	    from: City
//	    to: City
//	    rels:
//	      - {from: A, to: B, weight: 1.5}
package core

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is the decoded YAML graph document.
type Fixture struct {
	NodeTables []NodeTableFixture `yaml:"node_tables"`
	RelTables  []RelTableFixture  `yaml:"rel_tables"`
}

// NodeTableFixture declares one node table and its keys.
type NodeTableFixture struct {
	Name  string   `yaml:"name"`
	Nodes []string `yaml:"nodes"`
}

// RelTableFixture declares one rel table and its edges.
type RelTableFixture struct {
	Name string       `yaml:"name"`
	From string       `yaml:"from"`
	To   string       `yaml:"to"`
	Rels []RelFixture `yaml:"rels"`
}

// RelFixture declares one edge by endpoint keys. Weight defaults to 1.
type RelFixture struct {
	From   string   `yaml:"from"`
	To     string   `yaml:"to"`
	Weight *float64 `yaml:"weight"`
}

// LoadYAML decodes a graph document from r and builds the Graph.
func LoadYAML(r io.Reader, opts ...GraphOption) (*Graph, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	return fx.Build(opts...)
}

// LoadYAMLFile reads and builds the graph document at path.
func LoadYAMLFile(path string, opts ...GraphOption) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("core: read graph file: %w", err)
	}
	return LoadYAML(bytes.NewReader(data), opts...)
}

// Build materializes fx into a new Graph.
//
// Implementation:
//   - Stage 1: create node tables and their nodes in document order.
//   - Stage 2: create rel tables, resolving endpoint keys in the declared tables.
func (fx *Fixture) Build(opts ...GraphOption) (*Graph, error) {
	g := NewGraph(opts...)
	for _, nt := range fx.NodeTables {
		id, err := g.AddNodeTable(nt.Name)
		if err != nil {
			return nil, err
		}
		for _, key := range nt.Nodes {
			if _, err := g.AddNode(id, key); err != nil {
				return nil, err
			}
		}
	}
	for _, rt := range fx.RelTables {
		src, err := g.TableByName(rt.From)
		if err != nil {
			return nil, fmt.Errorf("%w: rel table %q: %v", ErrInvalidFixture, rt.Name, err)
		}
		dst, err := g.TableByName(rt.To)
		if err != nil {
			return nil, fmt.Errorf("%w: rel table %q: %v", ErrInvalidFixture, rt.Name, err)
		}
		id, err := g.AddRelTable(rt.Name, src, dst)
		if err != nil {
			return nil, err
		}
		for _, r := range rt.Rels {
			from, err := g.Lookup(src, r.From)
			if err != nil {
				return nil, err
			}
			to, err := g.Lookup(dst, r.To)
			if err != nil {
				return nil, err
			}
			w := 1.0
			if r.Weight != nil {
				w = *r.Weight
			}
			if _, err := g.AddRel(id, from, to, w); err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}
