// SPDX-License-Identifier: MIT
// Package: lvgds/builder
//
// parse.go: textual topology descriptors for the CLI.
//
// Grammar (case-insensitive name, colon-separated arguments):
//   path:N  cycle:N  star:N  complete:N  ladder:N  grid:RxC  random:N:P

package builder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownTopology is returned by ParseTopology for malformed descriptors.
var ErrUnknownTopology = errors.New("builder: unknown topology")

// ParseTopology turns a descriptor such as "grid:3x4" or "random:100:0.05"
// into a Constructor. Sizes are validated by the constructor itself.
func ParseTopology(s string) (Constructor, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	name := strings.ToLower(parts[0])
	args := parts[1:]
	bad := func() (Constructor, error) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopology, s)
	}

	switch name {
	case "path", "cycle", "star", "complete", "ladder":
		if len(args) != 1 {
			return bad()
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return bad()
		}
		return map[string]func(int) Constructor{
			"path": Path, "cycle": Cycle, "star": Star, "complete": Complete, "ladder": Ladder,
		}[name](n), nil
	case "grid":
		if len(args) != 1 {
			return bad()
		}
		rc := strings.Split(strings.ToLower(args[0]), "x")
		if len(rc) != 2 {
			return bad()
		}
		rows, err1 := strconv.Atoi(rc[0])
		cols, err2 := strconv.Atoi(rc[1])
		if err1 != nil || err2 != nil {
			return bad()
		}
		return Grid(rows, cols), nil
	case "random":
		if len(args) != 2 {
			return bad()
		}
		n, err1 := strconv.Atoi(args[0])
		p, err2 := strconv.ParseFloat(args[1], 64)
		if err1 != nil || err2 != nil {
			return bad()
		}
		return RandomSparse(n, p), nil
	}
	return bad()
}
