// SPDX-License-Identifier: MIT

// Package paths enumerates the paths recorded in a bfsgraph after a
// recursive join and writes them as rows.
//
// Every writer runs an iterative DFS from the destination toward the
// source over an explicit stack of ParentList entries. Going forward it
// pushes, for the node on top, a parent one iteration closer to the source;
// on reaching iteration 1 it emits the stack as a row and starts
// backtracking, which replaces the top with its next sibling or pops it.
//
// The fast DFS applies no checks. The slow one filters every candidate with
// the path node mask and the Semantic: Trail compares edge IDs and Acyclic
// node IDs against the stack (minus the top when replacing it).
//
// Writers:
//
//	SPWriter     - unweighted shortest paths; the source is never written.
//	VarLenWriter - bounded-length walks; writes src->src of length 0 when
//	               the lower bound is 0.
//	AWSPWriter   - every minimum-cost path; weight is the head cost.
//	WSPWriter    - the single minimum-cost path.
//
// A shared LimitCounter stops every writer as soon as the row limit is
// reached, even in the middle of a DFS.
package paths
