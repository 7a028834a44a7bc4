// SPDX-License-Identifier: MIT

package gds

import (
	"sync/atomic"

	"github.com/katalvlaran/lvgds/core"
)

// DefaultMorselSize is the number of offsets handed out per Next call.
const DefaultMorselSize core.Offset = 2048

// MorselDispatcher splits [0, maxOffset) into ranges claimed by concurrent
// goroutines. It is safe for concurrent use.
type MorselDispatcher struct {
	maxOffset core.Offset
	size      core.Offset
	cursor    atomic.Uint64
}

// NewMorselDispatcher returns a dispatcher over [0, maxOffset) with morsels
// of size offsets (DefaultMorselSize when size is 0).
func NewMorselDispatcher(maxOffset, size core.Offset) *MorselDispatcher {
	if size == 0 {
		size = DefaultMorselSize
	}
	return &MorselDispatcher{maxOffset: maxOffset, size: size}
}

// Next claims the next morsel. ok is false once the range is exhausted.
func (d *MorselDispatcher) Next() (begin, end core.Offset, ok bool) {
	b := core.Offset(d.cursor.Add(uint64(d.size)) - uint64(d.size))
	if b >= d.maxOffset {
		return 0, 0, false
	}
	return b, min(b+d.size, d.maxOffset), true
}
