package frontier

// DenseAllocated reports whether the pair holds dense slots.
func (p *SPPair) DenseAllocated() bool { return p.dense != nil }

// DenseAllocated reports whether the pair holds dense slots.
func (p *DynamicPair) DenseAllocated() bool { return p.curDense != nil && p.nextDense != nil }
