package dotplay

// Pool is a fixed set of frame buffers handed out round-robin. It is owned
// by the producer; a Queue of capacity Len()-1 guarantees the slot returned
// by Next is never referenced by an unrendered item.
type Pool struct {
	bufs []*Gray
	next int
}

// NewPool returns a pool of n empty buffers. n is raised to 2 if smaller.
func NewPool(n int) *Pool {
	n = max(n, 2)
	p := &Pool{bufs: make([]*Gray, n)}
	for i := range p.bufs {
		p.bufs[i] = &Gray{}
	}
	return p
}

// Next returns the next slot index and its buffer.
func (p *Pool) Next() (int, *Gray) {
	slot := p.next
	p.next = (p.next + 1) % len(p.bufs)
	return slot, p.bufs[slot]
}

// Len returns the number of buffers in the pool.
func (p *Pool) Len() int {
	return len(p.bufs)
}
