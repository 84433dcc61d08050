package worker

import (
	"context"
	"sync/atomic"
)

// Gate bounds the number of concurrent inference calls across the whole
// process. One Gate is shared by every task.
type Gate struct {
	slots    chan struct{}
	inFlight atomic.Int64
}

// NewGate creates a gate admitting at most n holders at once
func NewGate(n int) *Gate {
	if n <= 0 {
		n = 1
	}
	return &Gate{slots: make(chan struct{}, n)}
}

// Acquire blocks until a slot is free or ctx is done
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case g.slots <- struct{}{}:
		g.inFlight.Add(1)
		return nil
	}
}

// Release frees a slot taken by Acquire
func (g *Gate) Release() {
	g.inFlight.Add(-1)
	<-g.slots
}

// Capacity returns the maximum number of concurrent holders
func (g *Gate) Capacity() int {
	return cap(g.slots)
}

// InFlight returns the current number of holders
func (g *Gate) InFlight() int {
	return int(g.inFlight.Load())
}
