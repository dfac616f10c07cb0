package testutil

import "sync/atomic"

// DeterministicClock hands out seq values 1, 2, 3, ... and can be rewound
// so a scenario recorded twice produces identical ledgers. It satisfies
// store.Clock and is safe for concurrent use.
type DeterministicClock struct {
	last atomic.Int64
}

// NewDeterministicClock returns a clock whose first Next is 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next advances the clock.
func (c *DeterministicClock) Next() int64 {
	return c.last.Add(1)
}

// Current is the last value handed out, 0 before the first Next.
func (c *DeterministicClock) Current() int64 {
	return c.last.Load()
}

// Reset rewinds the clock to its initial state.
func (c *DeterministicClock) Reset() {
	c.last.Store(0)
}
