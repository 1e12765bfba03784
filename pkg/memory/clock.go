package memory

// Clock is the monotonic tick counter shared by the memory store and the
// update engine. It wraps at 2^32 like the kernel counter it replaces.
type Clock struct {
	now uint32
}

// NewClock returns a clock at tick zero.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current tick.
func (c *Clock) Now() uint32 {
	return c.now
}

// Advance moves the clock forward by one tick and returns the new value.
func (c *Clock) Advance() uint32 {
	c.now++
	return c.now
}

// AdvanceBy moves the clock forward n ticks and returns the new value.
func (c *Clock) AdvanceBy(n uint32) uint32 {
	c.now += n
	return c.now
}

// Reset returns the clock to tick zero.
func (c *Clock) Reset() {
	c.now = 0
}
