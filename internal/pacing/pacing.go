// Package pacing gates update and render work to fixed rates. Each Gate
// keeps its own clock, so cadences never share timer state.
package pacing

// Gate fires at most rate times per second of accumulated elapsed time.
type Gate struct {
	interval float64
	clock    float64
	next     float64
}

// NewGate returns a gate for rate events per second. A non-positive rate
// fires on every Advance.
func NewGate(rate float64) *Gate {
	g := &Gate{}
	if rate > 0 {
		g.interval = 1 / rate
	}
	return g
}

// Advance adds elapsed seconds and reports whether the gate fires. After
// firing the next deadline is one interval past now; missed intervals are
// dropped, not replayed.
func (g *Gate) Advance(elapsed float64) bool {
	if elapsed > 0 {
		g.clock += elapsed
	}
	if g.clock < g.next {
		return false
	}
	g.next = g.clock + g.interval
	return true
}

// Interval is the minimum spacing between firings, in seconds.
func (g *Gate) Interval() float64 { return g.interval }

// Counter counts events and reports the rate once per window.
type Counter struct {
	window  float64
	elapsed float64
	count   int
	rate    float64
}

// NewCounter returns a counter that reports every window seconds.
func NewCounter(window float64) *Counter {
	if window <= 0 {
		window = 1
	}
	return &Counter{window: window}
}

// Tick records one event at elapsed seconds since the previous Tick. It
// returns true, with Rate updated, when a window closes.
func (c *Counter) Tick(elapsed float64) bool {
	c.elapsed += elapsed
	c.count++
	if c.elapsed < c.window {
		return false
	}
	c.rate = float64(c.count) / c.elapsed
	c.elapsed, c.count = 0, 0
	return true
}

// Rate is the events per second measured over the last closed window.
func (c *Counter) Rate() float64 { return c.rate }
