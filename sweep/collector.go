package sweep

import "errors"

// ErrNotPrepared is returned when a collector is built on an unprepared
// engine.
var ErrNotPrepared = errors.New("sweep: engine is not prepared")

// Collector feeds bursts into an engine and assembles completed sweeps
// using two flip buffers. When a sweep completes, the finished buffer is
// handed to the callback while the engine writes the next sweep into the
// other buffer, so the callback may hold its slice until the *following*
// sweep completes without any copying.
//
// A collector snapshots the engine's geometry at construction; build a new
// one after re-preparing the engine. Like the engine, it must be driven
// from a single caller context.
type Collector struct {
	engine  *Engine
	buffers [2][]float64
	active  int
	onSweep func([]float64)
}

// NewCollector returns a collector over a prepared engine. onSweep may be
// nil, in which case completed sweeps are only reported through Feed's
// return value.
func NewCollector(e *Engine, onSweep func([]float64)) (*Collector, error) {
	if !e.Prepared() {
		return nil, ErrNotPrepared
	}

	c := &Collector{engine: e, onSweep: onSweep}
	c.buffers[0] = e.NewSweepBuffer()
	c.buffers[1] = e.NewSweepBuffer()

	return c, nil
}

// Feed processes one burst into the active sweep buffer and reports
// whether it completed a sweep.
func (c *Collector) Feed(raw []byte) (bool, error) {
	done, err := c.engine.Process(raw, c.buffers[c.active])
	if err != nil {
		return false, err
	}

	if done {
		ready := c.active
		c.active ^= 1

		if c.onSweep != nil {
			c.onSweep(c.buffers[ready])
		}
	}

	return done, nil
}

// Active returns the buffer the engine is currently writing into. It is
// exposed for inspection only; the collector owns it.
func (c *Collector) Active() []float64 {
	return c.buffers[c.active]
}
