package spectrum

// Frame filters smooth successive power spectra over time. All filters
// size themselves to the first frame they see and reset when the frame
// length changes, so re-preparing an engine with a new FFT size does not
// require recreating them.

// AverageFilter averages the most recent depth frames per bin.
type AverageFilter struct {
	depth  int
	frames [][]float64
	sum    []float64
	next   int
	filled int
}

// NewAverageFilter returns a running-average filter over depth frames.
// A depth below 1 is clamped to 1.
func NewAverageFilter(depth int) *AverageFilter {
	if depth < 1 {
		depth = 1
	}

	return &AverageFilter{depth: depth}
}

// Push folds frame into the filter and returns the per-bin average of the
// retained frames. The returned slice is owned by the filter and valid
// until the next call.
func (f *AverageFilter) Push(frame []float64) []float64 {
	if f.sum == nil || len(f.sum) != len(frame) {
		f.resize(len(frame))
	}

	old := f.frames[f.next]
	for i, v := range frame {
		f.sum[i] += v - old[i]
		old[i] = v
	}

	f.next = (f.next + 1) % f.depth
	if f.filled < f.depth {
		f.filled++
	}

	out := make([]float64, len(frame))
	inv := 1 / float64(f.filled)
	for i, s := range f.sum {
		out[i] = s * inv
	}

	return out
}

// Reset discards all retained frames.
func (f *AverageFilter) Reset() {
	f.frames = nil
	f.sum = nil
	f.next = 0
	f.filled = 0
}

func (f *AverageFilter) resize(n int) {
	f.frames = make([][]float64, f.depth)
	for i := range f.frames {
		f.frames[i] = make([]float64, n)
	}

	f.sum = make([]float64, n)
	f.next = 0
	f.filled = 0
}

// MinMaxHold tracks the per-bin minimum and maximum across frames.
type MinMaxHold struct {
	min []float64
	max []float64
}

// Push folds frame into the hold buffers.
func (h *MinMaxHold) Push(frame []float64) {
	if h.min == nil || len(h.min) != len(frame) {
		h.min = append([]float64(nil), frame...)
		h.max = append([]float64(nil), frame...)
		return
	}

	for i, v := range frame {
		if v < h.min[i] {
			h.min[i] = v
		}
		if v > h.max[i] {
			h.max[i] = v
		}
	}
}

// Min returns the per-bin minimum hold, or nil before the first frame.
func (h *MinMaxHold) Min() []float64 { return h.min }

// Max returns the per-bin maximum hold, or nil before the first frame.
func (h *MinMaxHold) Max() []float64 { return h.max }

// Reset discards the hold buffers.
func (h *MinMaxHold) Reset() {
	h.min = nil
	h.max = nil
}

// Persistence applies a per-bin exponential decay across frames:
//
//	state[k] = (1-weight)*state[k] + weight*frame[k]
type Persistence struct {
	weight float64
	state  []float64
}

// NewPersistence returns a persistence filter with the given new-frame
// weight. Weights outside (0, 1] are clamped to 0.1, the conventional
// display decay.
func NewPersistence(weight float64) *Persistence {
	if weight <= 0 || weight > 1 {
		weight = 0.1
	}

	return &Persistence{weight: weight}
}

// Push folds frame into the persistence state and returns the state. The
// returned slice is owned by the filter and valid until the next call.
func (p *Persistence) Push(frame []float64) []float64 {
	if p.state == nil || len(p.state) != len(frame) {
		p.state = append([]float64(nil), frame...)
		return p.state
	}

	w := p.weight
	for i, v := range frame {
		p.state[i] = (1-w)*p.state[i] + w*v
	}

	return p.state
}

// Reset discards the persistence state.
func (p *Persistence) Reset() {
	p.state = nil
}
