package sweep

import (
	"fmt"

	"github.com/cwbudde/algo-sweep/dsp/iq"
	"github.com/cwbudde/algo-sweep/dsp/spectrum"
	"github.com/cwbudde/algo-sweep/dsp/window"
)

// rssiRegionBins is the width of the contiguous bin region averaged by the
// RSSI estimate.
const rssiRegionBins = 3

// Engine is the streaming sweep analysis pipeline. The zero value is an
// unprepared engine on which all processing calls are neutral no-ops; call
// [Engine.Prepare] before use.
//
// The engine owns its window coefficients, transform input/output buffers
// and power scratch. The sweep output buffer is owned by the caller and is
// only ever written, never read.
type Engine struct {
	cfg      Config
	coeffs   []float64
	in       []complex128
	out      []complex128
	power    []float64
	tr       *transform
	step     int
	prepared bool
}

// Prepare sizes the engine for cfg. Any state from a previous preparation
// is released first, so re-preparing with a different FFT size is safe and
// leak-free. The forward transform plan is built here once; processing
// calls never re-plan. The current step resets to 0.
func (e *Engine) Prepare(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	if cfg.Threads < 1 {
		cfg.Threads = 1
	}

	if cfg.Epsilon <= 0 {
		cfg.Epsilon = DefaultEpsilon
	}

	e.Cleanup()

	tr, err := newTransform(cfg.FFTSize, cfg.Threads)
	if err != nil {
		return err
	}

	e.cfg = cfg
	e.coeffs = window.Generate(cfg.Window, cfg.FFTSize)
	e.in = make([]complex128, cfg.FFTSize)
	e.out = make([]complex128, cfg.FFTSize)
	e.power = make([]float64, cfg.FFTSize)
	e.tr = tr
	e.prepared = true

	return nil
}

// Cleanup releases all engine-owned buffers and the transform plan and
// returns the engine to the unprepared state. It is safe to call on an
// already clean engine.
func (e *Engine) Cleanup() {
	*e = Engine{}
}

// Prepared reports whether the engine holds a live configuration.
func (e *Engine) Prepared() bool { return e.prepared }

// FFTSize returns the configured transform length, or 0 when unprepared.
func (e *Engine) FFTSize() int { return e.cfg.FFTSize }

// StepCount returns the configured hops per sweep, or 0 when unprepared.
func (e *Engine) StepCount() int { return e.cfg.StepCount }

// CurrentStep returns the sweep step the next Process call writes to.
func (e *Engine) CurrentStep() int { return e.step }

// SweepLen returns the caller-side sweep buffer length, StepCount*FFTSize.
func (e *Engine) SweepLen() int { return e.cfg.StepCount * e.cfg.FFTSize }

// NewSweepBuffer allocates a sweep buffer sized for this engine.
func (e *Engine) NewSweepBuffer() []float64 {
	return make([]float64, e.SweepLen())
}

// Process pulls one burst through the pipeline and writes the resulting
// power spectrum into the current step's slice of sweepBuf.
//
// raw must hold at least 2*FFTSize bytes of interleaved signed 8-bit
// samples [I0, Q0, I1, Q1, ...]; sweepBuf must hold at least SweepLen
// values. The returned bool is true exactly when this call completed the
// final step of a sweep, after which the step index has wrapped to 0.
//
// On an unprepared engine Process returns (false, nil) with no side
// effects.
func (e *Engine) Process(raw []byte, sweepBuf []float64) (bool, error) {
	if !e.prepared {
		return false, nil
	}

	n := e.cfg.FFTSize

	if len(sweepBuf) < e.SweepLen() {
		return false, fmt.Errorf("sweep: sweep buffer too short: %d values, need %d", len(sweepBuf), e.SweepLen())
	}

	if err := e.load(raw); err != nil {
		return false, err
	}

	if err := e.tr.forward(e.out, e.in); err != nil {
		return false, err
	}

	dest := sweepBuf[e.step*n : (e.step+1)*n]
	if err := spectrum.PowerDB(dest, e.out, e.cfg.Epsilon, e.cfg.OffsetDB); err != nil {
		return false, fmt.Errorf("sweep: power conversion: %w", err)
	}

	e.step++
	if e.step >= e.cfg.StepCount {
		e.step = 0
		return true, nil
	}

	return false, nil
}

// EstimateRSSI pulls one burst through the identical pipeline but reduces
// the spectrum to a single scalar: the strongest mean over 3 contiguous
// bins (plain mean when FFTSize < 3). The sweep step sequence is not
// advanced and no sweep buffer is touched.
//
// On an unprepared engine EstimateRSSI returns (0, nil) with no side
// effects.
func (e *Engine) EstimateRSSI(raw []byte) (float64, error) {
	if !e.prepared {
		return 0, nil
	}

	if err := e.load(raw); err != nil {
		return 0, err
	}

	if err := e.tr.forward(e.out, e.in); err != nil {
		return 0, err
	}

	if err := spectrum.PowerDB(e.power, e.out, e.cfg.Epsilon, e.cfg.OffsetDB); err != nil {
		return 0, fmt.Errorf("sweep: power conversion: %w", err)
	}

	return spectrum.PeakRegionMean(e.power, rssiRegionBins), nil
}

func (e *Engine) load(raw []byte) error {
	var err error

	if e.cfg.Debias {
		err = iq.DebiasWindowInto(e.in, raw, e.coeffs)
	} else {
		err = iq.WindowInto(e.in, raw, e.coeffs)
	}

	if err != nil {
		return fmt.Errorf("sweep: burst conversion: %w", err)
	}

	return nil
}
