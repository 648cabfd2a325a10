// Package detect flags anomalous regions in completed power sweeps by
// comparing them against a slowly adapting baseline.
//
// The first sweeps observed are averaged into a baseline noise floor.
// Afterwards every sweep is compared bin by bin against the baseline:
// contiguous runs of bins whose delta exceeds a threshold, and whose
// absolute level clears a noise floor, are reported as segments. The
// baseline then tracks slow environment drift through an exponential
// moving average, so a persistent emitter eventually fades into it.
package detect

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ErrLengthMismatch is returned when a sweep's length differs from the
// length the detector locked onto.
var ErrLengthMismatch = errors.New("detect: sweep length differs from baseline")

// Config tunes the detector.
type Config struct {
	// ThresholdDB is the minimum delta over baseline for a bin to count as
	// anomalous.
	ThresholdDB float64

	// IgnoreLevelDB is the absolute floor; bins below it never trigger,
	// however far above baseline they sit.
	IgnoreLevelDB float64

	// MinBins is the minimum run length of anomalous bins for a segment.
	MinBins int

	// MaxStdDevDB rejects segments whose level spread exceeds it; wideband
	// noise bursts scatter, real emitters concentrate. Zero disables the
	// gate.
	MaxStdDevDB float64

	// BaselineSweeps is how many initial sweeps are averaged into the
	// baseline before detection starts.
	BaselineSweeps int

	// Smoothing is the EMA weight of each new sweep in the baseline update.
	Smoothing float64
}

// DefaultConfig returns the detection tuning used by the reference sweep
// setup.
func DefaultConfig() Config {
	return Config{
		ThresholdDB:    10,
		IgnoreLevelDB:  -100,
		MinBins:        3,
		MaxStdDevDB:    5,
		BaselineSweeps: 5,
		Smoothing:      0.01,
	}
}

// Segment is one contiguous anomalous bin range, End exclusive.
type Segment struct {
	Start int
	End   int

	// MeanLevelDB is the mean absolute power over the segment.
	MeanLevelDB float64

	// MeanDeltaDB is the mean excess over baseline.
	MeanDeltaDB float64

	// StdDevDB is the sample standard deviation of the segment's levels.
	StdDevDB float64
}

// Bins returns the segment width in bins.
func (s Segment) Bins() int { return s.End - s.Start }

// Baseline accumulates sweeps into a baseline and detects segments that
// rise above it. Not safe for concurrent use.
type Baseline struct {
	cfg      Config
	accum    []float64
	count    int
	baseline []float64
	delta    []float64
}

// New returns a detector with cfg. Out-of-range fields fall back to the
// defaults from [DefaultConfig].
func New(cfg Config) *Baseline {
	def := DefaultConfig()

	if cfg.MinBins < 1 {
		cfg.MinBins = def.MinBins
	}

	if cfg.BaselineSweeps < 1 {
		cfg.BaselineSweeps = def.BaselineSweeps
	}

	if cfg.Smoothing <= 0 || cfg.Smoothing >= 1 {
		cfg.Smoothing = def.Smoothing
	}

	return &Baseline{cfg: cfg}
}

// Ready reports whether the baseline has been established.
func (b *Baseline) Ready() bool {
	return b.baseline != nil
}

// Values returns a copy of the current baseline, or nil before it is
// established.
func (b *Baseline) Values() []float64 {
	if b.baseline == nil {
		return nil
	}

	return append([]float64(nil), b.baseline...)
}

// Reset discards the baseline and all accumulated sweeps.
func (b *Baseline) Reset() {
	b.accum = nil
	b.count = 0
	b.baseline = nil
	b.delta = nil
}

// SetBaseline installs a previously saved baseline, skipping the
// accumulation phase.
func (b *Baseline) SetBaseline(baseline []float64) {
	b.Reset()
	b.baseline = append([]float64(nil), baseline...)
	b.count = b.cfg.BaselineSweeps
}

// Push folds one completed sweep into the detector. While the baseline is
// still accumulating it returns (nil, nil). Afterwards it returns the
// detected segments, possibly none, and updates the baseline.
func (b *Baseline) Push(sweep []float64) ([]Segment, error) {
	if b.accum == nil && b.baseline == nil {
		b.accum = make([]float64, len(sweep))
	}

	if b.baseline == nil {
		if len(sweep) != len(b.accum) {
			return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(sweep), len(b.accum))
		}

		for i, v := range sweep {
			b.accum[i] += v
		}

		b.count++
		if b.count >= b.cfg.BaselineSweeps {
			b.baseline = b.accum
			b.accum = nil

			inv := 1 / float64(b.count)
			for i := range b.baseline {
				b.baseline[i] *= inv
			}
		}

		return nil, nil
	}

	if len(sweep) != len(b.baseline) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(sweep), len(b.baseline))
	}

	segments := b.scan(sweep)

	// Track slow drift; a persistent emitter eventually fades into the
	// baseline instead of alerting forever.
	s := b.cfg.Smoothing
	for i, v := range sweep {
		b.baseline[i] = (1-s)*b.baseline[i] + s*v
	}

	return segments, nil
}

func (b *Baseline) scan(sweep []float64) []Segment {
	if cap(b.delta) < len(sweep) {
		b.delta = make([]float64, len(sweep))
	}

	delta := b.delta[:len(sweep)]
	for i, v := range sweep {
		delta[i] = v - b.baseline[i]
	}

	var segments []Segment

	start := -1
	for i := 0; i <= len(sweep); i++ {
		hot := i < len(sweep) &&
			delta[i] > b.cfg.ThresholdDB &&
			sweep[i] > b.cfg.IgnoreLevelDB

		if hot {
			if start < 0 {
				start = i
			}
			continue
		}

		if start >= 0 {
			if seg, ok := b.segment(sweep, delta, start, i); ok {
				segments = append(segments, seg)
			}

			start = -1
		}
	}

	return segments
}

func (b *Baseline) segment(sweep, delta []float64, start, end int) (Segment, bool) {
	if end-start < b.cfg.MinBins {
		return Segment{}, false
	}

	levels := sweep[start:end]

	seg := Segment{
		Start:       start,
		End:         end,
		MeanLevelDB: stat.Mean(levels, nil),
		MeanDeltaDB: stat.Mean(delta[start:end], nil),
		StdDevDB:    stat.StdDev(levels, nil),
	}

	if b.cfg.MaxStdDevDB > 0 && seg.StdDevDB > b.cfg.MaxStdDevDB {
		return Segment{}, false
	}

	return seg, true
}
