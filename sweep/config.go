package sweep

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-sweep/dsp/spectrum"
	"github.com/cwbudde/algo-sweep/dsp/window"
)

// DefaultOffsetDB is the empirical calibration constant that shifts
// log-magnitude output into an approximate dBm scale.
const DefaultOffsetDB = -70.0

// DefaultEpsilon is the magnitude floor guarding against log(0).
const DefaultEpsilon = spectrum.DefaultEpsilon

var (
	// ErrFFTSize is returned when the FFT size is below 2. The window
	// formula divides by fftSize-1, so a single-bin engine is rejected.
	ErrFFTSize = errors.New("sweep: fft size must be >= 2")
	// ErrStepCount is returned when the step count is below 1.
	ErrStepCount = errors.New("sweep: step count must be >= 1")
)

// Config describes one engine preparation. The zero value is not usable;
// start from [DefaultConfig] or [RawConfig].
type Config struct {
	// FFTSize is the number of complex samples per burst and the number of
	// spectral bins per step. Must be >= 2.
	FFTSize int

	// StepCount is the number of frequency hops per full sweep. Must be >= 1.
	StepCount int

	// Threads bounds the transform's internal worker fan-out. Values <= 0
	// are clamped to 1. It never affects how callers may invoke the engine.
	Threads int

	// Window selects the analysis window shape.
	Window window.Type

	// Debias enables streaming DC-bias removal during burst conversion.
	// When off, raw scaled samples are windowed directly.
	Debias bool

	// OffsetDB is added to every converted power value.
	OffsetDB float64

	// Epsilon is the magnitude floor for the log conversion. Values <= 0
	// fall back to DefaultEpsilon.
	Epsilon float64
}

// DefaultConfig returns the production configuration: Hann window,
// streaming bias removal and the dBm calibration offset.
func DefaultConfig(fftSize, stepCount int) Config {
	return Config{
		FFTSize:   fftSize,
		StepCount: stepCount,
		Threads:   1,
		Window:    window.TypeHann,
		Debias:    true,
		OffsetDB:  DefaultOffsetDB,
		Epsilon:   DefaultEpsilon,
	}
}

// RawConfig returns the variant that windows raw scaled samples directly:
// no bias removal and no calibration offset.
func RawConfig(fftSize, stepCount int) Config {
	cfg := DefaultConfig(fftSize, stepCount)
	cfg.Debias = false
	cfg.OffsetDB = 0

	return cfg
}

func (c Config) validate() error {
	if c.FFTSize < 2 {
		return fmt.Errorf("%w: %d", ErrFFTSize, c.FFTSize)
	}

	if c.StepCount < 1 {
		return fmt.Errorf("%w: %d", ErrStepCount, c.StepCount)
	}

	return nil
}
