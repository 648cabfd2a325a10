package spectrum

import (
	"errors"
	"math"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// DefaultEpsilon is the magnitude floor guarding against log(0).
const DefaultEpsilon = 1e-12

// ErrLengthMismatch is returned when destination and source lengths differ.
var ErrLengthMismatch = errors.New("spectrum: destination and source must have same length")

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im, mag []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 3 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n : 2*n], buf.data[2*n : need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// PowerDB writes the calibrated log-magnitude spectrum of in to dst:
//
//	dst[k] = 20*log10(|in[k]| + eps) + offset
//
// Magnitudes use SIMD-optimized implementations when available (AVX2,
// SSE2, NEON). Scratch buffers are pooled internally, so in steady state
// this does not allocate. dst and in must have the same length.
func PowerDB(dst []float64, in []complex128, eps, offset float64) error {
	if len(dst) != len(in) {
		return ErrLengthMismatch
	}

	if len(in) == 0 {
		return nil
	}

	re, im, mag, buf := getScratch(len(in))

	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Magnitude(mag, re, im)

	for i, m := range mag {
		dst[i] = 20*math.Log10(m+eps) + offset
	}

	putScratch(buf)

	return nil
}

// PeakRegionMean returns the maximum mean over width consecutive bins.
//
// The sliding sum is updated incrementally, one add and one subtract per
// position. A single strong narrowband emitter concentrates energy in a few
// adjacent bins; averaging a short region suppresses single-bin noise
// spikes while remaining responsive to localized energy. When the spectrum
// holds fewer than width bins the plain mean of all bins is returned, and
// an empty spectrum yields 0.
func PeakRegionMean(bins []float64, width int) float64 {
	if len(bins) == 0 || width <= 0 {
		return 0
	}

	if len(bins) < width {
		return vecmath.Sum(bins) / float64(len(bins))
	}

	sum := 0.0
	for _, v := range bins[:width] {
		sum += v
	}

	maxMean := sum / float64(width)

	for i := width; i < len(bins); i++ {
		sum += bins[i] - bins[i-width]

		if mean := sum / float64(width); mean > maxMean {
			maxMean = mean
		}
	}

	return maxMean
}
