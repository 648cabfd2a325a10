// Package iq converts interleaved signed 8-bit I/Q bursts into windowed
// complex samples ready for a forward FFT.
//
// Receiver front ends deliver bursts as raw byte buffers ordered
// [I0, Q0, I1, Q1, ...], where each byte is a signed 8-bit sample. The
// analog front end adds a slowly varying DC bias to both channels, which
// would otherwise concentrate as a spurious spike in bin 0. The conversion
// here removes that bias with an online running mean in the same pass that
// scales and windows the samples, so the raw buffer is read exactly once.
package iq

import "errors"

// Scale maps the signed 8-bit sample range into a roughly unit range.
const Scale = 1.0 / 128.0

var (
	// ErrShortBurst is returned when the raw buffer holds fewer I/Q pairs
	// than the destination requires.
	ErrShortBurst = errors.New("iq: burst holds fewer samples than destination")
	// ErrCoeffLength is returned when window coefficients do not match the
	// destination length.
	ErrCoeffLength = errors.New("iq: window coefficients length mismatch")
)

// MeanTracker maintains an incremental arithmetic mean over a sample stream.
//
// The update mean += (x - mean) / n is numerically stable for long streams
// and needs no buffering of past samples.
type MeanTracker struct {
	mean  float64
	count int
}

// Update folds x into the running mean and returns the mean including x.
func (m *MeanTracker) Update(x float64) float64 {
	m.count++
	m.mean += (x - m.mean) / float64(m.count)

	return m.mean
}

// Mean returns the current running mean.
func (m *MeanTracker) Mean() float64 { return m.mean }

// Count returns the number of samples folded in so far.
func (m *MeanTracker) Count() int { return m.count }

// Reset clears the tracker to its initial state.
func (m *MeanTracker) Reset() { *m = MeanTracker{} }

// DebiasWindowInto fills dst with bias-corrected, scaled and windowed
// samples from an interleaved I/Q burst.
//
// For sample index i the running mean of each channel is updated first and
// the current mean, not a final one, is subtracted from the current sample.
// This keeps the conversion single-pass: a late bias estimate never triggers
// a second correction pass over the buffer. The corrected sample is scaled
// by 1/128 and multiplied with coeffs[i].
//
// raw must hold at least 2*len(dst) bytes and coeffs exactly len(dst)
// values. dst is fully overwritten.
func DebiasWindowInto(dst []complex128, raw []byte, coeffs []float64) error {
	if len(raw) < 2*len(dst) {
		return ErrShortBurst
	}

	if len(coeffs) != len(dst) {
		return ErrCoeffLength
	}

	var meanRe, meanIm MeanTracker

	for i := range dst {
		re := float64(int8(raw[2*i]))
		im := float64(int8(raw[2*i+1]))

		re = (re - meanRe.Update(re)) * Scale
		im = (im - meanIm.Update(im)) * Scale

		dst[i] = complex(re*coeffs[i], im*coeffs[i])
	}

	return nil
}

// WindowInto fills dst with scaled and windowed samples from an interleaved
// I/Q burst, without bias removal.
//
// This is the raw-sample variant of [DebiasWindowInto]: the receiver's DC
// bias passes through to bin 0 unchanged.
func WindowInto(dst []complex128, raw []byte, coeffs []float64) error {
	if len(raw) < 2*len(dst) {
		return ErrShortBurst
	}

	if len(coeffs) != len(dst) {
		return ErrCoeffLength
	}

	for i := range dst {
		re := float64(int8(raw[2*i])) * Scale
		im := float64(int8(raw[2*i+1])) * Scale

		dst[i] = complex(re*coeffs[i], im*coeffs[i])
	}

	return nil
}

// Samples returns the number of complete I/Q pairs in a raw burst.
func Samples(raw []byte) int { return len(raw) / 2 }
