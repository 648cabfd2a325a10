// Package spectrum converts complex transform output into calibrated
// log-magnitude power values and provides scans and filters over the
// resulting power frames.
//
// The dB mapping is 20*log10(|X[k]| + eps) + offset, where eps guards
// against log(0) and offset is an empirical calibration constant that
// shifts magnitude units into an approximate dBm scale.
package spectrum
