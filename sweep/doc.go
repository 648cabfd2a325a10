// Package sweep turns raw interleaved 8-bit I/Q bursts into calibrated
// power spectra assembled across a multi-step frequency sweep, and into a
// fast scalar signal-strength estimate.
//
// An [Engine] owns its window coefficients, transform plan and scratch
// buffers. [Engine.Prepare] sizes them for a configuration and
// [Engine.Cleanup] releases them; both may be called repeatedly.
// [Engine.Process] pulls one burst through bias removal, windowing, a
// forward FFT and dB conversion, writes the result into the current step's
// slice of a caller-owned sweep buffer, and reports when a full sweep has
// been assembled. [Engine.EstimateRSSI] runs the same pipeline but reduces
// the spectrum to one scalar via a sliding peak-region search.
//
// Engines hold mutable state without internal locking: all calls into one
// engine must be serialized by the caller, typically by driving it from a
// single receive-callback goroutine. The only internal parallelism is the
// transform worker fan-out configured by [Config.Threads], which is opaque
// to callers.
package sweep
