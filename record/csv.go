// Package record persists completed sweeps, either as hackrf_sweep style
// CSV text lines or as Parquet rows for columnar tooling.
package record

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// CSVWriter emits one text line per spectrum in the hackrf_sweep format:
//
//	date, time, hz_low, hz_high, hz_bin_width, num_samples, dB, dB, ...
//
// The separator is a comma followed by a space and power values carry two
// decimals, matching the reference tool's output so existing waterfall
// scripts keep parsing it.
type CSVWriter struct {
	w   io.Writer
	now func() time.Time
}

// NewCSVWriter returns a writer emitting rows to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w, now: time.Now}
}

// WriteSpectrum writes one row for a power spectrum starting at hzLow with
// the given bin width.
func (c *CSVWriter) WriteSpectrum(hzLow, hzBinWidth float64, power []float64) error {
	if len(power) == 0 {
		return fmt.Errorf("record: empty spectrum")
	}

	hzHigh := hzLow + hzBinWidth*float64(len(power)-1)

	var sb strings.Builder

	now := c.now()
	fmt.Fprintf(&sb, "%s, %s, %.0f, %.0f, %.0f, %d",
		now.Format("2006-01-02"),
		now.Format("15:04:05.000000"),
		hzLow, hzHigh, hzBinWidth, len(power))

	for _, p := range power {
		fmt.Fprintf(&sb, ", %.2f", p)
	}

	sb.WriteByte('\n')

	_, err := io.WriteString(c.w, sb.String())
	if err != nil {
		return fmt.Errorf("record: write csv row: %w", err)
	}

	return nil
}

// WriteSweep writes one row per step of a completed sweep buffer holding
// stepCount*fftSize values. Steps are hzStep apart, each spanning fftSize
// bins of hzBinWidth.
func (c *CSVWriter) WriteSweep(hzStart, hzStep, hzBinWidth float64, fftSize int, sweep []float64) error {
	if fftSize < 1 || len(sweep)%fftSize != 0 {
		return fmt.Errorf("record: sweep length %d is not a multiple of fft size %d", len(sweep), fftSize)
	}

	for step := 0; step*fftSize < len(sweep); step++ {
		hzLow := hzStart + float64(step)*hzStep

		err := c.WriteSpectrum(hzLow, hzBinWidth, sweep[step*fftSize:(step+1)*fftSize])
		if err != nil {
			return err
		}
	}

	return nil
}
