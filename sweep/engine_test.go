package sweep

import (
	"math"
	"testing"
)

func constantBurst(fftSize int, i, q int8) []byte {
	raw := make([]byte, 2*fftSize)
	for n := 0; n < fftSize; n++ {
		raw[2*n] = byte(i)
		raw[2*n+1] = byte(q)
	}

	return raw
}

// toneBurst synthesizes a complex exponential at the given bin with the
// given amplitude, quantized to signed 8-bit samples.
func toneBurst(fftSize, bin int, amplitude float64) []byte {
	raw := make([]byte, 2*fftSize)
	for n := 0; n < fftSize; n++ {
		phase := 2 * math.Pi * float64(bin) * float64(n) / float64(fftSize)
		raw[2*n] = byte(int8(math.Round(amplitude * math.Cos(phase))))
		raw[2*n+1] = byte(int8(math.Round(amplitude * math.Sin(phase))))
	}

	return raw
}

func argmax(vals []float64) int {
	best := 0
	for i, v := range vals {
		if v > vals[best] {
			best = i
		}
	}

	return best
}

func TestUnpreparedEngineIsNeutral(t *testing.T) {
	var e Engine

	buf := []float64{1, 2, 3}

	done, err := e.Process(make([]byte, 16), buf)
	if done || err != nil {
		t.Fatalf("Process on unprepared engine: (%v, %v), want (false, nil)", done, err)
	}

	for i, v := range buf {
		if v != float64(i+1) {
			t.Fatalf("sweep buffer modified at %d: %v", i, v)
		}
	}

	rssi, err := e.EstimateRSSI(make([]byte, 16))
	if rssi != 0 || err != nil {
		t.Fatalf("EstimateRSSI on unprepared engine: (%v, %v), want (0, nil)", rssi, err)
	}
}

func TestPrepareValidation(t *testing.T) {
	var e Engine

	if err := e.Prepare(DefaultConfig(1, 4)); err == nil {
		t.Fatal("expected error for fft size 1")
	}

	if err := e.Prepare(DefaultConfig(8, 0)); err == nil {
		t.Fatal("expected error for step count 0")
	}

	// Thread counts <= 0 are clamped, not rejected.
	cfg := DefaultConfig(8, 2)
	cfg.Threads = -3

	if err := e.Prepare(cfg); err != nil {
		t.Fatalf("negative thread count should be clamped: %v", err)
	}
}

func TestStepSequencing(t *testing.T) {
	var e Engine

	if err := e.Prepare(DefaultConfig(8, 3)); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	buf := e.NewSweepBuffer()
	burst := toneBurst(8, 2, 90)

	for call := 0; call < 2; call++ {
		done, err := e.Process(burst, buf)
		if err != nil {
			t.Fatalf("call %d: %v", call, err)
		}

		if done {
			t.Fatalf("call %d completed the sweep early", call)
		}

		if e.CurrentStep() != call+1 {
			t.Fatalf("call %d: step=%d, want %d", call, e.CurrentStep(), call+1)
		}
	}

	done, err := e.Process(burst, buf)
	if err != nil {
		t.Fatalf("final call: %v", err)
	}

	if !done {
		t.Fatal("final call did not report sweep completion")
	}

	if e.CurrentStep() != 0 {
		t.Fatalf("step=%d after completion, want 0", e.CurrentStep())
	}
}

func TestTwoStepSweepScenario(t *testing.T) {
	var e Engine

	if err := e.Prepare(DefaultConfig(8, 2)); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	burstA := toneBurst(8, 1, 90)
	burstB := toneBurst(8, 3, 90)

	buf := e.NewSweepBuffer()
	if len(buf) != 16 {
		t.Fatalf("sweep buffer length %d, want 16", len(buf))
	}

	done, err := e.Process(burstA, buf)
	if done || err != nil {
		t.Fatalf("first burst: (%v, %v), want (false, nil)", done, err)
	}

	done, err = e.Process(burstB, buf)
	if !done || err != nil {
		t.Fatalf("second burst: (%v, %v), want (true, nil)", done, err)
	}

	// The two steps hold the two distinct spectra.
	peakA := argmax(buf[:8])
	peakB := argmax(buf[8:])

	if peakA == peakB {
		t.Fatalf("steps do not hold distinct spectra: both peak at bin %d", peakA)
	}

	if peakB < 2 || peakB > 4 {
		t.Fatalf("second step peak at bin %d, want 3 +- 1", peakB)
	}

	// After wraparound the next call writes the first step's slice again.
	first := append([]float64(nil), buf[:8]...)

	done, err = e.Process(burstA, buf)
	if done || err != nil {
		t.Fatalf("wrapped burst: (%v, %v), want (false, nil)", done, err)
	}

	for i := range first {
		if math.Abs(buf[i]-first[i]) > 1e-9 {
			t.Fatalf("wrapped write differs at bin %d: %v != %v", i, buf[i], first[i])
		}
	}
}

func TestSinusoidPeakPlacement(t *testing.T) {
	const (
		fftSize = 64
		bin     = 5
	)

	var e Engine

	if err := e.Prepare(DefaultConfig(fftSize, 1)); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	buf := e.NewSweepBuffer()

	done, err := e.Process(toneBurst(fftSize, bin, 100), buf)
	if !done || err != nil {
		t.Fatalf("process: (%v, %v)", done, err)
	}

	peak := argmax(buf)
	if peak < bin-1 || peak > bin+1 {
		t.Fatalf("peak at bin %d, want %d +- 1", peak, bin)
	}
}

func TestRSSIIndependentOfDCLevel(t *testing.T) {
	var e Engine

	if err := e.Prepare(DefaultConfig(32, 1)); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	a, err := e.EstimateRSSI(constantBurst(32, 10, 10))
	if err != nil {
		t.Fatalf("first estimate: %v", err)
	}

	b, err := e.EstimateRSSI(constantBurst(32, 100, -100))
	if err != nil {
		t.Fatalf("second estimate: %v", err)
	}

	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("RSSI depends on DC level: %v != %v", a, b)
	}
}

func TestRSSIDoesNotAdvanceSteps(t *testing.T) {
	var e Engine

	if err := e.Prepare(DefaultConfig(16, 4)); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	if _, err := e.EstimateRSSI(toneBurst(16, 3, 80)); err != nil {
		t.Fatalf("estimate: %v", err)
	}

	if e.CurrentStep() != 0 {
		t.Fatalf("RSSI advanced the step to %d", e.CurrentStep())
	}
}

func TestRSSISmallFFTFallsBackToMean(t *testing.T) {
	var e Engine

	if err := e.Prepare(DefaultConfig(2, 1)); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	// With 2 bins the estimate is the plain mean; both bins of a debiased
	// constant burst sit on the epsilon floor.
	rssi, err := e.EstimateRSSI(constantBurst(2, 50, 50))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	want := 20*math.Log10(DefaultEpsilon) + DefaultOffsetDB
	if math.Abs(rssi-want) > 1e-6 {
		t.Fatalf("rssi=%v, want %v", rssi, want)
	}
}

func TestRawVariantKeepsDCBin(t *testing.T) {
	var e Engine

	if err := e.Prepare(RawConfig(16, 1)); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	buf := e.NewSweepBuffer()

	if _, err := e.Process(constantBurst(16, 64, 0), buf); err != nil {
		t.Fatalf("process: %v", err)
	}

	if peak := argmax(buf); peak != 0 {
		t.Fatalf("DC burst peak at bin %d, want 0 without bias removal", peak)
	}
}

func TestRepreparationResizes(t *testing.T) {
	var e Engine

	if err := e.Prepare(DefaultConfig(8, 2)); err != nil {
		t.Fatalf("first prepare: %v", err)
	}

	if _, err := e.Process(toneBurst(8, 1, 80), e.NewSweepBuffer()); err != nil {
		t.Fatalf("process: %v", err)
	}

	if err := e.Prepare(DefaultConfig(32, 3)); err != nil {
		t.Fatalf("second prepare: %v", err)
	}

	if e.SweepLen() != 96 {
		t.Fatalf("SweepLen=%d, want 96", e.SweepLen())
	}

	if e.CurrentStep() != 0 {
		t.Fatalf("step=%d after re-prepare, want 0", e.CurrentStep())
	}

	buf := e.NewSweepBuffer()

	done, err := e.Process(toneBurst(32, 4, 80), buf)
	if done || err != nil {
		t.Fatalf("process after re-prepare: (%v, %v)", done, err)
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	var e Engine

	if err := e.Prepare(DefaultConfig(8, 2)); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	e.Cleanup()
	e.Cleanup()

	if e.Prepared() {
		t.Fatal("engine still prepared after cleanup")
	}

	done, err := e.Process(toneBurst(8, 1, 80), make([]float64, 16))
	if done || err != nil {
		t.Fatalf("Process after cleanup: (%v, %v), want (false, nil)", done, err)
	}
}

func TestBufferLengthErrors(t *testing.T) {
	var e Engine

	if err := e.Prepare(DefaultConfig(8, 2)); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	if _, err := e.Process(make([]byte, 15), e.NewSweepBuffer()); err == nil {
		t.Fatal("expected error for short burst")
	}

	if _, err := e.Process(toneBurst(8, 1, 80), make([]float64, 15)); err == nil {
		t.Fatal("expected error for short sweep buffer")
	}

	if e.CurrentStep() != 0 {
		t.Fatalf("failed calls advanced the step to %d", e.CurrentStep())
	}
}
