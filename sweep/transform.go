package sweep

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// minSubTransform is the smallest sub-transform worth its own worker.
// Below this, goroutine handoff costs more than the butterflies saved.
const minSubTransform = 32

// transform wraps a forward complex FFT of fixed length with an optional
// worker fan-out. With one worker it is a plain plan execution. With w > 1
// workers the input is split by decimation in time into w interleaved
// subsequences, each transformed by its own plan of length n/w via a
// strided execution, and the sub-spectra are recombined with precomputed
// twiddles:
//
//	X[k] = sum_w twiddle[k*w mod n] * S_w[k mod n/w]
//
// All plans are built once at construction; per-burst calls never re-plan.
type transform struct {
	n       int
	workers int

	plan     *algofft.Plan[complex128]   // single-worker path
	subPlans []*algofft.Plan[complex128] // one per worker, length n/workers

	scratch []complex128 // interleaved sub-spectra, length n
	twiddle []complex128 // exp(-2*pi*i*j/n), length n
}

func newTransform(n, workers int) (*transform, error) {
	w := clampWorkers(n, workers)

	t := &transform{n: n, workers: w}

	if w <= 1 {
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("sweep: transform plan (n=%d): %w", n, err)
		}

		t.plan = plan

		return t, nil
	}

	sub := n / w
	t.subPlans = make([]*algofft.Plan[complex128], w)

	for i := range t.subPlans {
		plan, err := algofft.NewPlan64(sub)
		if err != nil {
			return nil, fmt.Errorf("sweep: sub-transform plan (n=%d): %w", sub, err)
		}

		t.subPlans[i] = plan
	}

	t.scratch = make([]complex128, n)

	t.twiddle = make([]complex128, n)
	for j := range t.twiddle {
		t.twiddle[j] = cmplx.Exp(complex(0, -2*math.Pi*float64(j)/float64(n)))
	}

	return t, nil
}

// clampWorkers reduces the requested worker count to the largest power of
// two that divides n and leaves sub-transforms of at least minSubTransform
// samples. Requests below 1 collapse to 1.
func clampWorkers(n, workers int) int {
	if workers < 1 {
		workers = 1
	}

	w := 1
	for 2*w <= workers && n%(2*w) == 0 && n/(2*w) >= minSubTransform {
		w *= 2
	}

	return w
}

// forward computes dst = FFT(src). dst and src must each hold n samples
// and must not alias when more than one worker is configured.
func (t *transform) forward(dst, src []complex128) error {
	if t.plan != nil {
		if err := t.plan.Forward(dst, src); err != nil {
			return fmt.Errorf("sweep: forward transform: %w", err)
		}

		return nil
	}

	var wg sync.WaitGroup

	errs := make([]error, t.workers)

	for w := range t.workers {
		wg.Add(1)

		go func(w int) {
			defer wg.Done()
			errs[w] = t.subPlans[w].ForwardStrided(t.scratch[w:], src[w:], t.workers)
		}(w)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("sweep: strided sub-transform: %w", err)
		}
	}

	chunk := (t.n + t.workers - 1) / t.workers

	for c := 0; c < t.n; c += chunk {
		end := c + chunk
		if end > t.n {
			end = t.n
		}

		wg.Add(1)

		go func(k0, k1 int) {
			defer wg.Done()
			t.combine(dst, k0, k1)
		}(c, end)
	}

	wg.Wait()

	return nil
}

// combine recombines the interleaved sub-spectra into dst[k0:k1].
func (t *transform) combine(dst []complex128, k0, k1 int) {
	sub := t.n / t.workers

	for k := k0; k < k1; k++ {
		base := (k % sub) * t.workers

		sum := t.scratch[base]
		for w := 1; w < t.workers; w++ {
			sum += t.twiddle[(k*w)%t.n] * t.scratch[base+w]
		}

		dst[k] = sum
	}
}
