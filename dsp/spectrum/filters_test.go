package spectrum

import (
	"math"
	"testing"
)

func TestAverageFilter(t *testing.T) {
	f := NewAverageFilter(2)

	out := f.Push([]float64{-10, -20})
	if out[0] != -10 || out[1] != -20 {
		t.Fatalf("first frame: got %v", out)
	}

	out = f.Push([]float64{-30, -40})
	if out[0] != -20 || out[1] != -30 {
		t.Fatalf("two frames: got %v", out)
	}

	// Third frame rotates the first one out.
	out = f.Push([]float64{-50, -60})
	if out[0] != -40 || out[1] != -50 {
		t.Fatalf("rotation: got %v", out)
	}
}

func TestAverageFilterResizesOnLengthChange(t *testing.T) {
	f := NewAverageFilter(3)

	f.Push([]float64{1, 2, 3})

	out := f.Push([]float64{4, 4})
	if len(out) != 2 || out[0] != 4 || out[1] != 4 {
		t.Fatalf("after resize: got %v", out)
	}
}

func TestAverageFilterClampsDepth(t *testing.T) {
	f := NewAverageFilter(0)

	f.Push([]float64{1})

	out := f.Push([]float64{3})
	if out[0] != 3 {
		t.Fatalf("depth clamp: got %v, want 3", out[0])
	}
}

func TestMinMaxHold(t *testing.T) {
	var h MinMaxHold

	if h.Min() != nil || h.Max() != nil {
		t.Fatal("expected nil holds before first frame")
	}

	h.Push([]float64{-10, -50})
	h.Push([]float64{-30, -20})

	if h.Min()[0] != -30 || h.Min()[1] != -50 {
		t.Fatalf("min hold: got %v", h.Min())
	}

	if h.Max()[0] != -10 || h.Max()[1] != -20 {
		t.Fatalf("max hold: got %v", h.Max())
	}

	h.Reset()

	if h.Min() != nil {
		t.Fatal("reset did not clear holds")
	}
}

func TestPersistence(t *testing.T) {
	p := NewPersistence(0.1)

	out := p.Push([]float64{-100})
	if out[0] != -100 {
		t.Fatalf("first frame: got %v", out[0])
	}

	out = p.Push([]float64{0})
	if math.Abs(out[0]-(-90)) > 1e-12 {
		t.Fatalf("decayed frame: got %v, want -90", out[0])
	}
}

func TestPersistenceClampsWeight(t *testing.T) {
	p := NewPersistence(7)

	p.Push([]float64{0})

	out := p.Push([]float64{-100})
	if math.Abs(out[0]-(-10)) > 1e-12 {
		t.Fatalf("clamped weight: got %v, want -10", out[0])
	}
}
