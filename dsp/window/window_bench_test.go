package window

import (
	"fmt"
	"testing"
)

func BenchmarkGenerateHann(b *testing.B) {
	for _, size := range []int{256, 4096} {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			for b.Loop() {
				_ = Generate(TypeHann, size)
			}
		})
	}
}

func BenchmarkApply(b *testing.B) {
	buf := make([]float64, 4096)
	coeffs := Generate(TypeHann, len(buf))

	b.ResetTimer()

	for b.Loop() {
		_ = ApplyCoefficientsInPlace(buf, coeffs)
	}
}
