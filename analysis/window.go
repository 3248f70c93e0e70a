package analysis

import (
	"fmt"
	"math"
)

// HammingWindow represents a raised-cosine Hamming window function
type HammingWindow struct {
	size         int
	coefficients []float64
}

// NewHammingWindow creates a new Hamming window of the given size
func NewHammingWindow(size int) *HammingWindow {
	h := &HammingWindow{size: size}
	h.generate()
	return h
}

// generate creates the symmetric Hamming coefficients
// w(n) = 0.54 - 0.46*cos(2*pi*n/(N-1))
func (h *HammingWindow) generate() {
	h.coefficients = make([]float64, h.size)

	denominator := float64(h.size - 1)
	for i := 0; i < h.size; i++ {
		h.coefficients[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denominator)
	}
}

// ApplyInPlace applies the window to a signal in-place
func (h *HammingWindow) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i := 0; i < h.size; i++ {
		signal[i] *= h.coefficients[i]
	}

	return nil
}

// Coefficients returns a copy of the window coefficients
func (h *HammingWindow) Coefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// Size returns the window size
func (h *HammingWindow) Size() int {
	return h.size
}
