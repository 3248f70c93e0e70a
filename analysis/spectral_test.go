package analysis

import (
	"math"
	"testing"
)

// sineSignal builds a sine wave of the given frequency and duration
func sineSignal(freq, seconds float64) []float64 {
	n := int(seconds * SampleRate)
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / SampleRate)
	}
	return signal
}

func TestComputeFramesEmptyInput(t *testing.T) {
	sa := NewSpectralAnalyzer()

	if frames := sa.ComputeFrames(nil); len(frames) != 0 {
		t.Errorf("expected no frames for empty input, got %d", len(frames))
	}

	// Shorter than one hop
	if frames := sa.ComputeFrames(make([]float64, HopSize-1)); len(frames) != 0 {
		t.Errorf("expected no frames for sub-hop input, got %d", len(frames))
	}
}

func TestComputeFramesCountAndOrder(t *testing.T) {
	signal := sineSignal(440, 2.0)
	sa := NewSpectralAnalyzer()

	frames := sa.ComputeFrames(signal)

	wantFrames := len(signal) / HopSize
	if len(frames) != wantFrames {
		t.Fatalf("expected %d frames, got %d", wantFrames, len(frames))
	}

	for i, frame := range frames {
		if frame.Index != i {
			t.Fatalf("frame %d has index %d; parallel transform broke ordering", i, frame.Index)
		}
		if len(frame.Magnitude) != FreqBins {
			t.Fatalf("frame %d has %d bins, want %d", i, len(frame.Magnitude), FreqBins)
		}
	}
}

func TestComputeFramesDeterministic(t *testing.T) {
	signal := sineSignal(880, 1.0)
	sa := NewSpectralAnalyzer()

	first := sa.ComputeFrames(signal)
	second := sa.ComputeFrames(signal)

	for i := range first {
		if first[i].Energy != second[i].Energy {
			t.Fatalf("frame %d energy differs between runs: %v vs %v", i, first[i].Energy, second[i].Energy)
		}
	}
}

func TestComputeFramesZeroPadding(t *testing.T) {
	// One hop of samples: a single frame, mostly zero-padded
	signal := sineSignal(440, float64(HopSize)/SampleRate)
	sa := NewSpectralAnalyzer()

	frames := sa.ComputeFrames(signal)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0].Energy <= 0 {
		t.Error("zero-padded frame should still carry signal energy")
	}
}

func TestBandSplitBinCounts(t *testing.T) {
	magnitude := make([]float64, FreqBins)
	for i := range magnitude {
		magnitude[i] = 1.0
	}

	bands := splitBands(magnitude)

	// Each magnitude contributes exactly 1, so band sums count bins
	total := bands[0] + bands[1] + bands[2]
	if total != float64(FreqBins) {
		t.Errorf("band bin counts sum to %v, want %d", total, FreqBins)
	}

	if bands[0] != float64(FreqBins/8) {
		t.Errorf("low band covers %v bins, want %d", bands[0], FreqBins/8)
	}
	if bands[1] != float64(FreqBins/2-FreqBins/8) {
		t.Errorf("mid band covers %v bins, want %d", bands[1], FreqBins/2-FreqBins/8)
	}
	if bands[2] != float64(FreqBins-FreqBins/2) {
		t.Errorf("high band covers %v bins, want %d", bands[2], FreqBins-FreqBins/2)
	}
}

func TestBandSplitPlacesFrequencies(t *testing.T) {
	sa := NewSpectralAnalyzer()

	// 100 Hz lands in the low band (bins below SampleRate/2 / 8 = 2756 Hz... bin split is
	// by index: low covers bins [0, 128) = frequencies below ~2756 Hz)
	lowTone := sineSignal(100, 1.0)
	frames := sa.ComputeFrames(lowTone)
	frame := frames[len(frames)/2]
	if frame.Bands[0] <= frame.Bands[1] || frame.Bands[0] <= frame.Bands[2] {
		t.Errorf("100 Hz tone should dominate the low band, got %v", frame.Bands)
	}

	// 15 kHz lands in the high band (bins >= 512 cover >= ~11 kHz)
	highTone := sineSignal(15000, 1.0)
	frames = sa.ComputeFrames(highTone)
	frame = frames[len(frames)/2]
	if frame.Bands[2] <= frame.Bands[0] || frame.Bands[2] <= frame.Bands[1] {
		t.Errorf("15 kHz tone should dominate the high band, got %v", frame.Bands)
	}
}

func TestHammingWindowShape(t *testing.T) {
	w := NewHammingWindow(FFTSize)
	coeffs := w.Coefficients()

	if len(coeffs) != FFTSize {
		t.Fatalf("expected %d coefficients, got %d", FFTSize, len(coeffs))
	}

	// Endpoints of a symmetric Hamming window are 0.54 - 0.46 = 0.08
	if math.Abs(coeffs[0]-0.08) > 1e-12 {
		t.Errorf("first coefficient = %v, want 0.08", coeffs[0])
	}
	if math.Abs(coeffs[FFTSize-1]-0.08) > 1e-9 {
		t.Errorf("last coefficient = %v, want 0.08", coeffs[FFTSize-1])
	}

	// Symmetry
	for i := 0; i < FFTSize/2; i++ {
		if math.Abs(coeffs[i]-coeffs[FFTSize-1-i]) > 1e-9 {
			t.Fatalf("window not symmetric at %d: %v vs %v", i, coeffs[i], coeffs[FFTSize-1-i])
		}
	}
}

func TestHammingWindowSizeMismatch(t *testing.T) {
	w := NewHammingWindow(FFTSize)
	if err := w.ApplyInPlace(make([]float64, 10)); err == nil {
		t.Error("expected error for mismatched signal length")
	}
}
