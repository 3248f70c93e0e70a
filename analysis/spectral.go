package analysis

import (
	"math/cmplx"
	"runtime"
	"sync"

	"github.com/mjibson/go-dsp/fft"

	"github.com/xKean/oso-mapper/common"
	"github.com/xKean/oso-mapper/logging"
)

// Fixed analysis constants of the core. These are not user-exposed
// configuration; downstream timing math depends on them.
const (
	// SampleRate is the expected input sample rate in Hz
	SampleRate = 44100

	// FFTSize is the transform size in samples
	FFTSize = 2048

	// HopSize is the spacing between consecutive frames in samples
	HopSize = 512

	// FreqBins is the number of retained magnitude bins per frame
	// (non-negative frequencies only)
	FreqBins = FFTSize / 2
)

// SpectralFrame is one hop's worth of frequency-domain information:
// the retained magnitude spectrum and a low/mid/high band summary
type SpectralFrame struct {
	Index     int        `json:"index"`
	Magnitude []float64  `json:"magnitude"`
	Bands     [3]float64 `json:"bands"`
	Energy    float64    `json:"energy"`
}

// SpectralAnalyzer turns a PCM sample buffer into a sequence of
// per-frame magnitude spectra and 3-band energy summaries
type SpectralAnalyzer struct {
	window *HammingWindow
	logger logging.Logger
}

// NewSpectralAnalyzer creates a new spectral analyzer
func NewSpectralAnalyzer() *SpectralAnalyzer {
	return &SpectralAnalyzer{
		window: NewHammingWindow(FFTSize),
		logger: logging.WithFields(logging.Fields{
			"component": "spectral_analyzer",
		}),
	}
}

// ComputeFrames computes one SpectralFrame per hop across the whole buffer.
// The final windows are zero-padded when the remaining signal is shorter
// than the transform size. A buffer shorter than one hop yields no frames.
//
// Frames are independent, so the transforms run on a worker pool; each
// worker writes into its frame's index slot, which keeps the output in
// time order regardless of scheduling.
func (sa *SpectralAnalyzer) ComputeFrames(signal []float64) []SpectralFrame {
	if len(signal) < HopSize {
		return []SpectralFrame{}
	}

	numFrames := len(signal) / HopSize
	frames := make([]SpectralFrame, numFrames)

	numWorkers := optimalWorkerCount(numFrames)

	jobs := make(chan int, numFrames)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Reuse the frame buffer for this worker
			frameBuffer := make([]float64, FFTSize)

			for frameIdx := range jobs {
				startIdx := frameIdx * HopSize
				endIdx := min(startIdx+FFTSize, len(signal))

				n := copy(frameBuffer, signal[startIdx:endIdx])
				for i := n; i < FFTSize; i++ {
					frameBuffer[i] = 0
				}

				if err := sa.window.ApplyInPlace(frameBuffer); err != nil {
					continue
				}

				spectrum := fft.FFTReal(frameBuffer)

				magnitude := make([]float64, FreqBins)
				for i := range magnitude {
					magnitude[i] = cmplx.Abs(spectrum[i])
				}

				frames[frameIdx] = SpectralFrame{
					Index:     frameIdx,
					Magnitude: magnitude,
					Bands:     splitBands(magnitude),
					Energy:    common.Sum(magnitude),
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for frameIdx := 0; frameIdx < numFrames; frameIdx++ {
			jobs <- frameIdx
		}
	}()

	wg.Wait()

	sa.logger.Debug("Computed spectral frames", logging.Fields{
		"frames":  numFrames,
		"samples": len(signal),
	})

	return frames
}

// splitBands sums the magnitude spectrum into low/mid/high bands.
// Low = first 1/8 of bins, mid = next 3/8, high = remaining 1/2.
func splitBands(magnitude []float64) [3]float64 {
	lowEnd := len(magnitude) / 8
	midEnd := len(magnitude) / 2

	var bands [3]float64
	bands[0] = common.Sum(magnitude[:lowEnd])
	bands[1] = common.Sum(magnitude[lowEnd:midEnd])
	bands[2] = common.Sum(magnitude[midEnd:])

	return bands
}

// optimalWorkerCount sizes the worker pool to the workload
func optimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	if numFrames < 1000 {
		return min(numCPU, 8)
	}

	return numCPU
}
