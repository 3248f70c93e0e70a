package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/xKean/oso-mapper/common"
	"github.com/xKean/oso-mapper/logging"
)

const (
	// DefaultBPM is reported when fewer than two beats are found
	DefaultBPM = 120.0

	// MinBeatInterval is the refractory gap between accepted beats in seconds
	MinBeatInterval = 0.1

	// beatWindowSeconds is the sliding analysis window for spectral flux
	beatWindowSeconds = 0.1

	// fluxHistorySize is how many recent flux values feed the adaptive threshold
	fluxHistorySize = 10

	// fluxThresholdSigma scales the standard deviation in the threshold
	fluxThresholdSigma = 1.5
)

// BeatDetector finds beat timestamps in a PCM buffer using a simplified
// spectral-flux measure and an adaptive mean + sigma threshold
type BeatDetector struct {
	logger logging.Logger
}

// NewBeatDetector creates a new beat detector
func NewBeatDetector() *BeatDetector {
	return &BeatDetector{
		logger: logging.WithFields(logging.Fields{
			"component": "beat_detector",
		}),
	}
}

// Detect slides a 100 ms window across the buffer with a quarter-window hop
// and accepts a beat when the window's flux exceeds the adaptive threshold
// over the last 10 flux values, at least MinBeatInterval after the previous
// accepted beat. Beat timestamps are the centers of triggering windows.
//
// Detect never fails: silent or too-short input yields no beats and the
// default BPM.
func (bd *BeatDetector) Detect(signal []float64) (beats []float64, bpm float64) {
	windowSize := int(beatWindowSeconds * SampleRate)
	hopSize := windowSize / 4

	beats = []float64{}

	if len(signal) < windowSize {
		return beats, DefaultBPM
	}

	history := make([]float64, 0, fluxHistorySize)
	lastBeat := -MinBeatInterval

	for start := 0; start+windowSize <= len(signal); start += hopSize {
		flux := windowFlux(signal[start : start+windowSize])

		if len(history) == fluxHistorySize {
			copy(history, history[1:])
			history[fluxHistorySize-1] = flux
		} else {
			history = append(history, flux)
		}

		threshold := common.Mean(history) + fluxThresholdSigma*common.StandardDeviation(history)

		t := float64(start+windowSize/2) / SampleRate
		if flux > threshold && t-lastBeat >= MinBeatInterval {
			beats = append(beats, t)
			lastBeat = t
		}
	}

	bpm = EstimateBPM(beats)

	bd.logger.Debug("Beat detection complete", logging.Fields{
		"beats": len(beats),
		"bpm":   bpm,
	})

	return beats, bpm
}

// EstimateBPM derives tempo from the mean gap between consecutive beats,
// falling back to DefaultBPM when fewer than two beats are available
func EstimateBPM(beats []float64) float64 {
	if len(beats) < 2 {
		return DefaultBPM
	}

	intervals := make([]float64, len(beats)-1)
	for i := range intervals {
		intervals[i] = beats[i+1] - beats[i]
	}

	meanInterval := common.Mean(intervals)
	if meanInterval <= 0 {
		return DefaultBPM
	}

	return 60.0 / meanInterval
}

// windowFlux is a simplified spectral flux: the absolute spectral energy of
// the window (sum of magnitudes over the non-negative frequencies) rather
// than a frame-to-frame difference
func windowFlux(window []float64) float64 {
	spectrum := fft.FFTReal(window)

	flux := 0.0
	for i := 0; i < len(spectrum)/2; i++ {
		flux += cmplx.Abs(spectrum[i])
	}

	return flux
}
