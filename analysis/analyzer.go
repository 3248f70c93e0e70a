package analysis

import (
	"github.com/xKean/oso-mapper/logging"
)

// Analyzer runs the full signal-analysis stage: spectral frames, beat
// detection and tempo estimation over a complete mono PCM buffer
type Analyzer struct {
	spectral *SpectralAnalyzer
	beats    *BeatDetector
	logger   logging.Logger
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		spectral: NewSpectralAnalyzer(),
		beats:    NewBeatDetector(),
		logger: logging.WithFields(logging.Fields{
			"component": "analyzer",
		}),
	}
}

// Analyze produces the analysis summary for a mono 44.1 kHz buffer.
// It never fails: degenerate input degrades to an empty frame/beat
// sequence and the default BPM.
func (a *Analyzer) Analyze(pcm []float64) *Result {
	duration := float64(len(pcm)) / float64(SampleRate)

	frames := a.spectral.ComputeFrames(pcm)

	spectralEnergy := make([]float64, len(frames))
	frequencyBands := make([][3]float64, len(frames))
	for i, frame := range frames {
		spectralEnergy[i] = frame.Energy
		frequencyBands[i] = frame.Bands
	}

	beats, bpm := a.beats.Detect(pcm)

	a.logger.Info("Audio analysis complete", logging.Fields{
		"duration": duration,
		"frames":   len(frames),
		"beats":    len(beats),
		"bpm":      bpm,
	})

	return &Result{
		Duration:       duration,
		Beats:          beats,
		EstimatedBPM:   bpm,
		SpectralEnergy: spectralEnergy,
		FrequencyBands: frequencyBands,
	}
}
