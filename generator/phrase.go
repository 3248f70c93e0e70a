package generator

import (
	"math/rand"
	"sort"

	"github.com/xKean/oso-mapper/analysis"
	"github.com/xKean/oso-mapper/common"
	"github.com/xKean/oso-mapper/logging"
)

const (
	// phraseBeatsPerTypical is how many beat intervals make a typical phrase
	phraseBeatsPerTypical = 4.0

	// phraseMinFactor and phraseMaxFactor bound phrase length relative to typical
	phraseMinFactor = 0.75
	phraseMaxFactor = 2.0

	// breakScanStep is the resolution of the low-intensity break search in seconds
	breakScanStep = 0.1

	// breakIntensityFraction cuts the phrase early when the local minimum
	// falls below this fraction of the intensity at the phrase start
	breakIntensityFraction = 0.4

	// phraseGap separates consecutive phrases in seconds
	phraseGap = 0.2

	// phraseTailMargin stops segmentation this close to the end of the song
	phraseTailMargin = 1.0

	// phraseIntensitySamples is how many evenly spaced points sample the
	// phrase's average intensity
	phraseIntensitySamples = 10

	// minBeatsPerPhrase drops phrases with fewer member beats
	minBeatsPerPhrase = 2
)

// PhraseSegmenter partitions the song timeline into musical phrases
// using beat density and local energy minima
type PhraseSegmenter struct {
	rng    *rand.Rand
	logger logging.Logger
}

// NewPhraseSegmenter creates a phrase segmenter. The random source drives
// phrase-length tie-breaking and pattern-tag assignment, so a fixed seed
// reproduces the segmentation.
func NewPhraseSegmenter(rng *rand.Rand) *PhraseSegmenter {
	return &PhraseSegmenter{
		rng: rng,
		logger: logging.WithFields(logging.Fields{
			"component": "phrase_segmenter",
		}),
	}
}

// Segment walks the timeline left to right, cutting each phrase either at
// a detected low-intensity break or at a randomized length between the
// minimum and maximum. Phrases containing fewer than two beats are
// dropped; the scan still advances past them.
func (ps *PhraseSegmenter) Segment(res *analysis.Result) []Phrase {
	scorer := newSongScorer(res)

	bpm := res.EstimatedBPM
	if bpm <= 0 {
		bpm = analysis.DefaultBPM
	}
	beatInterval := 60.0 / bpm

	typical := phraseBeatsPerTypical * beatInterval
	minLen := phraseMinFactor * typical
	maxLen := phraseMaxFactor * typical

	phrases := []Phrase{}
	currentTime := 0.0

	for currentTime < res.Duration-phraseTailMargin {
		end := ps.findPhraseEnd(scorer, currentTime, minLen, maxLen, res.Duration)

		beats := beatsInRange(res.Beats, currentTime, end)
		if len(beats) >= minBeatsPerPhrase {
			phrases = append(phrases, Phrase{
				ID:        len(phrases),
				Start:     currentTime,
				End:       end,
				Beats:     beats,
				Pattern:   PatternType(ps.rng.Intn(numPatternTypes)),
				Intensity: ps.averageIntensity(scorer, currentTime, end),
			})
		}

		currentTime = end + phraseGap
	}

	ps.logger.Debug("Phrase segmentation complete", logging.Fields{
		"phrases": len(phrases),
	})

	return phrases
}

// findPhraseEnd scans [start+minLen, min(start+maxLen, duration)] in fixed
// steps for the lowest-intensity point. If that minimum drops below 40% of
// the intensity at the phrase start the phrase is cut there, otherwise at
// a random point between the minimum and maximum length.
func (ps *PhraseSegmenter) findPhraseEnd(scorer *songScorer, start, minLen, maxLen, duration float64) float64 {
	scanStart := start + minLen
	scanEnd := min(start+maxLen, duration)

	if scanStart >= scanEnd {
		return scanEnd
	}

	startIntensity := scorer.Intensity(start)

	lowestIntensity := scorer.Intensity(scanStart)
	lowestTime := scanStart
	for t := scanStart + breakScanStep; t <= scanEnd; t += breakScanStep {
		intensity := scorer.Intensity(t)
		if intensity < lowestIntensity {
			lowestIntensity = intensity
			lowestTime = t
		}
	}

	if lowestIntensity < breakIntensityFraction*startIntensity {
		return lowestTime
	}

	return min(scanStart+ps.rng.Float64()*(scanEnd-scanStart), duration)
}

// averageIntensity samples the intensity at evenly spaced points across
// the phrase span
func (ps *PhraseSegmenter) averageIntensity(scorer *songScorer, start, end float64) float64 {
	samples := make([]float64, phraseIntensitySamples)
	step := (end - start) / float64(phraseIntensitySamples)
	for i := range samples {
		samples[i] = scorer.Intensity(start + float64(i)*step)
	}
	return common.Mean(samples)
}

// beatsInRange returns the beats falling within [start, end].
// Beats are sorted, so binary search for the bounds.
func beatsInRange(beats []float64, start, end float64) []float64 {
	lo := sort.SearchFloat64s(beats, start)
	hi := sort.SearchFloat64s(beats, end)
	for hi < len(beats) && beats[hi] == end {
		hi++
	}

	collected := make([]float64, hi-lo)
	copy(collected, beats[lo:hi])
	return collected
}
