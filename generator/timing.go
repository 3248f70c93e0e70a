package generator

import (
	"math"
	"sort"

	"github.com/xKean/oso-mapper/analysis"
	"github.com/xKean/oso-mapper/common"
	"github.com/xKean/oso-mapper/logging"
)

const (
	// noteFitnessThreshold keeps a phrase beat as a note
	noteFitnessThreshold = 0.4

	// Subdivision gates: phrases must be this intense and the profile this
	// dense before extra notes appear between beats
	subdivisionIntensity = 0.8
	subdivisionMinNPM    = 150

	burstFitnessThreshold      = 0.3
	syncopatedOffsetFraction   = 0.375
	syncopatedFitnessThreshold = 0.5
	steadyFitnessThreshold     = 0.4

	// High-intensity scan gates: the whole phrase is re-scanned for
	// peaks only for very dense profiles in very loud phrases
	peakScanIntensity     = 1.2
	peakScanMinNPM        = 250
	peakScanStep          = 0.05
	peakIntensityMinimum  = 1.6
	peakFitnessThreshold  = 0.6

	// steadyVariabilityFraction separates steady from syncopated rhythm
	steadyVariabilityFraction = 0.1

	burstRhythmIntensity   = 1.3
	burstRhythmMaxInterval = 0.4
	slowRhythmMinInterval  = 1.2

	// phrasePositionTolerance matches a note back to a phrase beat
	phrasePositionTolerance = 0.05
)

// NoteTime is a chosen note timestamp attributed to its phrase
type NoteTime struct {
	Time           float64
	PhraseID       int
	PhrasePosition int
}

// NoteTimingGenerator selects which beats become notes, inserts
// rhythm-specific subdivisions, and enforces the global minimum spacing
type NoteTimingGenerator struct {
	profile DifficultyProfile
	logger  logging.Logger
}

// NewNoteTimingGenerator creates a timing generator for one difficulty profile
func NewNoteTimingGenerator(profile DifficultyProfile) *NoteTimingGenerator {
	return &NoteTimingGenerator{
		profile: profile,
		logger: logging.WithFields(logging.Fields{
			"component": "note_timing_generator",
		}),
	}
}

// Generate produces the final minimum-spaced, time-ordered note timestamp
// sequence across all phrases
func (g *NoteTimingGenerator) Generate(res *analysis.Result, phrases []Phrase) []NoteTime {
	scorer := newSongScorer(res)

	var candidates []float64
	for _, phrase := range phrases {
		candidates = append(candidates, g.phraseCandidates(scorer, phrase)...)
	}

	sort.Float64s(candidates)
	kept := enforceMinSpacing(candidates, g.profile.MinTimeBetweenNotes)

	notes := attributeToPhrases(kept, phrases)

	g.logger.Debug("Note timing complete", logging.Fields{
		"candidates": len(candidates),
		"notes":      len(notes),
	})

	return notes
}

// phraseCandidates collects the candidate timestamps for one phrase:
// fitness-gated beats, rhythm-specific subdivisions, and for very intense
// phrases a fine-grained peak scan
func (g *NoteTimingGenerator) phraseCandidates(scorer *songScorer, phrase Phrase) []float64 {
	rhythm := classifyRhythm(phrase)

	var candidates []float64
	for i, beat := range phrase.Beats {
		if scorer.Fitness(beat) >= noteFitnessThreshold {
			candidates = append(candidates, beat)
		}

		if phrase.Intensity > subdivisionIntensity &&
			g.profile.NotesPerMinute >= subdivisionMinNPM &&
			i+1 < len(phrase.Beats) {
			interval := phrase.Beats[i+1] - beat
			candidates = append(candidates, g.subdivide(scorer, rhythm, beat, interval)...)
		}
	}

	if phrase.Intensity > peakScanIntensity && g.profile.NotesPerMinute >= peakScanMinNPM {
		candidates = append(candidates, g.scanPeaks(scorer, phrase, candidates)...)
	}

	return candidates
}

// subdivide inserts extra points between a beat and its successor
// according to the phrase's rhythm type
func (g *NoteTimingGenerator) subdivide(scorer *songScorer, rhythm RhythmType, beat, interval float64) []float64 {
	var points []float64

	switch rhythm {
	case RhythmBurst:
		// Quarter-interval run that stops at the first weak candidate
		step := interval / 4.0
		for t := beat + step; t < beat+interval; t += step {
			if scorer.Fitness(t) <= burstFitnessThreshold {
				break
			}
			points = append(points, t)
		}

	case RhythmSyncopated:
		t := beat + syncopatedOffsetFraction*interval
		if scorer.Fitness(t) > syncopatedFitnessThreshold {
			points = append(points, t)
		}

	case RhythmSteady:
		if interval > 2.0*g.profile.MinTimeBetweenNotes {
			mid := beat + interval/2.0
			if scorer.Fitness(mid) > steadyFitnessThreshold {
				points = append(points, mid)
			}
		}

	case RhythmSlow:
		// Slow phrases get no subdivisions
	}

	return points
}

// scanPeaks walks the whole phrase at a fine step and picks up
// high-intensity, high-fitness points not already covered by a candidate
func (g *NoteTimingGenerator) scanPeaks(scorer *songScorer, phrase Phrase, existing []float64) []float64 {
	halfSpacing := g.profile.MinTimeBetweenNotes / 2.0

	var points []float64
	for t := phrase.Start; t <= phrase.End; t += peakScanStep {
		if scorer.Intensity(t) <= peakIntensityMinimum || scorer.Fitness(t) <= peakFitnessThreshold {
			continue
		}

		if withinOf(existing, t, halfSpacing) || withinOf(points, t, halfSpacing) {
			continue
		}

		points = append(points, t)
	}

	return points
}

// withinOf reports whether any value in values lies within tol of t
func withinOf(values []float64, t, tol float64) bool {
	for _, v := range values {
		if math.Abs(v-t) < tol {
			return true
		}
	}
	return false
}

// classifyRhythm derives the phrase's rhythm type from the variability of
// its beat-to-beat intervals relative to their mean
func classifyRhythm(phrase Phrase) RhythmType {
	if len(phrase.Beats) < 2 {
		return RhythmSlow
	}

	intervals := make([]float64, len(phrase.Beats)-1)
	for i := range intervals {
		intervals[i] = phrase.Beats[i+1] - phrase.Beats[i]
	}

	mean := common.Mean(intervals)
	variability := common.StandardDeviation(intervals)

	switch {
	case mean > 0 && variability < steadyVariabilityFraction*mean:
		return RhythmSteady
	case phrase.Intensity > burstRhythmIntensity && mean < burstRhythmMaxInterval:
		return RhythmBurst
	case mean > slowRhythmMinInterval:
		return RhythmSlow
	default:
		return RhythmSyncopated
	}
}

// enforceMinSpacing greedily keeps each timestamp only when it is at
// least minSpacing after the previously kept one. Input must be sorted.
func enforceMinSpacing(sorted []float64, minSpacing float64) []float64 {
	if len(sorted) == 0 {
		return []float64{}
	}

	kept := []float64{sorted[0]}
	last := sorted[0]
	for _, t := range sorted[1:] {
		if t-last >= minSpacing {
			kept = append(kept, t)
			last = t
		}
	}

	return kept
}

// attributeToPhrases assigns each kept timestamp to the first phrase whose
// span contains it. Both sequences are sorted and phrases don't overlap,
// so a single monotonic cursor suffices. The phrase position is the index
// of the closest phrase beat within tolerance, or 0 when none matches.
func attributeToPhrases(times []float64, phrases []Phrase) []NoteTime {
	notes := make([]NoteTime, 0, len(times))

	cursor := 0
	for _, t := range times {
		for cursor < len(phrases) && phrases[cursor].End < t {
			cursor++
		}

		phraseID := 0
		position := 0
		if cursor < len(phrases) && t >= phrases[cursor].Start {
			phraseID = phrases[cursor].ID
			position = closestBeatIndex(phrases[cursor].Beats, t)
		}

		notes = append(notes, NoteTime{
			Time:           t,
			PhraseID:       phraseID,
			PhrasePosition: position,
		})
	}

	return notes
}

// closestBeatIndex finds the index of the phrase beat closest to t within
// the matching tolerance, or 0 when no beat is close enough
func closestBeatIndex(beats []float64, t float64) int {
	bestIdx := 0
	bestDistance := math.Inf(1)
	for i, beat := range beats {
		if d := math.Abs(beat - t); d < bestDistance {
			bestDistance = d
			bestIdx = i
		}
	}

	if bestDistance <= phrasePositionTolerance {
		return bestIdx
	}
	return 0
}
