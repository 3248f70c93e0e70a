package generator

import (
	"math"
	"sort"

	"github.com/xKean/oso-mapper/analysis"
	"github.com/xKean/oso-mapper/common"
)

// Fitness and intensity scoring constants. The weights are tuned
// empirically; see DESIGN.md before changing them.
const (
	fitnessMax = 2.0

	beatProximityTight  = 0.05
	beatProximityNear   = 0.1
	beatProximityLoose  = 0.2
	beatScoreTight      = 1.0
	beatScoreNear       = 0.7
	beatScoreLoose      = 0.3
	onsetBonus          = 0.5
	onsetMeanFraction   = 0.3
	bandActivityBonus   = 0.3
	bandActivityMinimum = 0.1
	bandBalanceBonus    = 0.2
	bandBalanceRatio    = 0.3
	silenceFraction     = 0.1
	silencePenalty      = 0.2
	silenceWindow       = 1.0 // seconds

	intensityMin         = 0.4
	intensityMax         = 2.0
	intensityLocalWindow = 4.0 // seconds
	intensityLocalWeight = 0.7
)

// songScorer evaluates musical fitness and song intensity at arbitrary
// times over one analysis result. Global statistics are computed once
// at construction.
type songScorer struct {
	res        *analysis.Result
	meanEnergy float64
}

func newSongScorer(res *analysis.Result) *songScorer {
	return &songScorer{
		res:        res,
		meanEnergy: common.Mean(res.SpectralEnergy),
	}
}

// Intensity rates how loud the song is at t relative to its surroundings:
// the ratio of the current frame energy to a ~4 s local average, blended
// 70/30 with the ratio to the global average. Clamped to [0.4, 2.0];
// returns 1.0 when there is no spectral data.
func (s *songScorer) Intensity(t float64) float64 {
	if len(s.res.SpectralEnergy) == 0 {
		return 1.0
	}

	current := s.res.EnergyAt(t)

	lo, hi := s.frameWindow(t, intensityLocalWindow)
	localAvg := common.Mean(s.res.SpectralEnergy[lo:hi])

	localRatio := common.Ratio(current, localAvg)
	globalRatio := common.Ratio(current, s.meanEnergy)

	blended := intensityLocalWeight*localRatio + (1-intensityLocalWeight)*globalRatio

	return common.Clamp(blended, intensityMin, intensityMax)
}

// Fitness scores how appropriate t is for placing a note, in [0, 2]:
// beat proximity plus an onset bonus plus band-activity bonuses, scaled
// down heavily inside near-silence.
func (s *songScorer) Fitness(t float64) float64 {
	fitness := beatProximityScore(s.res.Beats, t)

	if s.isOnset(t) {
		fitness += onsetBonus
	}

	bands := s.res.BandsAt(t)
	totalBand := bands[0] + bands[1] + bands[2]
	if totalBand > bandActivityMinimum {
		fitness += bandActivityBonus

		maxBand := math.Max(bands[0], math.Max(bands[1], bands[2]))
		minBand := math.Min(bands[0], math.Min(bands[1], bands[2]))
		if maxBand > 0 && minBand/maxBand > bandBalanceRatio {
			fitness += bandBalanceBonus
		}
	}

	if s.isNearSilence(t) {
		fitness *= silencePenalty
	}

	return common.Clamp(fitness, 0.0, fitnessMax)
}

// beatProximityScore awards up to 1.0 by distance to the closest beat
func beatProximityScore(beats []float64, t float64) float64 {
	closest := closestBeatDistance(beats, t)

	switch {
	case closest <= beatProximityTight:
		return beatScoreTight
	case closest <= beatProximityNear:
		return beatScoreNear
	case closest <= beatProximityLoose:
		return beatScoreLoose
	default:
		return 0.0
	}
}

// closestBeatDistance returns the distance from t to the nearest beat,
// or +Inf when there are no beats. Beats are sorted, so binary search.
func closestBeatDistance(beats []float64, t float64) float64 {
	if len(beats) == 0 {
		return math.Inf(1)
	}

	i := sort.SearchFloat64s(beats, t)

	closest := math.Inf(1)
	if i < len(beats) {
		closest = beats[i] - t
	}
	if i > 0 && t-beats[i-1] < closest {
		closest = t - beats[i-1]
	}

	return closest
}

// isOnset reports whether the frame energy at t exceeds the two-frame
// trailing average by more than 30% of the global mean energy
func (s *songScorer) isOnset(t float64) bool {
	idx := s.res.FrameIndexAt(t)
	if idx < 2 {
		return false
	}

	energy := s.res.SpectralEnergy
	trailing := (energy[idx-1] + energy[idx-2]) / 2.0

	return energy[idx]-trailing > onsetMeanFraction*s.meanEnergy
}

// isNearSilence reports whether the energy at t is below 10% of the
// maximum energy within a ~1 s window around t
func (s *songScorer) isNearSilence(t float64) bool {
	if len(s.res.SpectralEnergy) == 0 {
		return false
	}

	lo, hi := s.frameWindow(t, silenceWindow)
	localMax := common.Max(s.res.SpectralEnergy[lo:hi])

	return s.res.EnergyAt(t) < silenceFraction*localMax
}

// frameWindow returns frame index bounds [lo, hi) covering the given
// time span centered on t, clamped to the valid frame range
func (s *songScorer) frameWindow(t, span float64) (lo, hi int) {
	center := s.res.FrameIndexAt(t)
	half := int(span / 2.0 / analysis.FrameDuration)

	lo = center - half
	if lo < 0 {
		lo = 0
	}
	hi = center + half + 1
	if hi > len(s.res.SpectralEnergy) {
		hi = len(s.res.SpectralEnergy)
	}

	return lo, hi
}
