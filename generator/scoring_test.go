package generator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/xKean/oso-mapper/analysis"
)

// syntheticResult builds an analysis result from an energy function,
// splitting each frame's energy across the bands with fixed shares
func syntheticResult(duration float64, beats []float64, energyAt func(t float64) float64) *analysis.Result {
	numFrames := int(duration / analysis.FrameDuration)

	energy := make([]float64, numFrames)
	bands := make([][3]float64, numFrames)
	for i := range energy {
		e := energyAt(float64(i) * analysis.FrameDuration)
		energy[i] = e
		bands[i] = [3]float64{e * 0.3, e * 0.4, e * 0.3}
	}

	return &analysis.Result{
		Duration:       duration,
		Beats:          beats,
		EstimatedBPM:   analysis.EstimateBPM(beats),
		SpectralEnergy: energy,
		FrequencyBands: bands,
	}
}

// pulsedEnergy returns an energy function with a quiet floor and loud
// bursts around each beat
func pulsedEnergy(beats []float64, floor, peak float64) func(t float64) float64 {
	return func(t float64) float64 {
		for _, b := range beats {
			if math.Abs(t-b) < 0.05 {
				return peak
			}
		}
		return floor
	}
}

// gridBeats returns beats every interval seconds across the duration
func gridBeats(duration, interval float64) []float64 {
	var beats []float64
	for t := 0.5; t < duration-0.5; t += interval {
		beats = append(beats, t)
	}
	return beats
}

func TestFitnessAlwaysInRange(t *testing.T) {
	beats := gridBeats(30, 0.5)
	results := []*analysis.Result{
		syntheticResult(30, beats, pulsedEnergy(beats, 0.1, 100)),
		syntheticResult(30, beats, func(float64) float64 { return 0 }),
		syntheticResult(30, nil, func(t float64) float64 { return 50 + 50*math.Sin(t) }),
		{}, // no spectral data at all
	}

	rng := rand.New(rand.NewSource(1))
	for ri, res := range results {
		scorer := newSongScorer(res)
		for i := 0; i < 500; i++ {
			at := rng.Float64()*40 - 5 // deliberately out of range too
			fitness := scorer.Fitness(at)
			if fitness < 0 || fitness > 2 {
				t.Fatalf("result %d: fitness at %v = %v, out of [0, 2]", ri, at, fitness)
			}
		}
	}
}

func TestIntensityAlwaysInRange(t *testing.T) {
	beats := gridBeats(30, 0.5)
	res := syntheticResult(30, beats, pulsedEnergy(beats, 0.001, 1000))
	scorer := newSongScorer(res)

	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		at := rng.Float64()*40 - 5
		intensity := scorer.Intensity(at)
		if intensity < 0.4 || intensity > 2.0 {
			t.Fatalf("intensity at %v = %v, out of [0.4, 2.0]", at, intensity)
		}
	}
}

func TestIntensityWithoutSpectralData(t *testing.T) {
	scorer := newSongScorer(&analysis.Result{Duration: 10})
	if got := scorer.Intensity(5); got != 1.0 {
		t.Errorf("intensity with no spectral data = %v, want 1.0", got)
	}
}

func TestBeatProximityScoreTiers(t *testing.T) {
	beats := []float64{10.0}

	tests := []struct {
		at   float64
		want float64
	}{
		{10.0, 1.0},
		{10.04, 1.0},
		{10.08, 0.7},
		{9.92, 0.7},
		{10.15, 0.3},
		{10.3, 0.0},
		{0.0, 0.0},
	}

	for _, tt := range tests {
		if got := beatProximityScore(beats, tt.at); got != tt.want {
			t.Errorf("beatProximityScore at %v = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestClosestBeatDistance(t *testing.T) {
	beats := []float64{1, 2, 5}

	if got := closestBeatDistance(beats, 1.9); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("distance = %v, want 0.1", got)
	}
	if got := closestBeatDistance(beats, 3.4); math.Abs(got-1.4) > 1e-12 {
		t.Errorf("distance = %v, want 1.4", got)
	}
	if got := closestBeatDistance(beats, 0); got != 1 {
		t.Errorf("distance before first beat = %v, want 1", got)
	}
	if got := closestBeatDistance(nil, 3); !math.IsInf(got, 1) {
		t.Errorf("distance with no beats = %v, want +Inf", got)
	}
}

func TestSilencePenaltySuppressesFitness(t *testing.T) {
	// A beat inside a narrow near-silent valley; the ~1 s local window
	// still sees the loud frames around it
	beats := []float64{5.0}
	res := syntheticResult(10, beats, func(t float64) float64 {
		if t > 4.9 && t < 5.1 {
			return 0.5 // well below 10% of the local max
		}
		return 100
	})
	scorer := newSongScorer(res)

	loudRes := syntheticResult(10, beats, func(float64) float64 { return 100 })
	loudScorer := newSongScorer(loudRes)

	if quiet, loud := scorer.Fitness(5.0), loudScorer.Fitness(5.0); quiet >= loud {
		t.Errorf("silence penalty should shrink fitness: quiet %v, loud %v", quiet, loud)
	}
}

func TestOnsetBonus(t *testing.T) {
	// Step from quiet to loud at t = 5
	res := syntheticResult(10, nil, func(t float64) float64 {
		if t >= 5 {
			return 100
		}
		return 1
	})
	scorer := newSongScorer(res)

	if !scorer.isOnset(5.0 + 2*analysis.FrameDuration) {
		t.Error("expected onset right after the energy step")
	}
	if scorer.isOnset(8.0) {
		t.Error("steady energy should not read as an onset")
	}
}
