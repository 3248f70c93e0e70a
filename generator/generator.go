package generator

import (
	"errors"
	"math/rand"

	"github.com/xKean/oso-mapper/analysis"
	"github.com/xKean/oso-mapper/logging"
)

// ErrAudioTooShort is returned when the input buffer is empty or shorter
// than one analysis window. It is the only caller-visible failure of the
// pipeline; every other degenerate input degrades to an empty map.
var ErrAudioTooShort = errors.New("input audio too short or empty")

// MapGenerator runs the full procedural-generation pipeline over an
// analysis result: phrase segmentation, note timing, note placement
type MapGenerator struct {
	profile   DifficultyProfile
	rng       *rand.Rand
	positions *PositionGenerator
	logger    logging.Logger
}

// NewMapGenerator creates a map generator. All randomness flows from the
// given source, so a fixed seed reproduces the entire map.
func NewMapGenerator(profile DifficultyProfile, rng *rand.Rand) *MapGenerator {
	return &MapGenerator{
		profile:   profile,
		rng:       rng,
		positions: NewPositionGenerator(profile, rng),
		logger: logging.WithFields(logging.Fields{
			"component": "map_generator",
		}),
	}
}

// Generate produces the time-ascending note-event sequence for one song
func (g *MapGenerator) Generate(res *analysis.Result) []NoteEvent {
	phrases := NewPhraseSegmenter(g.rng).Segment(res)
	times := NewNoteTimingGenerator(g.profile).Generate(res, phrases)
	notes := g.positions.Place(res, times, phrases)

	g.logger.Info("Map generation complete", logging.Fields{
		"phrases": len(phrases),
		"notes":   len(notes),
	})

	return notes
}

// RepulsionStats exposes spatial-spacing convergence counts from the last
// Generate call
func (g *MapGenerator) RepulsionStats() RepulsionStats {
	return g.positions.Stats()
}

// GenerateMap is the one-call entry point: analyze a mono 44.1 kHz PCM
// buffer and generate its note events. Returns ErrAudioTooShort when the
// buffer is shorter than one FFT window.
func GenerateMap(pcm []float64, profile DifficultyProfile, rng *rand.Rand) ([]NoteEvent, *analysis.Result, error) {
	if len(pcm) < analysis.FFTSize {
		return nil, nil, ErrAudioTooShort
	}

	res := analysis.NewAnalyzer().Analyze(pcm)
	notes := NewMapGenerator(profile, rng).Generate(res)

	return notes, res, nil
}
