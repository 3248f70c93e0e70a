package generator

import (
	"math"
	"math/rand"

	"github.com/xKean/oso-mapper/analysis"
	"github.com/xKean/oso-mapper/common"
	"github.com/xKean/oso-mapper/logging"
)

// Position-generation constants. The probabilities and magnitudes are
// tuned empirically for playability; see DESIGN.md before changing them.
const (
	// melodyMinBandEnergy gates melody-aware placement; below it the
	// position falls back to fully random
	melodyMinBandEnergy = 0.01

	midHeightWeight    = 0.5
	trebleHeightWeight = 1.0

	// Phrase-transition jump
	jumpDistanceMin = 500.0
	jumpDistanceMax = 1300.0
	hardCutChance   = 0.3

	// Movement-pattern application odds
	patternChanceOnBeat  = 0.6
	patternChanceOffBeat = 0.25
	beatMatchTolerance   = 0.05

	// blendBaseWeight is the melody-aware base's share when blending with
	// a pattern position (the pattern contributes the rest)
	blendBaseWeight = 0.25

	// Pattern distance scaling
	patternIntensityMin = 0.3
	patternIntensityMax = 2.0

	// Instrument classification
	drumAttackRatio = 1.8
	drumDecayRatio  = 0.6
	bassShareMin    = 0.3

	bassDistanceMultiplier = 1.3
	drumDistanceMultiplier = 0.7

	// Minimum-distance repulsion iteration cap
	repulsionMaxIterations = 25
)

// RepulsionStats summarizes how often the minimum-distance repulsion
// converged within its iteration cap
type RepulsionStats struct {
	Converged int
	Capped    int
}

// PositionGenerator assigns a spatial position to every note timestamp,
// in timestamp order, producing in-bounds, minimum-spaced coordinates
type PositionGenerator struct {
	profile  DifficultyProfile
	rng      *rand.Rand
	patterns *patternEngine
	logger   logging.Logger
	stats    RepulsionStats
}

// NewPositionGenerator creates a position generator. The random source
// drives jump directions, pattern odds, and distance tie-breaking, so a
// fixed seed reproduces all placements.
func NewPositionGenerator(profile DifficultyProfile, rng *rand.Rand) *PositionGenerator {
	return &PositionGenerator{
		profile:  profile,
		rng:      rng,
		patterns: newPatternEngine(rng),
		logger: logging.WithFields(logging.Fields{
			"component": "position_generator",
		}),
	}
}

// Stats returns repulsion convergence counts for the last Place call
func (pg *PositionGenerator) Stats() RepulsionStats {
	return pg.stats
}

// Place assigns positions to the time-ordered note sequence
func (pg *PositionGenerator) Place(res *analysis.Result, notes []NoteTime, phrases []Phrase) []NoteEvent {
	scorer := newSongScorer(res)
	pg.stats = RepulsionStats{}

	events := make([]NoteEvent, 0, len(notes))
	placed := make([][2]float64, 0, len(notes))

	currentPhrase := -1
	var prevY, prevZ float64

	for i, note := range notes {
		y, z := pg.basePlacement(res, note.Time)

		if i == 0 {
			currentPhrase = note.PhraseID
		} else if note.PhraseID != currentPhrase {
			currentPhrase = note.PhraseID
			y, z = pg.phraseJump(prevY, prevZ)
		}

		if i > 0 && pg.shouldApplyPattern(res, note.Time) {
			y, z = pg.applyPattern(scorer, res, note, phrases, y, z, prevY, prevZ)
		}

		y, z = pg.enforceMinDistance(y, z, placed)

		events = append(events, NoteEvent{
			Time:           note.Time,
			X:              0,
			Y:              y,
			Z:              z,
			PhraseID:       note.PhraseID,
			PhrasePosition: note.PhrasePosition,
		})
		placed = append(placed, [2]float64{y, z})
		prevY, prevZ = y, z
	}

	pg.logger.Debug("Position generation complete", logging.Fields{
		"notes":            len(events),
		"repulsion_capped": pg.stats.Capped,
	})

	return events
}

// basePlacement is melody-aware: band balance drives height (bass at the
// bottom, treble at the top) while the horizontal coordinate stays random.
// Near-silent frames fall back to a fully random in-bounds position.
func (pg *PositionGenerator) basePlacement(res *analysis.Result, t float64) (y, z float64) {
	bands := res.BandsAt(t)
	total := bands[0] + bands[1] + bands[2]

	if total <= melodyMinBandEnergy {
		return pg.rng.Float64() * ScreenWidth, pg.rng.Float64() * ScreenHeight
	}

	midWeight := bands[1] / total
	trebleWeight := bands[2] / total
	height := midWeight*midHeightWeight + trebleWeight*trebleHeightWeight

	y = pg.rng.Float64() * ScreenWidth
	z = common.Clamp(height, 0, 1) * ScreenHeight

	return y, z
}

// phraseJump moves a random distance in a random direction away from the
// previous position, or hard-cuts to one of the outer thirds of the screen
func (pg *PositionGenerator) phraseJump(prevY, prevZ float64) (y, z float64) {
	if pg.rng.Float64() < hardCutChance {
		return pg.hardCut()
	}

	angle := pg.rng.Float64() * 2 * math.Pi
	distance := jumpDistanceMin + pg.rng.Float64()*(jumpDistanceMax-jumpDistanceMin)

	y = common.Clamp(prevY+distance*math.Cos(angle), 0, ScreenWidth)
	z = common.Clamp(prevZ+distance*math.Sin(angle), 0, ScreenHeight)

	return y, z
}

// hardCut teleports to a random point inside one of the four outer thirds
func (pg *PositionGenerator) hardCut() (y, z float64) {
	y = pg.rng.Float64() * ScreenWidth
	z = pg.rng.Float64() * ScreenHeight

	if pg.rng.Intn(2) == 0 {
		// Outer horizontal third
		y = pg.rng.Float64() * ScreenWidth / 3.0
		if pg.rng.Intn(2) == 0 {
			y += 2.0 * ScreenWidth / 3.0
		}
	} else {
		// Outer vertical third
		z = pg.rng.Float64() * ScreenHeight / 3.0
		if pg.rng.Intn(2) == 0 {
			z += 2.0 * ScreenHeight / 3.0
		}
	}

	return y, z
}

// shouldApplyPattern rolls for pattern application: notes matching a
// detected beat are far more likely to follow a movement pattern
func (pg *PositionGenerator) shouldApplyPattern(res *analysis.Result, t float64) bool {
	chance := patternChanceOffBeat
	if closestBeatDistance(res.Beats, t) <= beatMatchTolerance {
		chance = patternChanceOnBeat
	}

	return pg.rng.Float64() < chance
}

// applyPattern blends the base position with a parametric movement
// pattern keyed by the note's phrase, scaled by song intensity and the
// instrument classification (which may also force a pattern type)
func (pg *PositionGenerator) applyPattern(scorer *songScorer, res *analysis.Result, note NoteTime, phrases []Phrase, baseY, baseZ, prevY, prevZ float64) (y, z float64) {
	pattern := PatternSmoothFlow
	if note.PhraseID >= 0 && note.PhraseID < len(phrases) {
		pattern = phrases[note.PhraseID].Pattern
	}

	instrument := classifyInstrument(res, note.Time)
	distanceMultiplier := 1.0
	switch instrument {
	case InstrumentBass:
		distanceMultiplier = bassDistanceMultiplier
		pattern = PatternSquare
	case InstrumentMelody:
		pattern = PatternSmoothFlow
	case InstrumentDrums:
		distanceMultiplier = drumDistanceMultiplier
		pattern = PatternZigzag
	case InstrumentNone:
		// Keep the phrase's own pattern
	}

	intensity := common.Clamp(scorer.Intensity(note.Time), patternIntensityMin, patternIntensityMax)
	distance := npmBaseDistance(pg.profile.NotesPerMinute) * intensity * distanceMultiplier

	dy, dz := pg.patterns.Offset(pattern, distance)
	patternY := common.Clamp(prevY+dy, 0, ScreenWidth)
	patternZ := common.Clamp(prevZ+dz, 0, ScreenHeight)

	y = common.Clamp(common.Lerp(patternY, baseY, blendBaseWeight), 0, ScreenWidth)
	z = common.Clamp(common.Lerp(patternZ, baseZ, blendBaseWeight), 0, ScreenHeight)

	return y, z
}

// npmBaseDistance maps the configured note density to a base travel
// distance tier in pixels
func npmBaseDistance(notesPerMinute int) float64 {
	switch {
	case notesPerMinute < 120:
		return 180.0
	case notesPerMinute < 200:
		return 260.0
	case notesPerMinute < 300:
		return 340.0
	default:
		return 420.0
	}
}

// enforceMinDistance repeatedly pushes the candidate away from every
// previously placed note closer than the minimum distance, reclamping to
// bounds after each push. Best-effort: bounded to 25 iterations, so a
// saturated area may keep a residual violation.
func (pg *PositionGenerator) enforceMinDistance(y, z float64, placed [][2]float64) (float64, float64) {
	minDist := pg.profile.MinNoteDistance
	minDistSq := minDist * minDist

	for iteration := 0; iteration < repulsionMaxIterations; iteration++ {
		violated := false

		for _, p := range placed {
			dy := y - p[0]
			dz := z - p[1]
			distSq := dy*dy + dz*dz
			if distSq >= minDistSq {
				continue
			}

			dist := math.Sqrt(distSq)
			if dist == 0 {
				// Coinciding points: push in a random direction
				angle := pg.rng.Float64() * 2 * math.Pi
				dy, dz = math.Cos(angle), math.Sin(angle)
				dist = 1.0
			}

			y = common.Clamp(p[0]+dy/dist*minDist, 0, ScreenWidth)
			z = common.Clamp(p[1]+dz/dist*minDist, 0, ScreenHeight)
			violated = true
		}

		if !violated {
			pg.stats.Converged++
			return y, z
		}
	}

	pg.stats.Capped++
	return y, z
}

// classifyInstrument labels the note's time by spectral shape: percussive
// bass/treble attacks become drums, bass-heavy frames bass, mid-dominant
// frames melody
func classifyInstrument(res *analysis.Result, t float64) InstrumentType {
	bands := res.BandsAt(t)
	total := bands[0] + bands[1] + bands[2]
	if total <= 0 {
		return InstrumentNone
	}

	dominant := 0
	for i := 1; i < 3; i++ {
		if bands[i] > bands[dominant] {
			dominant = i
		}
	}

	if (dominant == 0 || dominant == 2) && isPercussive(res, t) {
		return InstrumentDrums
	}

	if dominant == 0 || bands[0] > bassShareMin*total {
		return InstrumentBass
	}

	if dominant == 1 {
		return InstrumentMelody
	}

	return InstrumentNone
}

// isPercussive reports a fast attack followed by a fast decay around the
// frame covering t
func isPercussive(res *analysis.Result, t float64) bool {
	idx := res.FrameIndexAt(t)
	if idx < 1 || idx+1 >= len(res.SpectralEnergy) {
		return false
	}

	energy := res.SpectralEnergy
	fastAttack := energy[idx] > drumAttackRatio*energy[idx-1]
	fastDecay := energy[idx+1] < drumDecayRatio*energy[idx]

	return fastAttack && fastDecay
}
