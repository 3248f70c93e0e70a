package generator

import (
	"math"
	"math/rand"
)

// patternEngine produces the geometric offsets of the eight movement
// patterns. It carries a heading and a step counter so turn-based
// patterns (triangle, square, star, spiral) stay coherent across notes.
type patternEngine struct {
	rng     *rand.Rand
	heading float64
	step    int
}

func newPatternEngine(rng *rand.Rand) *patternEngine {
	return &patternEngine{
		rng:     rng,
		heading: rng.Float64() * 2 * math.Pi,
	}
}

// Offset returns the pattern's displacement relative to the previous note
// position for the given travel distance
func (pe *patternEngine) Offset(pattern PatternType, distance float64) (dy, dz float64) {
	angle := pe.heading
	d := distance

	switch pattern {
	case PatternSmoothFlow:
		// Gentle drift: small random heading changes, shortened travel
		angle += (pe.rng.Float64() - 0.5) * 0.8
		d *= 0.6

	case PatternStream:
		// Persistent direction with slight jitter
		angle += (pe.rng.Float64() - 0.5) * 0.3

	case PatternTriangle:
		angle += 2.0 * math.Pi / 3.0

	case PatternSquare:
		// Axis-aligned movement with right-angle turns
		angle = math.Round(angle/(math.Pi/2.0))*(math.Pi/2.0) + math.Pi/2.0

	case PatternSpiral:
		// Rotating heading with a radius that grows and resets
		angle += math.Pi / 3.0
		d *= 0.5 + 0.1*float64(pe.step%8)

	case PatternZigzag:
		// Alternating diagonal strokes
		angle = math.Pi / 4.0
		if pe.step%2 == 1 {
			angle = -angle
		}

	case PatternStar:
		// Five-pointed star traversal
		angle += 4.0 * math.Pi / 5.0

	case PatternJump:
		angle = pe.rng.Float64() * 2 * math.Pi
		d *= 1.5
	}

	pe.heading = angle
	pe.step++

	return d * math.Cos(angle), d * math.Sin(angle)
}
