package generator

// Screen bounds for note placement in pixels. X is depth and stays 0;
// Y runs horizontally, Z vertically.
const (
	ScreenWidth  = 2200.0
	ScreenHeight = 1100.0
)

// DifficultyProfile supplies the externally configured generation
// parameters. It is read-only to the pipeline.
type DifficultyProfile struct {
	// NotesPerMinute is the target note density
	NotesPerMinute int `json:"notes_per_minute" yaml:"notes_per_minute"`

	// BeatSensitivity is retained as an external knob; the fitness-based
	// selection path does not read it directly
	BeatSensitivity float64 `json:"beat_sensitivity" yaml:"beat_sensitivity"`

	// MinTimeBetweenNotes is the hard minimum gap between notes in seconds
	MinTimeBetweenNotes float64 `json:"min_time_between_notes" yaml:"min_time_between_notes"`

	// MinNoteDistance is the hard minimum distance between notes in pixels
	MinNoteDistance float64 `json:"min_node_distance_px" yaml:"min_node_distance_px"`
}

// NoteEvent is one placed note: a time within the song and a legal
// in-bounds position. Notes are immutable once created.
type NoteEvent struct {
	Time           float64 `json:"time"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Z              float64 `json:"z"`
	PhraseID       int     `json:"phrase_id"`
	PhrasePosition int     `json:"phrase_position"`
}

// Phrase is a contiguous span of the song grouping at least two beats,
// bounded by a detected low-energy pause or a randomized target length
type Phrase struct {
	ID        int         `json:"id"`
	Start     float64     `json:"start"`
	End       float64     `json:"end"`
	Beats     []float64   `json:"beats"`
	Pattern   PatternType `json:"pattern"`
	Intensity float64     `json:"intensity"`
}

// RhythmType classifies the local rhythm of a phrase from the
// variability of its beat-to-beat intervals
type RhythmType int

const (
	RhythmSteady RhythmType = iota
	RhythmSyncopated
	RhythmBurst
	RhythmSlow
)

func (r RhythmType) String() string {
	switch r {
	case RhythmSteady:
		return "steady"
	case RhythmSyncopated:
		return "syncopated"
	case RhythmBurst:
		return "burst"
	case RhythmSlow:
		return "slow"
	default:
		return "unknown"
	}
}

// InstrumentType is a coarse classification of what dominates the
// spectrum at a note's time
type InstrumentType int

const (
	InstrumentNone InstrumentType = iota
	InstrumentBass
	InstrumentMelody
	InstrumentDrums
)

func (i InstrumentType) String() string {
	switch i {
	case InstrumentBass:
		return "bass"
	case InstrumentMelody:
		return "melody"
	case InstrumentDrums:
		return "drums"
	default:
		return "none"
	}
}

// PatternType identifies one of the eight parametric movement patterns
type PatternType int

const (
	PatternSmoothFlow PatternType = iota
	PatternStream
	PatternTriangle
	PatternSquare
	PatternSpiral
	PatternZigzag
	PatternStar
	PatternJump

	numPatternTypes = 8
)

func (p PatternType) String() string {
	switch p {
	case PatternSmoothFlow:
		return "smooth_flow"
	case PatternStream:
		return "stream"
	case PatternTriangle:
		return "triangle"
	case PatternSquare:
		return "square"
	case PatternSpiral:
		return "spiral"
	case PatternZigzag:
		return "zigzag"
	case PatternStar:
		return "star"
	case PatternJump:
		return "jump"
	default:
		return "unknown"
	}
}
