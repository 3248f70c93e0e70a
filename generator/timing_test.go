package generator

import (
	"math"
	"testing"
)

func TestEnforceMinSpacing(t *testing.T) {
	times := []float64{0, 0.1, 0.5, 0.9, 1.0, 2.0, 2.79, 2.8}

	kept := enforceMinSpacing(times, 0.8)
	want := []float64{0, 0.9, 2.0, 2.8}

	if len(kept) != len(want) {
		t.Fatalf("kept %v, want %v", kept, want)
	}
	for i := range want {
		if kept[i] != want[i] {
			t.Fatalf("kept %v, want %v", kept, want)
		}
	}

	// Exact equality at the boundary is allowed
	kept = enforceMinSpacing([]float64{0, 0.8}, 0.8)
	if len(kept) != 2 {
		t.Errorf("boundary-exact gap should be kept, got %v", kept)
	}

	if kept := enforceMinSpacing(nil, 0.5); len(kept) != 0 {
		t.Errorf("empty input should stay empty, got %v", kept)
	}
}

func TestClassifyRhythm(t *testing.T) {
	steadyBeats := []float64{0, 0.5, 1.0, 1.5, 2.0}
	jitteryBeats := []float64{0, 0.3, 1.0, 1.2, 2.0}
	fastBeats := []float64{0, 0.2, 0.5, 0.7, 1.0}
	slowBeats := []float64{0, 1.5, 2.8, 4.4}

	tests := []struct {
		name   string
		phrase Phrase
		want   RhythmType
	}{
		{"even intervals", Phrase{Beats: steadyBeats, Intensity: 1.0}, RhythmSteady},
		{"intense and fast", Phrase{Beats: fastBeats, Intensity: 1.5}, RhythmBurst},
		{"long intervals", Phrase{Beats: slowBeats, Intensity: 1.0}, RhythmSlow},
		{"jittery intervals", Phrase{Beats: jitteryBeats, Intensity: 1.0}, RhythmSyncopated},
		{"too few beats", Phrase{Beats: []float64{1}}, RhythmSlow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyRhythm(tt.phrase); got != tt.want {
				t.Errorf("classifyRhythm = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateMinSpacingProperty(t *testing.T) {
	beats := gridBeats(60, 0.5)
	res := syntheticResult(60, beats, pulsedEnergy(beats, 1, 100))
	phrases := []Phrase{
		{ID: 0, Start: 0, End: 20, Beats: beatsInRange(beats, 0, 20), Intensity: 1.0},
		{ID: 1, Start: 20.2, End: 40, Beats: beatsInRange(beats, 20.2, 40), Intensity: 1.5},
		{ID: 2, Start: 40.2, End: 59, Beats: beatsInRange(beats, 40.2, 59), Intensity: 0.6},
	}

	profile := DifficultyProfile{NotesPerMinute: 200, MinTimeBetweenNotes: 0.3}
	notes := NewNoteTimingGenerator(profile).Generate(res, phrases)

	if len(notes) == 0 {
		t.Fatal("expected notes from a dense beat grid")
	}

	for i := 1; i < len(notes); i++ {
		if gap := notes[i].Time - notes[i-1].Time; gap < profile.MinTimeBetweenNotes-1e-9 {
			t.Fatalf("minimum spacing violated at %d: gap %v", i, gap)
		}
	}
}

func TestGenerateAttributesPhrases(t *testing.T) {
	beats := gridBeats(30, 0.5)
	res := syntheticResult(30, beats, pulsedEnergy(beats, 1, 100))
	phrases := []Phrase{
		{ID: 0, Start: 0, End: 10, Beats: beatsInRange(beats, 0, 10), Intensity: 1.0},
		{ID: 1, Start: 10.2, End: 29, Beats: beatsInRange(beats, 10.2, 29), Intensity: 1.0},
	}

	profile := DifficultyProfile{NotesPerMinute: 100, MinTimeBetweenNotes: 0.4}
	notes := NewNoteTimingGenerator(profile).Generate(res, phrases)

	for _, note := range notes {
		var phrase Phrase
		switch note.PhraseID {
		case 0, 1:
			phrase = phrases[note.PhraseID]
		default:
			t.Fatalf("note at %v attributed to unknown phrase %d", note.Time, note.PhraseID)
		}

		if note.Time < phrase.Start || note.Time > phrase.End {
			t.Errorf("note at %v outside its phrase [%v, %v]", note.Time, phrase.Start, phrase.End)
		}

		if note.PhrasePosition < 0 || note.PhrasePosition >= len(phrase.Beats) {
			t.Errorf("note at %v has phrase position %d out of range", note.Time, note.PhrasePosition)
		}

		// A note matching a phrase beat within tolerance points at it
		if note.PhrasePosition > 0 {
			beat := phrase.Beats[note.PhrasePosition]
			if math.Abs(beat-note.Time) > phrasePositionTolerance {
				t.Errorf("note at %v points at beat %v beyond tolerance", note.Time, beat)
			}
		}
	}
}

func TestSubdivisionsOnlyForDenseProfiles(t *testing.T) {
	beats := gridBeats(30, 0.5)
	res := syntheticResult(30, beats, pulsedEnergy(beats, 1, 100))
	phrase := Phrase{ID: 0, Start: 0, End: 29, Beats: beatsInRange(beats, 0, 29), Intensity: 1.1}

	sparse := DifficultyProfile{NotesPerMinute: 100, MinTimeBetweenNotes: 0.05}
	dense := DifficultyProfile{NotesPerMinute: 200, MinTimeBetweenNotes: 0.05}

	sparseNotes := NewNoteTimingGenerator(sparse).Generate(res, []Phrase{phrase})
	denseNotes := NewNoteTimingGenerator(dense).Generate(res, []Phrase{phrase})

	if len(denseNotes) < len(sparseNotes) {
		t.Errorf("dense profile produced fewer notes (%d) than sparse (%d)",
			len(denseNotes), len(sparseNotes))
	}
}

func TestWithinOf(t *testing.T) {
	values := []float64{1.0, 2.0}

	if !withinOf(values, 1.05, 0.1) {
		t.Error("1.05 should be within 0.1 of 1.0")
	}
	if withinOf(values, 1.5, 0.1) {
		t.Error("1.5 should not be within 0.1 of any value")
	}
	if withinOf(nil, 1.0, 10) {
		t.Error("empty slice matches nothing")
	}
}
