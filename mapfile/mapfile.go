// Package mapfile serializes generated note maps to JSON. It is the sink
// side of the pipeline: the core hands it the note events and the
// analysis summary, and it owns the on-disk format.
package mapfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/xKean/oso-mapper/analysis"
	"github.com/xKean/oso-mapper/generator"
)

// FormatVersion identifies the map file schema
const FormatVersion = 1

// SongInfo summarizes the analyzed audio for map consumers
type SongInfo struct {
	Duration     float64 `json:"duration"`
	EstimatedBPM float64 `json:"estimated_bpm"`
	BeatCount    int     `json:"beat_count"`
}

// Map is the complete serialized beatmap
type Map struct {
	Version     int                         `json:"version"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Source      string                      `json:"source,omitempty"`
	Difficulty  string                      `json:"difficulty"`
	Seed        int64                       `json:"seed"`
	Profile     generator.DifficultyProfile `json:"profile"`
	Song        SongInfo                    `json:"song"`
	Notes       []generator.NoteEvent       `json:"notes"`
}

// New assembles a Map from the pipeline outputs
func New(source, difficulty string, seed int64, profile generator.DifficultyProfile, res *analysis.Result, notes []generator.NoteEvent) *Map {
	return &Map{
		Version:     FormatVersion,
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Difficulty:  difficulty,
		Seed:        seed,
		Profile:     profile,
		Song: SongInfo{
			Duration:     res.Duration,
			EstimatedBPM: res.EstimatedBPM,
			BeatCount:    len(res.Beats),
		},
		Notes: notes,
	}
}

// Write serializes the map as indented JSON
func Write(w io.Writer, m *Map) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding map: %w", err)
	}
	return nil
}

// WriteFile serializes the map to a file, creating or truncating it
func WriteFile(path string, m *Map) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating map file: %w", err)
	}

	if err := Write(f, m); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
