package difficulty

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/xKean/oso-mapper/generator"
)

// Built-in difficulty presets. The names double as CLI values.
var builtin = map[string]generator.DifficultyProfile{
	"easy": {
		NotesPerMinute:      60,
		BeatSensitivity:     1.2,
		MinTimeBetweenNotes: 0.8,
		MinNoteDistance:     350,
	},
	"normal": {
		NotesPerMinute:      120,
		BeatSensitivity:     1.0,
		MinTimeBetweenNotes: 0.45,
		MinNoteDistance:     280,
	},
	"hard": {
		NotesPerMinute:      180,
		BeatSensitivity:     0.9,
		MinTimeBetweenNotes: 0.3,
		MinNoteDistance:     220,
	},
	"expert": {
		NotesPerMinute:      260,
		BeatSensitivity:     0.8,
		MinTimeBetweenNotes: 0.2,
		MinNoteDistance:     180,
	},
	"nightmare": {
		NotesPerMinute:      340,
		BeatSensitivity:     0.7,
		MinTimeBetweenNotes: 0.15,
		MinNoteDistance:     150,
	},
}

// Get returns the profile for a named preset
func Get(name string) (generator.DifficultyProfile, error) {
	profile, ok := builtin[name]
	if !ok {
		return generator.DifficultyProfile{}, fmt.Errorf("unknown difficulty %q (available: %v)", name, Names())
	}
	return profile, nil
}

// Names lists the built-in preset names in stable order
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetFile is the YAML shape of a user-supplied preset override file
type PresetFile struct {
	Presets map[string]generator.DifficultyProfile `yaml:"presets"`
}

// Load reads a YAML preset file and returns the built-in presets merged
// with (and overridden by) its entries
func Load(path string) (map[string]generator.DifficultyProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset file: %w", err)
	}

	var file PresetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing preset file %s: %w", path, err)
	}

	merged := make(map[string]generator.DifficultyProfile, len(builtin)+len(file.Presets))
	for name, profile := range builtin {
		merged[name] = profile
	}
	for name, profile := range file.Presets {
		merged[name] = profile
	}

	return merged, nil
}
