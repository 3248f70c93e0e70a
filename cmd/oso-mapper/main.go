// Command oso-mapper converts an audio file into a procedurally generated
// rhythm map: decode, analyze, generate, serialize.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/xKean/oso-mapper/analysis"
	"github.com/xKean/oso-mapper/difficulty"
	"github.com/xKean/oso-mapper/generator"
	"github.com/xKean/oso-mapper/logging"
	"github.com/xKean/oso-mapper/mapfile"
	"github.com/xKean/oso-mapper/transcode"
)

const pipelineStages = 4

func main() {
	in := flag.String("in", "", "input audio file (any FFmpeg-readable format)")
	out := flag.String("out", "", "output map file (default: <in>.map.json)")
	diff := flag.String("difficulty", "normal", "difficulty preset name")
	seed := flag.Int64("seed", 0, "random seed; 0 picks one from the clock")
	presetFile := flag.String("preset-file", "", "YAML file with difficulty preset overrides")
	quiet := flag.Bool("quiet", false, "suppress progress output and logging")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: oso-mapper -in <audio file> [-out <map file>] [-difficulty <name>]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	switch {
	case *quiet:
		logging.SetGlobalLogger(&logging.NoOpLogger{})
	case *verbose:
		logging.SetLevel(logging.DebugLevel)
	default:
		logging.SetLevel(logging.WarnLevel)
	}

	if err := run(*in, *out, *diff, *presetFile, *seed, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "oso-mapper: %v\n", err)
		os.Exit(1)
	}
}

func run(in, out, diffName, presetFile string, seed int64, quiet bool) error {
	profile, err := resolveProfile(diffName, presetFile)
	if err != nil {
		return err
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	if out == "" {
		out = in + ".map.json"
	}

	var progress *mpb.Progress
	var bar *mpb.Bar
	if !quiet {
		progress = mpb.New(mpb.WithWidth(64))
		bar = progress.AddBar(pipelineStages,
			mpb.PrependDecorators(
				decor.Name("Mapping: "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
			),
		)
	}
	advance := func() {
		if bar != nil {
			bar.Increment()
		}
	}

	decoder := transcode.NewDecoder(nil)
	audio, err := decoder.DecodeFile(context.Background(), in)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", in, err)
	}
	advance()

	if len(audio.PCM) < analysis.FFTSize {
		return generator.ErrAudioTooShort
	}

	res := analysis.NewAnalyzer().Analyze(audio.PCM)
	advance()

	mapGen := generator.NewMapGenerator(profile, rng)
	notes := mapGen.Generate(res)
	advance()

	m := mapfile.New(in, diffName, seed, profile, res, notes)
	if err := mapfile.WriteFile(out, m); err != nil {
		return err
	}
	advance()

	if progress != nil {
		progress.Wait()
	}

	if !quiet {
		stats := mapGen.RepulsionStats()
		fmt.Printf("wrote %s: %d notes over %.1fs (%.0f BPM, %d beats, seed %d, spacing capped %d/%d)\n",
			out, len(notes), res.Duration, res.EstimatedBPM, len(res.Beats), seed,
			stats.Capped, stats.Capped+stats.Converged)
	}

	return nil
}

// resolveProfile looks the difficulty name up in the built-in presets,
// optionally merged with a user-supplied YAML override file
func resolveProfile(name, presetFile string) (generator.DifficultyProfile, error) {
	if presetFile == "" {
		return difficulty.Get(name)
	}

	presets, err := difficulty.Load(presetFile)
	if err != nil {
		return generator.DifficultyProfile{}, err
	}

	profile, ok := presets[name]
	if !ok {
		return generator.DifficultyProfile{}, fmt.Errorf("difficulty %q not found in presets", name)
	}

	return profile, nil
}
