// Package transcode decodes compressed audio into the normalized mono PCM
// buffer the analysis pipeline expects, by piping through FFmpeg. It is the
// source side of the pipeline; the core itself never touches files.
package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/xKean/oso-mapper/logging"
)

// AudioData represents decoded audio data
type AudioData struct {
	PCM        []float64     `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
	Source     string        `json:"source"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"`
	FFmpegPath       string        `json:"ffmpeg_path"`
	FFprobePath      string        `json:"ffprobe_path"`
	Timeout          time.Duration `json:"timeout"`
}

// DefaultDecoderConfig returns the decoder configuration the mapper
// expects: mono float64 at 44.1 kHz with binaries found on PATH
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 44100,
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		Timeout:          2 * time.Minute,
	}
}

// Decoder handles audio decoding using FFmpeg
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// probeResult is the subset of ffprobe's JSON output the decoder reads
type probeResult struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Metadata holds the detected audio properties of an input file
type Metadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
}

// Probe inspects an audio file with ffprobe
func (d *Decoder) Probe(ctx context.Context, filename string) (*Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.config.FFprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		filename,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", filename, err)
	}

	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "audio" {
			continue
		}

		sampleRate, _ := strconv.Atoi(stream.SampleRate)
		duration, _ := strconv.ParseFloat(probe.Format.Duration, 64)

		return &Metadata{
			SampleRate: sampleRate,
			Channels:   stream.Channels,
			Codec:      stream.CodecName,
			Duration:   duration,
		}, nil
	}

	return nil, fmt.Errorf("no audio stream found in %s", filename)
}

// DecodeFile decodes an audio file to mono float64 PCM at the target
// sample rate, resampling and downmixing through FFmpeg
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"filename": filename,
	})

	metadata, err := d.Probe(ctx, filename)
	if err != nil {
		logger.Error(err, "Failed to probe audio file")
		return nil, err
	}

	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": metadata.SampleRate,
		"input_channels":    metadata.Channels,
		"input_codec":       metadata.Codec,
		"input_duration":    metadata.Duration,
	})

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath,
		"-v", "error",
		"-i", filename,
		"-vn",
		"-f", "f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(d.config.TargetSampleRate),
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode failed: %w (%s)", err, stderr.String())
	}

	pcm, err := bytesToPCM(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	duration := time.Duration(float64(len(pcm)) / float64(d.config.TargetSampleRate) * float64(time.Second))

	logger.Debug("Decode complete", logging.Fields{
		"samples":  len(pcm),
		"duration": duration.Seconds(),
	})

	return &AudioData{
		PCM:        pcm,
		SampleRate: d.config.TargetSampleRate,
		Channels:   1,
		Duration:   duration,
		Source:     filename,
	}, nil
}

// bytesToPCM converts raw f64le bytes into a float64 sample buffer,
// zeroing any NaN or Inf samples FFmpeg produced
func bytesToPCM(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("raw PCM length %d is not a multiple of 8", len(data))
	}

	pcm := make([]float64, len(data)/8)
	for i := range pcm {
		bits := binary.LittleEndian.Uint64(data[i*8:])
		sample := math.Float64frombits(bits)
		if math.IsNaN(sample) || math.IsInf(sample, 0) {
			sample = 0
		}
		pcm[i] = sample
	}

	return pcm, nil
}
