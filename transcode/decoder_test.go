package transcode

import (
	"encoding/binary"
	"math"
	"testing"
)

func f64leBytes(samples ...float64) []byte {
	data := make([]byte, len(samples)*8)
	for i, s := range samples {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(s))
	}
	return data
}

func TestBytesToPCM(t *testing.T) {
	want := []float64{0, 0.5, -0.5, 1, -1, 0.123456789}

	pcm, err := bytesToPCM(f64leBytes(want...))
	if err != nil {
		t.Fatalf("bytesToPCM err = %v", err)
	}
	if len(pcm) != len(want) {
		t.Fatalf("got %d samples, want %d", len(pcm), len(want))
	}
	for i := range want {
		if pcm[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, pcm[i], want[i])
		}
	}
}

func TestBytesToPCMZeroesNonFinite(t *testing.T) {
	pcm, err := bytesToPCM(f64leBytes(math.NaN(), math.Inf(1), math.Inf(-1), 0.25))
	if err != nil {
		t.Fatalf("bytesToPCM err = %v", err)
	}

	for i := 0; i < 3; i++ {
		if pcm[i] != 0 {
			t.Errorf("non-finite sample %d = %v, want 0", i, pcm[i])
		}
	}
	if pcm[3] != 0.25 {
		t.Errorf("finite sample = %v, want 0.25", pcm[3])
	}
}

func TestBytesToPCMRejectsTruncatedInput(t *testing.T) {
	data := f64leBytes(1, 2)[:13]
	if _, err := bytesToPCM(data); err == nil {
		t.Fatal("truncated buffer accepted, want error")
	}
}

func TestBytesToPCMEmpty(t *testing.T) {
	pcm, err := bytesToPCM(nil)
	if err != nil {
		t.Fatalf("bytesToPCM(nil) err = %v", err)
	}
	if len(pcm) != 0 {
		t.Errorf("got %d samples from empty input", len(pcm))
	}
}

func TestDefaultDecoderConfig(t *testing.T) {
	cfg := DefaultDecoderConfig()
	if cfg.TargetSampleRate != 44100 {
		t.Errorf("target sample rate = %d, want 44100", cfg.TargetSampleRate)
	}
	if cfg.FFmpegPath == "" || cfg.FFprobePath == "" {
		t.Error("binary paths must default to PATH lookups")
	}
	if cfg.Timeout <= 0 {
		t.Error("timeout must be positive")
	}
}

func TestNewDecoderNilConfig(t *testing.T) {
	d := NewDecoder(nil)
	if d.config == nil {
		t.Fatal("nil config not replaced with defaults")
	}
	if d.config.TargetSampleRate != 44100 {
		t.Errorf("defaulted sample rate = %d, want 44100", d.config.TargetSampleRate)
	}
}
