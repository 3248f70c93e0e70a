package analysis

// FrameDuration is the time covered by one spectral frame hop in seconds
const FrameDuration = float64(HopSize) / float64(SampleRate)

// Result is the hand-off contract between signal analysis and map
// generation: everything the generative stages need to know about the song
type Result struct {
	Duration       float64      `json:"duration"`
	Beats          []float64    `json:"beat_timestamps"`
	EstimatedBPM   float64      `json:"estimated_bpm"`
	SpectralEnergy []float64    `json:"spectral_energy"`
	FrequencyBands [][3]float64 `json:"frequency_bands"`
}

// FrameIndexAt maps a time in seconds to the index of the frame covering it,
// clamped to the valid range. Returns -1 when there are no frames.
func (r *Result) FrameIndexAt(t float64) int {
	if len(r.SpectralEnergy) == 0 {
		return -1
	}

	idx := int(t / FrameDuration)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(r.SpectralEnergy) {
		idx = len(r.SpectralEnergy) - 1
	}

	return idx
}

// EnergyAt returns the total spectral energy of the frame covering t,
// or 0 when there is no spectral data
func (r *Result) EnergyAt(t float64) float64 {
	idx := r.FrameIndexAt(t)
	if idx < 0 {
		return 0.0
	}
	return r.SpectralEnergy[idx]
}

// BandsAt returns the low/mid/high band energies of the frame covering t,
// or zeros when there is no spectral data
func (r *Result) BandsAt(t float64) [3]float64 {
	if len(r.FrequencyBands) == 0 {
		return [3]float64{}
	}

	idx := int(t / FrameDuration)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(r.FrequencyBands) {
		idx = len(r.FrequencyBands) - 1
	}

	return r.FrequencyBands[idx]
}
