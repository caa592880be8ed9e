package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts a waveform to the target sample rate using bandlimited
// resampling. Waveforms already at the target rate are returned unchanged.
func Resample(w Waveform, rate int) (Waveform, error) {
	if rate <= 0 {
		return Waveform{}, fmt.Errorf("invalid target sample rate %d", rate)
	}
	if w.SampleRate == rate {
		return w, nil
	}
	if w.SampleRate <= 0 {
		return Waveform{}, fmt.Errorf("invalid source sample rate %d", w.SampleRate)
	}

	config := &resampling.Config{
		InputRate:  float64(w.SampleRate),
		OutputRate: float64(rate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	}

	rs, err := resampling.New(config)
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to create resampler: %w", err)
	}

	out, err := rs.Process(w.Samples)
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to resample %d Hz -> %d Hz: %w", w.SampleRate, rate, err)
	}

	return Waveform{Samples: out, SampleRate: rate}, nil
}
