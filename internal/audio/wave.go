package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// Waveform is a mono audio signal with samples normalized to [-1.0, 1.0].
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the length of the waveform in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate == 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Slice returns the sub-waveform between start and end (seconds), converted
// to sample indices at the waveform's rate. The returned slice shares no
// state with the parent and may outlive it.
func (w Waveform) Slice(start, end float64) (Waveform, error) {
	if start < 0 || end < start {
		return Waveform{}, fmt.Errorf("invalid slice bounds [%.3f, %.3f]", start, end)
	}

	startSample := int(start * float64(w.SampleRate))
	endSample := int(end * float64(w.SampleRate))
	if endSample > len(w.Samples) {
		endSample = len(w.Samples)
	}

	if startSample >= endSample {
		return Waveform{}, fmt.Errorf("slice [%.3f, %.3f] is empty at %d Hz", start, end, w.SampleRate)
	}

	samples := make([]float64, endSample-startSample)
	copy(samples, w.Samples[startSample:endSample])

	return Waveform{Samples: samples, SampleRate: w.SampleRate}, nil
}

// PCM16 converts the waveform to 16-bit little-endian PCM bytes.
func (w Waveform) PCM16() []byte {
	out := make([]byte, len(w.Samples)*2)
	for i, s := range w.Samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		v := int16(s * 32767.0)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// Load decodes a WAV file into a mono waveform at its native sample rate.
// Multi-channel audio is downmixed by averaging channels per frame.
func Load(path string) (Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Waveform{}, fmt.Errorf("failed to decode %s: not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return Waveform{}, fmt.Errorf("audio file %s contains no samples", path)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		samples[i] = sum / float64(channels) / scale
	}

	return Waveform{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

// Normalize loads an audio file and resamples it to the given rate.
func Normalize(path string, rate int) (Waveform, error) {
	w, err := Load(path)
	if err != nil {
		return Waveform{}, err
	}
	return Resample(w, rate)
}
