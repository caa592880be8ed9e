package audio

import (
	"fmt"
	"math"
)

// Interval is a speech region in seconds relative to the recording start.
type Interval struct {
	Start float64
	End   float64
}

// Detector finds speech intervals in a waveform. Implementations must return
// intervals ordered by start time and pairwise non-overlapping.
type Detector interface {
	Detect(w Waveform) ([]Interval, error)
}

// VADConfig holds configuration for energy-based voice activity detection.
type VADConfig struct {
	// FrameMS is the analysis frame length in milliseconds.
	FrameMS int

	// EnergyThreshold is the minimum RMS energy to consider a frame speech.
	// Typical values: 0.001 to 0.1 (lower = more sensitive)
	EnergyThreshold float64

	// SpeechFrames is the number of consecutive speech frames before an
	// interval opens. Guards against clicks triggering a segment.
	SpeechFrames int

	// SilenceFrames is the number of consecutive silent frames before an
	// interval closes.
	SilenceFrames int

	// PadMS extends each detected interval on both sides so soft onsets and
	// trailing consonants are not clipped.
	PadMS int

	// MergeGapMS merges adjacent intervals separated by less than this gap
	// so one utterance does not fragment into many tiny intervals.
	MergeGapMS int

	// MinSpeechMS drops intervals shorter than this after merging.
	MinSpeechMS int
}

// DefaultVADConfig returns a default VAD configuration tuned for 16 kHz speech.
func DefaultVADConfig() VADConfig {
	return VADConfig{
		FrameMS:         30,
		EnergyThreshold: 0.01,
		SpeechFrames:    3,  // 90ms of speech
		SilenceFrames:   10, // 300ms of silence
		PadMS:           100,
		MergeGapMS:      300,
		MinSpeechMS:     250,
	}
}

// EnergyDetector detects speech intervals using per-frame RMS energy with
// speech/silence hysteresis.
type EnergyDetector struct {
	config VADConfig
}

// NewEnergyDetector creates a new energy-based detector.
func NewEnergyDetector(config VADConfig) *EnergyDetector {
	return &EnergyDetector{config: config}
}

// Detect scans the waveform and returns the ordered list of speech intervals.
// An empty list means no speech was found; that is not an error.
func (d *EnergyDetector) Detect(w Waveform) ([]Interval, error) {
	if w.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", w.SampleRate)
	}
	if d.config.FrameMS <= 0 {
		return nil, fmt.Errorf("invalid frame length %dms", d.config.FrameMS)
	}

	frameLen := w.SampleRate * d.config.FrameMS / 1000
	if frameLen == 0 {
		return nil, fmt.Errorf("frame length %dms is zero samples at %d Hz", d.config.FrameMS, w.SampleRate)
	}
	numFrames := len(w.Samples) / frameLen
	frameDur := float64(frameLen) / float64(w.SampleRate)

	var raw []Interval

	speaking := false
	speechRun := 0
	silenceRun := 0
	startFrame := 0

	for f := 0; f < numFrames; f++ {
		energy := rms(w.Samples[f*frameLen : (f+1)*frameLen])

		if energy > d.config.EnergyThreshold {
			speechRun++
			silenceRun = 0

			if !speaking && speechRun >= d.config.SpeechFrames {
				speaking = true
				// The interval starts where the speech run began.
				startFrame = f - speechRun + 1
			}
		} else {
			silenceRun++
			speechRun = 0

			if speaking && silenceRun >= d.config.SilenceFrames {
				speaking = false
				endFrame := f - silenceRun + 1
				raw = append(raw, Interval{
					Start: float64(startFrame) * frameDur,
					End:   float64(endFrame) * frameDur,
				})
			}
		}
	}

	// Close an interval still open at the end of the recording.
	if speaking {
		endFrame := numFrames - silenceRun
		raw = append(raw, Interval{
			Start: float64(startFrame) * frameDur,
			End:   float64(endFrame) * frameDur,
		})
	}

	return d.shape(raw, w.Duration()), nil
}

// shape applies padding, merging, and minimum-duration filtering to the raw
// intervals produced by the frame state machine.
func (d *EnergyDetector) shape(raw []Interval, duration float64) []Interval {
	if len(raw) == 0 {
		return nil
	}

	pad := float64(d.config.PadMS) / 1000.0
	gap := float64(d.config.MergeGapMS) / 1000.0
	minDur := float64(d.config.MinSpeechMS) / 1000.0

	padded := make([]Interval, 0, len(raw))
	for _, iv := range raw {
		start := iv.Start - pad
		if start < 0 {
			start = 0
		}
		end := iv.End + pad
		if end > duration {
			end = duration
		}
		padded = append(padded, Interval{Start: start, End: end})
	}

	merged := []Interval{padded[0]}
	for _, iv := range padded[1:] {
		last := &merged[len(merged)-1]
		if iv.Start-last.End < gap {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}

	var out []Interval
	for _, iv := range merged {
		if iv.End-iv.Start >= minDur {
			out = append(out, iv)
		}
	}
	return out
}

// rms computes the root mean square energy of a sample window.
func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}
