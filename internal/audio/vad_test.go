package audio

import (
	"math"
	"testing"
)

const testRate = 16000

// tone appends dur seconds of a 440 Hz sine at the given amplitude.
func tone(samples []float64, dur, amplitude float64) []float64 {
	n := int(dur * testRate)
	for i := 0; i < n; i++ {
		samples = append(samples, amplitude*math.Sin(2*math.Pi*440*float64(i)/testRate))
	}
	return samples
}

// silence appends dur seconds of zeros.
func silence(samples []float64, dur float64) []float64 {
	return append(samples, make([]float64, int(dur*testRate))...)
}

func checkIntervals(t *testing.T, intervals []Interval) {
	t.Helper()
	for i, iv := range intervals {
		if iv.Start >= iv.End {
			t.Errorf("interval %d: start %.3f >= end %.3f", i, iv.Start, iv.End)
		}
		if i > 0 && intervals[i-1].End > iv.Start {
			t.Errorf("intervals %d and %d overlap: %.3f > %.3f", i-1, i, intervals[i-1].End, iv.Start)
		}
	}
}

func TestEnergyDetector_SingleUtterance(t *testing.T) {
	var samples []float64
	samples = silence(samples, 1.0)
	samples = tone(samples, 1.5, 0.5)
	samples = silence(samples, 2.0)

	det := NewEnergyDetector(DefaultVADConfig())
	intervals, err := det.Detect(Waveform{Samples: samples, SampleRate: testRate})
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}

	if len(intervals) != 1 {
		t.Fatalf("got %d intervals, want 1: %v", len(intervals), intervals)
	}
	checkIntervals(t, intervals)

	iv := intervals[0]
	if math.Abs(iv.Start-1.0) > 0.2 {
		t.Errorf("interval start %.3f, want ~1.0", iv.Start)
	}
	if math.Abs(iv.End-2.5) > 0.2 {
		t.Errorf("interval end %.3f, want ~2.5", iv.End)
	}
}

func TestEnergyDetector_ShortGapMerged(t *testing.T) {
	// Two bursts 450ms apart: the silence run closes the first interval,
	// padding narrows the gap below the merge threshold, one interval
	// survives.
	var samples []float64
	samples = silence(samples, 1.0)
	samples = tone(samples, 1.0, 0.5)
	samples = silence(samples, 0.45)
	samples = tone(samples, 1.0, 0.5)
	samples = silence(samples, 1.0)

	det := NewEnergyDetector(DefaultVADConfig())
	intervals, err := det.Detect(Waveform{Samples: samples, SampleRate: testRate})
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}

	if len(intervals) != 1 {
		t.Fatalf("got %d intervals, want 1 merged: %v", len(intervals), intervals)
	}
	checkIntervals(t, intervals)
}

func TestEnergyDetector_LongGapSplits(t *testing.T) {
	var samples []float64
	samples = silence(samples, 1.0)
	samples = tone(samples, 1.0, 0.5)
	samples = silence(samples, 1.5)
	samples = tone(samples, 1.0, 0.5)
	samples = silence(samples, 1.0)

	det := NewEnergyDetector(DefaultVADConfig())
	intervals, err := det.Detect(Waveform{Samples: samples, SampleRate: testRate})
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}

	if len(intervals) != 2 {
		t.Fatalf("got %d intervals, want 2: %v", len(intervals), intervals)
	}
	checkIntervals(t, intervals)
}

func TestEnergyDetector_AllSilence(t *testing.T) {
	samples := make([]float64, 3*testRate)

	det := NewEnergyDetector(DefaultVADConfig())
	intervals, err := det.Detect(Waveform{Samples: samples, SampleRate: testRate})
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if len(intervals) != 0 {
		t.Errorf("silent input produced intervals: %v", intervals)
	}
}

func TestEnergyDetector_SpeechToEndOfRecording(t *testing.T) {
	var samples []float64
	samples = silence(samples, 0.5)
	samples = tone(samples, 1.0, 0.5)

	det := NewEnergyDetector(DefaultVADConfig())
	intervals, err := det.Detect(Waveform{Samples: samples, SampleRate: testRate})
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if len(intervals) != 1 {
		t.Fatalf("got %d intervals, want 1: %v", len(intervals), intervals)
	}
	if intervals[0].End > 1.5+1e-9 {
		t.Errorf("interval end %.3f exceeds recording duration 1.5", intervals[0].End)
	}
}

func TestEnergyDetector_MinDurationDropsBlips(t *testing.T) {
	cfg := DefaultVADConfig()
	cfg.PadMS = 0
	cfg.MinSpeechMS = 250

	var samples []float64
	samples = silence(samples, 1.0)
	samples = tone(samples, 0.15, 0.5)
	samples = silence(samples, 1.0)

	det := NewEnergyDetector(cfg)
	intervals, err := det.Detect(Waveform{Samples: samples, SampleRate: testRate})
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if len(intervals) != 0 {
		t.Errorf("150ms blip survived the minimum duration filter: %v", intervals)
	}
}

func TestEnergyDetector_InvalidConfig(t *testing.T) {
	det := NewEnergyDetector(VADConfig{FrameMS: 0})
	if _, err := det.Detect(Waveform{Samples: make([]float64, testRate), SampleRate: testRate}); err == nil {
		t.Error("expected error for zero frame length")
	}

	det = NewEnergyDetector(DefaultVADConfig())
	if _, err := det.Detect(Waveform{Samples: make([]float64, 100)}); err == nil {
		t.Error("expected error for zero sample rate")
	}
}
