package embed

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/emmett/diar/internal/audio"
)

const testRate = 16000

func sine(freq, dur float64) audio.Waveform {
	n := int(dur * testRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}
	return audio.Waveform{Samples: samples, SampleRate: testRate}
}

func newTestEngine(t *testing.T) *SpectralEngine {
	t.Helper()
	engine := NewSpectralEngine()
	if err := engine.Initialize(DefaultConfig(testRate)); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestSpectralEngine_Embed(t *testing.T) {
	engine := newTestEngine(t)

	vec, err := engine.Embed(context.Background(), sine(440, 0.5))
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	if len(vec) != engine.Dim() {
		t.Errorf("embedding dimension = %d, want %d", len(vec), engine.Dim())
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("embedding norm = %f, want 1.0", math.Sqrt(norm))
	}
}

func TestSpectralEngine_Deterministic(t *testing.T) {
	engine := newTestEngine(t)
	w := sine(300, 0.4)

	first, err := engine.Embed(context.Background(), w)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	second, err := engine.Embed(context.Background(), w)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("embeddings differ at %d: %f vs %f", i, first[i], second[i])
		}
	}
}

func TestSpectralEngine_DistinguishesContent(t *testing.T) {
	engine := newTestEngine(t)

	low, err := engine.Embed(context.Background(), sine(200, 0.5))
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	high, err := engine.Embed(context.Background(), sine(3000, 0.5))
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	var dot float64
	for i := range low {
		dot += low[i] * high[i]
	}
	// Both are unit vectors; spectrally distinct signals must not be
	// near-identical embeddings.
	if dot > 0.999 {
		t.Errorf("distinct tones produced near-identical embeddings (cos=%f)", dot)
	}
}

func TestSpectralEngine_Errors(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("too short", func(t *testing.T) {
		w := audio.Waveform{Samples: make([]float64, 10), SampleRate: testRate}
		_, err := engine.Embed(context.Background(), w)
		if err == nil {
			t.Fatal("expected error for segment shorter than one frame")
		}
		if !errors.Is(err, ErrInvalidSegment) {
			t.Errorf("error %v is not ErrInvalidSegment", err)
		}
	})

	t.Run("wrong rate", func(t *testing.T) {
		w := audio.Waveform{Samples: make([]float64, 8000), SampleRate: 8000}
		_, err := engine.Embed(context.Background(), w)
		if err == nil {
			t.Fatal("expected error for non-canonical sample rate")
		}
		if !errors.Is(err, ErrInvalidSegment) {
			t.Errorf("error %v is not ErrInvalidSegment", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := engine.Embed(ctx, sine(440, 0.5))
		if err == nil {
			t.Fatal("expected error for canceled context")
		}
		if errors.Is(err, ErrInvalidSegment) {
			t.Errorf("cancellation misreported as a segment defect: %v", err)
		}
	})
}

func TestSpectralEngine_Lifecycle(t *testing.T) {
	engine := NewSpectralEngine()

	if engine.IsInitialized() {
		t.Error("new engine reports initialized")
	}
	if _, err := engine.Embed(context.Background(), sine(440, 0.5)); err == nil {
		t.Error("expected error embedding before initialization")
	}

	if err := engine.Initialize(DefaultConfig(testRate)); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if !engine.IsInitialized() {
		t.Error("engine not initialized after Initialize")
	}
	if err := engine.Initialize(DefaultConfig(testRate)); err == nil {
		t.Error("expected error on double initialization")
	}

	if err := engine.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if engine.IsInitialized() {
		t.Error("engine reports initialized after Close")
	}
}

func TestSpectralEngine_InitializeValidation(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"zero sample rate", Config{SampleRate: 0, Bands: 24, FrameMS: 25, HopMS: 10}},
		{"zero bands", Config{SampleRate: testRate, Bands: 0, FrameMS: 25, HopMS: 10}},
		{"zero frame", Config{SampleRate: testRate, Bands: 24, FrameMS: 0, HopMS: 10}},
		{"bands exceed spectrum", Config{SampleRate: testRate, Bands: 1000, FrameMS: 25, HopMS: 10}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewSpectralEngine()
			if err := engine.Initialize(tc.config); err == nil {
				t.Errorf("Initialize(%+v) expected error", tc.config)
			}
		})
	}
}
