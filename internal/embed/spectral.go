package embed

import (
	"context"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/emmett/diar/internal/audio"
)

// SpectralEngine is the built-in embedding engine. It computes short-time
// band log-energies over the segment and pools them into a fixed-length
// vector: per-band mean and standard deviation across frames, L2-normalized.
// It is deterministic and needs no model files.
type SpectralEngine struct {
	config      Config
	fft         *fourier.FFT
	frameLen    int
	hopLen      int
	window      []float64
	mu          sync.Mutex
	initialized bool
}

// NewSpectralEngine creates a new spectral embedding engine.
func NewSpectralEngine() *SpectralEngine {
	return &SpectralEngine{}
}

// Initialize initializes the engine
func (e *SpectralEngine) Initialize(config Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return fmt.Errorf("engine already initialized")
	}
	if config.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", config.SampleRate)
	}
	if config.Bands <= 0 {
		return fmt.Errorf("invalid band count %d", config.Bands)
	}
	if config.FrameMS <= 0 || config.HopMS <= 0 {
		return fmt.Errorf("invalid frame/hop %dms/%dms", config.FrameMS, config.HopMS)
	}

	frameLen := config.SampleRate * config.FrameMS / 1000
	hopLen := config.SampleRate * config.HopMS / 1000
	if frameLen == 0 || hopLen == 0 {
		return fmt.Errorf("frame/hop %dms/%dms is zero samples at %d Hz", config.FrameMS, config.HopMS, config.SampleRate)
	}
	if config.Bands > frameLen/2 {
		return fmt.Errorf("band count %d exceeds spectrum size %d", config.Bands, frameLen/2)
	}

	// Hann window
	window := make([]float64, frameLen)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(frameLen-1)))
	}

	e.config = config
	e.frameLen = frameLen
	e.hopLen = hopLen
	e.window = window
	e.fft = fourier.NewFFT(frameLen)
	e.initialized = true

	return nil
}

// Dim returns the embedding dimension
func (e *SpectralEngine) Dim() int {
	return 2 * e.config.Bands
}

// Embed computes the voiceprint for one speech segment. The input waveform
// is only read; it is never retained.
func (e *SpectralEngine) Embed(ctx context.Context, w audio.Waveform) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil, fmt.Errorf("engine not initialized")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if w.SampleRate != e.config.SampleRate {
		return nil, fmt.Errorf("%w: expected %d Hz audio, got %d Hz", ErrInvalidSegment, e.config.SampleRate, w.SampleRate)
	}
	if len(w.Samples) < e.frameLen {
		return nil, fmt.Errorf("%w: %d samples, need at least %d", ErrInvalidSegment, len(w.Samples), e.frameLen)
	}

	bands := e.config.Bands
	sums := make([]float64, bands)
	sqSums := make([]float64, bands)
	frame := make([]float64, e.frameLen)
	energies := make([]float64, bands)

	numFrames := 0
	for start := 0; start+e.frameLen <= len(w.Samples); start += e.hopLen {
		for i := 0; i < e.frameLen; i++ {
			frame[i] = w.Samples[start+i] * e.window[i]
		}

		coeffs := e.fft.Coefficients(nil, frame)
		e.bandLogEnergies(coeffs, energies)

		for b := 0; b < bands; b++ {
			sums[b] += energies[b]
			sqSums[b] += energies[b] * energies[b]
		}
		numFrames++
	}

	n := float64(numFrames)
	vec := make([]float64, 2*bands)
	for b := 0; b < bands; b++ {
		mean := sums[b] / n
		variance := sqSums[b]/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		vec[b] = mean
		vec[bands+b] = math.Sqrt(variance)
	}

	l2Normalize(vec)
	return vec, nil
}

// bandLogEnergies folds the power spectrum into contiguous bands and writes
// the log energy per band into out.
func (e *SpectralEngine) bandLogEnergies(coeffs []complex128, out []float64) {
	// Skip the DC coefficient.
	spectrum := coeffs[1:]
	bands := len(out)
	binsPerBand := len(spectrum) / bands

	for b := 0; b < bands; b++ {
		lo := b * binsPerBand
		hi := lo + binsPerBand
		if b == bands-1 {
			hi = len(spectrum)
		}

		var power float64
		for _, c := range spectrum[lo:hi] {
			re, im := real(c), imag(c)
			power += re*re + im*im
		}
		out[b] = math.Log(power + 1e-10)
	}
}

// Close releases resources
func (e *SpectralEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.fft = nil
	e.window = nil
	e.initialized = false
	return nil
}

// IsInitialized returns true if the engine is initialized
func (e *SpectralEngine) IsInitialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// l2Normalize scales v to unit length in place. Zero vectors are left as-is.
func l2Normalize(v []float64) {
	norm := math.Sqrt(floats.Dot(v, v))
	if norm > 0 {
		floats.Scale(1/norm, v)
	}
}
