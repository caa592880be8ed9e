package embed

import (
	"context"
	"errors"

	"github.com/emmett/diar/internal/audio"
)

// ErrInvalidSegment marks Embed failures caused by the input segment itself
// (too short for one analysis frame, wrong sample rate) rather than by the
// engine. Callers match it with errors.Is to classify the failure.
var ErrInvalidSegment = errors.New("invalid segment")

// Config holds configuration for an embedding engine.
type Config struct {
	// SampleRate is the audio sample rate in Hz the engine expects.
	SampleRate int

	// Bands is the number of spectral bands used by the built-in engine.
	// The embedding dimension is 2 * Bands.
	Bands int

	// FrameMS is the analysis frame length in milliseconds.
	FrameMS int

	// HopMS is the hop between analysis frames in milliseconds.
	HopMS int
}

// Engine is the interface for speaker embedding engines. Implementations
// must be stateless across calls: embedding one segment must not affect the
// next, and the input waveform must not be retained beyond the call.
type Engine interface {
	// Initialize initializes the engine with the given configuration
	Initialize(config Config) error

	// Embed maps one speech segment to a fixed-length voiceprint vector
	Embed(ctx context.Context, w audio.Waveform) ([]float64, error)

	// Dim returns the embedding dimension
	Dim() int

	// Close releases resources
	Close() error

	// IsInitialized returns true if the engine is initialized
	IsInitialized() bool
}

// DefaultConfig returns a default embedding configuration for 16 kHz audio.
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate: sampleRate,
		Bands:      24,
		FrameMS:    25,
		HopMS:      10,
	}
}
