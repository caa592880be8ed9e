package stt

import "context"

// Config holds configuration for the STT engine
type Config struct {
	// ModelPath is the path to the STT model directory
	ModelPath string

	// SampleRate is the audio sample rate in Hz
	SampleRate int
}

// Engine is the interface for speech-to-text engines used to attach a
// transcript to each diarized segment. Transcribe is batch-oriented: one
// call per segment, no state carried between calls.
type Engine interface {
	// Initialize initializes the engine with the given configuration
	Initialize(config Config) error

	// Transcribe recognizes one complete segment of 16-bit PCM audio and
	// returns the final text
	Transcribe(ctx context.Context, audioData []byte) (string, error)

	// Close releases resources
	Close() error

	// IsInitialized returns true if the engine is initialized
	IsInitialized() bool
}

// DefaultConfig returns a default STT configuration
func DefaultConfig(modelPath string) Config {
	return Config{
		ModelPath:  modelPath,
		SampleRate: 16000,
	}
}
