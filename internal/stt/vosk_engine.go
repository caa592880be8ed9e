package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"
)

// VoskEngine implements the Engine interface using Vosk
type VoskEngine struct {
	model       *vosk.VoskModel
	recognizer  *vosk.VoskRecognizer
	config      Config
	mu          sync.Mutex
	initialized bool
}

// voskResult represents the JSON result from Vosk
type voskResult struct {
	Text string `json:"text"`
}

// NewVoskEngine creates a new Vosk STT engine
func NewVoskEngine() *VoskEngine {
	return &VoskEngine{}
}

// Initialize loads the model and creates the recognizer. The model load is
// the expensive one-time step; the recognizer is reused for every segment.
func (v *VoskEngine) Initialize(config Config) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.initialized {
		return fmt.Errorf("engine already initialized")
	}

	// Set log level (0 = errors only, higher = more verbose)
	vosk.SetLogLevel(-1) // Suppress logs

	model, err := vosk.NewModel(config.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load model from %s: %w", config.ModelPath, err)
	}
	if model == nil {
		return fmt.Errorf("failed to load model from %s: model returned nil", config.ModelPath)
	}
	v.model = model

	recognizer, err := vosk.NewRecognizer(model, float64(config.SampleRate))
	if err != nil {
		model.Free()
		return fmt.Errorf("failed to create recognizer: %w", err)
	}
	v.recognizer = recognizer

	v.config = config
	v.initialized = true

	return nil
}

// Transcribe recognizes one complete segment. FinalResult resets the
// recognizer, so consecutive segments do not leak state into each other.
func (v *VoskEngine) Transcribe(ctx context.Context, audioData []byte) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return "", fmt.Errorf("engine not initialized")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	v.recognizer.AcceptWaveform(audioData)

	resultJSON := v.recognizer.FinalResult()
	var result voskResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return "", fmt.Errorf("failed to parse result: %w", err)
	}

	return result.Text, nil
}

// Close releases resources
func (v *VoskEngine) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return nil
	}

	if v.recognizer != nil {
		v.recognizer.Free()
		v.recognizer = nil
	}

	if v.model != nil {
		v.model.Free()
		v.model = nil
	}

	v.initialized = false
	return nil
}

// IsInitialized returns true if the engine is initialized
func (v *VoskEngine) IsInitialized() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.initialized
}
