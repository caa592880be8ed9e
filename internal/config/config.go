package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/emmett/diar/internal/audio"
	"github.com/emmett/diar/internal/cluster"
	"github.com/emmett/diar/internal/embed"
)

// Config represents the application configuration
type Config struct {
	// Audio settings
	Audio struct {
		SampleRate int `yaml:"sample_rate"`
	} `yaml:"audio"`

	// VAD settings
	VAD struct {
		FrameMS         int     `yaml:"frame_ms"`
		EnergyThreshold float64 `yaml:"energy_threshold"`
		SpeechFrames    int     `yaml:"speech_frames"`
		SilenceFrames   int     `yaml:"silence_frames"`
		PadMS           int     `yaml:"pad_ms"`
		MergeGapMS      int     `yaml:"merge_gap_ms"`
		MinSpeechMS     int     `yaml:"min_speech_ms"`
	} `yaml:"vad"`

	// Clustering settings
	Cluster struct {
		Threshold float64 `yaml:"threshold"`
	} `yaml:"cluster"`

	// Embedding settings
	Embedding struct {
		Bands   int `yaml:"bands"`
		FrameMS int `yaml:"frame_ms"`
		HopMS   int `yaml:"hop_ms"`
	} `yaml:"embedding"`

	// Transcription settings
	Transcribe struct {
		Enabled bool   `yaml:"enabled"`
		Model   string `yaml:"model"`
	} `yaml:"transcribe"`

	// Output settings
	Output struct {
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"output"`

	// Logging settings
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Audio.SampleRate = 16000

	vad := audio.DefaultVADConfig()
	cfg.VAD.FrameMS = vad.FrameMS
	cfg.VAD.EnergyThreshold = vad.EnergyThreshold
	cfg.VAD.SpeechFrames = vad.SpeechFrames
	cfg.VAD.SilenceFrames = vad.SilenceFrames
	cfg.VAD.PadMS = vad.PadMS
	cfg.VAD.MergeGapMS = vad.MergeGapMS
	cfg.VAD.MinSpeechMS = vad.MinSpeechMS

	cfg.Cluster.Threshold = cluster.DefaultThreshold

	emb := embed.DefaultConfig(cfg.Audio.SampleRate)
	cfg.Embedding.Bands = emb.Bands
	cfg.Embedding.FrameMS = emb.FrameMS
	cfg.Embedding.HopMS = emb.HopMS

	cfg.Transcribe.Enabled = false
	cfg.Transcribe.Model = ""

	cfg.Output.Format = "json"
	cfg.Output.File = ""

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"

	return cfg
}

// VADConfig converts the VAD section to the detector configuration.
func (c *Config) VADConfig() audio.VADConfig {
	return audio.VADConfig{
		FrameMS:         c.VAD.FrameMS,
		EnergyThreshold: c.VAD.EnergyThreshold,
		SpeechFrames:    c.VAD.SpeechFrames,
		SilenceFrames:   c.VAD.SilenceFrames,
		PadMS:           c.VAD.PadMS,
		MergeGapMS:      c.VAD.MergeGapMS,
		MinSpeechMS:     c.VAD.MinSpeechMS,
	}
}

// EmbeddingConfig converts the embedding section to the engine configuration.
func (c *Config) EmbeddingConfig() embed.Config {
	return embed.Config{
		SampleRate: c.Audio.SampleRate,
		Bands:      c.Embedding.Bands,
		FrameMS:    c.Embedding.FrameMS,
		HopMS:      c.Embedding.HopMS,
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithFallback attempts to load configuration from multiple locations
// Priority: explicit path > ~/.diarrc > /etc/diar/config.yaml
func LoadWithFallback(explicitPath string) (*Config, error) {
	// If explicit path is provided, use it
	if explicitPath != "" {
		return Load(explicitPath)
	}

	// Try user config (~/.diarrc)
	homeDir, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(homeDir, ".diarrc")
		if _, err := os.Stat(userConfigPath); err == nil {
			cfg, err := Load(userConfigPath)
			if err == nil {
				return cfg, nil
			}
		}
	}

	// Try system config (/etc/diar/config.yaml)
	systemConfigPath := "/etc/diar/config.yaml"
	if _, err := os.Stat(systemConfigPath); err == nil {
		cfg, err := Load(systemConfigPath)
		if err == nil {
			return cfg, nil
		}
	}

	// No config file found, return defaults
	return DefaultConfig(), nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
