package main

import (
	"testing"

	"github.com/emmett/diar/internal/config"
)

func TestApplyConfigDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cluster.Threshold = 0.55
	cfg.VAD.EnergyThreshold = 0.02
	cfg.Output.Format = "text"
	cfg.Output.File = "out.json"
	cfg.Transcribe.Enabled = true
	cfg.Transcribe.Model = "vosk-model-small-en-us-0.15"
	cfg.Logging.Level = "debug"

	// The test binary never sets any of the CLI flags, so every config
	// value must win.
	applyConfigDefaults(cfg)

	if *threshold != 0.55 {
		t.Errorf("threshold = %f, want 0.55", *threshold)
	}
	if *vadThreshold != 0.02 {
		t.Errorf("vad-threshold = %f, want 0.02", *vadThreshold)
	}
	if *outputFormat != "text" {
		t.Errorf("format = %q, want text", *outputFormat)
	}
	if *outputFile != "out.json" {
		t.Errorf("output = %q, want out.json", *outputFile)
	}
	if !*transcribe {
		t.Error("transcribe flag not enabled from config")
	}
	if *modelName != "vosk-model-small-en-us-0.15" {
		t.Errorf("model = %q", *modelName)
	}
	if *logLevel != "debug" {
		t.Errorf("log-level = %q, want debug", *logLevel)
	}
}
