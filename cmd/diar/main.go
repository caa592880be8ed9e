package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/emmett/diar/internal/audio"
	"github.com/emmett/diar/internal/config"
	"github.com/emmett/diar/internal/diarize"
	"github.com/emmett/diar/internal/embed"
	"github.com/emmett/diar/internal/logging"
	"github.com/emmett/diar/internal/models"
	"github.com/emmett/diar/internal/output"
	"github.com/emmett/diar/internal/server/mcp"
	"github.com/emmett/diar/internal/stt"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// CLI flags
var (
	configFile     = flag.String("config", "", "Path to configuration file (default: ~/.diarrc or /etc/diar/config.yaml)")
	mode           = flag.String("mode", "cli", "Operation mode: cli, mcp")
	outputFormat   = flag.String("format", "json", "Output format: json, text")
	outputFile     = flag.String("output", "", "Output file (default: stdout)")
	threshold      = flag.Float64("threshold", 0.7, "Cosine-distance cluster cutoff (lower=more speakers)")
	vadThreshold   = flag.Float64("vad-threshold", 0.01, "VAD energy threshold (0.001-0.1, lower=more sensitive)")
	transcribe     = flag.Bool("transcribe", false, "Attach a transcript to each segment")
	modelName      = flag.String("model", "", "Transcription model (default: "+models.DefaultModelName+")")
	listModels     = flag.Bool("list-models", false, "List all available transcription models for download")
	listDownloaded = flag.Bool("list-downloaded", false, "List all downloaded transcription models")
	downloadModel  = flag.String("download-model", "", "Download a specific transcription model by name")
	setDefault     = flag.String("set-default", "", "Set a transcription model as the default")
	logLevel       = flag.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	showVersion    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	// Apply config values as defaults (CLI flags override if explicitly set)
	applyConfigDefaults(cfg)

	if *showVersion {
		fmt.Printf("Diar v%s\n", Version)
		fmt.Printf("  Commit: %s\n", GitCommit)
		fmt.Printf("  Built:  %s\n", BuildTime)
		os.Exit(0)
	}

	log := logging.New(*logLevel, cfg.Logging.Format)

	// Handle model management commands
	if *listModels {
		for _, m := range models.AvailableModels {
			fmt.Printf("%-32s %-6s %-5s %s\n", m.Name, m.Language, m.Size, m.Description)
		}
		return
	}

	if *listDownloaded {
		downloaded, err := models.ListDownloaded()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to list models")
		}
		for _, name := range downloaded {
			fmt.Println(name)
		}
		return
	}

	if *downloadModel != "" {
		log.Info().Str("model", *downloadModel).Msg("downloading model")
		if err := models.Download(*downloadModel); err != nil {
			log.Fatal().Err(err).Msg("download failed")
		}
		return
	}

	if *setDefault != "" {
		if err := models.SetDefaultModel(*setDefault); err != nil {
			log.Fatal().Err(err).Msg("failed to set default model")
		}
		return
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("fatal error")
	}
}

// applyConfigDefaults applies configuration values as defaults
// CLI flags override config file values if explicitly set
func applyConfigDefaults(cfg *config.Config) {
	flagsSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		flagsSet[f.Name] = true
	})

	if !flagsSet["format"] && cfg.Output.Format != "" {
		*outputFormat = cfg.Output.Format
	}

	if !flagsSet["output"] && cfg.Output.File != "" {
		*outputFile = cfg.Output.File
	}

	if !flagsSet["threshold"] && cfg.Cluster.Threshold > 0 {
		*threshold = cfg.Cluster.Threshold
	}

	if !flagsSet["vad-threshold"] && cfg.VAD.EnergyThreshold > 0 {
		*vadThreshold = cfg.VAD.EnergyThreshold
	}

	if !flagsSet["transcribe"] {
		*transcribe = cfg.Transcribe.Enabled
	}

	if !flagsSet["model"] && cfg.Transcribe.Model != "" {
		*modelName = cfg.Transcribe.Model
	}

	if !flagsSet["log-level"] && cfg.Logging.Level != "" {
		*logLevel = cfg.Logging.Level
	}
}

// buildPipeline performs the one-time engine initialization and wires the
// pipeline. Engine load failure is fatal: the process cannot serve any
// request without its models.
func buildPipeline(cfg *config.Config, log zerolog.Logger) (*diarize.Pipeline, func(), error) {
	embedder := embed.NewSpectralEngine()
	if err := embedder.Initialize(cfg.EmbeddingConfig()); err != nil {
		return nil, nil, diarize.ModelLoadError("failed to initialize embedding engine", err)
	}

	var transcriber stt.Engine
	if *transcribe {
		name := *modelName
		if name == "" {
			var err error
			name, err = models.GetDefaultModel()
			if err != nil {
				embedder.Close()
				return nil, nil, diarize.ModelLoadError("failed to resolve default model", err)
			}
		}

		modelPath, err := models.GetModelPath(name)
		if err != nil {
			embedder.Close()
			return nil, nil, diarize.ModelLoadError("transcription model unavailable", err)
		}

		engine := stt.NewVoskEngine()
		sttConfig := stt.DefaultConfig(modelPath)
		sttConfig.SampleRate = cfg.Audio.SampleRate
		if err := engine.Initialize(sttConfig); err != nil {
			embedder.Close()
			return nil, nil, diarize.ModelLoadError("failed to initialize STT engine", err)
		}
		transcriber = engine
	}

	vadConfig := cfg.VADConfig()
	vadConfig.EnergyThreshold = *vadThreshold
	detector := audio.NewEnergyDetector(vadConfig)

	opts := diarize.Options{
		SampleRate:       cfg.Audio.SampleRate,
		ClusterThreshold: *threshold,
	}

	pipeline := diarize.New(opts, detector, embedder, transcriber, log)

	teardown := func() {
		embedder.Close()
		if transcriber != nil {
			transcriber.Close()
		}
	}
	return pipeline, teardown, nil
}

func run(cfg *config.Config, log zerolog.Logger) error {
	pipeline, teardown, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer teardown()

	if *mode == "mcp" {
		return runMCPServer(pipeline, log)
	}

	// Determine output writer
	writer := os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	var formatter output.Formatter
	switch *outputFormat {
	case "json":
		formatter = output.NewJSONFormatter(writer)
	case "text":
		formatter = output.NewTextFormatter(writer)
	default:
		return fmt.Errorf("unknown output format: %s (valid: json, text)", *outputFormat)
	}

	if flag.NArg() != 1 {
		formatter.WriteError(fmt.Errorf("usage: diar [flags] <audio-file>"))
		os.Exit(1)
	}
	path := flag.Arg(0)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	result, err := pipeline.Run(ctx, path)
	if err != nil {
		// Every post-init failure, no-speech included, becomes the single
		// structured error object on the chosen output.
		return formatter.WriteError(err)
	}
	return formatter.WriteResult(result)
}

// runMCPServer starts the MCP server on stdin/stdout
func runMCPServer(pipeline *diarize.Pipeline, log zerolog.Logger) error {
	serverConfig := mcp.Config{
		ServerName:    "diar-mcp",
		ServerVersion: Version,
	}

	server, err := mcp.NewServer(serverConfig, pipeline)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	log.Info().Str("server", serverConfig.ServerName).Msg("MCP server ready on stdin/stdout")

	select {
	case <-sigChan:
		log.Info().Msg("shutting down MCP server")
		return server.Stop()
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
