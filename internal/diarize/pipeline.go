// Package diarize runs the speaker diarization pipeline: normalize the
// recording, detect speech intervals, extract one voiceprint per interval,
// cluster the voiceprints into speakers, and assemble the labeled result.
package diarize

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/emmett/diar/internal/audio"
	"github.com/emmett/diar/internal/cluster"
	"github.com/emmett/diar/internal/embed"
	"github.com/emmett/diar/internal/stt"
	"github.com/emmett/diar/internal/textproc"
)

// Options holds per-pipeline tunables.
type Options struct {
	// SampleRate is the canonical sample rate every stage after the
	// normalizer sees.
	SampleRate int

	// ClusterThreshold is the cosine-distance cutoff for the clusterer.
	ClusterThreshold float64
}

// DefaultOptions returns the default pipeline options.
func DefaultOptions() Options {
	return Options{
		SampleRate:       16000,
		ClusterThreshold: cluster.DefaultThreshold,
	}
}

// record binds one speech interval to its audio slice, voiceprint, cluster
// label, and optional transcript. Keeping these in one record avoids
// threading separately-indexed parallel arrays through the stages.
type record struct {
	interval   audio.Interval
	slice      audio.Waveform
	voiceprint []float64
	label      int
	text       string
}

// Pipeline is a single-recording diarization run bound to its engines.
// Engines are constructed once per process and passed in; the pipeline never
// constructs its own, so tests can substitute fakes. A Pipeline is safe for
// concurrent Run calls as long as its engines guard their own state.
type Pipeline struct {
	opts        Options
	detector    audio.Detector
	embedder    embed.Engine
	transcriber stt.Engine
	log         zerolog.Logger
}

// New creates a pipeline. transcriber may be nil to disable per-segment
// transcription.
func New(opts Options, detector audio.Detector, embedder embed.Engine, transcriber stt.Engine, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		opts:        opts,
		detector:    detector,
		embedder:    embedder,
		transcriber: transcriber,
		log:         log,
	}
}

// WithThreshold returns a copy of the pipeline using a different cluster
// threshold. The engines are shared.
func (p *Pipeline) WithThreshold(threshold float64) *Pipeline {
	cp := *p
	cp.opts.ClusterThreshold = threshold
	return &cp
}

// Run diarizes one recording. Every stage failure comes back as a classified
// *Error; panics in any stage are converted to a processing error rather
// than crossing the API boundary.
func (p *Pipeline) Run(ctx context.Context, path string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = ProcessingError("pipeline panic", fmt.Errorf("%v", r))
		}
	}()

	w, err := audio.Normalize(path, p.opts.SampleRate)
	if err != nil {
		return nil, InputError("failed to load audio", err)
	}
	p.log.Debug().
		Str("path", path).
		Float64("duration", w.Duration()).
		Int("sample_rate", w.SampleRate).
		Msg("audio normalized")

	intervals, err := p.detector.Detect(w)
	if err != nil {
		return nil, ProcessingError("speech detection failed", err)
	}
	if len(intervals) == 0 {
		return nil, NoSpeechError()
	}
	p.log.Debug().Int("intervals", len(intervals)).Msg("speech detected")

	records := make([]record, len(intervals))
	prints := make([][]float64, len(intervals))
	for i, iv := range intervals {
		slice, err := w.Slice(iv.Start, iv.End)
		if err != nil {
			return nil, InputError(fmt.Sprintf("segment %d", i), err)
		}

		vp, err := p.embedder.Embed(ctx, slice)
		if err != nil {
			// A segment the engine rejects for its shape is an input defect,
			// same class as a degenerate slice.
			if errors.Is(err, embed.ErrInvalidSegment) {
				return nil, InputError(fmt.Sprintf("segment %d", i), err)
			}
			return nil, ProcessingError(fmt.Sprintf("embedding segment %d", i), err)
		}

		records[i] = record{interval: iv, slice: slice, voiceprint: vp}
		prints[i] = vp
	}

	labels, err := cluster.Agglomerative(prints, p.opts.ClusterThreshold)
	if err != nil {
		return nil, ProcessingError("clustering failed", err)
	}
	if len(labels) != len(records) {
		return nil, ProcessingError("clustering failed",
			fmt.Errorf("got %d labels for %d segments", len(labels), len(records)))
	}
	for i := range records {
		records[i].label = labels[i]
	}

	if p.transcriber != nil {
		if err := p.transcribe(ctx, records); err != nil {
			return nil, err
		}
	}

	result = assemble(records)
	p.log.Info().
		Int("segments", len(result.Segments)).
		Int("speakers", len(result.Speakers)).
		Msg("diarization complete")
	return result, nil
}

// transcribe attaches recognized text to each segment record.
func (p *Pipeline) transcribe(ctx context.Context, records []record) error {
	for i := range records {
		text, err := p.transcriber.Transcribe(ctx, records[i].slice.PCM16())
		if err != nil {
			return ProcessingError(fmt.Sprintf("transcribing segment %d", i), err)
		}
		records[i].text = textproc.FormatTranscript(text)
	}
	return nil
}
