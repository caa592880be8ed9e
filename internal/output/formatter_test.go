package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/emmett/diar/internal/diarize"
)

func sampleResult() *diarize.Result {
	return &diarize.Result{
		Segments: []diarize.Segment{
			{Start: 0, End: 2, Speaker: "SPEAKER_0"},
			{Start: 2.5, End: 4.5, Speaker: "SPEAKER_1"},
		},
		Speakers: []string{"SPEAKER_0", "SPEAKER_1"},
	}
}

func TestJSONFormatter_WriteResult(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(&buf).WriteResult(sampleResult()); err != nil {
		t.Fatalf("WriteResult() error: %v", err)
	}

	var decoded struct {
		Segments []struct {
			Start   float64 `json:"start"`
			End     float64 `json:"end"`
			Speaker string  `json:"speaker"`
		} `json:"segments"`
		Speakers []string `json:"speakers"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(decoded.Segments) != 2 {
		t.Errorf("got %d segments, want 2", len(decoded.Segments))
	}
	if decoded.Segments[0].Speaker != "SPEAKER_0" {
		t.Errorf("first speaker = %q, want SPEAKER_0", decoded.Segments[0].Speaker)
	}
	if len(decoded.Speakers) != 2 {
		t.Errorf("got %d speakers, want 2", len(decoded.Speakers))
	}
}

func TestJSONFormatter_OmitsEmptyText(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(&buf).WriteResult(sampleResult()); err != nil {
		t.Fatalf("WriteResult() error: %v", err)
	}
	if strings.Contains(buf.String(), `"text"`) {
		t.Errorf("text field present for untranscribed segments: %s", buf.String())
	}
}

func TestJSONFormatter_WriteError(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(&buf).WriteError(errors.New("No speech detected")); err != nil {
		t.Fatalf("WriteError() error: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["error"] != "No speech detected" {
		t.Errorf("error = %q, want %q", decoded["error"], "No speech detected")
	}
	if len(decoded) != 1 {
		t.Errorf("error object has extra fields: %v", decoded)
	}
}

func TestTextFormatter_WriteResult(t *testing.T) {
	var buf bytes.Buffer
	result := sampleResult()
	result.Segments[0].Text = "hello"

	if err := NewTextFormatter(&buf).WriteResult(result); err != nil {
		t.Fatalf("WriteResult() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "SPEAKER_0") || !strings.Contains(out, "SPEAKER_1") {
		t.Errorf("output missing speaker tags: %s", out)
	}
	if !strings.Contains(out, ": hello") {
		t.Errorf("output missing transcript: %s", out)
	}
	if !strings.Contains(out, "speakers: 2") {
		t.Errorf("output missing speaker count: %s", out)
	}
}

func TestTextFormatter_WriteError(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextFormatter(&buf).WriteError(errors.New("boom")); err != nil {
		t.Fatalf("WriteError() error: %v", err)
	}
	if !strings.Contains(buf.String(), "error: boom") {
		t.Errorf("unexpected error output: %s", buf.String())
	}
}
