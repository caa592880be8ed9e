package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/emmett/diar/internal/diarize"
)

// Formatter renders exactly one diarization result or one structured error
// per invocation, so a calling process can always parse a single well-formed
// object from the run's output.
type Formatter interface {
	// WriteResult writes the diarization result
	WriteResult(result *diarize.Result) error

	// WriteError writes the structured error object
	WriteError(err error) error
}

// errorBody is the structured error object
type errorBody struct {
	Error string `json:"error"`
}

// JSONFormatter emits the result as a single JSON object
type JSONFormatter struct {
	encoder *json.Encoder
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(writer io.Writer) *JSONFormatter {
	return &JSONFormatter{encoder: json.NewEncoder(writer)}
}

// WriteResult writes the diarization result in JSON format
func (j *JSONFormatter) WriteResult(result *diarize.Result) error {
	return j.encoder.Encode(result)
}

// WriteError writes the structured error in JSON format
func (j *JSONFormatter) WriteError(err error) error {
	return j.encoder.Encode(errorBody{Error: err.Error()})
}

// TextFormatter emits a human-readable segment listing
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new plain text formatter
func NewTextFormatter(writer io.Writer) *TextFormatter {
	return &TextFormatter{writer: writer}
}

// WriteResult writes the diarization result as one line per segment
func (t *TextFormatter) WriteResult(result *diarize.Result) error {
	for _, seg := range result.Segments {
		line := fmt.Sprintf("[%8.2f - %8.2f] %s", seg.Start, seg.End, seg.Speaker)
		if seg.Text != "" {
			line += ": " + seg.Text
		}
		if _, err := fmt.Fprintln(t.writer, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(t.writer, "speakers: %d\n", len(result.Speakers))
	return err
}

// WriteError writes the error as a single line
func (t *TextFormatter) WriteError(err error) error {
	_, werr := fmt.Fprintf(t.writer, "error: %s\n", err.Error())
	return werr
}
