package diarize

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures so callers can branch on the failure
// class instead of parsing message text.
type Kind int

const (
	// KindInput covers unreadable or undecodable audio, empty waveforms,
	// and degenerate segment slices.
	KindInput Kind = iota + 1

	// KindNoSpeech marks the no-speech outcome. It is reported through the
	// error channel like the other kinds but is a legitimate empty result,
	// not a fault.
	KindNoSpeech

	// KindModelLoad marks engine initialization failure at process start.
	// The process cannot serve any request and should exit.
	KindModelLoad

	// KindProcessing covers unexpected failures during segmentation,
	// extraction, or clustering.
	KindProcessing
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindNoSpeech:
		return "no_speech"
	case KindModelLoad:
		return "model_load"
	case KindProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// Error is a classified pipeline error. The message is diagnostic text only;
// the kind is the contract.
type Error struct {
	kind Kind
	msg  string
	err  error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.err == nil {
		return e.msg
	}
	if e.msg == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

// Kind returns the failure classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// InputError creates a KindInput error.
func InputError(msg string, err error) *Error {
	return &Error{kind: KindInput, msg: msg, err: err}
}

// NoSpeechError creates the KindNoSpeech outcome.
func NoSpeechError() *Error {
	return &Error{kind: KindNoSpeech, msg: "No speech detected"}
}

// ModelLoadError creates a KindModelLoad error.
func ModelLoadError(msg string, err error) *Error {
	return &Error{kind: KindModelLoad, msg: msg, err: err}
}

// ProcessingError creates a KindProcessing error.
func ProcessingError(msg string, err error) *Error {
	return &Error{kind: KindProcessing, msg: msg, err: err}
}

// KindOf returns the kind of err, or KindProcessing for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind()
	}
	return KindProcessing
}
