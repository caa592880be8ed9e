// Package textproc post-processes recognizer output before it is attached
// to diarized segments.
package textproc

import (
	"strings"
	"unicode"
)

// FormatTranscript tidies raw recognizer text: collapses runs of whitespace
// and capitalizes the first letter of each sentence.
func FormatTranscript(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	text := strings.Join(fields, " ")

	runes := []rune(text)
	atSentenceStart := true
	for i, r := range runes {
		switch {
		case atSentenceStart && unicode.IsLetter(r):
			runes[i] = unicode.ToUpper(r)
			atSentenceStart = false
		case r == '.' || r == '!' || r == '?':
			atSentenceStart = true
		case !unicode.IsSpace(r):
			atSentenceStart = false
		}
	}
	return string(runes)
}
