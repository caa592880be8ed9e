package diarize

import "fmt"

// Segment is one labeled speech interval in the final result.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text,omitempty"`
}

// Result is the diarization output for one recording. Speakers is exactly
// the set of speaker tags appearing in Segments, and Segments preserves the
// order of the detected speech intervals.
type Result struct {
	Segments []Segment `json:"segments"`
	Speakers []string  `json:"speakers"`
}

// SpeakerTag formats a cluster label as the caller-facing speaker tag.
// Labels are per-run cluster ids, not stable cross-run identities.
func SpeakerTag(label int) string {
	return fmt.Sprintf("SPEAKER_%d", label)
}

// assemble zips the per-segment records into the final result. The distinct
// speaker list is deduplicated in first-appearance order.
func assemble(records []record) *Result {
	result := &Result{
		Segments: make([]Segment, 0, len(records)),
	}

	seen := make(map[string]bool)
	for _, rec := range records {
		tag := SpeakerTag(rec.label)
		result.Segments = append(result.Segments, Segment{
			Start:   rec.interval.Start,
			End:     rec.interval.End,
			Speaker: tag,
			Text:    rec.text,
		})
		if !seen[tag] {
			seen[tag] = true
			result.Speakers = append(result.Speakers, tag)
		}
	}

	return result
}
