package emotion

import (
	"sort"

	"callmood/internal/model"
)

// TranscriptSegment is one speaker-labelled span of the call transcript.
type TranscriptSegment struct {
	Speaker    string   `json:"speaker" yaml:"speaker"`
	Start      float64  `json:"start" yaml:"start"`
	End        float64  `json:"end" yaml:"end"`
	Text       string   `json:"text" yaml:"text"`
	Confidence *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// BuildTranscript converts raw transcript turns into a sorted segment list.
// Entries without a usable speaker or time range are dropped. Missing
// start/end values fall back to the first/last word timing.
func BuildTranscript(entries []model.RawTranscriptEntry) []TranscriptSegment {
	segments := make([]TranscriptSegment, 0, len(entries))
	for _, e := range entries {
		speaker := NormalizeSpeaker(e.Speaker)
		if speaker == "" {
			speaker = NormalizeSpeaker(e.Role)
		}
		if speaker == "" {
			continue
		}

		start, okStart := toFloat(e.Start)
		end, okEnd := toFloat(e.End)
		if !okStart && len(e.Words) > 0 {
			start, okStart = toFloat(e.Words[0].Start)
		}
		if !okEnd && len(e.Words) > 0 {
			end, okEnd = toFloat(e.Words[len(e.Words)-1].End)
		}
		if !okStart || !okEnd {
			continue
		}
		if end < start {
			start, end = end, start
		}

		text := toText(e.Content)
		if text == "" {
			text = toText(e.Text)
		}

		seg := TranscriptSegment{Speaker: speaker, Start: start, End: end, Text: text}
		if c, ok := toFloat(e.Confidence); ok {
			seg.Confidence = &c
		}
		segments = append(segments, seg)
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
	return segments
}

// FindSpeakerForRange returns the speaker of the transcript segment with the
// largest positive overlap with [start, end]. The first segment wins ties.
// It returns "" when nothing overlaps.
func FindSpeakerForRange(start, end float64, segments []TranscriptSegment) string {
	best, bestOverlap := "", 0.0
	for _, seg := range segments {
		if o := overlap(start, end, seg.Start, seg.End); o > bestOverlap {
			best, bestOverlap = seg.Speaker, o
		}
	}
	return best
}
