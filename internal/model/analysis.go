package model

import "strings"

// Raw analysis payloads are decoded leniently: fields the inference backend
// has been seen to send with inconsistent types are kept as `any` and
// coerced by the emotion package.

// RawEmotion is one candidate emotion reported for a segment
type RawEmotion struct {
	Name       any `json:"name" bson:"name"`
	Score      any `json:"score" bson:"score"`
	Percentage any `json:"percentage,omitempty" bson:"percentage,omitempty"`
	Category   any `json:"category,omitempty" bson:"category,omitempty"`
}

// RawSegment is a prosody or burst detection
type RawSegment struct {
	TimeStart       any          `json:"time_start" bson:"time_start"`
	TimeEnd         any          `json:"time_end" bson:"time_end"`
	Speaker         any          `json:"speaker,omitempty" bson:"speaker,omitempty"`
	Text            any          `json:"text,omitempty" bson:"text,omitempty"`
	TranscriptText  any          `json:"transcript_text,omitempty" bson:"transcript_text,omitempty"`
	PrimaryCategory any          `json:"primary_category,omitempty" bson:"primary_category,omitempty"`
	Source          string       `json:"source,omitempty" bson:"source,omitempty"`
	TopEmotions     []RawEmotion `json:"top_emotions" bson:"top_emotions"`
}

// RawWord is a word-level timing inside a transcript entry
type RawWord struct {
	Word  string `json:"word,omitempty" bson:"word,omitempty"`
	Start any    `json:"start" bson:"start"`
	End   any    `json:"end" bson:"end"`
}

// RawTranscriptEntry is one diarized transcript turn from the voice agent platform
type RawTranscriptEntry struct {
	Speaker    any       `json:"speaker,omitempty" bson:"speaker,omitempty"`
	Role       any       `json:"role,omitempty" bson:"role,omitempty"`
	Start      any       `json:"start,omitempty" bson:"start,omitempty"`
	End        any       `json:"end,omitempty" bson:"end,omitempty"`
	Text       any       `json:"text,omitempty" bson:"text,omitempty"`
	Content    any       `json:"content,omitempty" bson:"content,omitempty"`
	Confidence any       `json:"confidence,omitempty" bson:"confidence,omitempty"`
	Words      []RawWord `json:"words,omitempty" bson:"words,omitempty"`
}

// OverallEmotion is an upstream-provided call level judgment
type OverallEmotion struct {
	Label       string   `json:"label" bson:"label"`
	CallOutcome any      `json:"call_outcome,omitempty" bson:"call_outcome,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty" bson:"confidence,omitempty"`
	Reasoning   string   `json:"reasoning,omitempty" bson:"reasoning,omitempty"`
	Source      string   `json:"source,omitempty" bson:"source,omitempty"`
}

// AnalysisMetadata carries call context attached by the inference backend
type AnalysisMetadata struct {
	AnalysisType        string               `json:"analysis_type,omitempty" bson:"analysis_type,omitempty"`
	RetellCallID        string               `json:"retell_call_id,omitempty" bson:"retell_call_id,omitempty"`
	RecordingURL        string               `json:"recording_multi_channel_url,omitempty" bson:"recording_multi_channel_url,omitempty"`
	DurationMS          any                  `json:"duration_ms,omitempty" bson:"duration_ms,omitempty"`
	StartTimestamp      any                  `json:"start_timestamp,omitempty" bson:"start_timestamp,omitempty"`
	EndTimestamp        any                  `json:"end_timestamp,omitempty" bson:"end_timestamp,omitempty"`
	TranscriptAvailable bool                 `json:"retell_transcript_available,omitempty" bson:"retell_transcript_available,omitempty"`
	TranscriptSegments  []RawTranscriptEntry `json:"retell_transcript_segments,omitempty" bson:"retell_transcript_segments,omitempty"`
	OverallCallEmotion  *OverallEmotion      `json:"overall_call_emotion,omitempty" bson:"overall_call_emotion,omitempty"`
	OverallCallStatus   *OverallEmotion      `json:"overall_call_status,omitempty" bson:"overall_call_status,omitempty"`
	CategoryCounts      map[string]int       `json:"category_counts,omitempty" bson:"category_counts,omitempty"`
}

// AnalysisResults is the per-recording analysis body
type AnalysisResults struct {
	Filename           string            `json:"filename,omitempty" bson:"filename,omitempty"`
	Prosody            []RawSegment      `json:"prosody" bson:"prosody"`
	Burst              []RawSegment      `json:"burst,omitempty" bson:"burst,omitempty"`
	Metadata           *AnalysisMetadata `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Summary            string            `json:"summary,omitempty" bson:"summary,omitempty"`
	OverallCallEmotion *OverallEmotion   `json:"overall_call_emotion,omitempty" bson:"overall_call_emotion,omitempty"`
}

// AnalysisResponse is the envelope returned by the inference backend
type AnalysisResponse struct {
	Success      bool             `json:"success" bson:"success"`
	CallID       string           `json:"call_id,omitempty" bson:"call_id,omitempty"`
	Filename     string           `json:"filename,omitempty" bson:"filename,omitempty"`
	Status       string           `json:"status,omitempty" bson:"status,omitempty"`
	Message      string           `json:"message,omitempty" bson:"message,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty" bson:"error_message,omitempty"`
	Detail       string           `json:"detail,omitempty" bson:"detail,omitempty"`
	Results      *AnalysisResults `json:"results,omitempty" bson:"results,omitempty"`
	RecordingURL string           `json:"recording_url,omitempty" bson:"recording_url,omitempty"`
}

// UpstreamOverallEmotion returns the overall emotion the backend attached.
// The top-level value wins over metadata, and overall_call_emotion over the
// older overall_call_status.
func (r *AnalysisResults) UpstreamOverallEmotion() *OverallEmotion {
	if r == nil {
		return nil
	}
	candidates := []*OverallEmotion{r.OverallCallEmotion}
	if r.Metadata != nil {
		candidates = append(candidates, r.Metadata.OverallCallEmotion, r.Metadata.OverallCallStatus)
	}
	for _, c := range candidates {
		if c != nil && strings.TrimSpace(c.Label) != "" {
			return c
		}
	}
	return nil
}

// TranscriptEntries returns the transcript carried in metadata, if any.
func (r *AnalysisResults) TranscriptEntries() []RawTranscriptEntry {
	if r == nil || r.Metadata == nil {
		return nil
	}
	return r.Metadata.TranscriptSegments
}
