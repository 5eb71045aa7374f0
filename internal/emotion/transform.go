// Package emotion turns raw per-segment emotion detections into the
// time-indexed chart, speaker timeline and aggregate summaries shown on a
// call dashboard. Everything here is a pure function of its input.
package emotion

import "callmood/internal/model"

// Bundle is the complete dashboard view of one analysis.
type Bundle struct {
	ChartData           []ChartPoint                    `json:"chartData" yaml:"chartData"`
	Emotions            []string                        `json:"emotions" yaml:"emotions"`
	SpeakerTimeline     SpeakerTimeline                 `json:"speakerTimeline" yaml:"speakerTimeline"`
	EmotionTimeline     map[Scope][]EmotionTimelinePart `json:"emotionTimeline" yaml:"emotionTimeline"`
	CategorizedEmotions map[Category][]EmotionStat      `json:"categorizedEmotions" yaml:"categorizedEmotions"`
	CategoryCounts      map[Category]int                `json:"categoryCounts" yaml:"categoryCounts"`
	TranscriptSegments  []TranscriptSegment             `json:"transcriptSegments" yaml:"transcriptSegments"`
	OverallEmotion      *OverallEmotion                 `json:"overallEmotion" yaml:"overallEmotion"`
	SpeakerMetrics      map[Scope]MetricSummary         `json:"speakerMetrics" yaml:"speakerMetrics"`
}

// Options tunes a Transform run.
type Options struct {
	// IgnoreBursts leaves burst detections out of the emotion statistics.
	IgnoreBursts bool
}

var scopeLabels = map[Scope]string{
	ScopeCombined: "Call",
	ScopeAgent:    SpeakerAgent,
	ScopeCustomer: SpeakerCustomer,
}

// Transform builds the dashboard bundle for one analysis response. A nil
// response or one without prosody yields a fully shaped empty bundle.
func Transform(resp *model.AnalysisResponse, opts Options) Bundle {
	var results *model.AnalysisResults
	if resp != nil {
		results = resp.Results
	}

	transcript := BuildTranscript(results.TranscriptEntries())
	if results == nil || len(results.Prosody) == 0 {
		return emptyBundle(results, transcript)
	}

	var bursts []model.RawSegment
	if !opts.IgnoreBursts {
		bursts = results.Burst
	}
	in := ingest(results.Prosody, bursts, transcript)

	timeline, latestTime := BuildSpeakerTimeline(in.segments, transcript, in.latestTime)
	duration := metadataDuration(results)
	if duration <= 0 {
		duration = latestTime
	}
	timeline.Duration = duration

	summaries := make(map[Scope]MetricSummary, len(Scopes))
	for _, scope := range Scopes {
		summaries[scope] = in.metrics[scope].Materialize()
	}

	combined := summaries[ScopeCombined]
	overall := fromUpstream(results.UpstreamOverallEmotion(), combined)
	if overall == nil {
		overall = DeriveOverallEmotion(combined, scopeLabels[ScopeCombined], nil)
	}
	combined.OverallEmotion = overall
	summaries[ScopeCombined] = combined
	for _, scope := range []Scope{ScopeAgent, ScopeCustomer} {
		s := summaries[scope]
		s.OverallEmotion = DeriveOverallEmotion(s, scopeLabels[scope], overall)
		summaries[scope] = s
	}

	return Bundle{
		ChartData:           BuildChartSeries(in.segments),
		Emotions:            emotionNames(results.Prosody),
		SpeakerTimeline:     timeline,
		EmotionTimeline:     summarizeScopes(in.segments, duration),
		CategorizedEmotions: combined.CategorizedEmotions,
		CategoryCounts:      combined.CategoryCounts,
		TranscriptSegments:  transcript,
		OverallEmotion:      overall,
		SpeakerMetrics:      summaries,
	}
}

func summarizeScopes(segments []Segment, duration float64) map[Scope][]EmotionTimelinePart {
	byScope := make(map[Scope][]Segment, 2)
	for _, seg := range segments {
		if scope, ok := ScopeForSpeaker(seg.Speaker); ok {
			byScope[scope] = append(byScope[scope], seg)
		}
	}
	return map[Scope][]EmotionTimelinePart{
		ScopeCombined: SummarizeThirds(segments, duration, false),
		ScopeAgent:    SummarizeThirds(byScope[ScopeAgent], duration, true),
		ScopeCustomer: SummarizeThirds(byScope[ScopeCustomer], duration, true),
	}
}

func emptyBundle(results *model.AnalysisResults, transcript []TranscriptSegment) Bundle {
	duration := metadataDuration(results)
	summaries := make(map[Scope]MetricSummary, len(Scopes))
	for _, scope := range Scopes {
		summaries[scope] = NewAccumulator().Materialize()
	}

	combined := summaries[ScopeCombined]
	combined.OverallEmotion = fromUpstream(results.UpstreamOverallEmotion(), combined)
	summaries[ScopeCombined] = combined

	return Bundle{
		ChartData: []ChartPoint{},
		Emotions:  []string{},
		SpeakerTimeline: SpeakerTimeline{
			Duration: duration,
			Speakers: []string{SpeakerCustomer, SpeakerAgent},
			Segments: map[string][]TimelineSegment{SpeakerCustomer: {}, SpeakerAgent: {}},
		},
		EmotionTimeline:     summarizeScopes(nil, duration),
		CategorizedEmotions: combined.CategorizedEmotions,
		CategoryCounts:      combined.CategoryCounts,
		TranscriptSegments:  transcript,
		OverallEmotion:      combined.OverallEmotion,
		SpeakerMetrics:      summaries,
	}
}

func metadataDuration(results *model.AnalysisResults) float64 {
	if results == nil || results.Metadata == nil {
		return 0
	}
	ms, ok := toFloat(results.Metadata.DurationMS)
	if !ok || ms <= 0 {
		return 0
	}
	return ms / 1000
}

// Outcome is the caller-facing reading of a finished transform.
type Outcome string

const (
	OutcomeOK                  Outcome = "ok"
	OutcomeNoSpeech            Outcome = "no_speech"
	OutcomeNoEmotions          Outcome = "no_emotions"
	OutcomeNoChartableSegments Outcome = "no_chartable_segments"
)

// Retryable reports whether re-running analysis could change the outcome.
func (o Outcome) Retryable() bool {
	return o != OutcomeNoSpeech
}

// Message is a user-facing description of the outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeNoSpeech:
		return "No speech detected in this recording."
	case OutcomeNoEmotions:
		return "No emotions detected."
	case OutcomeNoChartableSegments:
		return "No chartable segments in this analysis."
	default:
		return ""
	}
}

// Classify interprets a bundle together with the response it came from.
func Classify(resp *model.AnalysisResponse, b Bundle) Outcome {
	if resp != nil && resp.Results != nil && len(resp.Results.Prosody) == 0 && len(resp.Results.Burst) > 0 {
		return OutcomeNoSpeech
	}
	if len(b.Emotions) == 0 {
		return OutcomeNoEmotions
	}
	if len(b.ChartData) == 0 {
		return OutcomeNoChartableSegments
	}
	return OutcomeOK
}
