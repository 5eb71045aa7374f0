package emotion

import (
	"fmt"
	"strings"

	"callmood/internal/model"
)

// Overall emotion sources.
const (
	SourceMetrics  = "metrics"
	SourceExternal = "external"
)

// OverallEmotion is a headline sentiment for a scope.
type OverallEmotion struct {
	Label       Category `json:"label" yaml:"label"`
	CallOutcome any      `json:"call_outcome,omitempty" yaml:"call_outcome,omitempty"`
	Confidence  float64  `json:"confidence" yaml:"confidence"`
	Reasoning   string   `json:"reasoning" yaml:"reasoning"`
	Source      string   `json:"source" yaml:"source"`
}

// DeriveOverallEmotion picks the dominant category of a summary. Ranking is
// by count, then the strength of the category's top emotion, then the
// positive/neutral/negative order. fallback only contributes call_outcome.
// It returns nil for an empty summary.
func DeriveOverallEmotion(summary MetricSummary, label string, fallback *OverallEmotion) *OverallEmotion {
	if summary.SegmentCount <= 0 {
		return nil
	}

	dominant := Categories[0]
	for _, c := range Categories[1:] {
		if outranks(summary, c, dominant) {
			dominant = c
		}
	}

	count := summary.CategoryCounts[dominant]
	confidence := min(max(float64(count)/float64(summary.SegmentCount), 0), 1)

	out := &OverallEmotion{
		Label:      dominant,
		Confidence: round(confidence, 3),
		Reasoning:  reasoning(summary, label, dominant),
		Source:     SourceMetrics,
	}
	if fallback != nil {
		out.CallOutcome = fallback.CallOutcome
	}
	return out
}

func outranks(summary MetricSummary, a, b Category) bool {
	if ca, cb := summary.CategoryCounts[a], summary.CategoryCounts[b]; ca != cb {
		return ca > cb
	}
	if sa, sb := topStrength(summary, a), topStrength(summary, b); sa != sb {
		return sa > sb
	}
	return a.priority() < b.priority()
}

func topStrength(summary MetricSummary, c Category) float64 {
	stats := summary.CategorizedEmotions[c]
	if len(stats) == 0 {
		return 0
	}
	if stats[0].MaxScore > 0 {
		return stats[0].MaxScore
	}
	return stats[0].MaxPercentage / 100
}

func reasoning(summary MetricSummary, label string, dominant Category) string {
	total := summary.SegmentCount
	count := summary.CategoryCounts[dominant]
	share := float64(count) / float64(total) * 100

	var b strings.Builder
	fmt.Fprintf(&b, "%s was %s in %d of %d %s (%.1f%%).",
		label, dominant, count, total, plural(total, "segment", "segments"), share)

	if stats := summary.CategorizedEmotions[dominant]; len(stats) > 0 {
		top := stats[0]
		fmt.Fprintf(&b, " Strongest %s emotion: %s, peaking at %.1f%%.", dominant, top.Name, top.MaxPercentage)
	}

	if rest := total - count; rest > 0 {
		fmt.Fprintf(&b, " The remaining %d %s (%.1f%%) %s other categories.",
			rest, plural(rest, "segment", "segments"), 100-share, plural(rest, "was in", "were in"))
	}
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// fromUpstream converts a backend-provided judgment for the combined scope.
// Missing confidence is taken from the share of segments with that label.
func fromUpstream(up *model.OverallEmotion, combined MetricSummary) *OverallEmotion {
	if up == nil || strings.TrimSpace(up.Label) == "" {
		return nil
	}
	out := &OverallEmotion{
		Label:       NormalizeCategory(up.Label),
		CallOutcome: up.CallOutcome,
		Reasoning:   up.Reasoning,
		Source:      up.Source,
	}
	if out.Source == "" {
		out.Source = SourceExternal
	}
	switch {
	case up.Confidence != nil:
		out.Confidence = round(min(max(*up.Confidence, 0), 1), 3)
	case combined.SegmentCount > 0:
		out.Confidence = round(float64(combined.CategoryCounts[out.Label])/float64(combined.SegmentCount), 3)
	}
	return out
}
