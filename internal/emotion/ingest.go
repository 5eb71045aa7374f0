package emotion

import (
	"sort"

	"callmood/internal/model"
)

// Candidate is one scored emotion attached to a segment.
type Candidate struct {
	Name       string
	Score      float64
	Percentage float64
	Category   Category

	// unscored candidates weigh 1 per second of overlap in range lookups.
	// collectCandidates only keeps scored emotions, so raw input never sets
	// it; it is reserved for candidates built in code.
	unscored bool
}

// Segment is a validated prosody detection with its speaker resolved.
type Segment struct {
	Start    float64
	End      float64
	Emotions []Candidate
	Dominant *Candidate
	Category Category
	Speaker  string
	Text     string
}

func (s Segment) duration() float64 { return s.End - s.Start }

type ingestion struct {
	segments   []Segment
	metrics    accumulators
	latestTime float64
}

// ingestState is the accumulator threaded through the prosody fold.
type ingestState struct {
	lastKnownSpeaker string
}

func ingest(prosody, bursts []model.RawSegment, transcript []TranscriptSegment) ingestion {
	out := ingestion{metrics: newAccumulators()}

	state := ingestState{}
	for _, raw := range prosody {
		var (
			seg Segment
			ok  bool
		)
		seg, state, ok = ingestProsody(raw, state, transcript)
		if !ok {
			continue
		}
		out.segments = append(out.segments, seg)
		out.metrics.update(seg.Speaker, seg.Category, seg.Emotions, UpdateOptions{IncrementCount: true, Source: SourceProsody})
		if seg.End > out.latestTime {
			out.latestTime = seg.End
		}
	}

	for _, raw := range bursts {
		start, end, ok := segmentBounds(raw)
		if !ok {
			continue
		}
		candidates := collectCandidates(raw.TopEmotions)
		if len(candidates) == 0 {
			continue
		}
		category := primaryCategory(raw, candidates)
		fillCategories(candidates, category)

		speaker := NormalizeSpeaker(raw.Speaker)
		if speaker == "" {
			speaker = FindSpeakerForRange(start, end, transcript)
		}
		out.metrics.update(speaker, category, candidates, UpdateOptions{IncrementCount: false, Source: SourceBurst})
	}

	return out
}

func ingestProsody(raw model.RawSegment, state ingestState, transcript []TranscriptSegment) (Segment, ingestState, bool) {
	start, end, ok := segmentBounds(raw)
	if !ok {
		return Segment{}, state, false
	}

	candidates := collectCandidates(raw.TopEmotions)
	category := primaryCategory(raw, candidates)
	fillCategories(candidates, category)

	seg := Segment{
		Start:    start,
		End:      end,
		Emotions: candidates,
		Category: category,
		Text:     segmentText(raw),
	}
	if len(candidates) > 0 {
		dominant := candidates[0]
		seg.Dominant = &dominant
	}

	speaker := NormalizeSpeaker(raw.Speaker)
	if speaker == "" {
		speaker = FindSpeakerForRange(start, end, transcript)
	}
	if speaker == "" {
		speaker = SpeakerUnknown
	}
	if IsKnownSpeaker(speaker) {
		state.lastKnownSpeaker = speaker
	} else if state.lastKnownSpeaker != "" {
		speaker = state.lastKnownSpeaker
	}
	seg.Speaker = speaker

	return seg, state, true
}

func segmentBounds(raw model.RawSegment) (float64, float64, bool) {
	start, ok := toFloat(raw.TimeStart)
	if !ok {
		return 0, 0, false
	}
	end, ok := toFloat(raw.TimeEnd)
	if !ok {
		return 0, 0, false
	}
	if end < start {
		end = start
	}
	return start, end, true
}

// collectCandidates keeps named, scored emotions ordered by score desc.
// Equal scores keep their original order.
func collectCandidates(raw []model.RawEmotion) []Candidate {
	candidates := make([]Candidate, 0, len(raw))
	for _, e := range raw {
		name := toText(e.Name)
		if name == "" {
			continue
		}
		score, ok := toFloat(e.Score)
		if !ok {
			continue
		}
		pct, ok := toFloat(e.Percentage)
		if !ok {
			pct = score * 100
		}
		c := Candidate{Name: name, Score: score, Percentage: pct}
		if toText(e.Category) != "" {
			c.Category = NormalizeCategory(e.Category)
		}
		candidates = append(candidates, c)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

func primaryCategory(raw model.RawSegment, candidates []Candidate) Category {
	if toText(raw.PrimaryCategory) != "" {
		return NormalizeCategory(raw.PrimaryCategory)
	}
	if len(candidates) > 0 && candidates[0].Category != "" {
		return candidates[0].Category
	}
	if len(raw.TopEmotions) > 0 && toText(raw.TopEmotions[0].Category) != "" {
		return NormalizeCategory(raw.TopEmotions[0].Category)
	}
	return Neutral
}

// fillCategories gives uncategorized candidates the segment's category.
func fillCategories(candidates []Candidate, fallback Category) {
	for i := range candidates {
		if candidates[i].Category == "" {
			candidates[i].Category = fallback
		}
	}
}

func segmentText(raw model.RawSegment) string {
	if s := toText(raw.TranscriptText); s != "" {
		return s
	}
	return toText(raw.Text)
}

// emotionNames returns the sorted, de-duplicated names of every prosody
// candidate, including those on segments later rejected for bad timing.
func emotionNames(prosody []model.RawSegment) []string {
	seen := make(map[string]struct{})
	for _, raw := range prosody {
		for _, e := range raw.TopEmotions {
			if name := toText(e.Name); name != "" {
				seen[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
