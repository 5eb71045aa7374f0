package emotion

import "sort"

// Timeline segment sources.
const (
	TimelineProsody    = "prosody"
	TimelineTranscript = "transcript"
)

// TimelineSegment is one entry on a speaker's lane.
type TimelineSegment struct {
	Start      float64  `json:"start" yaml:"start"`
	End        float64  `json:"end" yaml:"end"`
	TopEmotion *string  `json:"topEmotion" yaml:"topEmotion"`
	Score      float64  `json:"score" yaml:"score"`
	Category   Category `json:"category" yaml:"category"`
	Text       string   `json:"text" yaml:"text"`
	Source     string   `json:"source" yaml:"source"`
}

// SpeakerTimeline holds every speaker's lane.
type SpeakerTimeline struct {
	Duration float64                      `json:"duration" yaml:"duration"`
	Speakers []string                     `json:"speakers" yaml:"speakers"`
	Segments map[string][]TimelineSegment `json:"segments" yaml:"segments"`
}

// rangeEmotion is the overlap-weighted winner for a time window.
type rangeEmotion struct {
	Name     string
	Score    float64
	Scored   bool
	Category Category
}

// dominantForRange picks the emotion whose summed overlap x max(score, 0)
// across segments is largest. The first emotion to reach the winning weight
// keeps it. The reported score is the winner's peak inside the window.
func dominantForRange(start, end float64, segments []Segment) *rangeEmotion {
	type tally struct {
		weight   float64
		peak     float64
		scored   bool
		category Category
	}

	var order []string
	tallies := make(map[string]*tally)
	for _, seg := range segments {
		if seg.Dominant == nil {
			continue
		}
		o := overlap(start, end, seg.Start, seg.End)
		if o <= 0 {
			continue
		}

		c := seg.Dominant
		w := o
		if !c.unscored {
			w = o * max(c.Score, 0)
		}

		t, ok := tallies[c.Name]
		if !ok {
			t = &tally{category: c.Category}
			tallies[c.Name] = t
			order = append(order, c.Name)
		}
		t.weight += w
		if !c.unscored && (!t.scored || c.Score > t.peak) {
			t.peak = c.Score
			t.scored = true
		}
	}

	var best *rangeEmotion
	bestWeight := 0.0
	for _, name := range order {
		t := tallies[name]
		if best == nil || t.weight > bestWeight {
			best = &rangeEmotion{Name: name, Score: t.peak, Scored: t.scored, Category: t.category}
			bestWeight = t.weight
		}
	}
	return best
}

// BuildSpeakerTimeline lays segments out per speaker and back-fills
// transcript turns that no prosody segment of that speaker touches. It
// returns the timeline and the latest end time seen.
func BuildSpeakerTimeline(segments []Segment, transcript []TranscriptSegment, latestTime float64) (SpeakerTimeline, float64) {
	lanes := map[string][]TimelineSegment{
		SpeakerCustomer: {},
		SpeakerAgent:    {},
	}
	var auxiliary []string
	for _, seg := range segments {
		if _, ok := lanes[seg.Speaker]; !ok {
			auxiliary = append(auxiliary, seg.Speaker)
		}
		lanes[seg.Speaker] = append(lanes[seg.Speaker], fromSegment(seg))
	}
	sort.Strings(auxiliary)
	speakers := append([]string{SpeakerCustomer, SpeakerAgent}, auxiliary...)

	for _, speaker := range speakers {
		lane := lanes[speaker]
		sortLane(lane)

		for _, ts := range transcript {
			if ts.Speaker != speaker || touchesLane(ts, lane) {
				continue
			}
			filled := TimelineSegment{
				Start:    ts.Start,
				End:      ts.End,
				Category: Neutral,
				Text:     ts.Text,
				Source:   TimelineTranscript,
			}
			if winner := dominantForRange(ts.Start, ts.End, segments); winner != nil {
				name := winner.Name
				filled.TopEmotion = &name
				filled.Score = winner.Score
				filled.Category = winner.Category
			}
			lane = append(lane, filled)
			if ts.End > latestTime {
				latestTime = ts.End
			}
		}

		sortLane(lane)
		lanes[speaker] = lane
	}

	return SpeakerTimeline{
		Duration: latestTime,
		Speakers: speakers,
		Segments: lanes,
	}, latestTime
}

func fromSegment(seg Segment) TimelineSegment {
	ts := TimelineSegment{
		Start:    seg.Start,
		End:      seg.End,
		Category: seg.Category,
		Text:     seg.Text,
		Source:   TimelineProsody,
	}
	if seg.Dominant != nil {
		name := seg.Dominant.Name
		ts.TopEmotion = &name
		ts.Score = seg.Dominant.Score
	}
	return ts
}

func touchesLane(ts TranscriptSegment, lane []TimelineSegment) bool {
	for _, entry := range lane {
		if overlap(ts.Start, ts.End, entry.Start, entry.End) > 0 {
			return true
		}
	}
	return false
}

func sortLane(lane []TimelineSegment) {
	sort.SliceStable(lane, func(i, j int) bool {
		return lane[i].Start < lane[j].Start
	})
}
