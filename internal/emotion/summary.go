package emotion

import "sort"

// Third identifiers.
const (
	PartStart = "start"
	PartMid   = "mid"
	PartEnd   = "end"
)

var partLabels = [3][2]string{
	{PartStart, "Start"},
	{PartMid, "Middle"},
	{PartEnd, "End"},
}

// PartEmotion is the dominant emotion of one third.
type PartEmotion struct {
	Name       string   `json:"name" yaml:"name"`
	Score      *float64 `json:"score" yaml:"score"`
	Percentage *float64 `json:"percentage" yaml:"percentage"`
	Category   Category `json:"category" yaml:"category"`
}

// EmotionTimelinePart summarizes one third of a scope's speaking time.
type EmotionTimelinePart struct {
	ID       string       `json:"id" yaml:"id"`
	Label    string       `json:"label" yaml:"label"`
	Start    float64      `json:"start" yaml:"start"`
	End      float64      `json:"end" yaml:"end"`
	Duration float64      `json:"duration" yaml:"duration"`
	Category *Category    `json:"category" yaml:"category"`
	Emotion  *PartEmotion `json:"emotion" yaml:"emotion"`
	HasData  bool         `json:"hasData" yaml:"hasData"`
}

// SummarizeThirds splits a scope into start/mid/end windows and finds the
// overlap-weighted dominant emotion of each. With weighted set, the cuts
// fall where 1/3 and 2/3 of the scope's own speaking time has elapsed;
// otherwise, or when the scope has no speaking time, they are wall-clock
// thirds of duration.
func SummarizeThirds(segments []Segment, duration float64, weighted bool) []EmotionTimelinePart {
	cut1, cut2 := duration/3, duration*2/3
	if weighted {
		if c1, c2, ok := speakingTimeCuts(segments); ok {
			cut1, cut2 = c1, c2
		}
	}
	end := max(duration, cut2)

	bounds := [3][2]float64{{0, cut1}, {cut1, cut2}, {cut2, end}}
	parts := make([]EmotionTimelinePart, 0, len(bounds))
	for i, b := range bounds {
		part := EmotionTimelinePart{
			ID:       partLabels[i][0],
			Label:    partLabels[i][1],
			Start:    b[0],
			End:      b[1],
			Duration: b[1] - b[0],
		}
		for _, seg := range segments {
			if overlap(b[0], b[1], seg.Start, seg.End) > 0 {
				part.HasData = true
				break
			}
		}
		if winner := dominantForRange(b[0], b[1], segments); winner != nil {
			category := winner.Category
			part.Category = &category
			part.Emotion = &PartEmotion{Name: winner.Name, Category: category}
			if winner.Scored {
				score := winner.Score
				pct := round(score*100, 1)
				part.Emotion.Score = &score
				part.Emotion.Percentage = &pct
			}
		}
		parts = append(parts, part)
	}
	return parts
}

// speakingTimeCuts returns the instants at which one and two thirds of the
// segments' cumulative duration has elapsed.
func speakingTimeCuts(segments []Segment) (float64, float64, bool) {
	ordered := make([]Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	total := 0.0
	for _, seg := range ordered {
		total += seg.duration()
	}
	if total <= 0 {
		return 0, 0, false
	}

	at := func(target float64) float64 {
		elapsed := 0.0
		for _, seg := range ordered {
			d := seg.duration()
			if elapsed+d >= target {
				return seg.Start + (target - elapsed)
			}
			elapsed += d
		}
		return ordered[len(ordered)-1].End
	}
	cut1 := at(total / 3)
	return cut1, max(cut1, at(total*2/3)), true
}
