package emotion

import "sort"

// ChartPoint is one plotted speech segment.
type ChartPoint struct {
	Time          float64            `json:"time" yaml:"time"`
	IntervalStart float64            `json:"intervalStart" yaml:"intervalStart"`
	IntervalEnd   float64            `json:"intervalEnd" yaml:"intervalEnd"`
	TopEmotion    *string            `json:"topEmotion" yaml:"topEmotion"`
	Score         float64            `json:"score" yaml:"score"`
	Emotions      map[string]float64 `json:"emotions" yaml:"emotions"`
	Speaker       string             `json:"speaker" yaml:"speaker"`
	Category      Category           `json:"category" yaml:"category"`
}

// BuildChartSeries emits one point per segment ordered by interval start.
// Segments without emotions are still plotted at zero height.
func BuildChartSeries(segments []Segment) []ChartPoint {
	points := make([]ChartPoint, 0, len(segments))
	for _, seg := range segments {
		p := ChartPoint{
			Time:          (seg.Start + seg.End) / 2,
			IntervalStart: seg.Start,
			IntervalEnd:   seg.End,
			Emotions:      make(map[string]float64, len(seg.Emotions)),
			Speaker:       seg.Speaker,
			Category:      seg.Category,
		}
		if seg.Dominant != nil {
			name := seg.Dominant.Name
			p.TopEmotion = &name
			p.Score = seg.Dominant.Score
		}
		for _, c := range seg.Emotions {
			if prev, ok := p.Emotions[c.Name]; !ok || c.Score > prev {
				p.Emotions[c.Name] = c.Score
			}
		}
		points = append(points, p)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].IntervalStart < points[j].IntervalStart
	})
	return points
}
