package emotion

import "sort"

// Scope names a subset of segments that metrics are aggregated over.
type Scope string

const (
	ScopeCombined Scope = "combined"
	ScopeAgent    Scope = "agent"
	ScopeCustomer Scope = "customer"
)

// Scopes lists every aggregated scope.
var Scopes = [...]Scope{ScopeCombined, ScopeAgent, ScopeCustomer}

// Detection sources recorded on emotion statistics.
const (
	SourceProsody = "prosody"
	SourceBurst   = "burst"
)

// ScopeForSpeaker maps a canonical speaker onto its per-speaker scope.
// Speakers other than Agent and Customer have no scope.
func ScopeForSpeaker(speaker string) (Scope, bool) {
	switch speaker {
	case SpeakerAgent:
		return ScopeAgent, true
	case SpeakerCustomer:
		return ScopeCustomer, true
	default:
		return "", false
	}
}

// UpdateOptions controls how a detection feeds an Accumulator.
type UpdateOptions struct {
	IncrementCount bool
	Source         string
}

// EmotionStat is the aggregate of one emotion within a category.
type EmotionStat struct {
	Name          string   `json:"name" yaml:"name"`
	Category      Category `json:"category" yaml:"category"`
	Count         int      `json:"count" yaml:"count"`
	MaxScore      float64  `json:"maxScore" yaml:"maxScore"`
	MaxPercentage float64  `json:"maxPercentage" yaml:"maxPercentage"`
	Sources       []string `json:"sources" yaml:"sources"`
}

// MetricSummary is the read-only view of a finished Accumulator.
type MetricSummary struct {
	CategoryCounts      map[Category]int           `json:"categoryCounts" yaml:"categoryCounts"`
	CategorizedEmotions map[Category][]EmotionStat `json:"categorizedEmotions" yaml:"categorizedEmotions"`
	OverallEmotion      *OverallEmotion            `json:"overallEmotion" yaml:"overallEmotion"`
	SegmentCount        int                        `json:"segmentCount" yaml:"segmentCount"`
}

type emotionAgg struct {
	count         int
	maxScore      float64
	maxPercentage float64
	seen          bool
	order         int
	sources       map[string]struct{}
}

// Accumulator is the running aggregate for one scope.
type Accumulator struct {
	totalSegments  int
	categoryCounts map[Category]int
	emotions       map[Category]map[string]*emotionAgg
	next           int
}

// NewAccumulator returns an empty accumulator with all categories present.
func NewAccumulator() *Accumulator {
	a := &Accumulator{
		categoryCounts: make(map[Category]int, len(Categories)),
		emotions:       make(map[Category]map[string]*emotionAgg, len(Categories)),
	}
	for _, c := range Categories {
		a.categoryCounts[c] = 0
		a.emotions[c] = make(map[string]*emotionAgg)
	}
	return a
}

// Update folds one detection into the aggregate. Counts move only when
// IncrementCount is set; score ceilings always move.
func (a *Accumulator) Update(category Category, candidates []Candidate, opts UpdateOptions) {
	category = NormalizeCategory(category)
	if opts.IncrementCount {
		a.totalSegments++
		a.categoryCounts[category]++
	}

	for _, c := range candidates {
		bucket := a.emotions[NormalizeCategory(c.Category)]
		agg, ok := bucket[c.Name]
		if !ok {
			agg = &emotionAgg{order: a.next, sources: make(map[string]struct{})}
			a.next++
			bucket[c.Name] = agg
		}
		if opts.IncrementCount {
			agg.count++
		}
		if !agg.seen || c.Score > agg.maxScore {
			agg.maxScore = c.Score
		}
		if !agg.seen || c.Percentage > agg.maxPercentage {
			agg.maxPercentage = c.Percentage
		}
		agg.seen = true
		if opts.Source != "" {
			agg.sources[opts.Source] = struct{}{}
		}
	}
}

// Materialize sorts each category's emotions by count desc, then max score
// desc. Emotions never counted are left out.
func (a *Accumulator) Materialize() MetricSummary {
	summary := MetricSummary{
		CategoryCounts:      make(map[Category]int, len(Categories)),
		CategorizedEmotions: make(map[Category][]EmotionStat, len(Categories)),
		SegmentCount:        a.totalSegments,
	}

	for _, category := range Categories {
		summary.CategoryCounts[category] = a.categoryCounts[category]

		type ranked struct {
			stat  EmotionStat
			order int
		}
		rows := make([]ranked, 0, len(a.emotions[category]))
		for name, agg := range a.emotions[category] {
			if agg.count <= 0 {
				continue
			}
			rows = append(rows, ranked{
				stat: EmotionStat{
					Name:          name,
					Category:      category,
					Count:         agg.count,
					MaxScore:      round(agg.maxScore, 4),
					MaxPercentage: round(agg.maxPercentage, 1),
					Sources:       sortedKeys(agg.sources),
				},
				order: agg.order,
			})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].stat.Count != rows[j].stat.Count {
				return rows[i].stat.Count > rows[j].stat.Count
			}
			if rows[i].stat.MaxScore != rows[j].stat.MaxScore {
				return rows[i].stat.MaxScore > rows[j].stat.MaxScore
			}
			return rows[i].order < rows[j].order
		})

		stats := make([]EmotionStat, len(rows))
		for i, r := range rows {
			stats[i] = r.stat
		}
		summary.CategorizedEmotions[category] = stats
	}

	return summary
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type accumulators map[Scope]*Accumulator

func newAccumulators() accumulators {
	acc := make(accumulators, len(Scopes))
	for _, s := range Scopes {
		acc[s] = NewAccumulator()
	}
	return acc
}

// update feeds the combined scope and, for Agent or Customer, their own scope.
func (acc accumulators) update(speaker string, category Category, candidates []Candidate, opts UpdateOptions) {
	acc[ScopeCombined].Update(category, candidates, opts)
	if scope, ok := ScopeForSpeaker(speaker); ok {
		acc[scope].Update(category, candidates, opts)
	}
}
