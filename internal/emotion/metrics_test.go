package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorCountsSumToSegments(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	acc.Update(Positive, []Candidate{{Name: "Joy", Score: 0.9, Percentage: 90, Category: Positive}}, UpdateOptions{IncrementCount: true})
	acc.Update(Negative, []Candidate{{Name: "Anger", Score: 0.6, Percentage: 60, Category: Negative}}, UpdateOptions{IncrementCount: true})
	acc.Update(Category("weird"), nil, UpdateOptions{IncrementCount: true})
	acc.Update(Positive, []Candidate{{Name: "Joy", Score: 1, Percentage: 100, Category: Positive}}, UpdateOptions{})

	summary := acc.Materialize()
	sum := 0
	for _, c := range Categories {
		sum += summary.CategoryCounts[c]
	}
	assert.Equal(t, summary.SegmentCount, sum)
	assert.Equal(t, 3, summary.SegmentCount)
	assert.Equal(t, 1, summary.CategoryCounts[Neutral])
}

func TestAccumulatorMaterializeOrdering(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	counted := UpdateOptions{IncrementCount: true, Source: SourceProsody}
	acc.Update(Positive, []Candidate{{Name: "Joy", Score: 0.5, Category: Positive}}, counted)
	acc.Update(Positive, []Candidate{{Name: "Interest", Score: 0.7, Category: Positive}}, counted)
	acc.Update(Positive, []Candidate{{Name: "Joy", Score: 0.4, Category: Positive}}, counted)
	acc.Update(Positive, []Candidate{{Name: "Pride", Score: 0.7, Category: Positive}}, counted)
	acc.Update(Positive, []Candidate{{Name: "Relief", Score: 0.9, Category: Positive}}, UpdateOptions{Source: SourceBurst})

	stats := acc.Materialize().CategorizedEmotions[Positive]
	require.Len(t, stats, 3)

	names := []string{stats[0].Name, stats[1].Name, stats[2].Name}
	assert.Equal(t, []string{"Joy", "Interest", "Pride"}, names)
	assert.Equal(t, 2, stats[0].Count)
	assert.InDelta(t, 0.5, stats[0].MaxScore, 1e-9)
	for _, s := range stats {
		assert.Positive(t, s.Count)
	}
}

func TestAccumulatorBucketsByCandidateCategory(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	acc.Update(Positive, []Candidate{
		{Name: "Joy", Score: 0.9, Category: Positive},
		{Name: "Calm", Score: 0.4, Category: Neutral},
	}, UpdateOptions{IncrementCount: true})

	summary := acc.Materialize()
	assert.Equal(t, 1, summary.CategoryCounts[Positive])
	assert.Equal(t, 0, summary.CategoryCounts[Neutral])
	require.Len(t, summary.CategorizedEmotions[Neutral], 1)
	assert.Equal(t, "Calm", summary.CategorizedEmotions[Neutral][0].Name)
}

func TestEmptyAccumulatorIsFullyShaped(t *testing.T) {
	t.Parallel()

	summary := NewAccumulator().Materialize()
	assert.Equal(t, 0, summary.SegmentCount)
	for _, c := range Categories {
		count, ok := summary.CategoryCounts[c]
		assert.True(t, ok)
		assert.Zero(t, count)
		assert.NotNil(t, summary.CategorizedEmotions[c])
		assert.Empty(t, summary.CategorizedEmotions[c])
	}
}

func TestScopeForSpeaker(t *testing.T) {
	t.Parallel()

	scope, ok := ScopeForSpeaker(SpeakerAgent)
	assert.True(t, ok)
	assert.Equal(t, ScopeAgent, scope)

	scope, ok = ScopeForSpeaker(SpeakerCustomer)
	assert.True(t, ok)
	assert.Equal(t, ScopeCustomer, scope)

	_, ok = ScopeForSpeaker("Bob")
	assert.False(t, ok)
	_, ok = ScopeForSpeaker(SpeakerUnknown)
	assert.False(t, ok)
}
