package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDominantForRangeOverlapWeighted(t *testing.T) {
	t.Parallel()

	// Joy covers 2s of the window at 0.9, Anger covers 4s at 0.6.
	segments := []Segment{
		segment(SpeakerAgent, 8, 12, "Joy", 0.9, Positive),
		segment(SpeakerAgent, 14, 20, "Anger", 0.6, Negative),
	}

	winner := dominantForRange(10, 18, segments)
	require.NotNil(t, winner)
	assert.Equal(t, "Anger", winner.Name)
	assert.InDelta(t, 0.6, winner.Score, 1e-9)
	assert.Equal(t, Negative, winner.Category)
}

func TestDominantForRangeSumsAndReportsPeak(t *testing.T) {
	t.Parallel()

	segments := []Segment{
		segment(SpeakerAgent, 0, 2, "Calm", 0.5, Neutral),
		segment(SpeakerAgent, 2, 4, "Calm", 0.7, Neutral),
		segment(SpeakerAgent, 4, 6, "Joy", 0.9, Positive),
	}

	winner := dominantForRange(0, 6, segments)
	require.NotNil(t, winner)
	assert.Equal(t, "Calm", winner.Name)
	assert.InDelta(t, 0.7, winner.Score, 1e-9)
}

func TestDominantForRangeUnscoredWeighsByOverlap(t *testing.T) {
	t.Parallel()

	unscored := segment(SpeakerAgent, 0, 4, "Calm", 0, Neutral)
	unscored.Dominant.unscored = true
	segments := []Segment{
		unscored,
		segment(SpeakerAgent, 4, 6, "Joy", 0.9, Positive),
	}

	winner := dominantForRange(0, 6, segments)
	require.NotNil(t, winner)
	assert.Equal(t, "Calm", winner.Name)
	assert.False(t, winner.Scored)
}

func TestDominantForRangeNoOverlap(t *testing.T) {
	t.Parallel()

	segments := []Segment{segment(SpeakerAgent, 0, 2, "Joy", 0.9, Positive)}
	assert.Nil(t, dominantForRange(2, 5, segments))
	assert.Nil(t, dominantForRange(0, 2, []Segment{segment(SpeakerAgent, 0, 2, "", 0, Neutral)}))
}

func TestBuildSpeakerTimelineBackfill(t *testing.T) {
	t.Parallel()

	segments := []Segment{
		segment(SpeakerAgent, 0, 5, "Joy", 0.8, Positive),
		segment(SpeakerCustomer, 5, 9, "Anger", 0.5, Negative),
		segment(SpeakerAgent, 9, 12, "Calm", 0.9, Neutral),
	}
	transcript := []TranscriptSegment{
		{Speaker: SpeakerAgent, Start: 0, End: 5, Text: "covered"},
		{Speaker: SpeakerCustomer, Start: 9, End: 11, Text: "gap"},
		{Speaker: SpeakerCustomer, Start: 20, End: 25, Text: "tail"},
	}

	timeline, latest := BuildSpeakerTimeline(segments, transcript, 12)

	assert.Equal(t, []string{SpeakerCustomer, SpeakerAgent}, timeline.Speakers)
	assert.InDelta(t, 25.0, latest, 1e-9)
	assert.Len(t, timeline.Segments[SpeakerAgent], 2)

	customer := timeline.Segments[SpeakerCustomer]
	require.Len(t, customer, 3)
	assert.Equal(t, TimelineProsody, customer[0].Source)

	gap := customer[1]
	assert.Equal(t, TimelineTranscript, gap.Source)
	assert.Equal(t, "gap", gap.Text)
	require.NotNil(t, gap.TopEmotion)
	assert.Equal(t, "Calm", *gap.TopEmotion)

	tail := customer[2]
	assert.Nil(t, tail.TopEmotion)
	assert.Equal(t, Neutral, tail.Category)
}

func TestBuildSpeakerTimelineAuxiliarySpeakers(t *testing.T) {
	t.Parallel()

	segments := []Segment{
		segment("Supervisor", 3, 4, "Calm", 0.3, Neutral),
		segment(SpeakerUnknown, 0, 1, "Joy", 0.3, Positive),
	}
	transcript := []TranscriptSegment{{Speaker: "Bob", Start: 5, End: 6}}

	timeline, _ := BuildSpeakerTimeline(segments, transcript, 4)

	assert.Equal(t, []string{SpeakerCustomer, SpeakerAgent, "Supervisor", SpeakerUnknown}, timeline.Speakers)
	assert.Empty(t, timeline.Segments[SpeakerCustomer])
	assert.NotContains(t, timeline.Segments, "Bob")
}
