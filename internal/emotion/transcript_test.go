package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callmood/internal/model"
)

func TestBuildTranscript(t *testing.T) {
	t.Parallel()

	entries := []model.RawTranscriptEntry{
		turn("user", 12, 15, "second"),
		{Role: "agent", Start: 0.0, End: 4.5, Text: "first", Confidence: 0.91},
		{Speaker: "", Start: 1.0, End: 2.0, Content: "no speaker"},
		{Speaker: "agent", Start: "bad", End: 2.0, Content: "bad start"},
		{
			Role:    "user",
			Content: "from words",
			Words: []model.RawWord{
				{Word: "from", Start: 5.0, End: 5.4},
				{Word: "words", Start: 5.5, End: 6.0},
			},
		},
	}

	got := BuildTranscript(entries)
	require.Len(t, got, 3)

	assert.Equal(t, SpeakerAgent, got[0].Speaker)
	assert.Equal(t, "first", got[0].Text)
	require.NotNil(t, got[0].Confidence)
	assert.InDelta(t, 0.91, *got[0].Confidence, 1e-9)

	assert.Equal(t, SpeakerCustomer, got[1].Speaker)
	assert.InDelta(t, 5.0, got[1].Start, 1e-9)
	assert.InDelta(t, 6.0, got[1].End, 1e-9)
	assert.Nil(t, got[1].Confidence)

	assert.Equal(t, "second", got[2].Text)
}

func TestBuildTranscriptEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, BuildTranscript(nil))
}

func TestFindSpeakerForRange(t *testing.T) {
	t.Parallel()

	transcript := []TranscriptSegment{
		{Speaker: SpeakerAgent, Start: 0, End: 4},
		{Speaker: SpeakerCustomer, Start: 4, End: 10},
		{Speaker: "Bob", Start: 20, End: 24},
	}

	assert.Equal(t, SpeakerCustomer, FindSpeakerForRange(2, 9, transcript))
	assert.Equal(t, SpeakerAgent, FindSpeakerForRange(0, 3, transcript))
	assert.Equal(t, "Bob", FindSpeakerForRange(19, 30, transcript))
	assert.Equal(t, "", FindSpeakerForRange(12, 18, transcript))
	assert.Equal(t, "", FindSpeakerForRange(0, 1, nil))
}

func TestFindSpeakerForRangeTieKeepsFirst(t *testing.T) {
	t.Parallel()

	transcript := []TranscriptSegment{
		{Speaker: SpeakerAgent, Start: 0, End: 5},
		{Speaker: SpeakerCustomer, Start: 5, End: 10},
	}

	assert.Equal(t, SpeakerAgent, FindSpeakerForRange(3, 7, transcript))
}
