package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChartSeries(t *testing.T) {
	t.Parallel()

	segments := []Segment{
		segment(SpeakerCustomer, 10, 14, "Anger", 0.6, Negative),
		segment(SpeakerAgent, 0, 10, "Joy", 0.9, Positive),
		segment(SpeakerAgent, 14, 16, "", 0, Neutral),
	}

	points := BuildChartSeries(segments)
	require.Len(t, points, 3)

	assert.InDelta(t, 5.0, points[0].Time, 1e-9)
	require.NotNil(t, points[0].TopEmotion)
	assert.Equal(t, "Joy", *points[0].TopEmotion)
	assert.InDelta(t, 0.9, points[0].Emotions["Joy"], 1e-9)

	assert.InDelta(t, 12.0, points[1].Time, 1e-9)
	assert.Equal(t, SpeakerCustomer, points[1].Speaker)

	assert.Nil(t, points[2].TopEmotion)
	assert.Zero(t, points[2].Score)
	assert.Empty(t, points[2].Emotions)

	for i := 1; i < len(points); i++ {
		assert.LessOrEqual(t, points[i-1].IntervalStart, points[i].IntervalStart)
	}
}
