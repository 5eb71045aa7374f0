package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callmood/internal/model"
)

func TestBuildDashboard(t *testing.T) {
	t.Parallel()

	resp := response([]model.RawSegment{
		rawSeg(0, 2, "Customer", emo("Joy", 0.8, "")),
		rawSeg(2, 4, "Agent", emo("Calmness", 0.6, "")),
	})
	resp.CallID = "call_1"

	d := BuildDashboard(resp, Options{})
	assert.Equal(t, "call_1", d.CallID)
	assert.Equal(t, OutcomeOK, d.Outcome)
	assert.True(t, d.Retryable)
	assert.Empty(t, d.Message)
	assert.Equal(t, 2, d.SegmentCount())
}

func TestBuildDashboardNoSpeech(t *testing.T) {
	t.Parallel()

	resp := &model.AnalysisResponse{Results: &model.AnalysisResults{
		Burst: []model.RawSegment{rawSeg(0, 1, "Customer", emo("Laughter", 0.9, ""))},
	}}

	d := BuildDashboard(resp, Options{})
	require.Equal(t, OutcomeNoSpeech, d.Outcome)
	assert.False(t, d.Retryable)
	assert.Equal(t, "No speech detected in this recording.", d.Message)
	assert.Zero(t, d.SegmentCount())
}
