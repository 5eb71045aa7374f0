package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callmood/internal/emotion"
	"callmood/internal/model"
)

func sampleDashboard() emotion.Dashboard {
	resp := &model.AnalysisResponse{Success: true, Results: &model.AnalysisResults{
		Prosody: []model.RawSegment{
			{TimeStart: 0.0, TimeEnd: 3.0, Speaker: "Customer", TopEmotions: []model.RawEmotion{{Name: "Joy", Score: 0.8, Category: "positive"}}},
			{TimeStart: 3.0, TimeEnd: 6.0, Speaker: "Agent", TopEmotions: []model.RawEmotion{{Name: "Calmness", Score: 0.6, Category: "neutral"}}},
			{TimeStart: 6.0, TimeEnd: 9.0, Speaker: "Customer", TopEmotions: []model.RawEmotion{{Name: "Joy", Score: 0.7, Category: "positive"}}},
		},
	}}
	return emotion.BuildDashboard(resp, emotion.Options{})
}

func TestTopEmotions(t *testing.T) {
	t.Parallel()

	names := topEmotions(sampleDashboard().Bundle.ChartData, 1)
	assert.Equal(t, []string{"Joy"}, names)
}

func TestHTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, sampleDashboard(), "call c1"))
	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "call c1")
	assert.Contains(t, out, "Joy")
}

func TestTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, sampleDashboard()))
	out := buf.String()
	assert.Contains(t, out, "Overview")
	assert.Contains(t, out, "Calmness")
	assert.Contains(t, out, "Total: 2 emotions")
}

func TestTableEmptyDashboard(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, emotion.BuildDashboard(nil, emotion.Options{})))
	assert.Contains(t, buf.String(), string(emotion.OutcomeNoEmotions))
}
