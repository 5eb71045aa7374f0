package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callmood/internal/model"
)

func TestCalculateDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   *model.CallPayload
		want *int64
	}{
		{"nil payload", nil, nil},
		{"explicit", &model.CallPayload{DurationMS: float64p(42000.9)}, int64p(42000)},
		{"explicit wins", &model.CallPayload{DurationMS: float64p(5), StartTimestamp: float64p(0), EndTimestamp: float64p(9000)}, int64p(5)},
		{"from timestamps", &model.CallPayload{StartTimestamp: float64p(1000), EndTimestamp: float64p(21000)}, int64p(20000)},
		{"reversed timestamps", &model.CallPayload{StartTimestamp: float64p(5000), EndTimestamp: float64p(1000)}, nil},
		{"unknown", &model.CallPayload{StartTimestamp: float64p(1000)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CalculateDuration(tt.in))
		})
	}
}

func TestEvaluateConstraints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      *model.CallPayload
		allowed bool
		reason  string
	}{
		{
			name:    "long call",
			in:      &model.CallPayload{DurationMS: float64p(30000), Transcript: "Agent: Hello there."},
			allowed: true,
		},
		{
			name:    "unknown duration",
			in:      &model.CallPayload{Transcript: "Agent: Hello there."},
			allowed: true,
		},
		{
			name:   "too short",
			in:     &model.CallPayload{DurationMS: float64p(10000)},
			reason: reasonTooShort,
		},
		{
			name:   "voicemail flag",
			in:     &model.CallPayload{DurationMS: float64p(30000), CallAnalysis: &model.CallAnalysis{InVoicemail: boolp(true)}},
			reason: reasonVoicemail,
		},
		{
			name:   "top level voicemail flag",
			in:     &model.CallPayload{DurationMS: float64p(30000), InVoicemail: boolp(true)},
			reason: reasonVoicemail,
		},
		{
			name:   "transcript asks to leave a message",
			in:     &model.CallPayload{DurationMS: float64p(30000), Transcript: "Please LEAVE A MESSAGE after the tone."},
			reason: reasonVoicemail,
		},
		{
			name:   "summary mentions voicemail",
			in:     &model.CallPayload{DurationMS: float64p(30000), CallAnalysis: &model.CallAnalysis{CallSummary: "Reached the Voicemail of the customer."}},
			reason: reasonVoicemail,
		},
		{
			name:   "disconnection reason",
			in:     &model.CallPayload{DurationMS: float64p(30000), DisconnectionReason: "voicemail_reached"},
			reason: reasonVoicemail,
		},
		{
			name:   "end reason fallback",
			in:     &model.CallPayload{DurationMS: float64p(30000), EndReason: "voicemail"},
			reason: reasonVoicemail,
		},
		{
			name:   "voicemail checked before length",
			in:     &model.CallPayload{DurationMS: float64p(3000), Transcript: "leave me a message"},
			reason: reasonVoicemail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := EvaluateConstraints(tt.in, 15000)
			assert.Equal(t, tt.allowed, got.Allowed)
			assert.Equal(t, tt.reason, got.BlockReason)
		})
	}
}

func TestEvaluateConstraintsFlags(t *testing.T) {
	t.Parallel()

	got := EvaluateConstraints(&model.CallPayload{
		DurationMS: float64p(9000),
		Transcript: "You have reached voicemail, leave a message.",
	}, 15000)

	c := got.Constraints
	assert.True(t, c.VoicemailDetected)
	assert.True(t, c.TooShort)
	assert.True(t, c.VoicemailFlags.TranscriptMentionsVoicemail)
	assert.True(t, c.VoicemailFlags.TranscriptMentionsLeaveMessage)
	assert.False(t, c.VoicemailFlags.SummaryMentionsVoicemail)
	require.NotNil(t, c.DurationMS)
	assert.Equal(t, int64(9000), *c.DurationMS)
}

func TestExtractSummary(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "from analysis", extractSummary(&model.CallPayload{
		Summary:      "top",
		CallAnalysis: &model.CallAnalysis{Summary: "  from analysis "},
	}))
	assert.Equal(t, "top", extractSummary(&model.CallPayload{Summary: "top", CallSummary: "other"}))
	assert.Equal(t, "other", extractSummary(&model.CallPayload{CallSummary: "other", CallAnalysis: &model.CallAnalysis{}}))
	assert.Empty(t, extractSummary(&model.CallPayload{}))
}

func TestStripWords(t *testing.T) {
	t.Parallel()

	in := []model.RawTranscriptEntry{{Speaker: "agent", Content: "hi", Words: []model.RawWord{{Word: "hi", Start: 0.1, End: 0.3}}}}
	out := stripWords(in)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Words)
	assert.Equal(t, "hi", out[0].Content)
	assert.Len(t, in[0].Words, 1)
	assert.Nil(t, stripWords(nil))
}
