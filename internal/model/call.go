package model

import "time"

// AnalysisStatus tracks a call through emotion analysis
type AnalysisStatus string

const (
	StatusPending    AnalysisStatus = "pending"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusError      AnalysisStatus = "error"
	StatusBlocked    AnalysisStatus = "blocked"
)

// Call is a voice agent call registered for analysis
type Call struct {
	CallID              string               `json:"call_id" bson:"_id"`
	AgentID             string               `json:"agent_id,omitempty" bson:"agent_id,omitempty"`
	AgentName           string               `json:"agent_name,omitempty" bson:"agent_name,omitempty"`
	UserPhoneNumber     string               `json:"user_phone_number,omitempty" bson:"user_phone_number,omitempty"`
	StartTimestamp      *int64               `json:"start_timestamp,omitempty" bson:"start_timestamp,omitempty"`
	EndTimestamp        *int64               `json:"end_timestamp,omitempty" bson:"end_timestamp,omitempty"`
	DurationMS          *int64               `json:"duration_ms,omitempty" bson:"duration_ms,omitempty"`
	RecordingURL        string               `json:"recording_multi_channel_url,omitempty" bson:"recording_multi_channel_url,omitempty"`
	CallSummary         string               `json:"call_summary,omitempty" bson:"call_summary,omitempty"`
	Transcript          string               `json:"-" bson:"transcript,omitempty"`
	TranscriptAvailable bool                 `json:"transcript_available" bson:"transcript_available"`
	TranscriptObject    []RawTranscriptEntry `json:"transcript_object,omitempty" bson:"transcript_object,omitempty"`
	DisconnectionReason string               `json:"disconnection_reason,omitempty" bson:"disconnection_reason,omitempty"`

	AnalysisStatus      AnalysisStatus   `json:"analysis_status" bson:"analysis_status"`
	AnalysisAvailable   bool             `json:"analysis_available" bson:"analysis_available"`
	AnalysisAllowed     bool             `json:"analysis_allowed" bson:"analysis_allowed"`
	AnalysisBlockReason string           `json:"analysis_block_reason,omitempty" bson:"analysis_block_reason,omitempty"`
	Constraints         *CallConstraints `json:"analysis_constraints,omitempty" bson:"analysis_constraints,omitempty"`
	ErrorMessage        string           `json:"error_message,omitempty" bson:"error_message,omitempty"`
	OverallEmotionLabel string           `json:"overall_emotion_label,omitempty" bson:"overall_emotion_label,omitempty"`
	OverallEmotion      *OverallEmotion  `json:"overall_emotion,omitempty" bson:"overall_emotion,omitempty"`
	AnalysisRevision    int64            `json:"analysis_revision" bson:"analysis_revision"`

	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	LastUpdated time.Time `json:"last_updated" bson:"last_updated"`
}

// VoicemailFlags records which voicemail signals fired
type VoicemailFlags struct {
	InVoicemail                    bool   `json:"in_voicemail" bson:"in_voicemail"`
	SummaryMentionsVoicemail       bool   `json:"summary_mentions_voicemail" bson:"summary_mentions_voicemail"`
	TranscriptMentionsVoicemail    bool   `json:"transcript_mentions_voicemail" bson:"transcript_mentions_voicemail"`
	DisconnectionReason            string `json:"disconnection_reason,omitempty" bson:"disconnection_reason,omitempty"`
	SummaryMentionsLeaveMessage    bool   `json:"summary_mentions_leave_message" bson:"summary_mentions_leave_message"`
	TranscriptMentionsLeaveMessage bool   `json:"transcript_mentions_leave_message" bson:"transcript_mentions_leave_message"`
}

// CallConstraints is the eligibility evaluation of a call
type CallConstraints struct {
	VoicemailDetected bool           `json:"voicemail_detected" bson:"voicemail_detected"`
	VoicemailFlags    VoicemailFlags `json:"voicemail_flags" bson:"voicemail_flags"`
	TooShort          bool           `json:"too_short" bson:"too_short"`
	DurationMS        *int64         `json:"duration_ms" bson:"duration_ms"`
}

// CallPayload is call data as delivered by the voice agent platform webhook
type CallPayload struct {
	CallID              string               `json:"call_id"`
	AgentID             string               `json:"agent_id,omitempty"`
	AgentName           string               `json:"agent_name,omitempty"`
	UserPhoneNumber     string               `json:"user_phone_number,omitempty"`
	StartTimestamp      *float64             `json:"start_timestamp,omitempty"`
	EndTimestamp        *float64             `json:"end_timestamp,omitempty"`
	DurationMS          *float64             `json:"duration_ms,omitempty"`
	RecordingURL        string               `json:"recording_multi_channel_url,omitempty"`
	Transcript          string               `json:"transcript,omitempty"`
	TranscriptObject    []RawTranscriptEntry `json:"transcript_object,omitempty"`
	DisconnectionReason string               `json:"disconnection_reason,omitempty"`
	EndReason           string               `json:"end_reason,omitempty"`
	InVoicemail         *bool                `json:"in_voicemail,omitempty"`
	CallSummary         string               `json:"call_summary,omitempty"`
	Summary             string               `json:"summary,omitempty"`
	CallAnalysis        *CallAnalysis        `json:"call_analysis,omitempty"`
}

// CallAnalysis is the platform's own post-call analysis block
type CallAnalysis struct {
	CallSummary   string `json:"call_summary,omitempty"`
	Summary       string `json:"summary,omitempty"`
	InVoicemail   *bool  `json:"in_voicemail,omitempty"`
	UserSentiment string `json:"user_sentiment,omitempty"`
}

// WebhookEnvelope covers the wrapped webhook shapes
type WebhookEnvelope struct {
	Event string       `json:"event"`
	Call  *CallPayload `json:"call,omitempty"`
}

// Pagination describes a page of results
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// CallPage is one page of the call listing
type CallPage struct {
	Success    bool       `json:"success"`
	Calls      []*Call    `json:"calls"`
	Pagination Pagination `json:"pagination"`
}

// AnalysisRecord stores the raw completed analysis of a call
type AnalysisRecord struct {
	CallID    string           `json:"call_id" bson:"_id"`
	Revision  int64            `json:"revision" bson:"revision"`
	Response  AnalysisResponse `json:"response" bson:"response"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}

// StatusEvent is pushed to dashboard sockets when a call's analysis moves
type StatusEvent struct {
	Type           string         `json:"type"`
	CallID         string         `json:"call_id"`
	Status         AnalysisStatus `json:"status"`
	Message        string         `json:"message,omitempty"`
	OverallEmotion string         `json:"overall_emotion_label,omitempty"`
	Timestamp      int64          `json:"timestamp"`
}
