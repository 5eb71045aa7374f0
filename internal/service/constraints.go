package service

import (
	"strings"

	"callmood/internal/model"
)

const (
	reasonVoicemail = "Call reached voicemail; cannot analyze emotions."
	reasonTooShort  = "Call too short, insufficient audio for analysis."
	reasonNoAudio   = "Call contains no audio (duration 0s)."
)

// Eligibility is the outcome of evaluating a call against the analysis rules.
type Eligibility struct {
	Allowed     bool
	BlockReason string
	Constraints model.CallConstraints
}

// CalculateDuration returns the call length in milliseconds. An explicit
// duration wins; otherwise end minus start when that is not negative.
// Nil means the duration is unknown.
func CalculateDuration(p *model.CallPayload) *int64 {
	if p == nil {
		return nil
	}
	if p.DurationMS != nil {
		d := int64(*p.DurationMS)
		return &d
	}
	if p.StartTimestamp != nil && p.EndTimestamp != nil {
		d := int64(*p.EndTimestamp - *p.StartTimestamp)
		if d >= 0 {
			return &d
		}
	}
	return nil
}

// EvaluateConstraints decides whether a call can be analyzed. Voicemail
// is checked before length.
func EvaluateConstraints(p *model.CallPayload, minDurationMS int64) Eligibility {
	duration := CalculateDuration(p)
	tooShort := duration != nil && *duration < minDurationMS

	transcript := strings.ToLower(p.Transcript)
	var summary string
	if p.CallAnalysis != nil {
		summary = strings.ToLower(p.CallAnalysis.CallSummary)
	}
	disconnection := p.DisconnectionReason
	if disconnection == "" {
		disconnection = p.EndReason
	}

	flags := model.VoicemailFlags{
		InVoicemail:                    inVoicemail(p),
		SummaryMentionsVoicemail:       strings.Contains(summary, "voicemail"),
		TranscriptMentionsVoicemail:    strings.Contains(transcript, "voicemail"),
		DisconnectionReason:            disconnection,
		SummaryMentionsLeaveMessage:    mentionsLeaveMessage(summary),
		TranscriptMentionsLeaveMessage: mentionsLeaveMessage(transcript),
	}
	detected := flags.InVoicemail ||
		flags.SummaryMentionsVoicemail ||
		flags.TranscriptMentionsVoicemail ||
		strings.Contains(strings.ToLower(disconnection), "voicemail") ||
		flags.SummaryMentionsLeaveMessage ||
		flags.TranscriptMentionsLeaveMessage

	e := Eligibility{
		Allowed: true,
		Constraints: model.CallConstraints{
			VoicemailDetected: detected,
			VoicemailFlags:    flags,
			TooShort:          tooShort,
			DurationMS:        duration,
		},
	}
	switch {
	case detected:
		e.Allowed, e.BlockReason = false, reasonVoicemail
	case tooShort:
		e.Allowed, e.BlockReason = false, reasonTooShort
	}
	return e
}

func inVoicemail(p *model.CallPayload) bool {
	if p.CallAnalysis != nil && p.CallAnalysis.InVoicemail != nil && *p.CallAnalysis.InVoicemail {
		return true
	}
	return p.InVoicemail != nil && *p.InVoicemail
}

func mentionsLeaveMessage(text string) bool {
	return strings.Contains(text, "leave a message") || strings.Contains(text, "leave me a message")
}

// extractSummary prefers the platform's analysis block over top-level fields.
func extractSummary(p *model.CallPayload) string {
	if p.CallAnalysis != nil {
		for _, s := range []string{p.CallAnalysis.CallSummary, p.CallAnalysis.Summary} {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	for _, s := range []string{p.Summary, p.CallSummary} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// stripWords drops per-word timings from transcript turns before storage.
func stripWords(entries []model.RawTranscriptEntry) []model.RawTranscriptEntry {
	if entries == nil {
		return nil
	}
	out := make([]model.RawTranscriptEntry, len(entries))
	for i, entry := range entries {
		entry.Words = nil
		out[i] = entry
	}
	return out
}

// payloadFromCall rebuilds the fields constraint evaluation reads from a
// stored call.
func payloadFromCall(c *model.Call) *model.CallPayload {
	p := &model.CallPayload{
		CallID:              c.CallID,
		RecordingURL:        c.RecordingURL,
		Transcript:          c.Transcript,
		TranscriptObject:    c.TranscriptObject,
		DisconnectionReason: c.DisconnectionReason,
		CallAnalysis:        &model.CallAnalysis{CallSummary: c.CallSummary},
	}
	if c.DurationMS != nil {
		d := float64(*c.DurationMS)
		p.DurationMS = &d
	} else if c.StartTimestamp != nil && c.EndTimestamp != nil {
		start, end := float64(*c.StartTimestamp), float64(*c.EndTimestamp)
		p.StartTimestamp, p.EndTimestamp = &start, &end
	}
	if c.Constraints != nil && c.Constraints.VoicemailFlags.InVoicemail {
		yes := true
		p.CallAnalysis.InVoicemail = &yes
	}
	return p
}
