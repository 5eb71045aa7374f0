package service

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"

	"callmood/internal/model"
)

// EventCallAnalyzed is the only webhook event that registers a call.
const EventCallAnalyzed = "call_analyzed"

// numericFields are coerced to numbers before decoding since relays such
// as n8n tend to stringify them.
var numericFields = []string{"start_timestamp", "end_timestamp", "duration_ms"}

// NormalizeWebhook accepts the three payload shapes the platform and its
// relays deliver and returns the event name and call data.
//
//	{"event": ..., "call": {...}}
//	{"event": ..., "call_id": ..., ...}
//	{"body": {"event": ..., "call_id": ..., ...}}
//
// A nil payload is returned when no call data could be located.
func NormalizeWebhook(raw []byte) (string, *model.CallPayload, error) {
	var envelope map[string]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var event string
	var data map[string]any
	if body, ok := envelope["body"].(map[string]any); ok {
		event = cast.ToString(body["event"])
		data = copyMap(body)
	} else {
		event = cast.ToString(envelope["event"])
		if call, ok := envelope["call"].(map[string]any); ok {
			data = copyMap(call)
		} else if hasAny(envelope, "call_id", "recording_multi_channel_url") {
			data = copyMap(envelope)
			delete(data, "event")
		}
	}
	if data == nil {
		return event, nil, nil
	}

	hoistIntoAnalysis(data, "in_voicemail")
	hoistIntoAnalysis(data, "call_summary")
	for _, key := range numericFields {
		coerceNumber(data, key)
	}
	if id, ok := data["call_id"]; ok {
		data["call_id"] = cast.ToString(id)
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return event, nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	var payload model.CallPayload
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return event, nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return event, &payload, nil
}

// hoistIntoAnalysis copies a top-level key into call_analysis unless the
// analysis block already carries it.
func hoistIntoAnalysis(data map[string]any, key string) {
	value, ok := data[key]
	if !ok {
		return
	}
	analysis, ok := data["call_analysis"].(map[string]any)
	if !ok {
		analysis = map[string]any{}
		data["call_analysis"] = analysis
	}
	if _, present := analysis[key]; !present {
		analysis[key] = value
	}
}

func coerceNumber(data map[string]any, key string) {
	value, ok := data[key]
	if !ok || value == nil {
		return
	}
	if _, isNumber := value.(float64); isNumber {
		return
	}
	n, err := cast.ToFloat64E(value)
	if err != nil {
		delete(data, key)
		return
	}
	data[key] = n
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func hasAny(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}
