package emotion

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Canonical speaker roles.
const (
	SpeakerCustomer = "Customer"
	SpeakerAgent    = "Agent"
	SpeakerUnknown  = "Unknown"
)

var speakerAliases = map[string]string{
	"customer":       SpeakerCustomer,
	"user":           SpeakerCustomer,
	"caller":         SpeakerCustomer,
	"agent":          SpeakerAgent,
	"assistant":      SpeakerAgent,
	"rep":            SpeakerAgent,
	"representative": SpeakerAgent,
}

// NormalizeSpeaker maps a raw speaker label onto Customer or Agent.
// Other labels are returned as given, untrimmed, with their first letter
// uppercased. Empty, blank or falsy input returns "".
func NormalizeSpeaker(raw any) string {
	var s string
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		s = v
	case bool:
		if !v {
			return ""
		}
		s = "true"
	case float64:
		if v == 0 {
			return ""
		}
		s = fmt.Sprint(v)
	case int:
		if v == 0 {
			return ""
		}
		s = fmt.Sprint(v)
	default:
		s = fmt.Sprint(v)
	}

	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return ""
	}
	if canonical, ok := speakerAliases[key]; ok {
		return canonical
	}

	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// IsKnownSpeaker reports whether s names an actual party.
func IsKnownSpeaker(s string) bool {
	return s != "" && s != SpeakerUnknown
}
