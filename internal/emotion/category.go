package emotion

import "strings"

// Category is one of the three canonical sentiment buckets.
type Category string

const (
	Positive Category = "positive"
	Neutral  Category = "neutral"
	Negative Category = "negative"
)

// Categories lists the buckets in tie-break priority order.
var Categories = [...]Category{Positive, Neutral, Negative}

// NormalizeCategory maps any raw label onto a canonical category.
// Anything that is not exactly positive/neutral/negative after trimming
// and lowercasing becomes Neutral.
func NormalizeCategory(value any) Category {
	s, ok := value.(string)
	if !ok {
		if c, isCat := value.(Category); isCat {
			s = string(c)
		} else {
			return Neutral
		}
	}

	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case Positive, Neutral, Negative:
		return c
	default:
		return Neutral
	}
}

func (c Category) priority() int {
	switch c {
	case Positive:
		return 0
	case Neutral:
		return 1
	case Negative:
		return 2
	default:
		return len(Categories)
	}
}
