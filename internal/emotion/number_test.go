package emotion

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{"float", 1.5, 1.5, true},
		{"int", 3, 3, true},
		{"int32", int32(4), 4, true},
		{"int64", int64(5), 5, true},
		{"numeric string", " 2.25 ", 2.25, true},
		{"json number", json.Number("7.5"), 7.5, true},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
		{"blank string", "  ", 0, false},
		{"garbage string", "abc", 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
		{"nan string", "NaN", 0, false},
		{"slice", []int{1}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := toFloat(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRoundAndOverlap(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.667, round(2.0/3.0, 3), 1e-12)
	assert.InDelta(t, 33.3, round(33.333, 1), 1e-12)

	assert.InDelta(t, 5.0, overlap(0, 10, 5, 20), 1e-12)
	assert.InDelta(t, 0.0, overlap(0, 5, 5, 10), 1e-12)
	assert.InDelta(t, 0.0, overlap(0, 5, 8, 10), 1e-12)
	assert.InDelta(t, 2.0, overlap(3, 5, 0, 10), 1e-12)
}
