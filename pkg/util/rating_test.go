package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStarRating(t *testing.T) {
	tests := []struct {
		avg  float64
		want string
	}{
		{0, ""},
		{1.4, "⭐"},
		{2.5, "⭐⭐⭐"},
		{4.6, "⭐⭐⭐⭐⭐"},
		{7, "⭐⭐⭐⭐⭐"},
		{-1, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StarRating(tt.avg), "avg=%v", tt.avg)
	}
}

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 4.3, RoundRating(4.333))
	assert.Equal(t, 3.5, RoundRating(3.46))
	assert.Equal(t, 0.0, RoundRating(0))
}
