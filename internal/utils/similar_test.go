package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLike(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"bikeid", "bikeid", true},
		{"bikeid", "bike_id", true},
		{"starttime", "start_time", true},
		{"stoptime", "starttime", false},
		{"", "a", true},
		{"", "ab", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Like(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestClosest(t *testing.T) {
	got, ok := Closest("tripduraton", []string{"trip_id", "tripduration"})
	assert.True(t, ok)
	assert.Equal(t, "tripduration", got)

	_, ok = Closest("zzz", []string{"trip_id"})
	assert.False(t, ok)
}

func TestGeoDegreesToFeet(t *testing.T) {
	assert.InDelta(t, 364488.888, GeoDegreesToFeet(1), 0.001)
	assert.Zero(t, GeoDegreesToFeet(0))
}
