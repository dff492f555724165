package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlatformDirection(t *testing.T) {
	tests := []struct {
		stopID   string
		expected string
	}{
		{"M11S", "S"},
		{"M11N", "N"},
		{"M11", ""},
		{"J", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.stopID, func(t *testing.T) {
			assert.Equal(t, tt.expected, PlatformDirection(tt.stopID))
		})
	}
}

func TestParentStation(t *testing.T) {
	assert.Equal(t, "M11", ParentStation("M11S"))
	assert.Equal(t, "M11", ParentStation("M11N"))
	assert.Equal(t, "M11", ParentStation("M11"))
}

func TestMatchesDirection(t *testing.T) {
	assert.True(t, MatchesDirection("M11S", ""))
	assert.True(t, MatchesDirection("M11S", "S"))
	assert.True(t, MatchesDirection("M11S", "s"))
	assert.False(t, MatchesDirection("M11S", "N"))
	assert.False(t, MatchesDirection("M11", "N"))
}
