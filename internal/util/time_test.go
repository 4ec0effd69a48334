package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeFlexible(t *testing.T) {
	want := time.Date(2022, 11, 3, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{name: "RFC3339", input: "2022-11-03T09:30:00Z"},
		{name: "RFC3339 with offset", input: "2022-11-03T19:30:00+10:00"},
		{name: "epoch milliseconds", input: "1667467800000"},
		{name: "space separated", input: "2022-11-03 09:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeFlexible(tt.input)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTimeFlexible("yesterday")
	assert.Error(t, err)
}
