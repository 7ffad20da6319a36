package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    geometry.Size
		wantErr bool
	}{
		{"390x844", geometry.Size{W: 390, H: 844}, false},
		{"1280X720", geometry.Size{W: 1280, H: 720}, false},
		{" 320 x 240 ", geometry.Size{W: 320, H: 240}, false},
		{"390.5x844.25", geometry.Size{W: 390.5, H: 844.25}, false},
		{"390", geometry.Size{}, true},
		{"axb", geometry.Size{}, true},
		{"390x", geometry.Size{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSize_RoundTrips(t *testing.T) {
	s := geometry.Size{W: 390, H: 844}
	got, err := parseSize(formatSize(s))
	require.NoError(t, err)
	assert.Equal(t, s, got)
}
