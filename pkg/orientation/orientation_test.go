package orientation

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_RearCamera(t *testing.T) {
	tests := []struct {
		name     string
		iface    Interface
		expected Orientation
	}{
		{"landscape right is upright", InterfaceLandscapeRight, Up},
		{"landscape left is rotated 180", InterfaceLandscapeLeft, Down},
		{"portrait is rotated 90 clockwise", InterfacePortrait, Right},
		{"portrait upside down is rotated 90 clockwise", InterfacePortraitUpsideDown, Right},
		{"unknown falls back to portrait", InterfaceUnknown, Right},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(SensorLandscapeRight, tt.iface)
			if got != tt.expected {
				t.Errorf("Normalize(%s) = %s, want %s", tt.iface, got, tt.expected)
			}
		})
	}
}

func TestNormalize_LandscapeLeftSensor(t *testing.T) {
	assert.Equal(t, Up, Normalize(SensorLandscapeLeft, InterfaceLandscapeLeft))
	assert.Equal(t, Down, Normalize(SensorLandscapeLeft, InterfaceLandscapeRight))
	assert.Equal(t, Left, Normalize(SensorLandscapeLeft, InterfacePortrait))
}

func TestOrientation_Properties(t *testing.T) {
	for o := Up; o <= Left; o++ {
		assert.True(t, o.IsValid(), o.String())
	}
	assert.False(t, Orientation(0).IsValid())
	assert.False(t, Orientation(9).IsValid())
	assert.Equal(t, "orientation(9)", Orientation(9).String())

	assert.True(t, Right.SwapsDimensions())
	assert.True(t, LeftMirrored.SwapsDimensions())
	assert.False(t, Down.SwapsDimensions())
	assert.True(t, DownMirrored.Mirrored())
	assert.False(t, Right.Mirrored())

	w, h := DisplaySize(1920, 1080, Right)
	assert.Equal(t, 1080, w)
	assert.Equal(t, 1920, h)
	w, h = DisplaySize(1920, 1080, Down)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
}

func TestParseInterface(t *testing.T) {
	tests := []struct {
		in       string
		expected Interface
		wantErr  bool
	}{
		{"portrait", InterfacePortrait, false},
		{"Landscape_Left", InterfaceLandscapeLeft, false},
		{" landscape-right ", InterfaceLandscapeRight, false},
		{"portrait-upside-down", InterfacePortraitUpsideDown, false},
		{"sideways", InterfaceUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInterface(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	var i Interface
	require.NoError(t, i.UnmarshalText([]byte("landscape-left")))
	assert.Equal(t, InterfaceLandscapeLeft, i)
	text, err := i.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "landscape-left", string(text))
}

func TestApply(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	// Stored pixels: a single row [red, blue].
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, red)
	src.Set(1, 0, blue)

	tests := []struct {
		name   string
		o      Orientation
		size   image.Point
		pixels map[image.Point]color.NRGBA
	}{
		{"up", Up, image.Pt(2, 1), map[image.Point]color.NRGBA{image.Pt(0, 0): red, image.Pt(1, 0): blue}},
		{"up mirrored", UpMirrored, image.Pt(2, 1), map[image.Point]color.NRGBA{image.Pt(0, 0): blue, image.Pt(1, 0): red}},
		{"down", Down, image.Pt(2, 1), map[image.Point]color.NRGBA{image.Pt(0, 0): blue, image.Pt(1, 0): red}},
		{"right rotates clockwise", Right, image.Pt(1, 2), map[image.Point]color.NRGBA{image.Pt(0, 0): red, image.Pt(0, 1): blue}},
		{"left rotates counter-clockwise", Left, image.Pt(1, 2), map[image.Point]color.NRGBA{image.Pt(0, 0): blue, image.Pt(0, 1): red}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(src, tt.o)
			require.Equal(t, tt.size, got.Bounds().Size())
			for pt, want := range tt.pixels {
				assert.Equal(t, want, got.NRGBAAt(pt.X, pt.Y), "pixel %v", pt)
			}
		})
	}
}
