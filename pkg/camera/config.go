// Package camera delivers capture frames to the overlay pipeline and holds
// the runtime-configurable capture settings.
//
// This package supports multiple backends:
//   - OpenCV (webcams, video files, RTSP) - requires the opencv build tag
//   - Mock - synthetic frames for CI and demos
package camera

import (
	"fmt"
	"strings"

	"github.com/teslashibe/go-faceoverlay/pkg/frame"
	"github.com/teslashibe/go-faceoverlay/pkg/orientation"
)

// Backend represents the capture backend type.
type Backend string

const (
	// BackendAuto selects OpenCV when compiled in, otherwise the mock.
	BackendAuto Backend = "auto"
	// BackendOpenCV captures through gocv.VideoCapture.
	BackendOpenCV Backend = "opencv"
	// BackendMock generates synthetic frames.
	BackendMock Backend = "mock"
)

// ParseBackend parses a backend name, case-insensitively.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendAuto, BackendOpenCV, BackendMock:
		return b, nil
	}
	return "", fmt.Errorf("camera: unknown backend %q", s)
}

// Config holds all capture configuration parameters.
// These can be modified via the camera API at runtime.
type Config struct {
	Backend Backend `json:"backend"`

	// Device is the backend-specific device identifier.
	// Examples:
	//   - OpenCV: "0" (first webcam), "/path/clip.mp4", "rtsp://..."
	//   - Mock: ignored
	Device string `json:"device"`

	// === Resolution ===
	Width     int    `json:"width"`     // Frame width in pixels
	Height    int    `json:"height"`    // Frame height in pixels
	Framerate int    `json:"framerate"` // Target FPS
	Preset    string `json:"preset"`    // Name of the preset this config came from

	// PixelFormat is "BGRA" or "BGRX".
	PixelFormat string `json:"pixel_format"`

	// Mount is how the sensor is mounted relative to the chassis.
	// Values: "landscape-right" (rear camera), "landscape-left"
	Mount string `json:"mount"`

	// Interface is the current device interface orientation frames are tagged with.
	Interface orientation.Interface `json:"interface"`
}

// Sensor limits
const (
	SensorMinWidth  = 16
	SensorMinHeight = 16
	SensorMaxWidth  = 4608
	SensorMaxHeight = 3456
	SensorMaxFPS    = 120
)

// DefaultConfig returns the still-photo-quality configuration.
func DefaultConfig() Config {
	return Config{
		Backend:     BackendAuto,
		Device:      "0",
		Width:       1920,
		Height:      1440,
		Framerate:   15,
		Preset:      PresetPhoto,
		PixelFormat: "BGRA",
		Mount:       "landscape-right",
		Interface:   orientation.InterfacePortrait,
	}
}

// Format returns the parsed pixel format.
func (c *Config) Format() (frame.PixelFormat, error) {
	return frame.ParsePixelFormat(c.PixelFormat)
}

// Sensor returns the parsed sensor mount.
func (c *Config) Sensor() orientation.Sensor {
	if strings.EqualFold(c.Mount, "landscape-left") {
		return orientation.SensorLandscapeLeft
	}
	return orientation.SensorLandscapeRight
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	switch c.Backend {
	case BackendAuto, BackendOpenCV, BackendMock, "":
	default:
		errors = append(errors, "backend must be auto, opencv, or mock")
	}

	// Resolution
	if c.Width < SensorMinWidth || c.Width > SensorMaxWidth {
		errors = append(errors, fmt.Sprintf("width must be between %d and %d", SensorMinWidth, SensorMaxWidth))
	}
	if c.Height < SensorMinHeight || c.Height > SensorMaxHeight {
		errors = append(errors, fmt.Sprintf("height must be between %d and %d", SensorMinHeight, SensorMaxHeight))
	}
	if c.Framerate < 1 || c.Framerate > SensorMaxFPS {
		errors = append(errors, fmt.Sprintf("framerate must be between 1 and %d", SensorMaxFPS))
	}

	if _, err := c.Format(); err != nil {
		errors = append(errors, "pixel_format must be BGRA or BGRX")
	}

	validMounts := map[string]bool{"": true, "landscape-right": true, "landscape-left": true}
	if !validMounts[strings.ToLower(c.Mount)] {
		errors = append(errors, "mount must be landscape-right or landscape-left")
	}

	return errors
}

// Capabilities returns the capture capabilities.
func Capabilities() map[string]interface{} {
	return map[string]interface{}{
		"backends":      AvailableBackends(),
		"max_width":     SensorMaxWidth,
		"max_height":    SensorMaxHeight,
		"max_fps":       SensorMaxFPS,
		"pixel_formats": []string{"BGRA", "BGRX"},
		"mounts":        []string{"landscape-right", "landscape-left"},
		"interfaces": []string{
			orientation.InterfacePortrait.String(),
			orientation.InterfacePortraitUpsideDown.String(),
			orientation.InterfaceLandscapeLeft.String(),
			orientation.InterfaceLandscapeRight.String(),
		},
		"presets": PresetNames(),
	}
}
