// Package config provides configuration helpers for faceoverlay commands.
package config

import (
	"os"
	"strconv"
)

// Defaults used when neither a flag nor an environment variable is set.
const (
	DefaultPort     = 8080
	DefaultDetector = "yunet"
	DefaultModel    = "models/face_detection_yunet.onnx"
	DefaultCamera   = "auto"
	DefaultLogLevel = "info"
)

// Port returns the dashboard port from FACEOVERLAY_PORT or the default.
// Unparseable values fall back to the default.
func Port() int {
	if v := os.Getenv("FACEOVERLAY_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			return p
		}
	}
	return DefaultPort
}

// Detector returns the detector backend name from FACEOVERLAY_DETECTOR.
func Detector() string {
	return String("FACEOVERLAY_DETECTOR", DefaultDetector)
}

// Model returns the detector model path from FACEOVERLAY_MODEL.
func Model() string {
	return String("FACEOVERLAY_MODEL", DefaultModel)
}

// Camera returns the capture backend name from FACEOVERLAY_CAMERA.
func Camera() string {
	return String("FACEOVERLAY_CAMERA", DefaultCamera)
}

// LogLevel returns the log level from FACEOVERLAY_LOG_LEVEL.
func LogLevel() string {
	return String("FACEOVERLAY_LOG_LEVEL", DefaultLogLevel)
}

// DetectorURL returns the remote detector endpoint from FACEOVERLAY_DETECTOR_URL.
// Empty when unset.
func DetectorURL() string {
	return os.Getenv("FACEOVERLAY_DETECTOR_URL")
}

// String returns the value of key, or def when it is unset or empty.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
