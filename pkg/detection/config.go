package detection

import (
	"fmt"
	"strings"
	"time"
)

// Backend names a detector implementation.
type Backend string

const (
	// BackendYuNet uses OpenCV's FaceDetectorYN (requires the opencv build tag).
	BackendYuNet Backend = "yunet"
	// BackendYOLO uses a single-class YOLO face model through OpenCV DNN.
	BackendYOLO Backend = "yolo"
	// BackendRemote posts JPEG frames to an HTTP detection service.
	BackendRemote Backend = "remote"
	// BackendMock returns scripted results.
	BackendMock Backend = "mock"
)

// ParseBackend parses a backend name, case-insensitively.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendYuNet, BackendYOLO, BackendRemote, BackendMock:
		return b, nil
	}
	return "", fmt.Errorf("detection: unknown backend %q", s)
}

// Config holds detector configuration
type Config struct {
	Backend          Backend
	ModelPath        string        // Path to ONNX model
	ConfidenceThresh float64       // Minimum confidence (default 0.5)
	NMSThresh        float64       // Overlap threshold for non-maximum suppression
	InputWidth       int           // Model input width
	InputHeight      int           // Model input height
	URL              string        // Remote backend endpoint
	Timeout          time.Duration // Remote backend request timeout
	JPEGQuality      int           // Remote backend upload quality
}

// DefaultConfig returns production defaults for YuNet
func DefaultConfig() Config {
	return Config{
		Backend:          BackendYuNet,
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		NMSThresh:        0.3,
		InputWidth:       320,
		InputHeight:      320,
		Timeout:          5 * time.Second,
		JPEGQuality:      85,
	}
}

// DefaultYOLOConfig returns production defaults for a YOLOv8 face model
func DefaultYOLOConfig() Config {
	cfg := DefaultConfig()
	cfg.Backend = BackendYOLO
	cfg.ModelPath = "models/yolov8n-face.onnx"
	cfg.NMSThresh = 0.45
	cfg.InputWidth = 640
	cfg.InputHeight = 640
	return cfg
}

// Validate checks the fields the selected backend needs.
func (c Config) Validate() error {
	if c.ConfidenceThresh < 0 || c.ConfidenceThresh > 1 {
		return fmt.Errorf("confidence threshold must be in [0,1], got %v", c.ConfidenceThresh)
	}
	switch c.Backend {
	case BackendYuNet, BackendYOLO:
		if c.ModelPath == "" {
			return fmt.Errorf("%s backend needs a model path", c.Backend)
		}
		if c.InputWidth <= 0 || c.InputHeight <= 0 {
			return fmt.Errorf("model input size must be positive, got %dx%d", c.InputWidth, c.InputHeight)
		}
	case BackendRemote:
		if c.URL == "" {
			return ErrNoURL
		}
	case BackendMock:
	default:
		return fmt.Errorf("detection: unknown backend %q", c.Backend)
	}
	return nil
}
