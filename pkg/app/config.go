// Package app wires camera capture, face detection, the overlay pipeline and
// the preview server into one process.
package app

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/teslashibe/go-faceoverlay/internal/config"
	"github.com/teslashibe/go-faceoverlay/pkg/camera"
	"github.com/teslashibe/go-faceoverlay/pkg/detection"
	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
	"github.com/teslashibe/go-faceoverlay/pkg/pipeline"
	"github.com/teslashibe/go-faceoverlay/pkg/web"
)

// DefaultShutdownTimeout bounds how long Shutdown waits for an in-flight
// detection.
const DefaultShutdownTimeout = 3 * time.Second

// Config holds all configuration for the application.
// Flag parsing is done in cmd/faceoverlay; this struct is data only.
type Config struct {
	// Debug enables verbose debug output.
	Debug bool

	// DebugFrames enables per-frame trace output.
	DebugFrames bool

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// Port is the preview server port. Empty disables the listener; the
	// server still acts as the pipeline's display.
	Port string

	Camera   camera.Config
	Detector detection.Config
	Pipeline pipeline.Config

	// Viewport is the container size used until a browser reports one.
	Viewport geometry.Size

	// JPEGQuality is the preview stream quality.
	JPEGQuality int

	ShutdownTimeout time.Duration
}

// DefaultConfig returns the defaults from internal/config.
func DefaultConfig() Config {
	cam := camera.DefaultConfig()
	cam.Backend = camera.Backend(config.DefaultCamera)

	det := detection.DefaultConfig()
	det.ModelPath = config.DefaultModel

	return Config{
		LogLevel:        config.DefaultLogLevel,
		Port:            strconv.Itoa(config.DefaultPort),
		Camera:          cam,
		Detector:        det,
		Pipeline:        pipeline.DefaultConfig(),
		Viewport:        web.DefaultViewport,
		JPEGQuality:     web.DefaultJPEGQuality,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadEnvConfig applies FACEOVERLAY_* environment variables.
// Call it before flag parsing so flags win.
func (c *Config) LoadEnvConfig() error {
	c.LogLevel = config.LogLevel()
	c.Port = strconv.Itoa(config.Port())

	cam, err := camera.ParseBackend(config.Camera())
	if err != nil {
		return err
	}
	c.Camera.Backend = cam

	if err := c.SetDetector(config.Detector()); err != nil {
		return err
	}
	if m := config.Model(); m != config.DefaultModel {
		c.Detector.ModelPath = m
	}
	if url := config.DetectorURL(); url != "" {
		c.Detector.URL = url
	}
	return nil
}

// SetDetector switches the detector backend. Picking YOLO also switches to
// the YOLO model defaults unless a model path was already customised.
func (c *Config) SetDetector(name string) error {
	b, err := detection.ParseBackend(name)
	if err != nil {
		return err
	}
	if b == c.Detector.Backend {
		return nil
	}

	if b == detection.BackendYOLO {
		yolo := detection.DefaultYOLOConfig()
		if c.Detector.ModelPath != "" && c.Detector.ModelPath != config.DefaultModel {
			yolo.ModelPath = c.Detector.ModelPath
		}
		yolo.URL = c.Detector.URL
		yolo.ConfidenceThresh = c.Detector.ConfidenceThresh
		c.Detector = yolo
		return nil
	}

	c.Detector.Backend = b
	return nil
}

// Validate checks the config before any component is created.
func (c *Config) Validate() error {
	var errs []error
	if problems := c.Camera.Validate(); len(problems) > 0 {
		errs = append(errs, fmt.Errorf("camera: %v", problems))
	}
	if err := c.Detector.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detector: %w", err))
	}
	if !c.Viewport.Positive() {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %s", c.Viewport))
	}
	if c.Port != "" {
		if p, err := strconv.Atoi(c.Port); err != nil || p < 0 || p > 65535 {
			errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
		}
	}
	return errors.Join(errs...)
}
