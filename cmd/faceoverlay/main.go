// faceoverlay - live camera preview with face outlines
// Captures frames, detects faces and serves the annotated preview over HTTP
// and websockets.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/teslashibe/go-faceoverlay/pkg/app"
	"github.com/teslashibe/go-faceoverlay/pkg/camera"
	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
	"github.com/teslashibe/go-faceoverlay/pkg/orientation"
)

func main() {
	cfg, err := parseFlags()
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	if err := a.Init(); err != nil {
		log.Fatalf("❌ Initialization failed: %v", err)
	}
	defer a.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		a.Shutdown()
		log.Fatalf("❌ Runtime error: %v", err)
	}
}

// parseFlags parses command line flags and returns configuration.
// Environment variables set the defaults; flags override them.
func parseFlags() (app.Config, error) {
	cfg := app.DefaultConfig()
	if err := cfg.LoadEnvConfig(); err != nil {
		return cfg, err
	}

	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	debugFrames := flag.Bool("debug-frames", false, "Log every frame (very noisy)")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	port := flag.String("port", cfg.Port, "Preview server port (empty disables it)")
	cam := flag.String("camera", string(cfg.Camera.Backend), "Capture backend: auto, opencv, mock")
	device := flag.String("device", cfg.Camera.Device, "Capture device index, file or stream URL")
	preset := flag.String("preset", cfg.Camera.Preset, "Capture preset: "+strings.Join(camera.PresetNames(), ", "))
	iface := flag.String("orientation", cfg.Camera.Interface.String(), "Interface orientation: portrait, portrait-upside-down, landscape-left, landscape-right")
	mount := flag.String("mount", cfg.Camera.Mount, "Sensor mounting: landscape-right, landscape-left")
	detector := flag.String("detector", string(cfg.Detector.Backend), "Face detector: yunet, yolo, remote, mock")
	model := flag.String("model", "", "Detector model path (default depends on -detector)")
	detectorURL := flag.String("detector-url", cfg.Detector.URL, "Endpoint for the remote detector")
	confidence := flag.Float64("confidence", cfg.Detector.ConfidenceThresh, "Minimum detection confidence")
	viewport := flag.String("viewport", formatSize(cfg.Viewport), "Initial viewport WxH until a browser reports one")
	quality := flag.Int("quality", cfg.JPEGQuality, "Preview JPEG quality (1-100)")
	keepStale := flag.Bool("keep-stale", false, "Apply detection results even when a newer one was already shown")

	flag.Parse()

	cfg.Debug, cfg.DebugFrames = *debug, *debugFrames
	cfg.LogLevel, cfg.Port = *logLevel, *port
	cfg.JPEGQuality = *quality
	cfg.Pipeline.DiscardStale = !*keepStale

	if *debug && cfg.LogLevel == "info" {
		cfg.LogLevel = "debug"
	}

	// Camera
	if p := camera.GetPreset(*preset); p != nil {
		backend, dev, m := cfg.Camera.Backend, cfg.Camera.Device, cfg.Camera.Mount
		cfg.Camera = *p
		cfg.Camera.Backend, cfg.Camera.Device, cfg.Camera.Mount = backend, dev, m
	} else {
		return cfg, fmt.Errorf("unknown preset %q", *preset)
	}
	backend, err := camera.ParseBackend(*cam)
	if err != nil {
		return cfg, err
	}
	cfg.Camera.Backend = backend
	cfg.Camera.Device = *device
	cfg.Camera.Mount = *mount
	if cfg.Camera.Interface, err = orientation.ParseInterface(*iface); err != nil {
		return cfg, err
	}

	// Detector
	if err := cfg.SetDetector(*detector); err != nil {
		return cfg, err
	}
	if *model != "" {
		cfg.Detector.ModelPath = *model
	}
	cfg.Detector.URL = *detectorURL
	cfg.Detector.ConfidenceThresh = *confidence

	if cfg.Viewport, err = parseSize(*viewport); err != nil {
		return cfg, err
	}

	if env := os.Getenv("FACEOVERLAY_VIEWPORT"); env != "" && !flagSet("viewport") {
		if cfg.Viewport, err = parseSize(env); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) { set = set || f.Name == name })
	return set
}

func formatSize(s geometry.Size) string {
	return strconv.FormatFloat(s.W, 'g', -1, 64) + "x" + strconv.FormatFloat(s.H, 'g', -1, 64)
}

// parseSize parses "390x844".
func parseSize(s string) (geometry.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return geometry.Size{}, fmt.Errorf("invalid size %q, want WxH", s)
	}
	fw, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	fh, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	return geometry.Size{W: fw, H: fh}, nil
}
