package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teslashibe/go-faceoverlay/internal/log"
	"github.com/teslashibe/go-faceoverlay/pkg/camera"
	"github.com/teslashibe/go-faceoverlay/pkg/debug"
	"github.com/teslashibe/go-faceoverlay/pkg/detection"
	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
	"github.com/teslashibe/go-faceoverlay/pkg/pipeline"
	"github.com/teslashibe/go-faceoverlay/pkg/web"
)

// ErrNotInitialized is returned by Run before Init.
var ErrNotInitialized = errors.New("app: not initialized")

// App is the face overlay process.
// It owns every component and their lifecycle.
type App struct {
	config Config
	logger *slog.Logger

	detector      detection.Detector
	pipeline      *pipeline.Pipeline
	webServer     *web.Server
	cameraManager *camera.Manager

	// The capture source is replaced when the camera config changes.
	sourceMu sync.Mutex
	source   camera.Source
	runCtx   context.Context

	shutdownOnce sync.Once
}

// New validates cfg and creates an application. Call Init next.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug.Enabled = cfg.Debug
	debug.Frames = cfg.DebugFrames

	log.Init(cfg.LogLevel)
	return &App{
		config: cfg,
		logger: log.With("component", "app"),
	}, nil
}

// Init creates the detector, the preview server, the pipeline and the
// capture source. Nothing runs until Run.
func (a *App) Init() error {
	a.logger.Info("initializing",
		"camera", a.config.Camera.Backend,
		"detector", a.config.Detector.Backend,
		"viewport", a.config.Viewport,
	)
	debug.Logln("🐛 Debug mode enabled")

	det, err := detection.NewDetector(a.config.Detector, log.L())
	if errors.Is(err, detection.ErrBackendUnavailable) {
		return fmt.Errorf("detector: %w (available: %v)", err, detection.AvailableBackends())
	}
	if err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	a.detector = det

	a.cameraManager = camera.NewManager(a.config.Camera)
	a.webServer = web.NewServer(a.config.Port, a.cameraManager, log.L())
	a.webServer.SetJPEGQuality(a.config.JPEGQuality)
	if err := a.webServer.SetViewport(a.config.Viewport); err != nil {
		det.Close()
		return fmt.Errorf("viewport: %w", err)
	}

	a.pipeline = pipeline.New(a.config.Pipeline, det, a.webServer, log.L())

	a.webServer.OnViewportChange = func(geometry.Size) {
		a.pipeline.Relayout()
	}
	a.webServer.OnStatus = a.fillStatus
	a.cameraManager.OnConfigChange = a.applyCameraConfig

	src, err := camera.NewSource(a.config.Camera, log.L())
	if err != nil {
		det.Close()
		return fmt.Errorf("camera: %w", err)
	}
	a.source = src
	return nil
}

// Run starts the pipeline, the capture source and the preview server, then
// blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return ErrNotInitialized
	}
	if err := a.pipeline.Start(ctx); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	a.sourceMu.Lock()
	a.runCtx = ctx
	err := a.source.Start(ctx, a.pipeline.HandleFrame)
	a.sourceMu.Unlock()
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}

	if a.config.Port != "" {
		a.webServer.StartAsync()
	}

	a.logger.Info("face overlay running",
		"session", a.pipeline.ID(),
		"source", a.source.Name(),
		"port", a.config.Port,
	)

	<-ctx.Done()
	return nil
}

// Shutdown tears the process down in dependency order: capture first so no
// new frames arrive, then the pipeline (its in-flight result is discarded),
// then the detector and the preview server.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(a.shutdown)
}

func (a *App) shutdown() {
	a.sourceMu.Lock()
	if a.source != nil {
		if err := a.source.Stop(); err != nil {
			a.logger.Warn("stop camera", "error", err)
		}
	}
	a.sourceMu.Unlock()

	if a.pipeline != nil {
		a.pipeline.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		if err := a.pipeline.Wait(ctx); err != nil {
			a.logger.Warn("detection still running at shutdown", "error", err)
		}
		cancel()
	}

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.logger.Warn("close detector", "error", err)
		}
	}

	if a.webServer != nil {
		if err := a.webServer.Shutdown(); err != nil {
			a.logger.Warn("stop web server", "error", err)
		}
	}

	a.logger.Info("goodbye")
}

// applyCameraConfig is called when the camera config changes through the
// API. An interface-orientation change is applied in place; anything else
// restarts capture with the new settings.
func (a *App) applyCameraConfig(cfg camera.Config) error {
	a.sourceMu.Lock()
	defer a.sourceMu.Unlock()

	current := a.source.Config()
	probe := current
	probe.Interface = cfg.Interface
	if probe == cfg {
		a.source.SetInterface(cfg.Interface)
		a.logger.Info("interface orientation changed", "interface", cfg.Interface)
		return nil
	}

	debug.Log("📷 camera config: %dx%d @ %dfps preset=%s\n", cfg.Width, cfg.Height, cfg.Framerate, cfg.Preset)

	next, err := camera.NewSource(cfg, log.L())
	if err != nil {
		return err
	}

	if err := a.source.Stop(); err != nil {
		return fmt.Errorf("stop capture: %w", err)
	}
	a.source = next

	if a.runCtx == nil {
		return nil
	}
	if err := next.Start(a.runCtx, a.pipeline.HandleFrame); err != nil {
		return fmt.Errorf("restart capture: %w", err)
	}
	a.logger.Info("capture restarted", "width", cfg.Width, "height", cfg.Height, "framerate", cfg.Framerate)
	return nil
}

func (a *App) fillStatus(s *web.Status) {
	s.Session = a.pipeline.ID()
	s.Pipeline = a.pipeline.Stats()
	s.Detector = string(a.config.Detector.Backend)

	a.sourceMu.Lock()
	s.Camera = a.source.Stats()
	s.Source = a.source.Name()
	a.sourceMu.Unlock()
}

// Pipeline returns the running pipeline.
func (a *App) Pipeline() *pipeline.Pipeline {
	return a.pipeline
}

// Server returns the preview server.
func (a *App) Server() *web.Server {
	return a.webServer
}
